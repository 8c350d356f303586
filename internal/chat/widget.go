package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/harbor-homecare-web/internal/observability/metrics"
	"github.com/wolfman30/harbor-homecare-web/pkg/logging"
)

// Sender identifies who wrote an entry.
type Sender string

const (
	SenderBot  Sender = "bot"
	SenderUser Sender = "user"
)

// Entry is one line of the chat transcript.
type Entry struct {
	ID     string    `json:"id"`
	Sender Sender    `json:"sender"`
	Text   string    `json:"text"`
	Time   time.Time `json:"time"`
}

// Widget is one visitor's conversation. Entries only ever grow, and at most
// one message waits for a reply at a time.
type Widget struct {
	replier Replier
	metrics *metrics.SiteMetrics
	logger  *logging.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries []Entry
	pending bool
}

// WidgetOption customises a Widget.
type WidgetOption func(*Widget)

func WithMetrics(m *metrics.SiteMetrics) WidgetOption {
	return func(w *Widget) { w.metrics = m }
}

func WithLogger(l *logging.Logger) WidgetOption {
	return func(w *Widget) {
		if l != nil {
			w.logger = l
		}
	}
}

func WithClock(now func() time.Time) WidgetOption {
	return func(w *Widget) { w.now = now }
}

// NewWidget opens a conversation seeded with the greeting.
func NewWidget(replier Replier, opts ...WidgetOption) *Widget {
	if replier == nil {
		panic("chat: replier cannot be nil")
	}
	w := &Widget{
		replier: replier,
		logger:  logging.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.entries = []Entry{w.entry(SenderBot, Greeting)}
	return w
}

func (w *Widget) entry(sender Sender, text string) Entry {
	return Entry{ID: uuid.NewString(), Sender: sender, Text: text, Time: w.now()}
}

// Send appends the visitor's message, waits for the reply and appends it.
// The returned entry is the bot's answer, which is the apology text when the
// webhook could not be reached.
func (w *Widget) Send(ctx context.Context, text string) (Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Entry{}, ErrEmptyMessage
	}

	w.mu.Lock()
	if w.pending {
		w.mu.Unlock()
		w.metrics.ObserveChat("busy")
		return Entry{}, ErrBusy
	}
	w.pending = true
	w.entries = append(w.entries, w.entry(SenderUser, text))
	w.mu.Unlock()

	reply, err := w.replier.Reply(ctx, text)
	result := "answered"
	if err != nil {
		w.logger.Error("chat: failed to reach webhook", "error", err)
		reply = Apology
		result = "failed"
	}
	w.metrics.ObserveChat(result)

	w.mu.Lock()
	defer w.mu.Unlock()
	bot := w.entry(SenderBot, reply)
	w.entries = append(w.entries, bot)
	w.pending = false
	return bot, nil
}

// Entries returns a copy of the transcript.
func (w *Widget) Entries() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

// Pending reports whether a reply is outstanding.
func (w *Widget) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}
