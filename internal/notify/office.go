package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/harbor-homecare-web/internal/contact"
	"github.com/wolfman30/harbor-homecare-web/pkg/logging"
)

// OfficeNotifier e-mails the care office about each new contact request.
type OfficeNotifier struct {
	sender    EmailSender
	recipient string
	logger    *logging.Logger
}

var _ contact.Notifier = (*OfficeNotifier)(nil)

// NewOfficeNotifier returns nil when there is no recipient, which callers
// treat as notifications disabled.
func NewOfficeNotifier(sender EmailSender, recipient string, logger *logging.Logger) *OfficeNotifier {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" || sender == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &OfficeNotifier{sender: sender, recipient: recipient, logger: logger}
}

// NotifySubmission implements contact.Notifier.
func (n *OfficeNotifier) NotifySubmission(ctx context.Context, sub contact.Submission) error {
	if n == nil {
		return nil
	}
	msg := EmailMessage{
		To:      n.recipient,
		ReplyTo: sub.Email,
		Subject: fmt.Sprintf("New consultation request - %s", sub.FullName()),
		Body:    submissionText(sub),
		HTML:    submissionHTML(sub),
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: office email: %w", err)
	}
	n.logger.Info("notify: office email sent", "to", n.recipient, "appointment_date", sub.AppointmentDate)
	return nil
}

type row struct{ label, value string }

func submissionRows(sub contact.Submission) []row {
	rows := []row{
		{"Name", sub.FullName()},
		{"Date of birth", sub.DateOfBirth},
		{"Email", sub.Email},
		{"Phone", sub.Phone},
		{"Country", sub.CountryCode},
	}
	if sub.PostalCode != "" {
		rows = append(rows, row{"Postal code", sub.PostalCode})
	}
	if sub.PatientLiaison != "" {
		rows = append(rows, row{"Patient liaison", sub.PatientLiaison})
	}
	return append(rows,
		row{"Appointment date", sub.AppointmentDate},
		row{"Appointment time", sub.AppointmentTime},
	)
}

func submissionText(sub contact.Submission) string {
	var b strings.Builder
	b.WriteString("A new consultation request arrived through the website.\n\n")
	for _, r := range submissionRows(sub) {
		fmt.Fprintf(&b, "%s: %s\n", r.label, r.value)
	}
	fmt.Fprintf(&b, "\nMessage:\n%s\n", sub.Message)
	return b.String()
}

func submissionHTML(sub contact.Submission) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: sans-serif; max-width: 600px;">`)
	b.WriteString(`<h2 style="color: #0f766e;">New consultation request</h2>`)
	b.WriteString(`<table style="border-collapse: collapse; margin: 20px 0;">`)
	for _, r := range submissionRows(sub) {
		fmt.Fprintf(&b, `<tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>%s:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>`,
			r.label, html.EscapeString(r.value))
	}
	b.WriteString(`</table>`)
	fmt.Fprintf(&b, `<p style="background: #f0fdfa; padding: 12px; border-radius: 8px;">%s</p>`,
		strings.ReplaceAll(html.EscapeString(sub.Message), "\n", "<br>"))
	b.WriteString(`</div>`)
	return b.String()
}
