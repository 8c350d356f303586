// Command chatprobe sends one message to the chat automation webhook and
// prints the extracted reply. It exits non-zero when no reply comes back.
//
//	go run ./cmd/chatprobe "Do you offer overnight care?"
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/harbor-homecare-web/internal/chat"
	appconfig "github.com/wolfman30/harbor-homecare-web/internal/config"
	"github.com/wolfman30/harbor-homecare-web/pkg/logging"
)

const defaultMessage = "Hello, how can you help me?"

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := appconfig.Load()

	webhook := flag.String("url", cfg.ChatWebhookURL, "chat webhook URL")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Parse()

	message := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if message == "" {
		message = defaultMessage
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	os.Exit(probe(ctx, *webhook, message, logging.New(cfg.LogLevel)))
}

// probe returns the process exit code.
func probe(ctx context.Context, webhook, message string, logger *logging.Logger) int {
	client := chat.NewClient(chat.ClientConfig{WebhookURL: webhook, Logger: logger})

	fmt.Printf("Sending %q to %s\n", message, webhook)
	start := time.Now()
	reply, err := client.Reply(ctx, message)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		fmt.Printf("❌ Error after %v: %v\n", elapsed, err)
		return 1
	}
	if reply == chat.EmptyFallback {
		fmt.Printf("⚠️  No reply text found in response (%v)\n", elapsed)
		return 1
	}

	fmt.Printf("✅ Reply (%v):\n%s\n", elapsed, reply)
	return 0
}
