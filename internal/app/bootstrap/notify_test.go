package bootstrap

import (
	"context"
	"testing"

	appconfig "github.com/wolfman30/harbor-homecare-web/internal/config"
	"github.com/wolfman30/harbor-homecare-web/internal/contact"
	"github.com/wolfman30/harbor-homecare-web/pkg/logging"
)

func TestBuildOfficeNotifierDisabledWithoutRecipient(t *testing.T) {
	if n := BuildOfficeNotifier(&appconfig.Config{SendGridAPIKey: "SG.key"}, logging.New("error")); n != nil {
		t.Fatalf("expected nil notifier without OFFICE_NOTIFY_EMAIL")
	}
}

func TestBuildOfficeNotifierFallsBackToStub(t *testing.T) {
	cfg := &appconfig.Config{OfficeNotifyEmail: "office@example.ca"}

	n := BuildOfficeNotifier(cfg, logging.New("error"))
	if n == nil {
		t.Fatalf("expected notifier with a recipient")
	}
	err := n.NotifySubmission(context.Background(), contact.Submission{FirstName: "Ada", LastName: "Lovelace"})
	if err != nil {
		t.Fatalf("stub sender should not fail: %v", err)
	}
}
