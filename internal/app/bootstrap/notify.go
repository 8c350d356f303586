package bootstrap

import (
	"strings"

	appconfig "github.com/wolfman30/harbor-homecare-web/internal/config"
	"github.com/wolfman30/harbor-homecare-web/internal/notify"
	"github.com/wolfman30/harbor-homecare-web/pkg/logging"
)

// BuildOfficeNotifier wires the office e-mail for new consultation requests.
// Without OFFICE_NOTIFY_EMAIL it returns nil. Without a SendGrid key the
// message is only logged.
func BuildOfficeNotifier(cfg *appconfig.Config, logger *logging.Logger) *notify.OfficeNotifier {
	if cfg == nil || strings.TrimSpace(cfg.OfficeNotifyEmail) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	var sender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		sender = sg
		logger.Info("office notifications via sendgrid", "to", cfg.OfficeNotifyEmail)
	} else {
		sender = notify.NewStubEmailSender(logger)
		logger.Warn("SENDGRID_API_KEY not set; office notifications are logged only")
	}
	return notify.NewOfficeNotifier(sender, cfg.OfficeNotifyEmail, logger)
}
