package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agriconnect/whatsapp-backend/internal/metrics"
	"github.com/agriconnect/whatsapp-backend/pkg/logger"
)

// Dispatcher delivers one text reply to a WhatsApp user.
type Dispatcher interface {
	Send(ctx context.Context, to, body string) error
}

// Provider names accepted by WHATSAPP_PROVIDER.
const (
	ProviderAuto   = "auto"
	ProviderCloud  = "cloud"
	ProviderTwilio = "twilio"
	ProviderLog    = "log"
)

// DispatcherConfig carries the credentials needed to build a Dispatcher.
type DispatcherConfig struct {
	Preference string

	CloudAccessToken   string
	CloudPhoneNumberID string
	CloudAPIVersion    string
	CloudGraphURL      string

	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
}

// BuildDispatcher picks the outbound provider. It returns the dispatcher, the provider that was
// selected and, when it fell back to logging only, the reason no real provider could be used.
func BuildDispatcher(cfg DispatcherConfig, log *logger.Logger) (Dispatcher, string, string) {
	log = logger.OrGlobal(log)
	preference := strings.ToLower(strings.TrimSpace(cfg.Preference))
	if preference == "" {
		preference = ProviderAuto
	}

	var reasons []string

	if preference == ProviderAuto || preference == ProviderCloud {
		cloud, err := NewCloudAPIDispatcher(CloudAPIConfig{
			AccessToken:   cfg.CloudAccessToken,
			PhoneNumberID: cfg.CloudPhoneNumberID,
			APIVersion:    cfg.CloudAPIVersion,
			GraphURL:      cfg.CloudGraphURL,
		}, log)
		if err == nil {
			return cloud, ProviderCloud, ""
		}
		reasons = append(reasons, fmt.Sprintf("%s: %v", ProviderCloud, err))
	}

	if preference == ProviderAuto || preference == ProviderTwilio {
		twilio, err := NewTwilioDispatcher(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom, log)
		if err == nil {
			return twilio, ProviderTwilio, ""
		}
		reasons = append(reasons, fmt.Sprintf("%s: %v", ProviderTwilio, err))
	}

	if len(reasons) == 0 {
		reasons = append(reasons, fmt.Sprintf("unknown provider %q", preference))
	}
	return NewLogDispatcher(log), ProviderLog, strings.Join(reasons, "; ")
}

// LogDispatcher only logs replies. Used when no provider is configured.
type LogDispatcher struct {
	logger *logger.Logger
}

func NewLogDispatcher(log *logger.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger.OrGlobal(log)}
}

func (l *LogDispatcher) Send(ctx context.Context, to, body string) error {
	l.logger.Info("reply not sent, no WhatsApp provider configured",
		zap.String("to", to),
		zap.String("body", body),
	)
	return nil
}

// InstrumentedDispatcher counts and logs every send of the wrapped dispatcher.
type InstrumentedDispatcher struct {
	next     Dispatcher
	provider string
	metrics  *metrics.BotMetrics
	logger   *logger.Logger
}

func NewInstrumentedDispatcher(next Dispatcher, provider string, m *metrics.BotMetrics, log *logger.Logger) *InstrumentedDispatcher {
	return &InstrumentedDispatcher{
		next:     next,
		provider: provider,
		metrics:  m,
		logger:   logger.OrGlobal(log),
	}
}

func (d *InstrumentedDispatcher) Send(ctx context.Context, to, body string) error {
	err := d.next.Send(ctx, to, body)
	d.metrics.ObserveOutbound(d.provider, err)
	if err != nil {
		d.logger.Error("failed to send WhatsApp message",
			zap.String("provider", d.provider),
			zap.String("to", to),
			zap.Error(err),
		)
		return err
	}
	d.logger.Debug("WhatsApp message sent", zap.String("provider", d.provider), zap.String("to", to))
	return nil
}
