package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/agriconnect/whatsapp-backend/pkg/logger"
)

// TwilioDispatcher sends WhatsApp messages through Twilio's Messages API.
type TwilioDispatcher struct {
	client *twilio.RestClient
	from   string // Format: "whatsapp:+14155238886"
	logger *logger.Logger
}

// NewTwilioDispatcher creates a Twilio backed dispatcher
func NewTwilioDispatcher(accountSid, authToken, from string, log *logger.Logger) (*TwilioDispatcher, error) {
	if accountSid == "" || authToken == "" || from == "" {
		return nil, errors.New("missing Twilio credentials (TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, TWILIO_WHATSAPP_FROM)")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &TwilioDispatcher{
		client: client,
		from:   whatsappAddress(from),
		logger: logger.OrGlobal(log),
	}, nil
}

// Send sends a WhatsApp message via Twilio. The twilio client is not context aware.
func (t *TwilioDispatcher) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(whatsappAddress(to))
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio: failed to send WhatsApp message: %w", err)
	}
	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		msg := ""
		if resp.ErrorMessage != nil {
			msg = *resp.ErrorMessage
		}
		return fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, msg)
	}

	if resp.Sid != nil {
		t.logger.Debug("twilio message accepted", zap.String("sid", *resp.Sid))
	}
	return nil
}

func whatsappAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
