package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agriconnect/whatsapp-backend/internal/metrics"
	"github.com/agriconnect/whatsapp-backend/pkg/logger"
)

func TestBuildDispatcher(t *testing.T) {
	cloud := DispatcherConfig{CloudAccessToken: "token", CloudPhoneNumberID: "123"}
	twilio := DispatcherConfig{TwilioAccountSID: "AC1", TwilioAuthToken: "secret", TwilioWhatsAppFrom: "+14155238886"}
	both := DispatcherConfig{
		CloudAccessToken: "token", CloudPhoneNumberID: "123",
		TwilioAccountSID: "AC1", TwilioAuthToken: "secret", TwilioWhatsAppFrom: "+14155238886",
	}

	tests := []struct {
		name     string
		cfg      DispatcherConfig
		pref     string
		provider string
		reason   bool
	}{
		{"auto prefers cloud", both, "", ProviderCloud, false},
		{"auto falls to twilio", twilio, "auto", ProviderTwilio, false},
		{"explicit twilio", both, "TWILIO", ProviderTwilio, false},
		{"explicit cloud", cloud, "cloud", ProviderCloud, false},
		{"cloud missing creds", twilio, "cloud", ProviderLog, true},
		{"nothing configured", DispatcherConfig{}, "auto", ProviderLog, true},
		{"unknown provider", both, "carrier-pigeon", ProviderLog, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.Preference = tt.pref
			d, provider, reason := BuildDispatcher(cfg, logger.NewNop())
			require.NotNil(t, d)
			assert.Equal(t, tt.provider, provider)
			assert.Equal(t, tt.reason, reason != "")
		})
	}
}

func TestLogDispatcher(t *testing.T) {
	assert.NoError(t, NewLogDispatcher(logger.NewNop()).Send(context.Background(), "+1555", "hello"))
}

func TestInstrumentedDispatcher(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewBotMetrics(reg)
	inner := &recordingDispatcher{}
	d := NewInstrumentedDispatcher(inner, ProviderCloud, m, logger.NewNop())

	require.NoError(t, d.Send(context.Background(), "+1555", "one"))
	inner.err = errors.New("rate limited")
	assert.Error(t, d.Send(context.Background(), "+1555", "two"))

	assert.Len(t, inner.sent, 2)
	count, err := testutil.GatherAndCount(reg, "agriconnect_whatsapp_outbound_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestWhatsAppAddress(t *testing.T) {
	assert.Equal(t, "whatsapp:+1555", whatsappAddress("+1555"))
	assert.Equal(t, "whatsapp:+1555", whatsappAddress("whatsapp:+1555"))
}
