package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("SESSION_STORE", "")
	t.Setenv("WHATSAPP_VERIFY_TOKEN", "")
	t.Setenv("ENABLE_TEST_ROUTES", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, SessionStoreMemory, cfg.SessionStore)
	assert.Equal(t, "your_verify_token", cfg.WhatsAppVerifyToken)
	assert.Equal(t, "v18.0", cfg.WhatsAppAPIVersion)
	assert.Equal(t, DefaultFarmerID, cfg.DefaultFarmerID)
	assert.Equal(t, time.Duration(0), cfg.SessionTTL)
	assert.True(t, cfg.IsDevelopment())
	assert.True(t, cfg.EnableTestRoutes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_STORE", " Redis ")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("SESSION_IDLE_SWEEP", "not-a-duration")
	t.Setenv("USE_MEMORY_STORE", "true")
	t.Setenv("WHATSAPP_PROVIDER", "TWILIO")

	cfg := Load()

	assert.Equal(t, SessionStoreRedis, cfg.SessionStore)
	assert.Equal(t, 45*time.Minute, cfg.SessionTTL)
	assert.Equal(t, time.Duration(0), cfg.SessionIdleSweep)
	assert.True(t, cfg.UseMemoryStore)
	assert.Equal(t, "twilio", cfg.WhatsAppProvider)
	assert.False(t, cfg.EnableTestRoutes)
	assert.Equal(t, "In-Memory (Testing)", cfg.StorageType())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{SessionStore: SessionStoreMemory, DefaultFarmerID: DefaultFarmerID}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"redis", func(c *Config) { c.SessionStore = SessionStoreRedis }, false},
		{"postgres with database", func(c *Config) { c.SessionStore = SessionStorePostgres }, false},
		{"postgres with memory catalog", func(c *Config) {
			c.SessionStore = SessionStorePostgres
			c.UseMemoryStore = true
		}, true},
		{"unknown store", func(c *Config) { c.SessionStore = "etcd" }, true},
		{"bad farmer id", func(c *Config) { c.DefaultFarmerID = "farmer-1" }, true},
		{"negative ttl", func(c *Config) { c.SessionTTL = -time.Second }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
