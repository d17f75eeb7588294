package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSignedApp(secret string) *fiber.App {
	app := fiber.New()
	app.Post("/webhook", ValidateMetaSignature(secret), func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	return app
}

func TestValidateMetaSignature(t *testing.T) {
	body := `{"object":"whatsapp_business_account"}`

	tests := []struct {
		name      string
		secret    string
		signature string
		want      int
	}{
		{"disabled without secret", "", "", fiber.StatusOK},
		{"valid signature", "s3cret", SignBody("s3cret", []byte(body)), fiber.StatusOK},
		{"missing header", "s3cret", "", fiber.StatusUnauthorized},
		{"wrong secret", "s3cret", SignBody("other", []byte(body)), fiber.StatusUnauthorized},
		{"missing prefix", "s3cret", strings.TrimPrefix(SignBody("s3cret", []byte(body)), "sha256="), fiber.StatusUnauthorized},
		{"not hex", "s3cret", "sha256=zzzz", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/webhook", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			if tt.signature != "" {
				req.Header.Set(SignatureHeader, tt.signature)
			}

			resp, err := newSignedApp(tt.secret).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)

			if tt.want == fiber.StatusOK {
				got, _ := io.ReadAll(resp.Body)
				assert.Equal(t, "OK", string(got))
			}
		})
	}
}

func TestSignBody(t *testing.T) {
	sig := SignBody("key", []byte("payload"))
	assert.True(t, strings.HasPrefix(sig, "sha256="))
	assert.Len(t, sig, len("sha256=")+64)
	assert.True(t, validSignature("key", sig, []byte("payload")))
	assert.False(t, validSignature("key", sig, []byte("payload2")))
}
