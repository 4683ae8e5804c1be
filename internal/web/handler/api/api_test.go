package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdeb-project/jdeb/internal/blocker"
	"github.com/jdeb-project/jdeb/internal/config"
	"github.com/jdeb-project/jdeb/internal/db/controller/jdeb"
	"github.com/jdeb-project/jdeb/internal/plugin/public"
	"github.com/jdeb-project/jdeb/internal/web/handler"
	"github.com/jdeb-project/jdeb/internal/web/handler/handlertest"
)

func newTestService(t *testing.T, mutate func(cfg *config.Config)) (*fiber.App, *handler.Host) {
	t.Helper()

	cfg := handlertest.NewConfig()
	if mutate != nil {
		mutate(cfg)
	}

	host := handlertest.NewHost(t, cfg)
	app := handlertest.NewApp()

	var s Service
	require.NoError(t, s.Init(app, cfg, host))

	return app, host
}

func TestCheck(t *testing.T) {
	testCases := []struct {
		name     string
		email    string
		settings *jdeb.Settings
		status   int
		verdict  blocker.Verdict
	}{
		{
			name:    "disposable is blocked",
			email:   "someone@mailinator.com",
			status:  http.StatusOK,
			verdict: blocker.Verdict{Block: true, Reason: blocker.ReasonDisposable, Message: jdeb.DefaultDisposableMessage},
		},
		{
			name:    "webmail is warned about by default",
			email:   "someone@gmail.com",
			status:  http.StatusOK,
			verdict: blocker.Verdict{Warn: true, Reason: blocker.ReasonWebmail, Message: jdeb.DefaultWebmailMessage},
		},
		{
			name:     "webmail is blocked when configured",
			email:    "someone@gmail.com",
			settings: &jdeb.Settings{DisposableMessage: "d", WebmailMessage: "w", WebmailBlock: jdeb.On},
			status:   http.StatusOK,
			verdict:  blocker.Verdict{Block: true, Reason: blocker.ReasonWebmail, Message: "w"},
		},
		{
			name:    "company address passes",
			email:   "someone@example.org",
			status:  http.StatusOK,
			verdict: blocker.Verdict{Reason: blocker.ReasonOK},
		},
		{
			name:    "garbage is invalid",
			email:   "not-an-address",
			status:  http.StatusOK,
			verdict: blocker.Verdict{Reason: blocker.ReasonInvalid},
		},
		{
			name:   "missing email",
			status: http.StatusBadRequest,
		},
		{
			name:   "too long email",
			email:  strings.Repeat("a", 250) + "@example.org",
			status: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app, host := newTestService(t, nil)

			if tc.settings != nil {
				require.NoError(t, tc.settings.Save(context.Background(), host.DB))
			}

			resp := handlertest.Get(t, app, CheckPath+"?email="+tc.email, "")
			require.Equal(t, tc.status, resp.StatusCode)

			if tc.status != http.StatusOK {
				var out ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
				assert.False(t, out.Success)
				assert.NotEmpty(t, out.Message)

				return
			}

			assert.Equal(t, "no-store", resp.Header.Get(fiber.HeaderCacheControl))

			var out CheckResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			assert.Equal(t, tc.verdict, out.Verdict)
			assert.Equal(t, tc.verdict.Reason != blocker.ReasonInvalid, out.Valid)
		})
	}
}

func TestCheckTranslatesDefaultMessage(t *testing.T) {
	app, host := newTestService(t, nil)
	require.NoError(t, host.Text.Load())

	req := httptest.NewRequest(http.MethodGet, CheckPath+"?email=x@mailinator.com", nil)
	req.Header.Set(fiber.HeaderAcceptLanguage, "de-DE,de;q=0.9")

	resp := handlertest.Do(t, app, req, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out CheckResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Missbrauch: Bitte verwenden Sie keine Wegwerf-E-Mail-Adressen.", out.Verdict.Message)
}

func TestSettings(t *testing.T) {
	app, host := newTestService(t, nil)
	require.NoError(t, (&jdeb.Settings{DisposableMessage: "d", WebmailMessage: "w", WebmailBlock: jdeb.On}).
		Save(context.Background(), host.DB))

	resp := handlertest.Get(t, app, SettingsPath, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out public.Config
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, public.Config{
		DisposableMessage: "d",
		WebmailMessage:    "w",
		WebmailBlock:      jdeb.On,
		CheckURL:          "/api/v1/check",
	}, out)
}

func TestCORS(t *testing.T) {
	app, _ := newTestService(t, func(cfg *config.Config) {
		cfg.API.AllowOrigins = "https://shop.example.org, https://blog.example.org"
	})

	req := httptest.NewRequest(http.MethodGet, SettingsPath, nil)
	req.Header.Set(fiber.HeaderOrigin, "https://blog.example.org")

	resp := handlertest.Do(t, app, req, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://blog.example.org", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}

func TestRateLimit(t *testing.T) {
	app, _ := newTestService(t, func(cfg *config.Config) {
		cfg.API.RateLimit = 2
	})

	for range 2 {
		resp := handlertest.Get(t, app, SettingsPath, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := handlertest.Get(t, app, SettingsPath, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestAllowOrigins(t *testing.T) {
	assert.Equal(t, "*", allowOrigins(""))
	assert.Equal(t, "https://a.org,https://b.org", allowOrigins(" https://a.org , https://b.org"))
}

func TestSettingsTranslatesDefaults(t *testing.T) {
	app, host := newTestService(t, nil)
	require.NoError(t, host.Text.Load())

	req := httptest.NewRequest(http.MethodGet, SettingsPath, nil)
	req.Header.Set(fiber.HeaderAcceptLanguage, "de")

	resp := handlertest.Do(t, app, req, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out public.Config
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Missbrauch: Bitte verwenden Sie keine Wegwerf-E-Mail-Adressen.", out.DisposableMessage)
	assert.Equal(t, jdeb.Off, out.WebmailBlock)
}
