// Package handlertest builds fiber apps and hosts for handler tests.
package handlertest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/jdeb-project/jdeb/internal/auth"
	"github.com/jdeb-project/jdeb/internal/blocker"
	"github.com/jdeb-project/jdeb/internal/config"
	"github.com/jdeb-project/jdeb/internal/db/dbtest"
	"github.com/jdeb-project/jdeb/internal/db/models"
	"github.com/jdeb-project/jdeb/internal/hooks"
	"github.com/jdeb-project/jdeb/internal/i18n"
	"github.com/jdeb-project/jdeb/internal/nonce"
	"github.com/jdeb-project/jdeb/internal/plugin"
	"github.com/jdeb-project/jdeb/internal/web/handler"
	"github.com/jdeb-project/jdeb/internal/web/session"
)

const (
	// AdminSession is the session id of the seeded administrator.
	AdminSession = "admin-session"
	// SubscriberSession is the session id of the seeded subscriber.
	SubscriberSession = "subscriber-session"
	// Password of both seeded users.
	Password = "s3cr3t"
)

// Views is a minimal fiber.Views engine. It writes the template name followed by the
// data map as sorted key=value lines, so tests can assert what a handler rendered.
type Views struct{}

// Load implements fiber.Views.
func (Views) Load() error { return nil }

// Render implements fiber.Views.
func (Views) Render(w io.Writer, name string, data interface{}, _ ...string) error {
	_, _ = io.WriteString(w, name+"\n")

	m, ok := data.(fiber.Map)
	if !ok {
		return nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "%s=%v\n", k, m[k])
	}

	return nil
}

// NewApp returns a fiber app rendering with Views.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{Views: Views{}})
}

// NewConfig returns a valid config for tests.
func NewConfig() *config.Config {
	return &config.Config{
		Title: "Test Blocker",
		Webserver: config.Webserver{
			URL:         "http://localhost",
			Port:        3000,
			NonceSecret: "test-secret",
			Session:     config.Session{ExpiryTime: config.Duration{Duration: time.Minute}},
		},
		Plugin: config.Plugin{Name: plugin.DefaultName, Version: "9.9.9"},
		API:    config.API{AllowOrigins: "*"},
	}
}

// NewHost wires a plugin against an in-memory database, seeds an administrator and
// a subscriber and writes a session for each of them.
func NewHost(t *testing.T, cfg *config.Config) *handler.Host {
	t.Helper()

	db := dbtest.Open(t)

	nonces, err := nonce.New(cfg.Webserver.NonceSecret, time.Hour)
	require.NoError(t, err)

	text, err := i18n.New(cfg.Plugin.Name, "en")
	require.NoError(t, err)

	hookHost := hooks.NewHost()
	p := plugin.New(plugin.Options{
		Name:     cfg.Plugin.Name,
		Version:  cfg.Plugin.Version,
		DB:       db,
		Nonces:   nonces,
		Text:     text,
		Filters:  hookHost,
		CheckURL: "/api/v1/check",
	})
	p.Run(hookHost)

	classifier := blocker.NewFromLists([]string{"mailinator.com"}, []string{"gmail.com"})

	session.Init(nil)

	local := auth.NewLocalProvider(db)

	admin, err := local.CreateUser(t.Context(), "admin", "admin@example.com", Password, models.RoleAdministrator)
	require.NoError(t, err)
	require.NoError(t, (&session.Data{User: *admin}).Write(AdminSession, time.Minute))

	sub, err := local.CreateUser(t.Context(), "reader", "reader@example.com", Password, models.RoleSubscriber)
	require.NoError(t, err)
	require.NoError(t, (&session.Data{User: *sub}).Write(SubscriberSession, time.Minute))

	return &handler.Host{
		DB:         db,
		Hooks:      hookHost,
		Plugin:     p,
		Nonces:     nonces,
		Text:       text,
		Classifier: classifier,
		Auth:       auth.NewService(db),
		StaticURL:  handler.StaticPath,
	}
}

// Do performs req against app, with the session cookie when sessionID is set.
func Do(t *testing.T, app *fiber.App, req *http.Request, sessionID string) *http.Response {
	t.Helper()

	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionID})
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

// Get performs a GET request.
func Get(t *testing.T, app *fiber.App, target, sessionID string) *http.Response {
	t.Helper()

	return Do(t, app, httptest.NewRequest(http.MethodGet, target, nil), sessionID)
}

// PostForm performs a form encoded POST request.
func PostForm(t *testing.T, app *fiber.App, target string, form url.Values, sessionID string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	return Do(t, app, req, sessionID)
}

// Body reads the response body.
func Body(t *testing.T, resp *http.Response) string {
	t.Helper()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(b)
}
