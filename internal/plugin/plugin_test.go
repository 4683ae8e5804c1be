package plugin

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jdeb-project/jdeb/internal/assets"
	"github.com/jdeb-project/jdeb/internal/db/controller/jdeb"
	"github.com/jdeb-project/jdeb/internal/db/dbtest"
	"github.com/jdeb-project/jdeb/internal/hooks"
	"github.com/jdeb-project/jdeb/internal/i18n"
	"github.com/jdeb-project/jdeb/internal/nonce"
	"github.com/jdeb-project/jdeb/internal/plugin/admin"
	"github.com/jdeb-project/jdeb/internal/plugin/public"
	"github.com/jdeb-project/jdeb/internal/settingsapi"
)

func newTestPlugin(t *testing.T) (*Plugin, *hooks.Host, *gorm.DB, *nonce.Manager) {
	t.Helper()

	db := dbtest.Open(t)

	nonces, err := nonce.New("plugin-secret", time.Hour)
	require.NoError(t, err)

	text, err := i18n.New(DefaultName, "en")
	require.NoError(t, err)

	host := hooks.NewHost()
	p := New(Options{
		DB:       db,
		Nonces:   nonces,
		Text:     text,
		Filters:  host,
		CheckURL: "/api/v1/check",
	})
	p.Run(host)

	return p, host, db, nonces
}

func TestNewDefaults(t *testing.T) {
	p := New(Options{})

	assert.Equal(t, DefaultName, p.Name())
	assert.Equal(t, DefaultVersion, p.Version())
	assert.Empty(t, p.Loader().Filters())

	// no text domain, no plugins_loaded binding
	for _, b := range p.Loader().Actions() {
		assert.NotEqual(t, hooks.PluginsLoaded, b.Event)
	}
}

func TestEveryActionIsFired(t *testing.T) {
	p, _, _, _ := newTestPlugin(t)

	assert.Empty(t, p.Loader().UnfiredActions())
}

func TestPublicScriptOnlyOnPublicEvents(t *testing.T) {
	p, host, _, _ := newTestPlugin(t)

	var events []hooks.Event

	for _, b := range p.Loader().Actions() {
		if b.Target == "public.enqueue_scripts" {
			events = append(events, b.Event)
		}
	}

	assert.ElementsMatch(t, []hooks.Event{hooks.WPEnqueueScripts, hooks.LoginEnqueueScripts}, events)

	for _, event := range []hooks.Event{hooks.WPEnqueueScripts, hooks.LoginEnqueueScripts} {
		q := assets.NewQueue("/static/")
		require.NoError(t, host.DoAction(context.Background(), event, q, &jdeb.Settings{
			DisposableMessage: "d",
			WebmailMessage:    "w",
			WebmailBlock:      jdeb.On,
		}))

		script, ok := q.Script(DefaultName)
		require.True(t, ok, event)
		assert.Equal(t, public.ScriptSrc, script.Src)
		require.Len(t, script.Localized, 1)
		assert.Equal(t, public.ObjectName, script.Localized[0].Object)
	}

	for _, event := range []hooks.Event{hooks.AdminEnqueueScripts, hooks.AdminMenu, hooks.PluginsLoaded} {
		q := assets.NewQueue("/static/")
		_ = host.DoAction(context.Background(), event, q)

		script, ok := q.Script(DefaultName)
		if ok {
			assert.NotEqual(t, public.ScriptSrc, script.Src, event)
		}
	}
}

func TestAdminHooks(t *testing.T) {
	_, host, _, _ := newTestPlugin(t)
	ctx := context.Background()

	menu := settingsapi.NewMenu()
	require.NoError(t, host.DoAction(ctx, hooks.AdminMenu, menu))

	page, ok := menu.Page(DefaultName)
	require.True(t, ok)
	assert.Equal(t, admin.Capability, page.Capability)

	reg := settingsapi.NewRegistry()
	require.NoError(t, host.DoAction(ctx, hooks.AdminInit, reg, &jdeb.Settings{
		DisposableMessage: "mine",
		WebmailMessage:    "w",
		WebmailBlock:      jdeb.On,
	}))

	_, ok = reg.Setting(admin.OptionGroup)
	assert.True(t, ok)
	require.Len(t, reg.Sections(DefaultName), 1)

	fields := reg.Fields(DefaultName, admin.SectionID)
	require.Len(t, fields, 3)
	assert.Equal(t, "mine", fields[0].Args.Value)
	assert.Equal(t, jdeb.On, fields[2].Args.Checked)

	q := assets.NewQueue("/static/")
	require.NoError(t, host.DoAction(ctx, hooks.AdminEnqueueScripts, q, page.HookSuffix))

	_, ok = q.Style(DefaultName)
	assert.True(t, ok)
	script, ok := q.Script(DefaultName)
	require.True(t, ok)
	assert.Equal(t, admin.ScriptSrc, script.Src)

	other := assets.NewQueue("/static/")
	require.NoError(t, host.DoAction(ctx, hooks.AdminEnqueueScripts, other, "settings_page_something-else"))
	assert.Empty(t, other.ScriptHandles())
	assert.Empty(t, other.StyleHandles())
}

func TestAdminInitWithoutSettingsUsesDefaults(t *testing.T) {
	_, host, _, _ := newTestPlugin(t)

	reg := settingsapi.NewRegistry()
	require.NoError(t, host.DoAction(context.Background(), hooks.AdminInit, reg))

	fields := reg.Fields(DefaultName, admin.SectionID)
	require.Len(t, fields, 3)
	assert.Equal(t, jdeb.DefaultDisposableMessage, fields[0].Args.Value)
}

func TestResetHook(t *testing.T) {
	_, host, db, nonces := newTestPlugin(t)
	ctx := context.Background()

	custom := jdeb.Settings{DisposableMessage: "x", WebmailMessage: "y", WebmailBlock: jdeb.On}
	require.NoError(t, custom.Save(ctx, db))

	require.NoError(t, host.DoAction(ctx, hooks.ResetPluginSettings, &settingsapi.Submission{
		Form:      url.Values{admin.ResetField: {"Reset"}, admin.ResetNonceField: {"bogus"}},
		SessionID: "s",
	}))

	s, err := jdeb.Load(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, custom, *s)

	require.NoError(t, host.DoAction(ctx, hooks.ResetPluginSettings, &settingsapi.Submission{
		Form:      url.Values{admin.ResetField: {"Reset"}, admin.ResetNonceField: {nonces.Create(admin.ResetAction, "s")}},
		SessionID: "s",
	}))

	s, err = jdeb.Load(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, jdeb.Defaults(), *s)
}

func TestPluginsLoadedLoadsTextDomain(t *testing.T) {
	p, host, _, _ := newTestPlugin(t)

	assert.False(t, p.text.Loaded())
	require.NoError(t, host.DoAction(context.Background(), hooks.PluginsLoaded))
	assert.True(t, p.text.Loaded())
}

func TestUnexpectedArgs(t *testing.T) {
	_, host, _, _ := newTestPlugin(t)
	ctx := context.Background()

	testCases := []struct {
		name  string
		event hooks.Event
		args  []any
	}{
		{name: "menu missing", event: hooks.AdminMenu},
		{name: "menu wrong type", event: hooks.AdminMenu, args: []any{"menu"}},
		{name: "registry wrong type", event: hooks.AdminInit, args: []any{42}},
		{name: "settings wrong type", event: hooks.AdminInit, args: []any{settingsapi.NewRegistry(), "settings"}},
		{name: "queue wrong type", event: hooks.WPEnqueueScripts, args: []any{struct{}{}}},
		{name: "suffix wrong type", event: hooks.AdminEnqueueScripts, args: []any{assets.NewQueue("/"), 1}},
		{name: "submission missing", event: hooks.ResetPluginSettings},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := host.DoAction(ctx, tc.event, tc.args...)
			require.ErrorIs(t, err, ErrUnexpectedArg)
		})
	}
}
