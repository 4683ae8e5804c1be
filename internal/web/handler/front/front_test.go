package front

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdeb-project/jdeb/internal/db/controller/jdeb"
	"github.com/jdeb-project/jdeb/internal/web/handler/handlertest"
)

func TestGet(t *testing.T) {
	cfg := handlertest.NewConfig()
	host := handlertest.NewHost(t, cfg)
	app := handlertest.NewApp()

	var s Service
	require.NoError(t, s.Init(app, cfg, host))

	custom := jdeb.Settings{DisposableMessage: "No throwaways", WebmailMessage: "Use work mail", WebmailBlock: jdeb.On}
	require.NoError(t, custom.Save(context.Background(), host.DB))

	resp := handlertest.Get(t, app, "/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := handlertest.Body(t, resp)
	assert.Contains(t, body, "Title=Test Blocker")
	assert.Contains(t, body, `"disposable_message":"No throwaways"`)
	assert.Contains(t, body, `"webmail_block":"on"`)
	assert.Contains(t, body, "disposable-email-blocker.min.js?ver=9.9.9")
}

func TestGetCorruptRecordFallsBackToDefaults(t *testing.T) {
	cfg := handlertest.NewConfig()
	host := handlertest.NewHost(t, cfg)
	app := handlertest.NewApp()

	var s Service
	require.NoError(t, s.Init(app, cfg, host))

	require.NoError(t, host.DB.Exec("INSERT INTO settings (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)",
		jdeb.OptionName, []byte("{not json")).Error)

	resp := handlertest.Get(t, app, "/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, handlertest.Body(t, resp), `"webmail_block":"off"`)
}
