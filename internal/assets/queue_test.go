package assets

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL(t *testing.T) {
	q := NewQueue("/static")

	assert.Equal(t, "/static/public/js/app.js?ver=1.0.0", q.URL("public/js/app.js", "1.0.0"))
	assert.Equal(t, "/other/app.js?ver=1.0.0", q.URL("/other/app.js", "1.0.0"))
	assert.Equal(t, "https://cdn.example.com/a.js?x=1&ver=2", q.URL("https://cdn.example.com/a.js?x=1", "2"))
	assert.Equal(t, "/static/a.js", q.URL("a.js", ""))
}

func TestEnqueueDeduplicates(t *testing.T) {
	q := NewQueue("/static/")
	q.EnqueueScript("app", "a.js", nil, "1", false)
	q.EnqueueScript("app", "b.js", nil, "2", false)
	q.EnqueueStyle("app", "a.css", nil, "1", "")
	q.EnqueueStyle("app", "b.css", nil, "1", "print")

	assert.Equal(t, []string{"app"}, q.ScriptHandles())
	assert.Equal(t, []string{"app"}, q.StyleHandles())

	s, ok := q.Script("app")
	require.True(t, ok)
	assert.Equal(t, "a.js", s.Src)

	st, ok := q.Style("app")
	require.True(t, ok)
	assert.Equal(t, "all", st.Media)

	_, ok = q.Script("missing")
	assert.False(t, ok)

	_, ok = q.Style("missing")
	assert.False(t, ok)
}

func TestDependencyOrder(t *testing.T) {
	q := NewQueue("/static/")
	q.EnqueueScript("app", "app.js", []string{"lib", "unknown"}, "1", false)
	q.EnqueueScript("lib", "lib.js", []string{"core"}, "1", false)
	q.EnqueueScript("core", "core.js", nil, "1", false)
	q.EnqueueScript("loop-a", "a.js", []string{"loop-b"}, "1", false)
	q.EnqueueScript("loop-b", "b.js", []string{"loop-a"}, "1", false)

	assert.Equal(t, []string{"core", "lib", "app", "loop-b", "loop-a"}, q.ScriptHandles())

	q.EnqueueStyle("theme", "theme.css", []string{"base"}, "1", "all")
	q.EnqueueStyle("base", "base.css", nil, "1", "all")

	assert.Equal(t, []string{"base", "theme"}, q.StyleHandles())
}

func TestLocalizeScript(t *testing.T) {
	q := NewQueue("/static/")

	err := q.LocalizeScript("app", "settings", map[string]string{"a": "b"})
	require.ErrorIs(t, err, ErrUnknownHandle)

	q.EnqueueScript("app", "app.js", nil, "1.0.0", false)

	err = q.LocalizeScript("app", "not valid", nil)
	require.ErrorIs(t, err, ErrInvalidObjectName)

	require.NoError(t, q.LocalizeScript("app", "jdeb_settings", map[string]string{"msg": "</script><b>"}))

	out, err := q.Scripts()
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `<script id="app-js-extra">var jdeb_settings = {"msg":"\u003c/script\u003e\u003cb\u003e"};</script>`)
	assert.Contains(t, html, `<script id="app-js" src="/static/app.js?ver=1.0.0"></script>`)
	assert.Less(t, strings.Index(html, "app-js-extra"), strings.Index(html, `id="app-js"`))
}

func TestLocalizeScriptMarshalError(t *testing.T) {
	q := NewQueue("/static/")
	q.EnqueueScript("app", "app.js", nil, "1", false)
	require.NoError(t, q.LocalizeScript("app", "broken", map[string]any{"ch": make(chan int)}))

	_, err := q.Scripts()
	require.Error(t, err)
}

func TestStyles(t *testing.T) {
	q := NewQueue("/static/")
	q.EnqueueStyle("plugin", "admin/css/plugin.css", nil, "1.0.0", "all")

	assert.Equal(t,
		`<link rel="stylesheet" id="plugin-css" href="/static/admin/css/plugin.css?ver=1.0.0" media="all" />`+"\n",
		string(q.Styles()),
	)
}

func TestContentHash(t *testing.T) {
	fsys := fstest.MapFS{
		"a.js": {Data: []byte("a")},
		"b.js": {Data: []byte("b")},
	}

	h := ContentHash(fsys, "a.js", "b.js")
	assert.Len(t, h, 10)
	assert.Equal(t, h, ContentHash(fsys, "a.js", "b.js", "missing.js"))
	assert.NotEqual(t, h, ContentHash(fsys, "a.js"))
}
