package i18n

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

const domain = "javascript-disposable-email-blocker"

func TestEmbeddedCatalogs(t *testing.T) {
	d, err := New(domain, "en")
	require.NoError(t, err)
	assert.False(t, d.Loaded())

	require.NoError(t, d.Load())
	require.NoError(t, d.Load())
	assert.True(t, d.Loaded())
	assert.Equal(t, domain, d.Domain())

	langs := d.Languages()
	assert.Equal(t, language.English, langs[0])
	assert.Contains(t, langs, language.German)
	assert.Contains(t, langs, language.French)

	assert.Equal(t, "Konfiguration", d.Translate(language.German, "Configuration"))
	assert.Equal(t, "Configuration", d.Translate(language.English, "Configuration"))
	assert.Equal(t, "Configuration", d.Translate(language.Und, "Configuration"))
	assert.Equal(t, "not translated", d.Translate(language.German, "not translated"))
	assert.Equal(t, "100% sure", d.Translate(language.German, "100% sure"))
}

func TestMatch(t *testing.T) {
	d, err := New(domain, "en")
	require.NoError(t, err)
	require.NoError(t, d.Load())

	testCases := []struct {
		header string
		want   language.Tag
	}{
		{header: "de-DE,de;q=0.9,en;q=0.8", want: language.German},
		{header: "fr-CH, fr;q=0.9", want: language.French},
		{header: "ja", want: language.English},
		{header: "", want: language.English},
		{header: "%%%", want: language.English},
	}

	for _, tc := range testCases {
		t.Run(tc.header, func(t *testing.T) {
			assert.Equal(t, tc.want, d.Match(tc.header))
		})
	}
}

func TestContextLanguage(t *testing.T) {
	d, err := New(domain, "en")
	require.NoError(t, err)
	require.NoError(t, d.Load())

	ctx := context.Background()
	assert.Equal(t, language.Und, LanguageFrom(ctx))
	assert.Equal(t, "Webmail Block", d.T(ctx, "Webmail Block"))

	ctx = WithLanguage(ctx, language.French)
	assert.Equal(t, language.French, LanguageFrom(ctx))
	assert.Equal(t, "Bloquer les webmails", d.T(ctx, "Webmail Block"))
}

func TestLoadErrors(t *testing.T) {
	_, err := New(domain, "not a locale!")
	require.Error(t, err)

	broken := fstest.MapFS{
		"languages/" + domain + "-de.json": {Data: []byte(`{"a":`)},
	}

	d, err := NewFS(domain, "en", broken)
	require.NoError(t, err)
	require.Error(t, d.Load())

	badTag := fstest.MapFS{
		"languages/" + domain + "-!!.json": {Data: []byte(`{}`)},
	}

	d, err = NewFS(domain, "en", badTag)
	require.NoError(t, err)
	require.Error(t, d.Load())
}
