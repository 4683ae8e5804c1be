package jdeb

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdeb-project/jdeb/internal/db/controller/setting"
	"github.com/jdeb-project/jdeb/internal/db/dbtest"
)

func TestDefaults(t *testing.T) {
	d := Defaults()

	assert.Equal(t, "Abuses, strongly encourage you to stop using disposable email.", d.DisposableMessage)
	assert.Equal(t,
		"Warning, You can create an account with this email address, but we strongly encourage you to use a professional email address.",
		d.WebmailMessage,
	)
	assert.Equal(t, Off, d.WebmailBlock)
	assert.False(t, d.WebmailBlocked())
	require.NoError(t, d.Validate())
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name    string
		stored  string
		want    Settings
		wantErr error
	}{
		{
			name: "missing option reads defaults",
			want: Defaults(),
		},
		{
			name:   "missing keys read defaults",
			stored: `{"webmail_block":"on"}`,
			want: Settings{
				DisposableMessage: DefaultDisposableMessage,
				WebmailMessage:    DefaultWebmailMessage,
				WebmailBlock:      On,
			},
		},
		{
			name:   "full record",
			stored: `{"disposable_message":"no","webmail_message":"hm","webmail_block":"off"}`,
			want:   Settings{DisposableMessage: "no", WebmailMessage: "hm", WebmailBlock: Off},
		},
		{
			name:    "corrupt record",
			stored:  `{"disposable_message":`,
			want:    Defaults(),
			wantErr: ErrCorruptRecord,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := dbtest.Open(t)

			if tc.stored != "" {
				require.NoError(t, setting.Set(ctx, db, OptionName, []byte(tc.stored)))
			}

			s, err := Load(ctx, db)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}

			require.NotNil(t, s)
			assert.Equal(t, tc.want, *s)
		})
	}
}

func TestLoadNilDB(t *testing.T) {
	_, err := Load(context.Background(), nil)
	require.ErrorIs(t, err, setting.ErrDBNil)
}

func TestSaveExistsDelete(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)

	ok, err := Exists(ctx, db)
	require.NoError(t, err)
	assert.False(t, ok)

	s := Settings{DisposableMessage: `say "no"`, WebmailMessage: "<b>careful</b>", WebmailBlock: On}
	require.NoError(t, s.Save(ctx, db))

	ok, err = Exists(ctx, db)
	require.NoError(t, err)
	assert.True(t, ok)

	loaded, err := Load(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, s, *loaded)
	assert.True(t, loaded.WebmailBlocked())

	require.NoError(t, Delete(ctx, db))
	require.NoError(t, Delete(ctx, db), "deleting a missing record is a no-op")

	ok, err = Exists(ctx, db)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFromForm(t *testing.T) {
	form := url.Values{}
	form.Set("jdeb_settings[disposable_message]", "d")
	form.Set("jdeb_settings[webmail_message]", "w")

	s := FromForm(form.Get)
	assert.Equal(t, Settings{DisposableMessage: "d", WebmailMessage: "w", WebmailBlock: Off}, s)

	form.Set("jdeb_settings[webmail_block]", "on")
	assert.Equal(t, On, FromForm(form.Get).WebmailBlock)
}

func TestSanitize(t *testing.T) {
	testCases := []struct {
		name string
		in   Settings
		want Settings
	}{
		{
			name: "trim and keep",
			in:   Settings{DisposableMessage: "  stop  ", WebmailMessage: "\thello\n", WebmailBlock: "on"},
			want: Settings{DisposableMessage: "stop", WebmailMessage: "hello", WebmailBlock: On},
		},
		{
			name: "empty messages fall back to defaults",
			in:   Settings{DisposableMessage: "   ", WebmailMessage: "", WebmailBlock: ""},
			want: Defaults(),
		},
		{
			name: "toggle is strict",
			in:   Settings{DisposableMessage: "a", WebmailMessage: "b", WebmailBlock: "yes"},
			want: Settings{DisposableMessage: "a", WebmailMessage: "b", WebmailBlock: Off},
		},
		{
			name: "toggle is case insensitive",
			in:   Settings{DisposableMessage: "a", WebmailMessage: "b", WebmailBlock: " ON "},
			want: Settings{DisposableMessage: "a", WebmailMessage: "b", WebmailBlock: On},
		},
		{
			name: "control characters are removed",
			in:   Settings{DisposableMessage: "no\x00 way\x07", WebmailMessage: "b", WebmailBlock: Off},
			want: Settings{DisposableMessage: "no way", WebmailMessage: "b", WebmailBlock: Off},
		},
		{
			name: "nfc normalised",
			in:   Settings{DisposableMessage: "Cafe\u0301", WebmailMessage: "b", WebmailBlock: Off},
			want: Settings{DisposableMessage: "Caf\u00e9", WebmailMessage: "b", WebmailBlock: Off},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Sanitize()
			assert.Equal(t, tc.want, got)
			require.NoError(t, got.Validate())
		})
	}
}

func TestValidateMessageLength(t *testing.T) {
	s := Defaults()
	s.DisposableMessage = strings.Repeat("ü", MaxMessageLength)
	require.NoError(t, s.Validate())

	s.DisposableMessage += "ü"
	require.Error(t, s.Validate())

	s = Defaults()
	s.WebmailBlock = "maybe"
	require.Error(t, s.Validate())
}
