package blocker

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdeb-project/jdeb/internal/db/controller/jdeb"
)

func TestParseList(t *testing.T) {
	list, err := ParseList(strings.NewReader("# comment\n\nmailinator.com\n  yopmail.com # inline\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"mailinator.com", "yopmail.com"}, list)
}

func TestEmbeddedLists(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	disposable, webmail := c.Size()
	assert.Greater(t, disposable, 50)
	assert.Greater(t, webmail, 20)
}

func TestClassify(t *testing.T) {
	c := NewFromLists(
		[]string{"mailinator.com", "yopmail.com", "bücher-wegwerf.de"},
		[]string{"gmail.com", "web.de"},
	)

	testCases := []struct {
		name  string
		email string
		want  Result
	}{
		{
			name:  "disposable",
			email: "john@mailinator.com",
			want:  Result{Email: "john@mailinator.com", Domain: "mailinator.com", Valid: true, Disposable: true},
		},
		{
			name:  "disposable parent domain",
			email: "john@a.b.mailinator.com",
			want:  Result{Email: "john@a.b.mailinator.com", Domain: "a.b.mailinator.com", Valid: true, Disposable: true},
		},
		{
			name:  "case and whitespace",
			email: "  John@YopMail.COM ",
			want:  Result{Email: "John@YopMail.COM", Domain: "yopmail.com", Valid: true, Disposable: true},
		},
		{
			name:  "idn domain",
			email: "x@Bücher-Wegwerf.de",
			want:  Result{Email: "x@Bücher-Wegwerf.de", Domain: "xn--bcher-wegwerf-wob.de", Valid: true, Disposable: true},
		},
		{
			name:  "webmail",
			email: "jane@gmail.com",
			want:  Result{Email: "jane@gmail.com", Domain: "gmail.com", Valid: true, Webmail: true},
		},
		{
			name:  "professional",
			email: "jane@example.com",
			want:  Result{Email: "jane@example.com", Domain: "example.com", Valid: true},
		},
		{
			name:  "trailing dot",
			email: "jane@gmail.com.",
			want:  Result{Email: "jane@gmail.com.", Domain: "gmail.com", Valid: true, Webmail: true},
		},
		{
			name:  "no at",
			email: "jane.example.com",
			want:  Result{Email: "jane.example.com"},
		},
		{
			name:  "empty local part",
			email: "@gmail.com",
			want:  Result{Email: "@gmail.com"},
		},
		{
			name:  "empty domain",
			email: "jane@",
			want:  Result{Email: "jane@"},
		},
		{
			name:  "no dot in domain",
			email: "jane@localhost",
			want:  Result{Email: "jane@localhost"},
		},
		{
			name:  "tld only does not match",
			email: "jane@com.",
			want:  Result{Email: "jane@com."},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Classify(tc.email))
		})
	}
}

func TestDecide(t *testing.T) {
	defaults := jdeb.Defaults()
	blocking := jdeb.Settings{DisposableMessage: "no trash", WebmailMessage: "no webmail", WebmailBlock: jdeb.On}

	testCases := []struct {
		name     string
		result   Result
		settings *jdeb.Settings
		want     Verdict
	}{
		{
			name:     "invalid",
			result:   Result{},
			settings: &defaults,
			want:     Verdict{Reason: ReasonInvalid},
		},
		{
			name:     "disposable always blocked",
			result:   Result{Valid: true, Disposable: true},
			settings: &defaults,
			want:     Verdict{Block: true, Reason: ReasonDisposable, Message: jdeb.DefaultDisposableMessage},
		},
		{
			name:     "webmail warned when toggle off",
			result:   Result{Valid: true, Webmail: true},
			settings: &defaults,
			want:     Verdict{Warn: true, Reason: ReasonWebmail, Message: jdeb.DefaultWebmailMessage},
		},
		{
			name:     "webmail blocked when toggle on",
			result:   Result{Valid: true, Webmail: true},
			settings: &blocking,
			want:     Verdict{Block: true, Reason: ReasonWebmail, Message: "no webmail"},
		},
		{
			name:     "ok",
			result:   Result{Valid: true},
			settings: &blocking,
			want:     Verdict{Reason: ReasonOK},
		},
		{
			name:   "nil settings use defaults",
			result: Result{Valid: true, Disposable: true},
			want:   Verdict{Block: true, Reason: ReasonDisposable, Message: jdeb.DefaultDisposableMessage},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.result, tc.settings))
		})
	}
}

func TestCheckCounts(t *testing.T) {
	c := NewFromLists([]string{"mailinator.com"}, nil)
	s := jdeb.Defaults()

	before := testutil.ToFloat64(checkCounter().WithLabelValues(ReasonDisposable, actionBlock))

	r, v := c.Check("a@mailinator.com", &s)
	assert.True(t, r.Disposable)
	assert.True(t, v.Block)

	after := testutil.ToFloat64(checkCounter().WithLabelValues(ReasonDisposable, actionBlock))
	assert.InDelta(t, before+1, after, 0.0001)
}
