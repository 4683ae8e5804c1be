// Package blocker classifies email addresses as disposable or webmail and decides,
// based on the settings record, whether a form should reject them.
package blocker

import (
	"bufio"
	"embed"
	"io"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/net/idna"

	"github.com/jdeb-project/jdeb/internal/db/controller/jdeb"
)

//go:embed lists/*.txt
var embeddedLists embed.FS

const (
	// ReasonInvalid marks an address that could not be parsed.
	ReasonInvalid = "invalid"
	// ReasonDisposable marks a disposable provider.
	ReasonDisposable = "disposable"
	// ReasonWebmail marks a free webmail provider.
	ReasonWebmail = "webmail"
	// ReasonOK marks any other address.
	ReasonOK = "ok"

	actionBlock = "block"
	actionWarn  = "warn"
	actionAllow = "allow"
)

var (
	checksOnce sync.Once
	checks     *prometheus.CounterVec //nolint:gochecknoglobals
)

func checkCounter() *prometheus.CounterVec {
	checksOnce.Do(func() {
		checks = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jdeb_email_checks_total",
				Help: "Number of classified email addresses, by reason and action.",
			},
			[]string{"reason", "action"},
		)
	})

	return checks
}

// Result is the classification of an address.
type Result struct {
	Email      string `json:"email"`
	Domain     string `json:"domain"`
	Valid      bool   `json:"valid"`
	Disposable bool   `json:"disposable"`
	Webmail    bool   `json:"webmail"`
}

// Reason returns the strongest classification of r.
func (r Result) Reason() string {
	switch {
	case !r.Valid:
		return ReasonInvalid
	case r.Disposable:
		return ReasonDisposable
	case r.Webmail:
		return ReasonWebmail
	default:
		return ReasonOK
	}
}

// Verdict tells the form what to do with an address.
type Verdict struct {
	Block   bool   `json:"block"`
	Warn    bool   `json:"warn"`
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

// Classifier matches domains against the disposable and webmail lists.
type Classifier struct {
	disposable map[string]struct{}
	webmail    map[string]struct{}
}

// New returns a Classifier using the embedded lists.
func New() (*Classifier, error) {
	disposable, err := readEmbedded("lists/disposable.txt")
	if err != nil {
		return nil, err
	}

	webmail, err := readEmbedded("lists/webmail.txt")
	if err != nil {
		return nil, err
	}

	return NewFromLists(disposable, webmail), nil
}

// NewFromLists returns a Classifier for the given domains.
func NewFromLists(disposable, webmail []string) *Classifier {
	c := &Classifier{
		disposable: make(map[string]struct{}, len(disposable)),
		webmail:    make(map[string]struct{}, len(webmail)),
	}

	for _, d := range disposable {
		if n, err := normalizeDomain(d); err == nil {
			c.disposable[n] = struct{}{}
		}
	}

	for _, d := range webmail {
		if n, err := normalizeDomain(d); err == nil {
			c.webmail[n] = struct{}{}
		}
	}

	return c
}

func readEmbedded(name string) ([]string, error) {
	f, err := embeddedLists.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseList(f)
}

// ParseList reads one domain per line. Blank lines and # comments are skipped.
func ParseList(r io.Reader) ([]string, error) {
	var out []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}

		if line != "" {
			out = append(out, line)
		}
	}

	return out, scanner.Err()
}

// Size returns the number of disposable and webmail domains.
func (c *Classifier) Size() (disposable, webmail int) {
	return len(c.disposable), len(c.webmail)
}

// Classify parses email and looks its domain up. Parent domains match,
// so a.mailinator.com is disposable.
func (c *Classifier) Classify(email string) Result {
	r := Result{Email: strings.TrimSpace(email)}

	at := strings.LastIndexByte(r.Email, '@')
	if at <= 0 || at == len(r.Email)-1 {
		return r
	}

	domain, err := normalizeDomain(r.Email[at+1:])
	if err != nil || !strings.Contains(domain, ".") {
		return r
	}

	r.Domain = domain
	r.Valid = true
	r.Disposable = lookup(c.disposable, domain)
	r.Webmail = !r.Disposable && lookup(c.webmail, domain)

	return r
}

// Check classifies email, decides with s and counts the outcome.
func (c *Classifier) Check(email string, s *jdeb.Settings) (Result, Verdict) {
	r := c.Classify(email)
	v := Decide(r, s)

	action := actionAllow

	switch {
	case v.Block:
		action = actionBlock
	case v.Warn:
		action = actionWarn
	}

	checkCounter().WithLabelValues(v.Reason, action).Inc()

	return r, v
}

// Decide applies the settings to a classification. Disposable addresses are always
// blocked, webmail addresses are blocked when webmail_block is on and warned about otherwise.
func Decide(r Result, s *jdeb.Settings) Verdict {
	if s == nil {
		d := jdeb.Defaults()
		s = &d
	}

	v := Verdict{Reason: r.Reason()}

	switch v.Reason {
	case ReasonDisposable:
		v.Block = true
		v.Message = s.DisposableMessage
	case ReasonWebmail:
		v.Block = s.WebmailBlocked()
		v.Warn = !v.Block
		v.Message = s.WebmailMessage
	}

	return v
}

func normalizeDomain(domain string) (string, error) {
	domain = strings.TrimSuffix(strings.TrimSpace(domain), ".")

	return idna.Lookup.ToASCII(strings.ToLower(domain))
}

func lookup(set map[string]struct{}, domain string) bool {
	for {
		if _, ok := set[domain]; ok {
			return true
		}

		i := strings.IndexByte(domain, '.')
		if i < 0 {
			return false
		}

		domain = domain[i+1:]
		if !strings.Contains(domain, ".") {
			// never match on a bare top level domain
			return false
		}
	}
}
