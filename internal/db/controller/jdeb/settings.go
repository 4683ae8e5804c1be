// Package jdeb holds the typed settings record of the disposable email blocker
// and its persistence in the option store.
package jdeb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/jdeb-project/jdeb/internal/db/controller/setting"
)

const (
	// OptionName is the option store key of the settings record.
	OptionName = "jdeb_settings"

	// KeyDisposableMessage is the record key of the disposable email message.
	KeyDisposableMessage = "disposable_message"
	// KeyWebmailMessage is the record key of the webmail message.
	KeyWebmailMessage = "webmail_message"
	// KeyWebmailBlock is the record key of the webmail block toggle.
	KeyWebmailBlock = "webmail_block"

	// On is the stored value of an enabled toggle.
	On = "on"
	// Off is the stored value of a disabled toggle.
	Off = "off"

	// DefaultDisposableMessage is shown when a disposable address is entered.
	DefaultDisposableMessage = "Abuses, strongly encourage you to stop using disposable email."
	// DefaultWebmailMessage is shown when a webmail address is entered.
	DefaultWebmailMessage = "Warning, You can create an account with this email address, " +
		"but we strongly encourage you to use a professional email address."

	// MaxMessageLength is the maximum number of runes of a message.
	MaxMessageLength = 500
)

// ErrCorruptRecord is returned by Load when the stored record is not valid JSON.
var ErrCorruptRecord = errors.New("stored settings record is corrupt")

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals

// Settings is the settings record. Every field is always populated.
type Settings struct {
	DisposableMessage string `json:"disposable_message" validate:"required,max=500"`
	WebmailMessage    string `json:"webmail_message"    validate:"required,max=500"`
	WebmailBlock      string `json:"webmail_block"      validate:"oneof=on off"`
}

// stored mirrors Settings with optional keys, absent ones are filled with defaults.
type stored struct {
	DisposableMessage *string `json:"disposable_message"`
	WebmailMessage    *string `json:"webmail_message"`
	WebmailBlock      *string `json:"webmail_block"`
}

// Defaults returns the record written at activation.
func Defaults() Settings {
	return Settings{
		DisposableMessage: DefaultDisposableMessage,
		WebmailMessage:    DefaultWebmailMessage,
		WebmailBlock:      Off,
	}
}

// FieldName returns the form field name of a record key, e.g. jdeb_settings[webmail_block].
func FieldName(key string) string {
	return OptionName + "[" + key + "]"
}

// FromForm collects the record from submitted form values. get returns "" for absent fields,
// so an unchecked webmail_block checkbox reads as off.
func FromForm(get func(field string) string) Settings {
	block := Off
	if get(FieldName(KeyWebmailBlock)) != "" {
		block = get(FieldName(KeyWebmailBlock))
	}

	return Settings{
		DisposableMessage: get(FieldName(KeyDisposableMessage)),
		WebmailMessage:    get(FieldName(KeyWebmailMessage)),
		WebmailBlock:      block,
	}
}

// Load reads the record from the option store. A missing option yields the defaults.
// A corrupt record yields the defaults together with ErrCorruptRecord.
func Load(ctx context.Context, db *gorm.DB) (*Settings, error) {
	s := Defaults()

	row, err := setting.Get(ctx, db, OptionName)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return &s, nil
	}

	if err != nil {
		return nil, fmt.Errorf("load %s: %w", OptionName, err)
	}

	var raw stored
	if err = json.Unmarshal(row.Value, &raw); err != nil {
		return &s, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}

	if raw.DisposableMessage != nil {
		s.DisposableMessage = *raw.DisposableMessage
	}

	if raw.WebmailMessage != nil {
		s.WebmailMessage = *raw.WebmailMessage
	}

	if raw.WebmailBlock != nil {
		s.WebmailBlock = *raw.WebmailBlock
	}

	return &s, nil
}

// Save writes the whole record to the option store.
func (s *Settings) Save(ctx context.Context, db *gorm.DB) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	if err = setting.Set(ctx, db, OptionName, data); err != nil {
		return fmt.Errorf("save %s: %w", OptionName, err)
	}

	return nil
}

// Add writes the record only when none is stored. It reports whether it wrote.
func (s *Settings) Add(ctx context.Context, db *gorm.DB) (bool, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return false, err
	}

	err = setting.Add(ctx, db, OptionName, data)
	if errors.Is(err, setting.ErrSettingAlreadyExists) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("add %s: %w", OptionName, err)
	}

	return true, nil
}

// Exists reports whether the record was written, i.e. the plugin was activated.
func Exists(ctx context.Context, db *gorm.DB) (bool, error) {
	return setting.Exists(ctx, db, OptionName)
}

// Delete removes the record from the option store. A missing record is not an error.
func Delete(ctx context.Context, db *gorm.DB) error {
	err := setting.Delete(ctx, db, OptionName)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return nil
	}

	return err
}

// WebmailBlocked reports whether webmail addresses are blocked instead of warned about.
func (s *Settings) WebmailBlocked() bool {
	return s.WebmailBlock == On
}

// Sanitize returns a cleaned copy of the record: messages are trimmed, NFC normalised and
// stripped of control characters, empty messages fall back to their default and
// webmail_block is forced to on or off.
func (s Settings) Sanitize() Settings {
	out := Settings{
		DisposableMessage: cleanMessage(s.DisposableMessage),
		WebmailMessage:    cleanMessage(s.WebmailMessage),
		WebmailBlock:      Off,
	}

	if out.DisposableMessage == "" {
		out.DisposableMessage = DefaultDisposableMessage
	}

	if out.WebmailMessage == "" {
		out.WebmailMessage = DefaultWebmailMessage
	}

	if strings.EqualFold(strings.TrimSpace(s.WebmailBlock), On) {
		out.WebmailBlock = On
	}

	return out
}

// Validate checks the record against its constraints.
func (s *Settings) Validate() error {
	return validate.Struct(s)
}

func cleanMessage(in string) string {
	t := transform.Chain(runes.Remove(runes.In(unicode.Cc)), norm.NFC)

	out, _, err := transform.String(t, in)
	if err != nil {
		out = in
	}

	return strings.TrimSpace(out)
}
