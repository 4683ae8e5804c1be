package settingsapi

import "html"

// EscAttr escapes s for use inside a quoted HTML attribute.
func EscAttr(s string) string {
	return html.EscapeString(s)
}

// EscHTML escapes s for use as HTML text.
func EscHTML(s string) string {
	return html.EscapeString(s)
}

// Checked returns the checked attribute when current equals value.
func Checked(current, value string) string {
	if current == value {
		return ` checked="checked"`
	}

	return ""
}
