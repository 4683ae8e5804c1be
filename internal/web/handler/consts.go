package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path the route group.
	RootPath = "/"

	// StaticPath is where the embedded static files are served.
	StaticPath = "/static/"

	// AdminPath is the entry of the admin area.
	AdminPath = "/admin"

	// ErrNilACDFatalLogMsg is used if app or cfg or host var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or host is nil"
)
