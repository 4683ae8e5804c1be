package web

import (
	"embed"
	"io/fs"
	"net/http"
)

var (
	//go:embed static/*
	embeddedStaticFiles embed.FS

	//go:embed templates/*
	embeddedTemplates embed.FS
)

func sub(fsys fs.FS, dir string) fs.FS {
	out, err := fs.Sub(fsys, dir)
	if err != nil {
		// only fails for invalid path patterns
		panic(err)
	}

	return out
}

// templatesFS serves the embedded templates directory as the engine root.
func templatesFS() http.FileSystem {
	return http.FS(sub(embeddedTemplates, "templates"))
}

// StaticFS returns the embedded static files rooted like the static URL.
func StaticFS() fs.FS {
	return sub(embeddedStaticFiles, "static")
}
