package main

import (
	"embed"
	"io/fs"
)

// the status page served next to /ws
//
//go:embed frontend
var frontend embed.FS

// statusPage returns the status page files with frontend/ stripped.
func statusPage() fs.FS {
	page, err := fs.Sub(frontend, "frontend")
	if err != nil {
		panic(err)
	}
	return page
}
