package analysis

import (
	"embed"
	"io/fs"
)

//go:embed templates
var templateFS embed.FS

// templatesFS returns the prompt template tree rooted at its own top level.
func templatesFS() fs.FS {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	return sub
}
