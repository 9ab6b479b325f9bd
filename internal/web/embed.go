// Package web embeds the compiled dashboard frontend.
package web

import "embed"

// DistFS holds the static frontend assets served at the root path.
//
//go:embed dist
var DistFS embed.FS
