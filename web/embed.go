package web

import "embed"

// StaticFS embeds the dashboard shell and its static assets.
//
//go:embed static
var StaticFS embed.FS
