// Package web holds the browser client served at the site root.
package web

import "embed"

//go:embed static
var Static embed.FS
