// Package templates embeds the page templates.
package templates

import "embed"

//go:embed *.tmpl
var FS embed.FS
