// Package locales embeds the UI label dictionaries.
package locales

import "embed"

//go:embed *.json
var FS embed.FS
