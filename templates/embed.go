// Package templates embeds the dashboard's HTML templates.
package templates

import "embed"

//go:embed admin/*.html
var FS embed.FS
