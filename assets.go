// Package portal provides the embedded web assets.
package portal

import "embed"

// TemplateFS holds the HTML templates under web/templates.
//
//go:embed web/templates
var TemplateFS embed.FS

// StaticFS holds stylesheets, scripts and images under web/static.
//
//go:embed web/static
var StaticFS embed.FS
