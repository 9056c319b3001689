package handlers

import (
	"html/template"

	"jury-dashboard/templates"
)

// parsePage builds one page on top of the admin layout.
func parsePage(page string) *template.Template {
	return template.Must(template.New("layout.html").ParseFS(
		templates.FS,
		"admin/layout.html",
		"admin/"+page,
	))
}
