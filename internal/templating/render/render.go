package render

import (
	"fmt"
	"html/template"
	"io/fs"
	"strings"
)

// Renderer wraps one parsed gohtml template.
type Renderer struct {
	tmpl *template.Template
}

// GetHTMLRenderer parses html/<name>.gohtml from the given filesystem.
func GetHTMLRenderer(name string, fsys fs.FS) (*Renderer, error) {
	path := fmt.Sprintf("html/%s.gohtml", name)
	tmpl, err := template.New(fmt.Sprintf("%s.gohtml", name)).Funcs(template.FuncMap{
		"lower": strings.ToLower,
	}).ParseFS(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the template and returns the HTML.
func (r *Renderer) Render(data interface{}) (string, error) {
	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return sb.String(), nil
}
