// Package templates owns the template tree a project is generated from.
//
// A Registry parses every "*.tmpl" file of a tree once and is read-only
// afterwards, so it can be shared without locking. Files without the marker
// are not parsed; the materializer copies them byte for byte from FS().
package templates

import (
	"bytes"
	"fmt"
	"io/fs"
	"sort"
	"text/template"

	"github.com/simonhull/create-v1-app/internal/apperr"
	"github.com/simonhull/create-v1-app/internal/variant"
	"github.com/simonhull/create-v1-app/pkg/filesystem"
)

// Registry is an immutable set of parsed templates keyed by their
// slash-separated path in the template tree.
type Registry struct {
	fsys      fs.FS
	templates map[string]*template.Template
	names     []string
}

// WalkOptions is how template trees are traversed. Everything in the skeleton
// is copied, including hidden files and build or editor directories. Only the
// VCS metadata of a local template checkout is left out.
var WalkOptions = filesystem.WalkOptions{
	IncludeHidden:    true,
	NoDefaultIgnores: true,
	IgnoreDirs:       []string{".git"},
}

// NewRegistry parses every template in fsys. A template that does not parse
// is a RenderError.
func NewRegistry(fsys fs.FS) (*Registry, error) {
	files, err := filesystem.Files(fsys, ".", WalkOptions)
	if err != nil {
		return nil, &apperr.FilesystemError{Op: "walk", Path: "templates", Err: err}
	}

	r := &Registry{
		fsys:      fsys,
		templates: make(map[string]*template.Template),
	}
	funcs := FuncMap()

	for _, name := range files {
		if !variant.IsTemplate(name) {
			continue
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, &apperr.FilesystemError{Op: "read", Path: name, Err: err}
		}
		tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(string(data))
		if err != nil {
			return nil, &apperr.RenderError{Template: name, Err: fmt.Errorf("failed to parse template: %w", err)}
		}
		r.templates[name] = tmpl
		r.names = append(r.names, name)
	}

	sort.Strings(r.names)
	return r, nil
}

// Render executes the named template against rc.
func (r *Registry) Render(name string, rc RenderContext) (string, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return "", &apperr.RenderError{Template: name, Err: fmt.Errorf("template not found")}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, rc); err != nil {
		return "", &apperr.RenderError{Template: name, Err: err}
	}
	return buf.String(), nil
}

// Has reports whether name is a parsed template.
func (r *Registry) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Names returns every template name in lexical order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// FS returns the tree the registry was built from.
func (r *Registry) FS() fs.FS {
	return r.fsys
}
