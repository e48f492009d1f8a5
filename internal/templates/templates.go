// Package templates loads named speech templates and renders them with
// text/template.
package templates

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"clova-webhook/internal/domain"
)

var ErrNotFound = errors.New("templates: template not found")

// Source looks up a template by name.
type Source interface {
	Template(ctx context.Context, name string) (domain.Template, error)
}

// File serves templates from a YAML mapping of name to body. The file is
// re-read whenever its modification time changes.
type File struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	modTime time.Time
	bodies  map[string]string
}

// NewFile loads path. A file that does not exist is not an error; lookups
// fail with ErrNotFound until it appears.
func NewFile(path string, logger *slog.Logger) (*File, error) {
	if path == "" {
		return nil, errors.New("templates: path must not be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	f := &File{path: path, logger: logger, bodies: map[string]string{}}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.reloadLocked(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) Template(_ context.Context, name string) (domain.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.reloadLocked(); err != nil {
		return domain.Template{}, err
	}
	body, ok := f.bodies[name]
	if !ok {
		return domain.Template{}, fmt.Errorf("templates: %q: %w", name, ErrNotFound)
	}
	return domain.Template{Name: name, Body: body}, nil
}

// All returns every template in the file, ordered by name.
func (f *File) All(context.Context) ([]domain.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.reloadLocked(); err != nil {
		return nil, err
	}
	out := make([]domain.Template, 0, len(f.bodies))
	for name, body := range f.bodies {
		out = append(out, domain.Template{Name: name, Body: body})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *File) reloadLocked() error {
	info, err := os.Stat(f.path)
	if errors.Is(err, os.ErrNotExist) {
		f.bodies = map[string]string{}
		f.modTime = time.Time{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("templates: stat %s: %w", f.path, err)
	}
	if info.ModTime().Equal(f.modTime) {
		return nil
	}

	raw, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("templates: read %s: %w", f.path, err)
	}
	bodies := map[string]string{}
	if err := yaml.Unmarshal(raw, &bodies); err != nil {
		return fmt.Errorf("templates: parse %s: %w", f.path, err)
	}
	if bodies == nil {
		bodies = map[string]string{}
	}
	f.bodies = bodies
	f.modTime = info.ModTime()
	f.logger.Debug("templates reloaded", "path", f.path, "count", len(bodies))
	return nil
}

// Renderer executes templates fetched from a Source.
type Renderer struct {
	src Source
}

func NewRenderer(src Source) (*Renderer, error) {
	if src == nil {
		return nil, errors.New("templates: source must not be nil")
	}
	return &Renderer{src: src}, nil
}

// Render executes the named template with data. Missing keys are errors.
func (r *Renderer) Render(ctx context.Context, name string, data any) (string, error) {
	tpl, err := r.src.Template(ctx, name)
	if err != nil {
		return "", err
	}
	t, err := template.New(name).Option("missingkey=error").Parse(tpl.Body)
	if err != nil {
		return "", fmt.Errorf("templates: parse %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("templates: execute %q: %w", name, err)
	}
	return buf.String(), nil
}
