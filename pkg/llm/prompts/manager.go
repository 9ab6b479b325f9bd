package prompts

import (
	"bytes"
	"fmt"
	"io/fs"
	"math/rand"
	"strings"
	"text/template"
)

// Manager handles loading and rendering of prompt templates.
type Manager struct {
	root *template.Template
}

// NewManager creates a new prompt manager loading all .tmpl files from the
// given filesystem. Templates under common/ are parsed into the root
// namespace so named defines are shared; everything else is addressable by
// its slash path.
func NewManager(fsys fs.FS) (*Manager, error) {
	m := &Manager{}
	m.root = template.New("root").Funcs(template.FuncMap{
		"preset": m.presetFunc,
		"maybe":  maybeFunc,
		"pick":   pickFunc,
	})

	if err := m.loadCommon(fsys); err != nil {
		return nil, fmt.Errorf("loading common templates: %w", err)
	}

	if err := m.loadTemplates(fsys); err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	return m, nil
}

func (m *Manager) loadCommon(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}
		if !strings.HasPrefix(path, "common/") {
			return nil
		}

		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}

		if _, err = m.root.Parse(string(content)); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		return nil
	})
}

func (m *Manager) loadTemplates(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}
		if strings.HasPrefix(path, "common/") {
			return nil
		}

		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}

		if _, err = m.root.New(path).Parse(string(content)); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		return nil
	})
}

// Render executes the named template with the provided data.
func (m *Manager) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := m.root.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// presetFunc renders the per-aircraft flavor template for the given preset,
// e.g. "preset/glider.tmpl". Missing preset templates render as nothing.
func (m *Manager) presetFunc(name string, data any) (string, error) {
	if name == "" {
		return "", nil
	}

	tmplName := "preset/" + strings.ToLower(name) + ".tmpl"
	t := m.root.Lookup(tmplName)
	if t == nil {
		// Silently ignore missing preset templates
		return "", nil
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// maybeFunc includes content with a given probability (0-100).
// Usage: {{maybe 50 "This text appears 50% of the time"}}
// Re-rolls on each template render.
func maybeFunc(percent int, content string) string {
	if percent <= 0 {
		return ""
	}
	if percent >= 100 {
		return content
	}
	if rand.Intn(100) < percent {
		return content
	}
	return ""
}

// pickFunc selects one random option from a list separated by "|||".
// Usage: {{pick "Option A|||Option B|||Option C"}}
// Re-rolls on each template render.
func pickFunc(options string) string {
	parts := strings.Split(options, "|||")
	if len(parts) == 0 {
		return ""
	}
	// Trim whitespace from each option
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts[rand.Intn(len(parts))]
}
