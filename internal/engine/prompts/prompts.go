// Package prompts holds the instruction templates sent to the language model.
// Templates are data: the defaults are embedded from templates/prompts.yaml and
// can be replaced at startup with PROMPTS_FILE.
package prompts

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates/prompts.yaml
var defaultYAML []byte

// Template names every prompt file must define.
const (
	Notes     = "notes"
	Questions = "questions"
)

var required = []string{Notes, Questions}

// ErrUnknownTemplate is returned by Render for a name the set does not define.
var ErrUnknownTemplate = errors.New("unknown prompt template")

// Data is the value templates are executed against.
type Data struct {
	Subject string
}

type promptFile struct {
	Version   int               `yaml:"version"`
	Templates map[string]string `yaml:"templates"`
}

// Set is a parsed, validated collection of prompt templates.
type Set struct {
	Version   int
	templates map[string]*template.Template
}

// Default returns the embedded prompt set.
func Default() (*Set, error) {
	return Parse(defaultYAML)
}

// Load reads a prompt set from path; an empty path yields the embedded defaults.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prompts: read %s: %w", path, err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("prompts: %s: %w", path, err)
	}
	return set, nil
}

// Parse decodes YAML prompt data and compiles every template.
func Parse(data []byte) (*Set, error) {
	var pf promptFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	for _, name := range required {
		if strings.TrimSpace(pf.Templates[name]) == "" {
			return nil, fmt.Errorf("missing template %q", name)
		}
	}

	set := &Set{Version: pf.Version, templates: make(map[string]*template.Template, len(pf.Templates))}
	for name, text := range pf.Templates {
		tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", name, err)
		}
		set.templates[name] = tmpl
	}
	return set, nil
}

// Render executes the named template with d.
func (s *Set) Render(name string, d Data) (string, error) {
	tmpl, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, d); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return sb.String(), nil
}
