// Package template renders the text documents components hand back to the
// agent, such as the SITREP request prompt.
package template

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/resq-ai/resq-core/domain/ports"
)

// templateConfig holds configuration for the GoTemplateEngine.
type templateConfig struct {
	funcs  template.FuncMap
	strict bool // Fail on missing keys
}

func defaultTemplateConfig() templateConfig {
	return templateConfig{
		strict: true,
		funcs: template.FuncMap{
			"upper": strings.ToUpper,
			"fixed": fixed,
		},
	}
}

// TemplateOption configures a GoTemplateEngine.
type TemplateOption func(*templateConfig)

// WithStrict enables/disables strict mode for missing keys.
// When enabled (default), rendering fails if a referenced map key is missing.
func WithStrict(enabled bool) TemplateOption {
	return func(c *templateConfig) {
		c.strict = enabled
	}
}

// WithFunc adds a template function, replacing any built-in of the same name.
func WithFunc(name string, fn any) TemplateOption {
	return func(c *templateConfig) {
		c.funcs[name] = fn
	}
}

// GoTemplateEngine implements TemplateEngine using standard text/template.
type GoTemplateEngine struct {
	config templateConfig
}

// NewGoTemplateEngine creates a new GoTemplateEngine.
func NewGoTemplateEngine(opts ...TemplateOption) ports.TemplateEngine {
	cfg := defaultTemplateConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &GoTemplateEngine{config: cfg}
}

// Render parses text and executes it against data.
func (e *GoTemplateEngine) Render(text string, data any) ([]byte, error) {
	tmpl := template.New("document").Funcs(e.config.funcs)
	if e.config.strict {
		tmpl = tmpl.Option("missingkey=error")
	}

	tmpl, err := tmpl.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// fixed formats f with exactly digits decimals, like toFixed in the UI.
func fixed(digits int, f float64) string {
	return strconv.FormatFloat(f, 'f', digits, 64)
}
