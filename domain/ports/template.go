package ports

// TemplateEngine renders text templates such as the SITREP prompt.
type TemplateEngine interface {
	// Render executes the template text against data.
	Render(text string, data any) ([]byte, error)
}
