package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"partyhaus/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// templateRenderer serves subject/html/text triples for each message type
// from templates embedded at build time. The whole set is parsed once at
// construction; Render only executes.
type templateRenderer struct {
	html *template.Template
	text *texttemplate.Template
}

// NewTemplateRenderer parses the embedded template set. The set ships inside
// the binary, so a parse failure is a build defect and panics at startup
// rather than surfacing per send.
func NewTemplateRenderer() domain.EmailTemplateRenderer {
	return &templateRenderer{
		html: template.Must(template.ParseFS(templateFS, "templates/*.html")),
		text: texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt")),
	}
}

// Render fills the named message's subject, html, and text templates with
// data. The name is the message type, e.g. "invitation".
func (r *templateRenderer) Render(name string, data interface{}) (subject, htmlBody, textBody string, err error) {
	subject, err = r.execText(name+"_subject.txt", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	htmlBody, err = r.execHTML(name+".html", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	textBody, err = r.execText(name+".txt", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return strings.TrimSpace(subject), htmlBody, textBody, nil
}

func (r *templateRenderer) execHTML(name string, data interface{}) (string, error) {
	t := r.html.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("no template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *templateRenderer) execText(name string, data interface{}) (string, error) {
	t := r.text.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("no template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
