package mail

import (
	"context"
	"embed"
	"io/fs"
	"maps"
	"strings"
	"time"

	"github.com/t1tandr/uevent/internal/infrastructure/printing"
)

//go:embed templates/*.html templates/*.tmpl
var templateFiles embed.FS

const layoutFile = "layout.tmpl"

// Rendered is a mail ready to send
type Rendered struct {
	Subject string
	HTML    string
}

// Renderer turns a template name and data into subject and body. Every
// template file defines a "subject" and a "body" block.
type Renderer struct {
	engine      *printing.TemplateEngine
	frontendURL string
	now         func() time.Time
}

// NewRenderer creates a renderer over the embedded templates
func NewRenderer(frontendURL string) *Renderer {
	files, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic(err)
	}
	return &Renderer{
		engine: printing.NewTemplateEngine(
			printing.WithTemplateFS(files),
			printing.WithLayouts(layoutFile),
		),
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}
}

// Render executes both blocks of the named template
func (r *Renderer) Render(ctx context.Context, name string, data map[string]any) (*Rendered, error) {
	file := name + ".html"

	ctxData := make(map[string]any, len(data)+2)
	ctxData["frontendUrl"] = r.frontendURL
	ctxData["year"] = r.now().Year()
	maps.Copy(ctxData, data)

	subject, err := r.engine.RenderBlock(ctx, file, "subject", ctxData)
	if err != nil {
		return nil, err
	}
	body, err := r.engine.RenderBlock(ctx, file, "body", ctxData)
	if err != nil {
		return nil, err
	}
	return &Rendered{
		Subject: strings.TrimSpace(subject),
		HTML:    body,
	}, nil
}
