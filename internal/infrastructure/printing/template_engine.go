package printing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine renders html/template documents with formatting helpers.
// Named templates are read from an fs.FS once and cached.
type TemplateEngine struct {
	funcMap template.FuncMap
	files   fs.FS
	layouts []string

	mu    sync.RWMutex
	cache map[string]*template.Template
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithTemplateFS sets the file system named templates are loaded from
func WithTemplateFS(files fs.FS) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.files = files
	}
}

// WithLayouts parses the given files into every named template, so they
// can share {{define}} blocks such as headers and footers
func WithLayouts(names ...string) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.layouts = append(e.layouts, names...)
	}
}

// WithFuncs adds or overrides template functions
func WithFuncs(funcs template.FuncMap) TemplateEngineOption {
	return func(e *TemplateEngine) {
		maps.Copy(e.funcMap, funcs)
	}
}

// NewTemplateEngine creates a new template engine
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{cache: make(map[string]*template.Template)}

	e.funcMap = template.FuncMap{
		"formatMoney":    formatMoney,
		"formatMoneyRaw": formatMoneyRaw,
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"formatTime":     formatTime,

		"truncate":  truncate,
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"title":     titleCase,
		"trim":      strings.TrimSpace,
		"join":      strings.Join,
		"shortUUID": shortUUID,

		"default": defaultFunc,
		"dict":    dict,
		"safeURL": safeURL,
		"now":     time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RenderString parses and executes an inline template
func (e *TemplateEngine) RenderString(_ context.Context, name, content string, data any) (string, error) {
	if content == "" {
		return "", NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}
	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}
	return execute(tmpl, "", data)
}

// RenderFile executes the named template file
func (e *TemplateEngine) RenderFile(_ context.Context, name string, data any) (string, error) {
	tmpl, err := e.Load(name)
	if err != nil {
		return "", err
	}
	return execute(tmpl, "", data)
}

// RenderBlock executes one {{define}} block of a template file
func (e *TemplateEngine) RenderBlock(_ context.Context, name, block string, data any) (string, error) {
	tmpl, err := e.Load(name)
	if err != nil {
		return "", err
	}
	if tmpl.Lookup(block) == nil {
		return "", NewRenderError(ErrCodeTemplateNotFound, fmt.Sprintf("block %q not defined in %s", block, name), nil)
	}
	return execute(tmpl, block, data)
}

// Load returns the parsed template file, parsing it on first use
func (e *TemplateEngine) Load(name string) (*template.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	if e.files == nil {
		return nil, NewRenderError(ErrCodeTemplateNotFound, "no template source configured", nil)
	}
	content, err := fs.ReadFile(e.files, name)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateNotFound, "template "+name+" not found", err)
	}
	tmpl, err = template.New(name).Funcs(e.funcMap).Parse(string(content))
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse template "+name, err)
	}
	for _, layout := range e.layouts {
		shared, err := fs.ReadFile(e.files, layout)
		if err != nil {
			return nil, NewRenderError(ErrCodeTemplateNotFound, "layout "+layout+" not found", err)
		}
		if _, err := tmpl.New(layout).Parse(string(shared)); err != nil {
			return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse layout "+layout, err)
		}
	}

	e.mu.Lock()
	e.cache[name] = tmpl
	e.mu.Unlock()
	return tmpl, nil
}

func execute(tmpl *template.Template, block string, data any) (string, error) {
	var buf bytes.Buffer
	var err error
	if block == "" {
		err = tmpl.Execute(&buf, data)
	} else {
		err = tmpl.ExecuteTemplate(&buf, block, data)
	}
	if err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// GetFuncMap returns a copy of the template function map
func (e *TemplateEngine) GetFuncMap() template.FuncMap {
	funcMap := make(template.FuncMap, len(e.funcMap))
	maps.Copy(funcMap, e.funcMap)
	return funcMap
}

// formatMoney formats a value as dollars. Example: 1234.5 -> "$1,234.50"
func formatMoney(v any) string {
	d := toDecimal(v)
	if d.IsNegative() {
		return "-$" + formatMoneyRaw(d.Abs())
	}
	return "$" + formatMoneyRaw(d)
}

// formatMoneyRaw formats with thousand separators and two decimals
func formatMoneyRaw(v any) string {
	d := toDecimal(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	intPart, decPart, _ := strings.Cut(d.StringFixed(2), ".")
	var result strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}
	return sign + result.String() + "." + decPart
}

// formatDate example: "Jan 15, 2026"
func formatDate(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// formatDateTime example: "Jan 15, 2026 14:30"
func formatDateTime(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006 15:04")
}

func formatTime(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("15:04")
}

// truncate cuts s to max runes including the suffix
func truncate(s string, max int, suffix ...string) string {
	suf := "..."
	if len(suffix) > 0 {
		suf = suffix[0]
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	sufRunes := []rune(suf)
	if max <= len(sufRunes) {
		return string(sufRunes[:max])
	}
	return string(runes[:max-len(sufRunes)]) + suf
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func defaultFunc(val, def any) any {
	switch v := val.(type) {
	case nil:
		return def
	case string:
		if v == "" {
			return def
		}
	}
	return val
}

// safeURL marks a URL as trusted. Only use with system-generated values
// such as data URLs built by the renderer.
func safeURL(s string) template.URL {
	return template.URL(s)
}

func shortUUID(id uuid.UUID) string {
	return id.String()[:8]
}

// dict creates a map from key-value pairs
func dict(pairs ...any) map[string]any {
	result := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs)-1; i += 2 {
		if key, ok := pairs[i].(string); ok {
			result[key] = pairs[i+1]
		}
	}
	return result
}

func toDecimal(v any) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero
		}
		return *val
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

func toTime(v any) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case *time.Time:
		if val == nil {
			return time.Time{}
		}
		return *val
	case string:
		t, err := time.Parse(time.RFC3339, val)
		if err != nil {
			return time.Time{}
		}
		return t
	default:
		return time.Time{}
	}
}
