package printing

import (
	"context"
	"time"
)

// Page describes the printed sheet in millimeters
type Page struct {
	WidthMM  float64
	HeightMM float64
	MarginMM float64
}

// TicketPage is a narrow stub-sized sheet holding one ticket
var TicketPage = Page{WidthMM: 100, HeightMM: 200, MarginMM: 8}

func (p Page) valid() bool {
	return p.WidthMM > 0 && p.HeightMM > 0 && p.MarginMM >= 0 &&
		2*p.MarginMM < p.WidthMM && 2*p.MarginMM < p.HeightMM
}

type RenderRequest struct {
	HTML  string
	Page  Page
	Title string
	// Timeout overrides the renderer default when non-zero
	Timeout time.Duration
}

type RenderResult struct {
	PDFData        []byte
	RenderDuration time.Duration
}

// PDFRenderer converts an HTML document to PDF
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPage      = "INVALID_PAGE"
	ErrCodeTemplateNotFound = "TEMPLATE_NOT_FOUND"
	ErrCodeQRCodeFailed     = "QR_CODE_FAILED"
)

// RenderError carries one of the ErrCode constants
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

func (e *RenderError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RenderError) Unwrap() error { return e.Cause }
