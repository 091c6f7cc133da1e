package printing

import (
	"context"
	"embed"
	"encoding/base64"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/application/ticketing"
)

//go:embed templates/*.html
var templateFiles embed.FS

const (
	ticketTemplate = "templates/ticket.html"
	qrCodeSize     = 256
)

// TemplateFS exposes the embedded document templates
func TemplateFS() embed.FS {
	return templateFiles
}

type ticketView struct {
	ticketing.TicketDocument
	QRCode string
}

// TicketRenderer prints a ticket with its QR code as a PDF
type TicketRenderer struct {
	pdf    PDFRenderer
	engine *TemplateEngine
	logger *zap.Logger
}

// NewTicketRenderer creates a ticket renderer on top of a PDF backend
func NewTicketRenderer(pdf PDFRenderer, logger *zap.Logger) *TicketRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketRenderer{
		pdf:    pdf,
		engine: NewTemplateEngine(WithTemplateFS(templateFiles)),
		logger: logger,
	}
}

// RenderTicket renders the ticket document to PDF bytes
func (r *TicketRenderer) RenderTicket(ctx context.Context, doc ticketing.TicketDocument) ([]byte, error) {
	html, err := r.RenderHTML(ctx, doc)
	if err != nil {
		return nil, err
	}

	result, err := r.pdf.Render(ctx, &RenderRequest{
		HTML:  html,
		Page:  TicketPage,
		Title: doc.Event.Title,
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("ticket rendered",
		zap.String("ticket_id", doc.Ticket.ID.String()),
		zap.Int("bytes", len(result.PDFData)))
	return result.PDFData, nil
}

// RenderHTML produces the ticket markup with an inline QR image
func (r *TicketRenderer) RenderHTML(ctx context.Context, doc ticketing.TicketDocument) (string, error) {
	if doc.Ticket == nil || doc.Event == nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "ticket and event are required", nil)
	}

	qr, err := QRCodeDataURL(doc.Ticket.QRData())
	if err != nil {
		return "", err
	}
	return r.engine.RenderFile(ctx, ticketTemplate, ticketView{TicketDocument: doc, QRCode: qr})
}

// QRCodeDataURL encodes content as a PNG QR code data URL
func QRCodeDataURL(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, qrCodeSize)
	if err != nil {
		return "", NewRenderError(ErrCodeQRCodeFailed, "failed to encode QR code", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

var _ ticketing.TicketRenderer = (*TicketRenderer)(nil)
