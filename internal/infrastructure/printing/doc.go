// Package printing renders ticket documents to PDF.
//
// HTML is produced from embedded html/template files by TemplateEngine and
// converted by a PDFRenderer. ChromedpRenderer drives headless Chrome over
// the DevTools protocol, either a local process or a remote instance.
//
//	renderer := NewChromedpRenderer(ChromedpConfigFrom(cfg.Printing, logger))
//	defer renderer.Close()
//	tickets := NewTicketRenderer(renderer, logger)
//	pdf, err := tickets.RenderTicket(ctx, doc)
package printing
