package invoicing

import "context"

// RenderedInvoice is the output of rendering one invoice document
type RenderedInvoice struct {
	FileName string
	MIMEType string
	Content  []byte
}

// Renderer turns an invoice snapshot into a deliverable document.
// Implementations live in infrastructure; the domain only states the
// contract so invoice assembly stays testable without a browser.
type Renderer interface {
	Render(ctx context.Context, invoice *Invoice) (*RenderedInvoice, error)
}

// NopRenderer skips rendering. Used by preview runs that only need the
// computed snapshot.
type NopRenderer struct{}

// Render implements Renderer without producing a document
func (NopRenderer) Render(_ context.Context, _ *Invoice) (*RenderedInvoice, error) {
	return nil, nil
}
