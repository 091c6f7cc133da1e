package printing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t1tandr/uevent/internal/infrastructure/config"
)

func TestChromedpConfigFrom(t *testing.T) {
	cfg := ChromedpConfigFrom(config.PrintingConfig{
		RemoteURL: "ws://chrome:9222",
		Timeout:   5 * time.Second,
		NoSandbox: true,
	}, nil)

	assert.Equal(t, "ws://chrome:9222", cfg.RemoteURL)
	assert.Equal(t, 5*time.Second, cfg.DefaultTimeout)
	assert.True(t, cfg.NoSandbox)
}

func TestNewChromedpRenderer_Defaults(t *testing.T) {
	r := NewChromedpRenderer(nil)
	defer r.Close()

	assert.Equal(t, defaultChromeTimeout, r.timeout)
	assert.NotNil(t, r.logger)
	assert.NotNil(t, r.allocCtx)
}

func TestChromedpRenderer_RejectsBadRequests(t *testing.T) {
	r := NewChromedpRenderer(&ChromedpConfig{RemoteURL: "ws://127.0.0.1:1"})
	defer r.Close()

	_, err := r.Render(context.Background(), &RenderRequest{Page: TicketPage})
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
}

func TestPrintParams(t *testing.T) {
	p := printParams(TicketPage)
	assert.InDelta(t, 100/25.4, p.PaperWidth, 0.001)
	assert.InDelta(t, 200/25.4, p.PaperHeight, 0.001)
	assert.InDelta(t, 8/25.4, p.MarginLeft, 0.001)
	assert.Equal(t, p.MarginTop, p.MarginBottom)
	assert.True(t, p.PrintBackground)
}

func TestWrapDocument(t *testing.T) {
	full := "<!DOCTYPE html><html><body>x</body></html>"
	assert.Equal(t, full, wrapDocument(&RenderRequest{HTML: full}))

	wrapped := wrapDocument(&RenderRequest{HTML: "<p>hi</p>", Title: "Jazz <Night>"})
	assert.True(t, strings.HasPrefix(wrapped, "<!DOCTYPE html>"))
	assert.Contains(t, wrapped, "<title>Jazz &lt;Night&gt;</title>")
	assert.Contains(t, wrapped, "<body><p>hi</p></body>")
}
