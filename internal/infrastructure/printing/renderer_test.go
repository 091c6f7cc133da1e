package printing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name string
		req  *RenderRequest
		code string
	}{
		{"nil request", nil, ErrCodeInvalidHTML},
		{"empty HTML", &RenderRequest{Page: TicketPage}, ErrCodeInvalidHTML},
		{"whitespace HTML", &RenderRequest{HTML: " \n\t ", Page: TicketPage}, ErrCodeInvalidHTML},
		{"zero page", &RenderRequest{HTML: "<p>x</p>"}, ErrCodeInvalidPage},
		{"margins swallow the page", &RenderRequest{HTML: "<p>x</p>", Page: Page{WidthMM: 20, HeightMM: 50, MarginMM: 10}}, ErrCodeInvalidPage},
		{"ticket page", &RenderRequest{HTML: "<p>x</p>", Page: TicketPage}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(tt.req)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			var renderErr *RenderError
			require.ErrorAs(t, err, &renderErr)
			assert.Equal(t, tt.code, renderErr.Code)
		})
	}
}

func TestRenderError(t *testing.T) {
	cause := errors.New("boom")
	err := NewRenderError(ErrCodeRenderFailed, "render failed", cause)
	assert.Equal(t, "render failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "plain", NewRenderError(ErrCodeRenderFailed, "plain", nil).Error())
}
