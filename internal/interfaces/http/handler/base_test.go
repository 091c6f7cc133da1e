package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/infrastructure/logger"
	"github.com/t1tandr/uevent/internal/interfaces/http/dto"
	"github.com/t1tandr/uevent/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

// setJWTContext simulates an authenticated request without a real token
func setJWTContext(c *gin.Context, userID uuid.UUID) {
	c.Set(middleware.JWTUserIDKey, userID.String())
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestGetRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, getRequestID(c))

	c.Request.Header.Set(middleware.RequestIDKey, "from-header")
	assert.Equal(t, "from-header", getRequestID(c))

	c.Set(logger.GinRequestIDKey, "from-context")
	assert.Equal(t, "from-context", getRequestID(c))
}

func TestGetUserID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-User-ID", uuid.NewString())

	_, err := getUserID(c)
	assert.ErrorIs(t, err, errMissingUser, "headers must never authenticate")
	assert.Nil(t, optionalUserID(c))

	id := uuid.New()
	setJWTContext(c, id)
	got, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, id, *optionalUserID(c))
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not found", shared.NewDomainError("EVENT_NOT_FOUND", "Event not found"), http.StatusNotFound, "EVENT_NOT_FOUND", "Event not found"},
		{"forbidden", shared.NewDomainError("FORBIDDEN", "Insufficient permissions"), http.StatusForbidden, "FORBIDDEN", "Insufficient permissions"},
		{"wrapped domain error", fmt.Errorf("create: %w", shared.NewDomainError("ALREADY_SUBSCRIBED", "Already subscribed")), http.StatusBadRequest, "ALREADY_SUBSCRIBED", "Already subscribed"},
		{"unavailable", shared.NewDomainError("PAYMENTS_DISABLED", "Payments are not configured"), http.StatusServiceUnavailable, "PAYMENTS_DISABLED", "Payments are not configured"},
		{"internal", errors.New("pq: connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(logger.GinRequestIDKey, "req-1")

			(&BaseHandler{}).HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMsg, resp.Error.Message)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_ParseUUIDParam(t *testing.T) {
	h := &BaseHandler{}
	router := gin.New()
	router.GET("/things/:id", func(c *gin.Context) {
		id, ok := h.parseUUIDParam(c, "id")
		if !ok {
			return
		}
		c.String(http.StatusOK, id.String())
	})

	id := uuid.New()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/"+id.String(), nil))
	assert.Equal(t, id.String(), w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/nope", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidInput, decodeResponse(t, w).Error.Code)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

// multipartRequest builds a multipart body with one file per entry and the given fields
func multipartRequest(t *testing.T, method, path, field string, files map[string][]byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, data := range files {
		part, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadPolicy(t *testing.T) {
	policy := newUploadPolicy(1024, avatarTypes)
	var got *shared.FileUpload
	var gotErr error

	router := gin.New()
	router.POST("/upload", func(c *gin.Context) {
		got, gotErr = policy.single(c, "file")
		c.Status(http.StatusOK)
	})

	t.Run("accepts a small png", func(t *testing.T) {
		router.ServeHTTP(httptest.NewRecorder(), multipartRequest(t, http.MethodPost, "/upload", "file",
			map[string][]byte{"me.png": pngBytes(t)}, nil))
		require.NoError(t, gotErr)
		require.NotNil(t, got)
		assert.Equal(t, "image/png", got.ContentType)
		assert.Equal(t, "me.png", got.Filename)
	})

	t.Run("rejects other types", func(t *testing.T) {
		router.ServeHTTP(httptest.NewRecorder(), multipartRequest(t, http.MethodPost, "/upload", "file",
			map[string][]byte{"me.png": []byte("%PDF-1.4 not an image")}, nil))
		assert.ErrorIs(t, gotErr, ErrInvalidFileType)
	})

	t.Run("rejects large files", func(t *testing.T) {
		router.ServeHTTP(httptest.NewRecorder(), multipartRequest(t, http.MethodPost, "/upload", "file",
			map[string][]byte{"big.png": bytes.Repeat([]byte{0}, 2048)}, nil))
		assert.ErrorIs(t, gotErr, ErrFileTooLarge)
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		router.ServeHTTP(httptest.NewRecorder(), multipartRequest(t, http.MethodPost, "/upload", "file",
			nil, map[string]string{"name": "x"}))
		assert.NoError(t, gotErr)
		assert.Nil(t, got)
	})
}
