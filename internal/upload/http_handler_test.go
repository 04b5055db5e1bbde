package upload

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"comicgallery/internal/testutil"
)

func multipartRequest(t *testing.T, field, fileName, contentType, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+fileName+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestHTTPHandler_Upload(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		store := &mockObjectStore{}
		handler := NewHTTPHandler(NewService(store))
		store.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "comics/") && strings.HasSuffix(key, "-my_comic_.png")
		}), mock.Anything, int64(4), "image/png").Return("https://cdn.test/k", nil).Once()

		w := httptest.NewRecorder()
		handler.Upload(w, multipartRequest(t, "file", "my comic!.png", "image/png", "data"))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "https://cdn.test/k", resp.Body["url"])
		store.AssertExpectations(t)
	})

	t.Run("default content type", func(t *testing.T) {
		store := &mockObjectStore{}
		handler := NewHTTPHandler(NewService(store))
		store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, "application/octet-stream").
			Return("https://cdn.test/k", nil).Once()

		w := httptest.NewRecorder()
		handler.Upload(w, multipartRequest(t, "file", "raw", "", "data"))

		assert.Equal(t, http.StatusOK, w.Code)
		store.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		handler := NewHTTPHandler(NewService(&mockObjectStore{}))

		w := httptest.NewRecorder()
		handler.Upload(w, multipartRequest(t, "other", "a.png", "image/png", "data"))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "BAD_REQUEST", resp.ErrorCode())
	})

	t.Run("not multipart", func(t *testing.T) {
		handler := NewHTTPHandler(NewService(&mockObjectStore{}))

		w := httptest.NewRecorder()
		handler.Upload(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("{}")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		store := &mockObjectStore{}
		handler := NewHTTPHandler(NewService(store))
		store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("timeout")).Once()

		w := httptest.NewRecorder()
		handler.Upload(w, multipartRequest(t, "file", "a.png", "image/png", "data"))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadGateway, resp.Code)
		assert.Equal(t, "UPLOAD_FAILED", resp.ErrorCode())
	})

	t.Run("disabled", func(t *testing.T) {
		handler := NewHTTPHandler(NewService(nil))

		w := httptest.NewRecorder()
		handler.Upload(w, multipartRequest(t, "file", "a.png", "image/png", "data"))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
		assert.Equal(t, "UPLOAD_DISABLED", resp.ErrorCode())
	})
}
