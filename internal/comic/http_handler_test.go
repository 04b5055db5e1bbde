package comic

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comicgallery/internal/testutil"
)

func newTestHandler(t *testing.T) (*HTTPHandler, *MockRepository) {
	svc, repo := newTestService(t)
	return NewHTTPHandler(svc), repo
}

func TestHTTPHandler_List(t *testing.T) {
	handler, repo := newTestHandler(t)

	t.Run("success", func(t *testing.T) {
		repo.EXPECT().List(gomock.Any()).Return([]Comic{sampleComic("a1", "Test", time.Now())}, nil)

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/comics", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var comics []Comic
		require.NoError(t, json.NewDecoder(w.Body).Decode(&comics))
		require.Len(t, comics, 1)
		assert.Equal(t, "a1", comics[0].ID)
	})

	t.Run("store error yields empty array", func(t *testing.T) {
		repo.EXPECT().List(gomock.Any()).Return(nil, ErrPersistence)

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/comics", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})
}

func TestHTTPHandler_Create(t *testing.T) {
	handler, repo := newTestHandler(t)

	t.Run("created", func(t *testing.T) {
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		w := httptest.NewRecorder()
		handler.Create(w, testutil.NewRequest(http.MethodPost, "/comics", map[string]any{
			"title":     "Space Cats",
			"thumbnail": "http://x/y.png",
		}))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusCreated, resp.Code)
		assert.Equal(t, "Space Cats", resp.Body["title"])
		assert.Equal(t, false, resp.Body["featured"])
		assert.NotEmpty(t, resp.Body["id"])
		assert.NotEmpty(t, resp.Body["date"])
	})

	t.Run("malformed body", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Create(w, httptest.NewRequest(http.MethodPost, "/comics", strings.NewReader("{")))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "BAD_REQUEST", resp.ErrorCode())
	})

	t.Run("validation error", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Create(w, testutil.NewRequest(http.MethodPost, "/comics", map[string]any{"title": "No thumb"}))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION_ERROR", resp.ErrorCode())
		assert.Contains(t, string(resp.Raw), `"field":"thumbnail"`)
	})

	t.Run("store failure", func(t *testing.T) {
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(ErrPersistence)

		w := httptest.NewRecorder()
		handler.Create(w, testutil.NewRequest(http.MethodPost, "/comics", map[string]any{"title": "t", "thumbnail": "x"}))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusInternalServerError, resp.Code)
		assert.Equal(t, "INTERNAL_ERROR", resp.ErrorCode())
	})
}

func TestHTTPHandler_Update(t *testing.T) {
	handler, repo := newTestHandler(t)

	t.Run("success", func(t *testing.T) {
		repo.EXPECT().
			Update(gomock.Any(), Comic{ID: "a1", Title: "New", Thumbnail: "x", Featured: true}).
			Return(Comic{ID: "a1", Title: "New", Thumbnail: "x", Featured: true, Date: fixedNow}, nil)

		w := httptest.NewRecorder()
		handler.Update(w, testutil.NewRequest(http.MethodPut, "/comics", map[string]any{
			"id": "a1", "title": "New", "thumbnail": "x", "featured": true,
		}))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "a1", resp.Body["id"])
		assert.Equal(t, true, resp.Body["featured"])
	})

	t.Run("not found", func(t *testing.T) {
		repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(Comic{}, ErrNotFound)

		w := httptest.NewRecorder()
		handler.Update(w, testutil.NewRequest(http.MethodPut, "/comics", map[string]any{
			"id": "missing", "title": "t", "thumbnail": "x",
		}))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "NOT_FOUND", resp.ErrorCode())
	})
}

func TestHTTPHandler_Delete(t *testing.T) {
	handler, repo := newTestHandler(t)

	t.Run("success", func(t *testing.T) {
		repo.EXPECT().Delete(gomock.Any(), "a1").Return(nil)

		w := httptest.NewRecorder()
		handler.Delete(w, httptest.NewRequest(http.MethodDelete, "/comics?id=a1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true}`, w.Body.String())
	})

	t.Run("missing id", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Delete(w, httptest.NewRequest(http.MethodDelete, "/comics", nil))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION_ERROR", resp.ErrorCode())
	})

	t.Run("not found", func(t *testing.T) {
		repo.EXPECT().Delete(gomock.Any(), "nope").Return(ErrNotFound)

		w := httptest.NewRecorder()
		handler.Delete(w, httptest.NewRequest(http.MethodDelete, "/comics?id=nope", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
