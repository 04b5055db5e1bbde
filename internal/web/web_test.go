package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comicgallery/internal/comic"
)

type stubLister []comic.Comic

func (s stubLister) List(context.Context) []comic.Comic { return s }

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (string, error) {
	if token == "valid" {
		return "admin", nil
	}
	return "", errors.New("invalid")
}

func newTestHandler(t *testing.T, comics ...comic.Comic) *Handler {
	t.Helper()
	h, err := NewHandler(stubLister(comics), stubVerifier{}, "session", true)
	require.NoError(t, err)
	return h
}

func withSession(r *http.Request) *http.Request {
	r.AddCookie(&http.Cookie{Name: "session", Value: "valid"})
	return r
}

func TestGallery(t *testing.T) {
	h := newTestHandler(t,
		comic.Comic{ID: "1", Title: "Space Cats", Thumbnail: "http://x/cats.png", Featured: true, Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		comic.Comic{ID: "2", Title: "<script>alert(1)</script>", Thumbnail: "http://x/y.png", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	)

	w := httptest.NewRecorder()
	h.Gallery(w, httptest.NewRequest(http.MethodGet, "/", nil))

	body := w.Body.String()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, body, "Space Cats")
	assert.Contains(t, body, `class="card featured"`)
	assert.Contains(t, body, "Feb 1, 2024")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, `href="/login"`)
}

func TestGallery_Empty(t *testing.T) {
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	h.Gallery(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Contains(t, w.Body.String(), "No comics yet")
}

func TestAdmin_RedirectsWithoutSession(t *testing.T) {
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	h.Admin(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestAdmin_WithSession(t *testing.T) {
	h := newTestHandler(t, comic.Comic{ID: "abc", Title: "Robot Friends", Thumbnail: "http://x/r.png", Date: time.Now()})

	w := httptest.NewRecorder()
	h.Admin(w, withSession(httptest.NewRequest(http.MethodGet, "/admin", nil)))

	body := w.Body.String()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, `data-id="abc"`)
	assert.Contains(t, body, `id="file"`)
	assert.Contains(t, body, "/static/admin.js")
}

func TestLogin(t *testing.T) {
	h := newTestHandler(t)

	t.Run("form", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Login(w, httptest.NewRequest(http.MethodGet, "/login", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `action="/auth"`)
		assert.NotContains(t, w.Body.String(), "Wrong password")
	})

	t.Run("error flag", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Login(w, httptest.NewRequest(http.MethodGet, "/login?error=1", nil))
		assert.Contains(t, w.Body.String(), "Wrong password")
	})

	t.Run("already signed in", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Login(w, withSession(httptest.NewRequest(http.MethodGet, "/login", nil)))
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/admin", w.Header().Get("Location"))
	})
}

func TestStatic(t *testing.T) {
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	h.Static().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/admin.js", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "comic-form")
}

func TestStatic_Placeholders(t *testing.T) {
	h := newTestHandler(t)

	for i := 1; i <= 4; i++ {
		w := httptest.NewRecorder()
		path := "/static/placeholders/placeholder-" + strconv.Itoa(i) + ".svg"
		h.Static().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"), path)
	}
}
