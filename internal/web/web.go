// Package web renders the public gallery and the admin pages.
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"comicgallery/internal/comic"
	"comicgallery/internal/httpx"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// ComicLister is the read side of the comic service.
type ComicLister interface {
	List(ctx context.Context) []comic.Comic
}

type Handler struct {
	comics         ComicLister
	sessions       httpx.TokenVerifier
	cookieName     string
	uploadsEnabled bool
	pages          map[string]*template.Template
}

type pageData struct {
	Authenticated  bool
	Comics         []comic.Comic
	Error          bool
	UploadsEnabled bool
}

func NewHandler(comics ComicLister, sessions httpx.TokenVerifier, cookieName string, uploadsEnabled bool) (*Handler, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"gallery", "login", "admin"} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return &Handler{
		comics:         comics,
		sessions:       sessions,
		cookieName:     cookieName,
		uploadsEnabled: uploadsEnabled,
		pages:          pages,
	}, nil
}

func (h *Handler) authenticated(r *http.Request) bool {
	token := httpx.SessionToken(r, h.cookieName)
	if token == "" {
		return false
	}
	_, err := h.sessions.Verify(token)
	return err == nil
}

// Gallery handles GET /
func (h *Handler) Gallery(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "gallery", pageData{
		Authenticated: h.authenticated(r),
		Comics:        h.comics.List(r.Context()),
	})
}

// Login handles GET /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.authenticated(r) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.render(w, r, "login", pageData{Error: r.URL.Query().Get("error") != ""})
}

// Admin handles GET /admin
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	if !h.authenticated(r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.render(w, r, "admin", pageData{
		Authenticated:  true,
		Comics:         h.comics.List(r.Context()),
		UploadsEnabled: h.uploadsEnabled,
	})
}

// Static serves the embedded stylesheet and scripts under /static/.
func (h *Handler) Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string, data pageData) {
	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		httpx.InternalError(w, r, err, "render "+page)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
