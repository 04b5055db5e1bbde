// Package server assembles the HTTP routes and middleware chain.
package server

import (
	"context"
	"net/http"
	"net/netip"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"comicgallery/internal/auth"
	"comicgallery/internal/comic"
	"comicgallery/internal/httpx"
	"comicgallery/internal/upload"
	"comicgallery/internal/web"
)

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	CORSOrigins     []string
	EnableHSTS      bool
	MaxBodyBytes    int64
	MaxUploadBytes  int64
	CookieSecure    bool
	LoginRatePerMin int
	// TrustedProxies may set X-Forwarded-For for the login limiter.
	TrustedProxies []netip.Prefix
}

func (o Options) withDefaults() Options {
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 1 << 20
	}
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = 10 << 20
	}
	if o.LoginRatePerMin <= 0 {
		o.LoginRatePerMin = 10
	}
	return o
}

type Deps struct {
	Comics  *comic.Service
	Uploads *upload.Service
	Auth    *auth.Service
	Web     *web.Handler
	// Ready maps a dependency name to its readiness check.
	Ready map[string]Pinger
}

// Router is the root handler. Stop releases the login limiter's background loop.
type Router struct {
	http.Handler
	limiter *httpx.RateLimitMiddleware
}

func (r *Router) Stop() {
	r.limiter.Stop()
}

func NewRouter(d Deps, opts Options) *Router {
	comicHandler := comic.NewHTTPHandler(d.Comics)
	uploadHandler := upload.NewHTTPHandler(d.Uploads)
	authHandler := auth.NewHTTPHandler(d.Auth, opts.CookieSecure)

	opts = opts.withDefaults()
	loginLimiter := httpx.PerMinute(opts.LoginRatePerMin).TrustProxies(opts.TrustedProxies)

	protected := httpx.AuthMiddleware(d.Auth, auth.CookieName)
	jsonBody := httpx.RequestSizeLimitMiddleware(opts.MaxBodyBytes)
	uploadBody := httpx.RequestSizeLimitMiddleware(opts.MaxUploadBytes)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", readyHandler(d.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /comics", comicHandler.List)
	mux.Handle("POST /comics", protected(jsonBody(http.HandlerFunc(comicHandler.Create))))
	mux.Handle("PUT /comics", protected(jsonBody(http.HandlerFunc(comicHandler.Update))))
	mux.Handle("DELETE /comics", protected(http.HandlerFunc(comicHandler.Delete)))

	mux.Handle("POST /upload", protected(uploadBody(http.HandlerFunc(uploadHandler.Upload))))

	mux.Handle("POST /auth", loginLimiter.Middleware(jsonBody(http.HandlerFunc(authHandler.Login))))
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /auth/session", authHandler.Session)

	mux.HandleFunc("GET /{$}", d.Web.Gallery)
	mux.HandleFunc("GET /login", d.Web.Login)
	mux.HandleFunc("GET /admin", d.Web.Admin)
	mux.Handle("GET /static/", d.Web.Static())

	// AccessLog must wrap the mux without copying the request so the matched pattern is visible.
	var handler http.Handler = mux
	handler = httpx.RecoveryMiddleware(handler)
	handler = httpx.AccessLogMiddleware(handler)
	handler = httpx.CORSMiddleware(opts.CORSOrigins)(handler)
	handler = httpx.SecurityHeadersMiddleware(opts.EnableHSTS)(handler)
	handler = httpx.RequestIDMiddleware(handler)

	return &Router{Handler: handler, limiter: loginLimiter}
}

func readyHandler(checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		failed := map[string]string{}
		for name, check := range checks {
			if err := check.Ping(ctx); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready", "failed": failed})
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}
