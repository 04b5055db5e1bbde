package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"comicgallery/internal/auth"
	"comicgallery/internal/comic"
	"comicgallery/internal/config"
	"comicgallery/internal/events"
	"comicgallery/internal/platform/logging"
	"comicgallery/internal/server"
	"comicgallery/internal/store"
	"comicgallery/internal/upload"
	"comicgallery/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	for _, name := range cfg.InsecureDefaults() {
		logging.Warn().Str("setting", name).Msg("using insecure development default; set it before deploying")
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		logging.Error().Err(err).Str("driver", cfg.Store.Driver).Str("dsn", redactDSN(cfg.Store.DSN)).Msg("cannot open store")
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Warn().Err(err).Msg("close store")
		}
	}()
	logging.Info().Str("driver", st.Driver).Msg("store ready")

	ready := map[string]server.Pinger{"store": st}
	comicOpts := []comic.Option{comic.WithTimeout(cfg.Store.Timeout)}

	if cfg.NATS.URL != "" {
		publisher, err := events.NewPublisher(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			return err
		}
		defer publisher.Close()
		comicOpts = append(comicOpts, comic.WithNotifier(publisher))
		ready["nats"] = publisher
		logging.Info().Str("subject", cfg.NATS.Subject).Msg("publishing comic changes")
	}

	var objects upload.ObjectStore
	if cfg.UploadsEnabled() {
		s3Store, err := upload.NewS3Store(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		objects = s3Store
	} else {
		logging.Warn().Msg("S3_BUCKET not set; uploads disabled")
	}

	comics := comic.NewService(st.Comics, comicOpts...)
	uploads := upload.NewService(objects)
	authService := auth.NewService(auth.Config{
		Password:     cfg.Auth.AdminPassword,
		PasswordHash: cfg.Auth.AdminPasswordHash,
		Secret:       cfg.Auth.SessionSecret,
		TTL:          cfg.Auth.SessionTTL,
	})

	pages, err := web.NewHandler(comics, authService, auth.CookieName, uploads.Enabled())
	if err != nil {
		return err
	}

	trustedProxies, err := cfg.Server.TrustedProxyPrefixes()
	if err != nil {
		return err
	}

	router := server.NewRouter(server.Deps{
		Comics:  comics,
		Uploads: uploads,
		Auth:    authService,
		Web:     pages,
		Ready:   ready,
	}, server.Options{
		CORSOrigins:     cfg.Server.CORSOrigins,
		EnableHSTS:      cfg.Server.EnableHSTS,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		MaxUploadBytes:  cfg.Server.MaxUploadBytes,
		CookieSecure:    cfg.Auth.CookieSecure,
		LoginRatePerMin: cfg.Auth.LoginRatePerMin,
		TrustedProxies:  trustedProxies,
	})
	defer router.Stop()

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
