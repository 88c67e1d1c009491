package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mamisoa/lego/internal/gmail"
)

type config struct {
	Port         string
	SecretsDir   string
	ServiceFile  string
	AuthFile     string
	DefaultEmail string
}

func loadConfig() config {
	c := config{
		Port:       "8001",
		SecretsDir: "/app/secrets",
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("SECRETS_DIR"); v != "" {
		c.SecretsDir = v
	}
	c.ServiceFile = filepath.Join(c.SecretsDir, "service.json")
	c.AuthFile = filepath.Join(c.SecretsDir, "credentials.json")
	if v := os.Getenv("GOOGLE_SERVICE_CREDENTIALS"); v != "" {
		c.ServiceFile = v
	}
	if v := os.Getenv("GOOGLE_AUTH_CREDENTIALS"); v != "" {
		c.AuthFile = v
	}
	c.DefaultEmail = os.Getenv("DEFAULT_EMAIL")
	return c
}

func main() {
	cfg := loadConfig()

	// The mounted credential files are a hard requirement. Refusing to
	// start beats serving errors on every call.
	creds, err := gmail.LoadCredentials(cfg.SecretsDir, cfg.ServiceFile, cfg.AuthFile)
	if err != nil {
		slog.Error("credentials unusable", "error", err)
		os.Exit(1)
	}
	if cfg.DefaultEmail == "" {
		slog.Warn("DEFAULT_EMAIL not set; requests must carry subject_email")
	}
	mailbox := gmail.Connect(creds, cfg.DefaultEmail)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	warmup(ctx, creds, mailbox)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: gmail.NewRouter(mailbox),
	}

	go func() {
		slog.Info("gmaild listening", "addr", srv.Addr, "mailbox", cfg.DefaultEmail)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}
}

// warmup surfaces credential problems at startup instead of on the
// first request. Failures are logged, not fatal: Google may be
// unreachable while the stack is still coming up.
func warmup(ctx context.Context, creds *gmail.Credentials, mailbox *gmail.Mailbox) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if creds.HasToken() {
		if tok, err := creds.AuthorizedUser(ctx); err != nil {
			slog.Warn("user token refresh failed", "error", err)
		} else {
			slog.Info("user token refreshed", "expires", tok.Expiry)
		}
	}
	if mailbox.DefaultEmail != "" {
		if id, err := mailbox.EnsureLabel(ctx, mailbox.DefaultEmail, gmail.LabelName); err != nil {
			slog.Warn("intake label check failed", "error", err)
		} else {
			slog.Info("intake label ready", "label", gmail.LabelName, "id", id)
		}
	}
}
