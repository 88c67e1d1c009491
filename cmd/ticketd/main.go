package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mamisoa/lego/internal/ticket"
)

type config struct {
	Port       string
	WebhookURL string
	TicketDir  string
}

func loadConfig() config {
	c := config{
		Port: "8000",
		// the engine's upload trigger, reachable by service name on the
		// stack network
		WebhookURL: "http://n8n:5678/webhook/ticket-upload",
		TicketDir:  ".",
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		c.WebhookURL = v
	}
	if v := os.Getenv("TICKET_DIR"); v != "" {
		c.TicketDir = v
	}
	return c
}

func main() {
	cfg := loadConfig()

	store := ticket.NewStore(cfg.TicketDir)
	forwarder := &ticket.Forwarder{
		URL:    cfg.WebhookURL,
		Client: &http.Client{Timeout: 30 * time.Second},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: ticket.NewRouter(store, forwarder),
	}

	go func() {
		slog.Info("ticketd listening", "addr", srv.Addr, "webhook", cfg.WebhookURL)
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
