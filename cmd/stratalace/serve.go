package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stratalace/site/internal/config"
	"github.com/stratalace/site/internal/content"
	"github.com/stratalace/site/internal/intake"
	"github.com/stratalace/site/internal/leads"
	"github.com/stratalace/site/internal/site"
	"github.com/stratalace/site/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	handler, err := buildHandler(cfg, logger, !disablePDF)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stopCancel()
		if err := srv.Shutdown(stopCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("stratalace listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("site", cfg.Site.Name),
		zap.Bool("remote_intake", cfg.Leads.Endpoint != ""),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	logger.Info("stratalace stopped")
	return nil
}

// buildHandler assembles content, lead intake and the site routes from cfg.
func buildHandler(cfg *config.Config, logger *zap.Logger, withPDF bool) (http.Handler, error) {
	catalog, err := content.Load()
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}

	svc, err := buildIntake(cfg, logger)
	if err != nil {
		return nil, err
	}

	var adapter leads.SubmissionAdapter = intake.NewLocalAdapter(svc)
	if cfg.Leads.Endpoint != "" {
		adapter = leads.NewHTTPAdapter(cfg.Leads.Endpoint, logger)
	}

	var pdf site.CaseStudyRenderer
	if withPDF {
		pdf = site.NewChromiumPDFRenderer(cfg.PDF.ChromePath)
	}

	return site.NewServer(site.Config{
		Info: site.Info{
			Name:          cfg.Site.Name,
			URL:           cfg.Site.URL,
			AnalyticsID:   cfg.Site.AnalyticsID,
			SchedulingURL: cfg.Site.SchedulingURL,
		},
		Catalog:       catalog,
		Adapter:       adapter,
		Intake:        intake.NewHandler(svc, logger),
		PDF:           pdf,
		SubmitTimeout: cfg.Leads.SubmitTimeout,
		Logger:        logger,
	})
}

// buildIntake enables one notifier per configured integration.
func buildIntake(cfg *config.Config, logger *zap.Logger) (*intake.Service, error) {
	var notifiers []intake.Notifier
	if cfg.CRM.APIURL != "" {
		notifiers = append(notifiers, intake.NewCRMNotifier(cfg.CRM.APIURL, cfg.CRM.APIKey))
	}
	if cfg.Notify.Email != "" {
		notifiers = append(notifiers, intake.NewEmailNotifier(cfg.Notify.Email, logger))
	}
	if cfg.Notify.ChatWebhookURL != "" {
		chat, err := intake.NewChatNotifier(cfg.Notify.ChatWebhookURL, cfg.Site.URL)
		if err != nil {
			return nil, fmt.Errorf("CHAT_WEBHOOK_URL: %w", err)
		}
		notifiers = append(notifiers, chat)
	}

	var briefer intake.Briefer
	if cfg.AI.AnthropicAPIKey != "" {
		b, err := intake.NewAnthropicBriefer(cfg.AI.AnthropicAPIKey)
		if err != nil {
			return nil, err
		}
		briefer = b
	}

	names := make([]string, 0, len(notifiers))
	for _, n := range notifiers {
		names = append(names, n.Name())
	}
	logger.Info("lead intake configured",
		zap.Strings("notifiers", names),
		zap.Bool("ai_brief", briefer != nil),
	)
	return intake.NewService(intake.Config{
		Notifiers: notifiers,
		Briefer:   briefer,
		Logger:    logger,
	}), nil
}
