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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/study-resource-bot/api/swagger"
	"github.com/noah-isme/study-resource-bot/internal/handler"
	"github.com/noah-isme/study-resource-bot/internal/middleware"
	"github.com/noah-isme/study-resource-bot/internal/service"
	"github.com/noah-isme/study-resource-bot/pkg/config"
	appErrors "github.com/noah-isme/study-resource-bot/pkg/errors"
	"github.com/noah-isme/study-resource-bot/pkg/jobs"
	"github.com/noah-isme/study-resource-bot/pkg/logger"
	"github.com/noah-isme/study-resource-bot/pkg/messaging"
	reqidmiddleware "github.com/noah-isme/study-resource-bot/pkg/middleware/requestid"
	"github.com/noah-isme/study-resource-bot/pkg/response"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the WhatsApp webhook and REST API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()
	logr := rt.logger

	messenger, err := outboundMessenger(rt)
	if err != nil {
		return err
	}
	if queued, ok := messenger.(*messaging.QueuedMessenger); ok {
		queued.Start(context.WithoutCancel(ctx))
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			queued.Stop(stopCtx)
		}()
	}

	dialogue, err := rt.dialogue(ctx, messenger)
	if err != nil {
		return err
	}

	client, extractModel, _, err := rt.llmClient(ctx)
	if err != nil {
		return err
	}
	searchSvc := service.NewSearchService(rt.catalog, rt.extractor(client, extractModel), validator.New(), rt.metrics, logr)

	router := newRouter(rt.cfg, logr, rt.metrics, routes{
		webhook: handler.NewWebhookHandler(dialogue, logr),
		search:  handler.NewSearchHandler(searchSvc),
		metrics: handler.NewMetricsHandler(rt.metrics, rt.catalog),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", rt.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", rt.cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type routes struct {
	webhook *handler.WebhookHandler
	search  *handler.SearchHandler
	metrics *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, h routes) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", h.metrics.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.POST("/whatsapp", h.webhook.WhatsApp)

	api := r.Group(cfg.APIPrefix)
	api.GET("/catalog/subjects", h.search.Subjects)
	api.POST("/resources/search", h.search.Search)
	api.GET("/resources/export", h.search.Export)

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.ErrNotFound)
	})

	return r
}

// outboundMessenger picks Twilio when credentials are configured and stdout
// otherwise, optionally behind the async delivery queue.
func outboundMessenger(rt *runtime) (messaging.Messenger, error) {
	var messenger messaging.Messenger
	if rt.cfg.Twilio.AccountSID == "" {
		if rt.cfg.Env == config.EnvProduction {
			return nil, errors.New("TWILIO_ACCOUNT_SID is required in production")
		}
		rt.logger.Warn("twilio credentials missing, replies go to stdout")
		messenger = messaging.NewConsoleMessenger(os.Stdout)
	} else {
		twilioMessenger, err := messaging.NewTwilioMessenger(rt.cfg.Twilio.AccountSID, rt.cfg.Twilio.AuthToken, rt.cfg.Twilio.FromNumber, rt.logger)
		if err != nil {
			return nil, err
		}
		messenger = twilioMessenger
	}

	if !rt.cfg.Delivery.Async {
		return messenger, nil
	}
	return messaging.NewQueuedMessenger(messenger, jobs.QueueConfig{
		Workers:    rt.cfg.Delivery.Workers,
		BufferSize: rt.cfg.Delivery.Buffer,
		MaxRetries: rt.cfg.Delivery.Retries,
		RetryDelay: rt.cfg.Delivery.RetryDelay,
		Logger:     rt.logger,
	}), nil
}
