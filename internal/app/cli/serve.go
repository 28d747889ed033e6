package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"auction-house/config"
	"auction-house/database"
	authapi "auction-house/internal/api/auth"
	routes "auction-house/internal/app/http"
	"auction-house/internal/app/http/middleware"
	"auction-house/internal/domain/auctions"
	"auction-house/internal/domain/billing"
	"auction-house/internal/domain/catalogue"
	"auction-house/internal/domain/clients"
	"auction-house/internal/domain/media"
	"auction-house/internal/infra/events"
	"auction-house/internal/infra/pdf"
	"auction-house/internal/infra/storage"
	"auction-house/internal/infra/stripe"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func newStore(ctx context.Context) (media.Store, error) {
	if config.STORAGE_DRIVER == "s3" {
		return storage.NewS3(ctx, storage.S3Config{
			Bucket:    config.S3_BUCKET,
			Region:    config.S3_REGION,
			Endpoint:  config.S3_ENDPOINT,
			AccessKey: config.S3_ACCESS_KEY,
			SecretKey: config.S3_SECRET_KEY,
			PublicURL: config.PUBLIC_BASE_URL,
		})
	}
	return storage.NewDisk(config.UPLOAD_DIR, config.PUBLIC_BASE_URL)
}

func newPublisher() (events.Publisher, func(), error) {
	if config.NATS_URL == "" {
		slog.Info("NATS_URL not set, lifecycle events are not published")
		return events.Noop{}, func() {}, nil
	}
	p, err := events.Connect(config.NATS_URL)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if config.APP_ENV == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	database.InitDB()

	store, err := newStore(ctx)
	if err != nil {
		return fmt.Errorf("image storage: %w", err)
	}
	publisher, closePublisher, err := newPublisher()
	if err != nil {
		return err
	}
	defer closePublisher()

	chrome := pdf.NewChrome()
	defer chrome.Close()

	opts := auctions.Options{
		Commission: config.Commission,
		Withdrawal: config.Withdrawal,
		Triage:     config.Triage,
		Events:     publisher,
		Store:      store,
	}
	db := database.DB
	deps := routes.Deps{
		Tokens:     clients.NewTokens(config.JWT_SECRET, config.JWT_TTL),
		Clients:    clients.NewService(db),
		Auctions:   auctions.NewAuctionManager(db, opts),
		Lots:       auctions.NewLotManager(db, opts),
		Catalogue:  catalogue.NewService(db),
		PDF:        catalogue.NewPDFService(db, chrome, config.PDF_CACHE_SIZE, "http://localhost:"+config.PORT),
		Billing:    billing.NewService(db, stripe.NewClient(config.STRIPE_SECRET_KEY), config.APP_URL),
		Commission: config.Commission,
		Triage:     config.Triage,
		Google: &authapi.GoogleConfig{
			ClientID:         config.GOOGLE_CLIENT_ID,
			ClientSecret:     config.GOOGLE_CLIENT_SECRET,
			RedirectURL:      config.GOOGLE_REDIRECT_URL,
			FrontendRedirect: config.GOOGLE_FRONTEND_REDIRECT,
			SecureCookie:     config.APP_ENV == "production",
		},
		StripeWebhookSecret: config.STRIPE_WEBHOOK_SECRET,
	}
	if config.STORAGE_DRIVER == "disk" {
		deps.UploadDir = config.UPLOAD_DIR
		deps.UploadPath = config.PUBLIC_BASE_URL
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(slog.Default()))
	r.Use(cors.New(corsConfig(config.CORS_ORIGIN)))
	routes.RegisterRoutes(r, deps)

	server := &http.Server{
		Addr:              ":" + config.PORT,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// PDF rendering can take a while
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("Server stopped gracefully")
	return nil
}

func corsConfig(origins string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			c.AllowOrigins = append(c.AllowOrigins, o)
		}
	}
	if len(c.AllowOrigins) == 0 {
		c.AllowOrigins = []string{"http://localhost:3000"}
	}
	return c
}
