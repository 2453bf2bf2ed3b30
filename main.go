package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kariqs/amexan-portal/controllers"
	"github.com/Kariqs/amexan-portal/initializers"
	"github.com/Kariqs/amexan-portal/middlewares"
	"github.com/Kariqs/amexan-portal/routes"
	"github.com/Kariqs/amexan-portal/services"
	"github.com/Kariqs/amexan-portal/storage"
	"github.com/Kariqs/amexan-portal/submission"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	initializers.LoadEnv()
	cfg, err := initializers.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger, err := initializers.NewLogger(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := objectStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to configure image storage", zap.Error(err))
	}

	server := gin.Default()
	server.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	auth := []gin.HandlerFunc{middlewares.RequireAuth(cfg.JWT.Secret), middlewares.RequireRole("admin", "supplier")}
	admin := []gin.HandlerFunc{middlewares.RequireAuth(cfg.JWT.Secret), middlewares.RequireAdmin()}

	var (
		catalog  submission.Catalog
		products submission.ProductService
	)
	routes.DefaultRoutes(server)
	if cfg.Remote.ProductsURL != "" {
		catalog = services.NewRemoteCatalog(cfg.Remote.ProductsURL, cfg.Remote.Token, cfg.Remote.Timeout)
		products = services.NewRemoteProducts(cfg.Remote.ProductsURL, cfg.Remote.Token, cfg.Remote.Timeout)
		routes.CategoryRoutes(server, controllers.NewCategoryController(catalog, nil), admin...)
		logger.Info("Using remote product service", zap.String("url", cfg.Remote.ProductsURL))
	} else {
		if err := initializers.ConnectToDB(cfg.DB); err != nil {
			logger.Fatal("Database unavailable", zap.Error(err))
		}
		if err := initializers.SyncDatabase(); err != nil {
			logger.Fatal("Database migration failed", zap.Error(err))
		}
		productStore := services.NewProductStore(initializers.DB)
		categories := services.NewCategoryCatalog(initializers.DB)
		catalog, products = categories, productStore
		routes.ProductRoutes(server, controllers.NewProductController(productStore, logger), admin...)
		routes.CategoryRoutes(server, controllers.NewCategoryController(categories, categories), admin...)
	}

	registry := submission.NewRegistry(submission.RegistryConfig{
		PreviewRoot: cfg.Drafts.PreviewDir,
		IdleTimeout: cfg.Drafts.IdleTimeout,
	}, store, catalog, products, logger.Named("drafts"))
	defer registry.Close()
	go sweepDrafts(ctx, registry, cfg.Drafts.SweepInterval)

	routes.UploadRoutes(server, controllers.NewUploadController(store, cfg.Drafts.MaxUploadSize, logger), auth...)
	routes.DraftRoutes(server, controllers.NewDraftController(registry, cfg.Drafts.MaxUploadSize, logger), auth...)

	srv := &http.Server{Addr: ":" + cfg.App.Port, Handler: server}
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}

// objectStore picks the remote upload endpoint when one is configured and
// the S3 bucket otherwise.
func objectStore(ctx context.Context, cfg *initializers.Config, logger *zap.Logger) (submission.ObjectStore, error) {
	if cfg.Storage.UploadURL != "" {
		return storage.NewHTTPGateway(cfg.Storage.UploadURL, "/upload", cfg.Remote.Token, cfg.Remote.Timeout), nil
	}
	return storage.NewS3Gateway(ctx, storage.S3Config{
		Bucket:       cfg.Storage.Bucket,
		Region:       cfg.Storage.Region,
		Endpoint:     cfg.Storage.Endpoint,
		AccessKey:    cfg.Storage.AccessKey,
		SecretKey:    cfg.Storage.SecretKey,
		KeyPrefix:    cfg.Storage.KeyPrefix,
		ACL:          cfg.Storage.ACL,
		UsePathStyle: cfg.Storage.UsePathStyle,
	}, logger.Named("s3"))
}

func sweepDrafts(ctx context.Context, registry *submission.Registry, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			registry.Sweep()
		}
	}
}
