package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/glowheal/catalog/internal/httpapi"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog and lead API",
		Run:   runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Listen port (default: $APP_PORT)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.AppPort = port
	}
	logger := newLogger(cfg)
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	svc := openCatalog(cfg, logger)
	if res := svc.Resolve(""); res.Catalog == nil {
		logger.Fatal("reference catalog unavailable", zap.String("dir", cfg.CatalogDir))
	}

	leads, err := openLeads(cfg)
	if err != nil {
		logger.Fatal("open lead store", zap.String("store", cfg.LeadStore), zap.Error(err))
	}
	defer leads.Close()

	router := httpapi.NewRouter(svc, leads, logger, httpapi.Options{
		CORSOrigins:    cfg.Origins(),
		LeadRatePerMin: cfg.LeadRatePerMin,
		TrustedProxies: cfg.Proxies(),
	})
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("lead_store", cfg.LeadStore))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}
