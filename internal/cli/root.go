// Package cli implements the glowheal CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/glowheal/catalog/internal/catalog"
	"github.com/glowheal/catalog/internal/config"
	"github.com/glowheal/catalog/internal/lead"
	"github.com/glowheal/catalog/internal/logging"
)

var (
	catalogDir string
	storeFlag  string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "glowheal",
	Short: "City-aware catalog and lead service",
	Long:  "Resolves Glowheal pricing per city with fallback to Pune, validates catalog data and serves the catalog API.",
}

func init() {
	RootCmd.PersistentFlags().StringVar(&catalogDir, "catalog-dir", "", "Catalog directory (default: $CATALOG_DIR or embedded data)")
	RootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "Lead store: file, sqlite or bolt (default: $LEAD_STORE)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitErr("load config", err)
	}
	if catalogDir != "" {
		cfg.CatalogDir = catalogDir
	}
	if storeFlag != "" {
		cfg.LeadStore = storeFlag
	}
	return cfg
}

func newLogger(cfg *config.Config) *zap.Logger {
	logger, err := logging.New(logging.Options{
		Production: cfg.IsProduction(),
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
	})
	if err != nil {
		exitErr("init logger", err)
	}
	return logger
}

func openCatalog(cfg *config.Config, logger *zap.Logger) *catalog.Service {
	var src catalog.Source = catalog.NewEmbeddedSource()
	if cfg.CatalogDir != "" {
		src = catalog.NewDirSource(cfg.CatalogDir)
	}
	return catalog.NewService(src, catalog.WithLogger(logger), catalog.WithCache(cfg.CatalogCache))
}

func openLeads(cfg *config.Config) (lead.Store, error) {
	switch cfg.LeadStore {
	case config.StoreSQLite:
		return lead.NewSQLiteStore(cfg.LeadDB)
	case config.StoreBolt:
		return lead.NewBoltStore(cfg.LeadDB)
	case config.StoreFile, "":
		return lead.NewFileStore(cfg.LeadDir)
	}
	return nil, fmt.Errorf("unknown lead store %q", cfg.LeadStore)
}

// quietCatalog opens the catalog for one-shot commands, logging only warnings.
func quietCatalog() *catalog.Service {
	cfg := loadConfig()
	cfg.LogFile = ""
	if cfg.LogLevel == "info" || cfg.LogLevel == "debug" {
		cfg.LogLevel = "warn"
	}
	return openCatalog(cfg, newLogger(cfg))
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
