// cmd/tools/catalog-seeder/main.go

// Command catalog-seeder checks the technology catalog and pushes it into
// Postgres and Elasticsearch. It also maintains the activity registry.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"atio-knowledge-base/internal/catalog"
	"atio-knowledge-base/internal/common/config"
	"atio-knowledge-base/internal/common/logger"
	"atio-knowledge-base/internal/models"
)

var (
	configPath string
	seedFile   string
	logLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "catalog-seeder",
	Short: "Load the technology catalog into the knowledge base stores",
	Long: `catalog-seeder validates technology records and writes them to the
stores the workers read from.

By default the built-in seed catalog is used. Pass --file to load records
from a JSON array instead.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: configs/config.yaml lookup)")
	rootCmd.PersistentFlags().StringVar(&seedFile, "file", "", "JSON file with technology records (default: built-in seed)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func newLogger() logger.Logger {
	return logger.NewStructured(logLevel, "console")
}

// readRecords returns the records from path, or the built-in seed when path
// is empty.
func readRecords(path string) ([]models.Technology, error) {
	if path == "" {
		return catalog.Seed()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var records []models.Technology
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}
