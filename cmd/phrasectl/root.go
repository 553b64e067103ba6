package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindset-labs/phrasematch"
	"github.com/mindset-labs/phrasematch/config"
)

var (
	configPath   string
	globalConfig *config.Config
	globalEngine *phrasematch.Engine
)

var rootCmd = &cobra.Command{
	Use:   "phrasectl",
	Short: "Manage and query a semantic phrase store",
	Long: `phrasectl resolves free-form text to canonical intent keys by
embedding similarity. Phrases are grouped under intent keys; matching
embeds the query and returns the key of the nearest stored phrase.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		path := configPath
		if path == "" {
			var err error
			path, err = config.DefaultPath()
			if err != nil {
				return fmt.Errorf("failed to resolve config path: %w", err)
			}
		}

		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		globalConfig = cfg

		opts, err := cfg.Options(cmd.Context())
		if err != nil {
			return err
		}
		engine, err := phrasematch.New(cmd.Context(), opts...)
		if err != nil {
			return fmt.Errorf("failed to open phrase engine: %w", err)
		}
		globalEngine = engine

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if globalEngine != nil {
			_ = globalEngine.Close()
			globalEngine = nil
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
}
