// Package cli wires the pagemark commands to the core services.
package cli

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	configfile "github.com/pagemark-labs/pagemark-cli/internal/adapters/driven/config/file"
	"github.com/pagemark-labs/pagemark-cli/internal/adapters/driven/markdownfs"
	"github.com/pagemark-labs/pagemark-cli/internal/adapters/driven/render"
	"github.com/pagemark-labs/pagemark-cli/internal/core/services"
	"github.com/pagemark-labs/pagemark-cli/internal/logger"
)

// version is stamped at build time via -ldflags.
var version = "dev"

var (
	flagVerbose   bool
	flagConfigDir string
	flagBooksDir  string
)

// cfg is resolved once per invocation in the root PersistentPreRunE.
var cfg *configfile.Config

var rootCmd = &cobra.Command{
	Use:   "pagemark",
	Short: "Sync reading highlights and notes into markdown files",
	Long: `Pagemark extracts highlights and notes from the reading application's
local store and keeps one markdown document per book, updating only books
whose annotations changed and preserving your own notes in each file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Load .env if present (ignore errors).
		_ = godotenv.Load()

		var err error
		cfg, err = configfile.Load(flagConfigDir)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if flagBooksDir != "" {
			cfg.BooksDir = flagBooksDir
		}
		logger.SetVerbose(flagVerbose || cfg.Verbose)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "config directory (default ~/.pagemark)")
	rootCmd.PersistentFlags().StringVar(&flagBooksDir, "books-dir", "", "book documents directory (overrides config)")
}

// Root returns the root command for execution by main.
func Root() *cobra.Command {
	return rootCmd
}

// newLibrary builds a Library over the file store and the markdown renderer.
func newLibrary() (*services.Library, error) {
	renderer, err := render.NewRenderer()
	if err != nil {
		return nil, err
	}
	return services.NewLibrary(markdownfs.NewStore(), renderer), nil
}
