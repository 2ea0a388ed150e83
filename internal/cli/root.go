package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	DBPath     string // forces the sqlite driver
	RedisAddr  string // forces the redis driver
	Namespace  string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the storefront CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront client state",
		Long: `Inspect and edit the persisted storefront state: the cart, the
wishlist and the promo banner, in sqlite, redis or memory storage.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	pf.StringVar(&opts.DBPath, "db", "", "sqlite database path (overrides config)")
	pf.StringVar(&opts.RedisAddr, "redis", "", "redis address (overrides config)")
	pf.StringVar(&opts.Namespace, "namespace", "", "storage key namespace (overrides config)")

	cmd.AddCommand(NewCartCommand(opts))
	cmd.AddCommand(NewWishlistCommand(opts))
	cmd.AddCommand(NewBannerCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
