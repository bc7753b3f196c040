package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "gamestorectl",
		Short: "CLI tool for the game store",
		Long: `gamestorectl queries the game store's REST endpoints and drives purchases.

It can log in, list games, high scores and sales, start a purchase and
play the part of the payment service for testing.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load token from file if not provided via flag/env
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			client = NewClient(cfg.ServerURL, cfg.Token, newLogger(cmd.ErrOrStderr(), cfg.Verbose))
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: GAMESTORE_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Session token (env: GAMESTORE_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: GAMESTORE_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVar(&cfg.PaymentSecret, "secret", cfg.PaymentSecret, "Payment secret for signing callbacks (env: PAYMENT_SECRET)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Log each request to stderr")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newGamesCmd())
	rootCmd.AddCommand(newHighScoresCmd())
	rootCmd.AddCommand(newSalesCmd())
	rootCmd.AddCommand(newBuyCmd())
	rootCmd.AddCommand(newPayCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// newLogger writes request traces to w when verbose, and nothing otherwise
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(tint.NewHandler(w, &tint.Options{Level: slog.LevelDebug}))
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
