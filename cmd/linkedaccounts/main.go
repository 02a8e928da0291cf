package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/initify/identity-context/internal/app"
	"github.com/initify/identity-context/internal/fn"
	"github.com/initify/identity-context/internal/identity"
)

var (
	indent  bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "linkedaccounts <entity-id>",
	Short: "Resolve the accounts linked to an identity-graph entity",
	Long: `Runs the linked-accounts query for one entity against the Falcon
Identity Protection API and prints the response envelope as JSON.

Credentials come from FALCON_CLIENT_ID/FALCON_CLIENT_SECRET or
FALCON_ACCESS_TOKEN; a .env file in the working directory is loaded first.

Exit status is 0 on success and 1 when the envelope carries errors.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().BoolVar(&indent, "indent", false, "Indent the JSON output")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level to stderr")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := app.LoadConfigFromEnv()
	if err != nil {
		return err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	logger, err := app.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	srv, err := app.NewServer(cfg, logger)
	if err != nil {
		return err
	}

	body, err := json.Marshal(identity.Request{EntityID: args[0]})
	if err != nil {
		return err
	}
	resp := srv.LinkedAccounts(cmd.Context(), fn.Request{Body: body})

	enc := json.NewEncoder(cmd.OutOrStdout())
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(resp); err != nil {
		return err
	}
	if resp.Code != http.StatusOK {
		logger.Debug("linked accounts failed", zap.Int("code", resp.Code))
		_ = logger.Sync()
		os.Exit(1)
	}
	return nil
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "linkedaccounts: %v\n", err)
		os.Exit(2)
	}
}
