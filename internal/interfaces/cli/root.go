// Package cli implements the tendergate command-line client.  Commands talk
// to the database directly through the same application services the API
// server uses, so results are identical whichever surface is queried.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tendergate/tendergate/internal/application/batch"
	"github.com/tendergate/tendergate/internal/application/classification"
	"github.com/tendergate/tendergate/internal/application/gapclosure"
	"github.com/tendergate/tendergate/internal/application/market"
	"github.com/tendergate/tendergate/internal/application/strategy"
	"github.com/tendergate/tendergate/internal/config"
	"github.com/tendergate/tendergate/internal/domain/condition"
	"github.com/tendergate/tendergate/internal/domain/dictionary"
	"github.com/tendergate/tendergate/internal/domain/reference"
	"github.com/tendergate/tendergate/internal/infrastructure/database/postgres"
	"github.com/tendergate/tendergate/internal/infrastructure/database/postgres/repositories"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
	"github.com/tendergate/tendergate/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type cliContextKey struct{}

// RootOptions holds the global flags shared by every subcommand.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration
}

// Services aggregates the application services the subcommands call.
type Services struct {
	Conditions condition.Repository
	Tenders    reference.TenderRepository
	Classifier classification.Service
	Facts      classification.FactSource
	Batch      batch.Orchestrator
	Gaps       gapclosure.Service
	Strategies strategy.Service
	Markets    market.Service
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Services     *Services
	OutputFormat string
	Verbose      bool

	conn   *postgres.Connection
	cancel context.CancelFunc
}

// NewRootCommand creates the root command with global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "tendergate",
		Short:   "Tendergate CLI for tender compliance evaluation and bid decision support",
		Long:    "Tendergate evaluates government tender gate conditions against a bidder's\naccumulated qualifications, recommends gap-closure paths, and analyzes the\ncompetitive landscape of a tender.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPostRun(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./tendergate.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, table)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "global operation timeout")

	cmd.AddCommand(
		NewClassifyCmd(),
		NewEvaluateCmd(),
		NewGapsCmd(),
		NewStrategyCmd(),
		NewCompetitorsCmd(),
		NewCompetitionCmd(),
	)

	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger, err := initLogger(opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	conn, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		Services:     buildServices(cfg, conn, logger),
		OutputFormat: opts.OutputFormat,
		Verbose:      opts.Verbose,
		conn:         conn,
	}

	ctx := context.WithValue(cmd.Context(), cliContextKey{}, cliCtx)
	if opts.Timeout > 0 {
		ctx, cliCtx.cancel = context.WithTimeout(ctx, opts.Timeout)
	}
	cmd.SetContext(ctx)

	return nil
}

func persistentPostRun(cmd *cobra.Command) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil
	}
	if cliCtx.cancel != nil {
		cliCtx.cancel()
	}
	if cliCtx.conn != nil {
		return cliCtx.conn.Close()
	}
	return nil
}

func buildServices(cfg *config.Config, conn *postgres.Connection, logger logging.Logger) *Services {
	conditions := repositories.NewConditionRepo(conn, logger)
	rules := repositories.NewRuleRepo(conn, logger)
	items := repositories.NewItemRepo(conn, logger)
	options := repositories.NewGapOptionRepo(conn, logger)
	partners := repositories.NewPartnerRepo(conn, logger)
	competitors := repositories.NewCompetitorRepo(conn, logger)
	tenders := repositories.NewTenderRepo(conn, logger)

	classifier := classification.NewService(
		classification.NewRecorder(conditions, nil, logger), logger)

	return &Services{
		Conditions: conditions,
		Tenders:    tenders,
		Classifier: classifier,
		Facts:      classification.NewFactSource(rules, items, classification.DefaultRuleNames),
		Batch:      batch.NewOrchestrator(cfg.Engine.BatchItemDelay, logger),
		Gaps:       gapclosure.NewService(options, partners, dictionary.NewNormalizer(), cfg.Engine.MaxPartnerSuggestions, logger),
		Strategies: strategy.NewService(logger),
		Markets:    market.NewService(competitors, tenders, cfg.Engine, logger),
	}
}

// initConfig loads configuration with priority: flags > env > file > defaults.
func initConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}

	searchPaths := []string{"./tendergate.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".tendergate", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/tendergate/config.yaml")

	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			return config.Load(p)
		}
	}
	return config.Load("")
}

// initLogger creates a console logger writing to stderr so command output
// on stdout stays machine-readable.
func initLogger(opts *RootOptions) (logging.Logger, error) {
	level := opts.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts CLIContext from a command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.NewValidation("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.NewValidation("command context not initialized")
	}
	return cliCtx, nil
}

// Execute is the entry point used by cmd/tendergate.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// PrintResult renders data in the format requested by the --output flag.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return printJSON(cmd, data)
	}

	switch strings.ToLower(cliCtx.OutputFormat) {
	case "json":
		return printJSON(cmd, data)
	case "table":
		return printTable(cmd, data)
	default:
		return printText(cmd, data)
	}
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(cmd *cobra.Command, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprintln(cmd.OutOrStdout(), v.String())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}

// tableProvider is implemented by command result types that have a natural
// tabular rendering.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

func printTable(cmd *cobra.Command, data interface{}) error {
	if tp, ok := data.(tableProvider); ok {
		fmt.Fprint(cmd.OutOrStdout(), FormatTable(tp.TableHeaders(), tp.TableRows()))
		return nil
	}
	return printText(cmd, data)
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// FormatTable renders headers and rows as an aligned ASCII table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if len(row[i]) > colWidths[i] {
				colWidths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	for i, h := range headers {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(padRight(h, colWidths[i]))
	}
	sb.WriteString("\n")
	for i, w := range colWidths {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(strings.Repeat("-", w))
	}
	sb.WriteString("\n")
	for _, row := range rows {
		for i := 0; i < len(headers); i++ {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			sb.WriteString(padRight(val, colWidths[i]))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
