package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"llm-investment-agent/internal/logger"
	"llm-investment-agent/internal/memory"
	"llm-investment-agent/internal/trace"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "agent",
		Short: "LLM-assisted investment recommendation agent",
		Long: `agent collects quotes, news and news sentiment for the configured
companies, asks a language model for a BUY/HOLD/SELL recommendation on each
and stores the latest recommendation per symbol.

Running it without a subcommand performs exactly one analysis cycle.`,
		SilenceUsage: true,
		RunE:         runCycle,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")
	rootCmd.AddCommand(memoryCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCycle(cmd *cobra.Command, _ []string) error {
	if err := initializeSystem(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer shutdown()

	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return err
	}

	deps, err := initializeAgent(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.close(ctx)

	compressOldLogs(ctx, cfg, deps.journal)

	_, err = deps.agent.RunCycle(ctx)
	deps.exportMetrics(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Analysis cycle failed", err)
		return err
	}
	return nil
}

func memoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect stored recommendations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <SYMBOL>",
		Short: "Print the latest stored recommendation for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, mem, release, err := openMemory(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			symbol := strings.ToUpper(strings.TrimSpace(args[0]))
			rec, ok := mem.GetCompanyData(ctx, symbol)
			if !ok {
				return fmt.Errorf("no stored recommendation for %s", symbol)
			}

			out, err := json.MarshalIndent(rec, "", "    ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List symbols with a stored recommendation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, mem, release, err := openMemory(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			writeMemoryList(ctx, cmd.OutOrStdout(), mem)
			return nil
		},
	})

	return cmd
}

// writeMemoryList prints one line per stored symbol, sorted, with the
// action and the update time in UTC.
func writeMemoryList(ctx context.Context, w io.Writer, mem *memory.Store) {
	symbols := mem.Symbols()
	sort.Strings(symbols)
	for _, sym := range symbols {
		rec, _ := mem.GetCompanyData(ctx, sym)
		updated := "unknown"
		if t := rec.UpdatedAt(); !t.IsZero() {
			updated = t.UTC().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%-6s %-5s %s\n", sym, rec.LatestRecommendation.Action, updated)
	}
}

func shutdown() {
	_ = trace.Shutdown(context.Background())
	_ = logger.Sync()
}
