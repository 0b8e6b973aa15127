package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	avclient "github.com/GregMSThompson/stocks-snapshot/internal/client/alphavantage"
	"github.com/GregMSThompson/stocks-snapshot/internal/config"
	"github.com/GregMSThompson/stocks-snapshot/internal/display"
	"github.com/GregMSThompson/stocks-snapshot/internal/models"
	"github.com/GregMSThompson/stocks-snapshot/internal/render"
	"github.com/GregMSThompson/stocks-snapshot/internal/snapshot"
	"github.com/GregMSThompson/stocks-snapshot/internal/telemetry"
	"github.com/GregMSThompson/stocks-snapshot/pkg/logger"
)

const terminalContainer = "terminal"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.New()

	rootCmd := &cobra.Command{
		Use:           "snapshot",
		Short:         "Stock snapshot widget for the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.AddCommand(newWatchCmd(cfg))
	rootCmd.AddCommand(newPageCmd(cfg))
	return rootCmd
}

func newWatchCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [SYMBOL]",
		Short: "Show a live quote card, refreshed on an interval",
		Long: `Mount a stock snapshot widget and redraw it on every update.
Example: snapshot watch AAPL --sparkline=week --interval=30s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey, _ := cmd.Flags().GetString("api-key")
			interval, _ := cmd.Flags().GetDuration("interval")
			sparkline, _ := cmd.Flags().GetString("sparkline")
			if apiKey == "" {
				apiKey = cfg.AlphaVantageKey
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, cfg, cmd.OutOrStdout(), models.WidgetOptions{
				ContainerID:     terminalContainer,
				Symbol:          args[0],
				APIKey:          apiKey,
				RefreshInterval: interval.Milliseconds(),
				Sparkline:       sparkline,
			})
		},
	}
	cmd.Flags().String("api-key", "", "Alpha Vantage API key (defaults to ALPHAVANTAGEKEY)")
	cmd.Flags().Duration("interval", snapshot.DefaultRefreshInterval, "Quote refresh interval")
	cmd.Flags().String("sparkline", "", "Sparkline series: week or hourly")
	return cmd
}

func runWatch(ctx context.Context, cfg *config.Config, out io.Writer, opts models.WidgetOptions) error {
	log := logger.New(cfg.LogLevel, logger.NewTerminalHandler(os.Stderr))
	hooks := telemetry.Disabled(log)
	market := avclient.NewAdapter(log, cfg.AlphaVantageURL, cfg.AlphaVantageTimeout, hooks)

	doc := snapshot.NewDocument()
	if err := doc.Add(snapshot.NewContainer(terminalContainer, nil)); err != nil {
		return err
	}
	w, err := snapshot.Mount(ctx, doc, opts,
		snapshot.WithLogger(log),
		snapshot.WithMarketData(market),
		snapshot.WithTelemetry(hooks),
		snapshot.WithPacing(snapshot.FixedPacing(cfg.PacingDelay)),
	)
	if err != nil {
		return err
	}
	defer doc.Remove(terminalContainer)

	// The model reads the widget on every redraw; commits only wake it.
	p := tea.NewProgram(display.NewModel(w),
		tea.WithContext(ctx),
		tea.WithOutput(out),
	)
	w.Surface().OnCommit(func(models.WidgetView) {
		p.Send(display.FrameMsg{})
	})

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func newPageCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page [SYMBOL]",
		Short: "Print the server-rendered widget page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			font, _ := cmd.Flags().GetString("font")
			apiKey, _ := cmd.Flags().GetString("api-key")
			if apiKey == "" {
				apiKey = cfg.AlphaVantageKey
			}
			return writePage(cmd.OutOrStdout(), cfg, args[0], font, apiKey)
		},
	}
	cmd.Flags().String("font", "Inter, system-ui, sans-serif", "Font stack for the prerendered shell")
	cmd.Flags().String("api-key", "", "Alpha Vantage API key embedded in the bootstrap script")
	return cmd
}

func writePage(out io.Writer, cfg *config.Config, symbol, font, apiKey string) error {
	shell, err := render.PrerenderShell(symbol, font)
	if err != nil {
		return err
	}
	page, err := render.Page(render.PageData{
		FontURL: cfg.FontURL,
		Shell:   shell,
		Options: models.WidgetOptions{
			ContainerID:     "stocks-widget",
			Symbol:          symbol,
			APIKey:          apiKey,
			FontURL:         cfg.FontURL,
			RefreshInterval: (60 * time.Second).Milliseconds(),
			Theme:           map[string]string{"font-family": "Inter, sans-serif"},
			Sparkline:       string(models.SparklineWeek),
		},
	})
	if err != nil {
		return err
	}
	_, err = out.Write(page)
	return err
}
