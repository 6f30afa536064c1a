package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/LiteracyBridge/utilities-sub000/internal/bootstrap"
	collecteddto "github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/dto"
	"github.com/LiteracyBridge/utilities-sub000/internal/platform/config"
	"github.com/LiteracyBridge/utilities-sub000/internal/platform/logging"
	"github.com/LiteracyBridge/utilities-sub000/internal/ui/theme"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	v          *viper.Viper
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &options{v: config.NewViper()}

	root := &cobra.Command{
		Use:           "tbstats",
		Short:         "Reconstruct Talking Book logs and export usage statistics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "YAML config file")
	flags.String("output-dir", "tbstats-out", "export directory")
	flags.String("db", "", "SQLite projection path (default <output-dir>/.tbstats/tbstats.db)")
	flags.String("report-dir", "", "session report directory (default <output-dir>/reports)")
	flags.String("metrics-file", "", "Prometheus textfile to write after a batch")
	flags.Int("workers", 4, "bundles processed concurrently")
	flags.Bool("verbose", false, "log every state machine issue")
	flags.String("log-level", "info", "log level: debug|info|warn|error")
	flags.String("log-format", "text", "log format: text|json")
	for key, flag := range map[string]string{
		config.KeyOutputDir:   "output-dir",
		config.KeyDBPath:      "db",
		config.KeyReportDir:   "report-dir",
		config.KeyMetricsFile: "metrics-file",
		config.KeyWorkers:     "workers",
		config.KeyVerbose:     "verbose",
		config.KeyLogLevel:    "log-level",
		config.KeyLogFormat:   "log-format",
	} {
		_ = opts.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(newProcessCmd(opts))
	root.AddCommand(newTimelineCmd(opts))
	root.AddCommand(newCollectionsCmd(opts))
	root.AddCommand(newBrowseCmd(opts))
	return root
}

func loadApp(opts *options) (*bootstrap.App, error) {
	cfg, err := config.Load(opts.v, opts.configFile)
	if err != nil {
		return nil, err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	return bootstrap.New(cfg, logger)
}

func newProcessCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "process <bundle-dir>...",
		Short: "Process unpacked collection bundles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer app.Close()

			batch, err := app.CollectedCLI.Process(cmd.Context(), args)
			if asJSON {
				if jerr := writeJSON(cmd, batch); jerr != nil {
					return jerr
				}
			} else {
				printBatch(cmd, batch)
			}
			if err != nil {
				return err
			}
			if len(batch.Failures) > 0 {
				return fmt.Errorf("%d of %d bundle(s) failed", len(batch.Failures), len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

var (
	labelStyle = theme.Muted
	idStyle    = theme.Title
)

func printBatch(cmd *cobra.Command, batch collecteddto.BatchOutput) {
	w := cmd.OutOrStdout()
	for _, b := range batch.Bundles {
		tb := b.TalkingBookID
		if tb == "" {
			tb = "(no talking book id)"
		}
		_, _ = fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, idStyle.Render(tb), "  ", labelStyle.Render(b.BundleDir)))
		_, _ = fmt.Fprintf(w, "  %s %d  %s %d  %s %d  %s %d  %s %s  %s %d\n",
			labelStyle.Render("files"), b.Files,
			labelStyle.Render("records"), b.Records,
			labelStyle.Render("messages"), b.Messages,
			labelStyle.Render("plays"), b.Plays,
			labelStyle.Render("errors"), theme.Count(b.Errors),
			labelStyle.Render("warnings"), b.Warnings)
		if len(b.Supplied) > 0 {
			_, _ = fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("supplied"), strings.Join(b.Supplied, ", "))
		}
		for _, p := range b.Problems {
			_, _ = fmt.Fprintf(w, "  %s %s\n", theme.Hot.Render("!"), p)
		}
	}
	for _, f := range batch.Failures {
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", theme.Bad.Render("failed"), f.BundleDir, f.Error)
	}
}

func newTimelineCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "timeline <bundle-dir>",
		Short: "Print the reconstructed timeline of one bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer app.Close()

			out, err := app.LogsCLI.Timeline(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, out)
			}
			w := cmd.OutOrStdout()
			for _, e := range out.Timeline {
				_, _ = fmt.Fprintf(w, "%s:%d\t%s\t%s\t%s\n", e.File, e.Line, e.Time, e.Kind, e.Params)
				for _, issue := range e.Issues {
					_, _ = fmt.Fprintf(w, "\t%s %s\n", theme.Hot.Render("!"), issue)
				}
			}
			_, _ = fmt.Fprintf(w, "files=%d lines=%d records=%d errors=%d warnings=%d boots=%d\n",
				len(out.Files), out.Lines, out.Records, out.Errors, out.Warnings, out.Boots)
			for _, p := range out.Problems {
				_, _ = fmt.Fprintf(w, "%s %s\n", theme.Hot.Render("!"), p)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the timeline as JSON")
	return cmd
}

func newCollectionsCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List processed collections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer app.Close()

			list, err := app.CollectedCLI.ListCollections(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, list)
			}
			if len(list) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no collections")
				return nil
			}
			for _, c := range list {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\tmessages=%d plays=%d errors=%d\n",
					c.CollectionID, c.TalkingBookID, c.Deployment, c.ContentPackage, c.Messages, c.Plays, c.Errors)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print collections as JSON")
	return cmd
}

func newBrowseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse processed collections in a terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer app.Close()
			return bootstrap.RunTUI(app)
		},
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
