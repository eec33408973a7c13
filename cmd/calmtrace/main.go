package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"calmtrace/internal/bootstrap"
	"calmtrace/internal/platform/config"
	"calmtrace/internal/ui/theme"
)

type rootFlags struct {
	dataDir    string
	configFile string
	jsonOut    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "calmtrace",
		Short:         "Biometric baseline and stress correlation engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data", "./data", "data directory")
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (default <data>/calmtrace.yaml)")
	root.PersistentFlags().BoolVar(&flags.jsonOut, "json", false, "print JSON instead of tables")

	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newIngestCmd(flags))
	root.AddCommand(newBaselineCmd(flags))
	root.AddCommand(newAnomalyCmd(flags))
	root.AddCommand(newInterventionCmd(flags))
	root.AddCommand(newReliefCmd(flags))
	root.AddCommand(newRiskCmd(flags))
	root.AddCommand(newBackupCmd(flags))
	return root
}

// withApp loads config, wires the app and closes it after fn.
func withApp(flags *rootFlags, logOut io.Writer, fn func(*bootstrap.App) error) error {
	cfg, err := config.Load(flags.dataDir, flags.configFile)
	if err != nil {
		return err
	}
	app, err := bootstrap.New(cfg, logOut)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, sample queue consumer and risk scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				return app.Serve(ctx)
			})
		},
	}
}

func newIngestCmd(flags *rootFlags) *cobra.Command {
	ingest := &cobra.Command{Use: "ingest", Short: "Ingest biometric samples"}
	ingest.AddCommand(&cobra.Command{
		Use:   "file <path.jsonl>",
		Short: "Ingest one JSON sample per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open samples: %w", err)
			}
			defer f.Close()
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				out, err := app.SampleCLI.IngestJSONL(context.Background(), f)
				if err != nil {
					return err
				}
				if flags.jsonOut {
					return printJSON(cmd.OutOrStdout(), out)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "stored %d, failed %d, anomalies %d, sessions resolved %d\n",
					out.Stored, out.Failed, out.AnomaliesRaised, out.SessionsResolved)
				return nil
			})
		},
	})
	return ingest
}

func newBackupCmd(flags *rootFlags) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the database and upload it when a bucket is configured",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				if dir == "" {
					dir = filepath.Join(app.Config.DataDir, "backups")
				}
				res, err := app.Backup.Run(context.Background(), dir, app.Config.Backup.Bucket, app.Config.Backup.Key, time.Now())
				if err != nil {
					return err
				}
				if flags.jsonOut {
					return printJSON(cmd.OutOrStdout(), res)
				}
				if res.Uploaded {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s to s3://%s/%s (%d bytes)\n", res.SnapshotPath, res.Bucket, res.Key, res.Bytes)
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "snapshot written to %s (%d bytes)\n", res.SnapshotPath, res.Bytes)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "snapshot directory (default <data>/backups)")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseTime(name, raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be RFC3339: %w", name, err)
	}
	return t.UTC(), nil
}

func optionalTime(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := parseTime(name, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func levelStyle(cell string) lipgloss.Style {
	level, err := strconv.Atoi(cell)
	if err != nil {
		return theme.Cell
	}
	return theme.Level(level)
}

func requireUser(user string) error {
	if user == "" {
		return fmt.Errorf("--user is required")
	}
	return nil
}
