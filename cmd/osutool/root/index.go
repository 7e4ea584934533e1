package root

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/OCAP2/osu-parsers/internal/cache"
	"github.com/OCAP2/osu-parsers/internal/config"
	"github.com/OCAP2/osu-parsers/internal/model"
	"github.com/OCAP2/osu-parsers/internal/storage"
	"github.com/OCAP2/osu-parsers/internal/ui"
	"github.com/OCAP2/osu-parsers/internal/worker"
)

func newIndexCmd() *cobra.Command {
	var workers int
	var list bool

	cmd := &cobra.Command{
		Use:   "index <dir>",
		Short: "Decode every beatmap and replay under a directory into the catalog",
		Long: "Walk dir, decode every .osu and .osr file and save the results to " +
			"the configured catalog backend (storage.type: memory, sqlite or postgres).",
		Args: cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			storageCfg := config.GetStorageConfig()
			backend, err := storage.NewBackend(storageCfg, a.zlog)
			if err != nil {
				return err
			}
			if err := backend.Init(); err != nil {
				return fmt.Errorf("failed to initialize %s storage: %w", storageCfg.Type, err)
			}
			a.logger.Info("Storage backend initialized", "type", storageCfg.Type)

			if workers <= 0 {
				workers = viper.GetInt("index.workers")
			}
			m := worker.NewManager(worker.Dependencies{
				Files:   a.files,
				Library: a.lib,
				Hashes:  cache.NewHashCache(),
				Logger:  a.logger,
				Workers: workers,
			}, backend)

			run, runErr := m.IndexDir(ctx, args[0])

			out := cmd.OutOrStdout()
			if runErr == nil && list {
				if err := printCatalog(out, backend); err != nil {
					a.logger.Warn("Failed to read catalog", "error", err)
				}
			}

			if err := backend.Close(); err != nil {
				return fmt.Errorf("failed to close %s storage: %w", storageCfg.Type, err)
			}
			if runErr != nil {
				return runErr
			}

			printRun(out, run, m.Duplicates())
			if exp, ok := backend.(storage.Exportable); ok && exp.ExportedFilePath() != "" {
				fmt.Fprintln(out, ui.Good.Render(ui.IconSave+" catalog written to "+exp.ExportedFilePath()))
			}
			printMetrics(out, a.metricTotals(context.WithoutCancel(ctx)))
			return nil
		}),
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Decoders per file kind (defaults to index.workers)")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "Print the catalog after indexing")
	return cmd
}

func printRun(w io.Writer, run model.IndexRun, duplicates int) {
	fmt.Fprintln(w, ui.Heading(ui.IconIndex, "Index run #"+fmt.Sprint(run.ID)))
	fmt.Fprintln(w, ui.Table("", [][2]string{
		{"Root", run.Root},
		{"Beatmaps", ui.Count(run.Beatmaps)},
		{"Duplicates", ui.Count(duplicates)},
		{"Scores", ui.Count(run.Scores)},
		{"Failures", ui.Failures(run.Failures)},
		{"Took", run.FinishedAt.Sub(run.StartedAt).String()},
	}))
}

func printCatalog(w io.Writer, backend storage.Backend) error {
	beatmaps, err := backend.Beatmaps()
	if err != nil {
		return err
	}
	scores, err := backend.Scores()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, ui.H2.Render(fmt.Sprintf("%s Beatmaps (%d)", ui.IconBeatmap, len(beatmaps))))
	for _, b := range beatmaps {
		fmt.Fprintf(w, "- %s - %s [%s] %s\n", b.Artist, b.Title, b.Version,
			ui.Muted.Render(fmt.Sprintf("%d objects, %s", b.Counts.Total(), b.MD5)))
	}
	fmt.Fprintln(w, ui.H2.Render(fmt.Sprintf("%s Scores (%d)", ui.IconScore, len(scores))))
	for _, s := range scores {
		fmt.Fprintf(w, "- %s %d %s\n", s.Username, s.TotalScore, ui.Muted.Render(s.Path))
	}
	return nil
}

func printMetrics(w io.Writer, totals map[string]float64) {
	if len(totals) == 0 {
		return
	}
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][2]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, [2]string{name, fmt.Sprintf("%.0f", totals[name])})
	}
	fmt.Fprintln(w, ui.Heading(ui.IconStats, "Metrics"))
	fmt.Fprintln(w, ui.Table("", rows))
}
