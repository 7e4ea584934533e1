// Package root holds the osutool commands.
package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OCAP2/osu-parsers/internal/ui"
)

type globalFlags struct {
	configDir string
	logLevel  string
}

var flags globalFlags

func newRootCmd(version, buildDate string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "osutool",
		Short:         "Decode, re-encode and catalog osu! beatmaps, storyboards and replays",
		Long:          "osutool reads .osu beatmaps, .osb storyboards and .osr replays, writes them back out, and indexes song folders into a catalog.",
		Version:       fmt.Sprintf("%s (built %s)", version, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&flags.configDir, "config", "c", ".", "Directory containing "+configFileHint)
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override the configured log level (debug|info|warn|error)")

	cmd.AddCommand(
		newDecodeCmd(),
		newEncodeCmd(),
		newReplayCmd(),
		newIndexCmd(),
	)
	return cmd
}

func Execute(version, buildDate string) {
	if err := newRootCmd(version, buildDate).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
