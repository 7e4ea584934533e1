package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OCAP2/osu-parsers/internal/files"
	"github.com/OCAP2/osu-parsers/internal/library"
	"github.com/OCAP2/osu-parsers/internal/ui"
)

func newEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <input> <output>",
		Short: "Decode a file and write it back out in the latest format",
		Long: "Decode a .osu, .osb or .osr file and encode it to output. The " +
			"input's extension is added to output when missing.",
		Args: cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()
			in, out := args[0], args[1]

			var written string
			var err error
			switch files.Ext(in) {
			case library.ExtBeatmap:
				f, derr := a.lib.DecodeBeatmapFile(ctx, in)
				if derr != nil {
					return derr
				}
				written, err = a.lib.EncodeBeatmapFile(ctx, out, f.Beatmap)
			case library.ExtStoryboard:
				sb, derr := a.lib.DecodeStoryboardFiles(ctx, in, "")
				if derr != nil {
					return derr
				}
				written, err = a.lib.EncodeStoryboardFile(ctx, out, sb)
			case library.ExtReplay:
				f, derr := a.lib.DecodeScoreFile(ctx, in)
				if derr != nil {
					return derr
				}
				written, err = a.lib.EncodeScoreFile(ctx, out, f.Score)
			default:
				return fmt.Errorf("%w: %s", library.ErrUnexpectedExtension, in)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconSave+" wrote "+written))
			return nil
		}),
	}
}
