package root

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/OCAP2/osu-parsers/internal/ui"
	"github.com/OCAP2/osu-parsers/pkg/core"
)

func newReplayCmd() *cobra.Command {
	var frames int

	cmd := &cobra.Command{
		Use:   "replay <file.osr>",
		Short: "Print a replay's input frames and life bar",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			f, err := a.lib.DecodeScoreFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if f.Score.Replay == nil {
				return errors.New("score has no replay data")
			}
			printReplay(cmd.OutOrStdout(), f.Score.Replay, frames)
			return nil
		}),
	}

	cmd.Flags().IntVarP(&frames, "frames", "n", 10, "Number of frames to print (0 for all)")
	return cmd
}

func printReplay(w io.Writer, r *core.Replay, limit int) {
	duration := 0.0
	if n := len(r.Frames); n > 0 {
		duration = r.Frames[n-1].FrameTime() - r.Frames[0].FrameTime()
	}

	fmt.Fprintln(w, ui.Heading(ui.IconScore, "Replay"))
	fmt.Fprintln(w, ui.Table("", [][2]string{
		{"Game version", fmt.Sprint(r.GameVersion)},
		{"Mode", modeName(r.Mode)},
		{"Frames", ui.Count(len(r.Frames))},
		{"Duration", fmt.Sprintf("%.1fs", duration/1000)},
		{"Life bar samples", ui.Count(len(r.LifeBar))},
	}))

	shown := r.Frames
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	if len(shown) == 0 {
		return
	}
	fmt.Fprintln(w, ui.H2.Render("Frames"))
	for _, frame := range shown {
		lf, ok := frame.(*core.LegacyReplayFrame)
		if !ok {
			fmt.Fprintf(w, "%10.0f  %s\n", frame.FrameTime(), ui.Muted.Render("(ruleset frame)"))
			continue
		}
		fmt.Fprintf(w, "%10.0f  +%-5.0f %8.2f %8.2f  %s\n",
			lf.StartTime, lf.Interval, lf.Position.X, lf.Position.Y, buttons(lf))
	}
	if rest := len(r.Frames) - len(shown); rest > 0 {
		fmt.Fprintln(w, ui.Muted.Render(fmt.Sprintf("... %d more", rest)))
	}
}

func buttons(f *core.LegacyReplayFrame) string {
	s := []byte("--")
	if f.MouseLeft() {
		s[0] = 'L'
	}
	if f.MouseRight() {
		s[1] = 'R'
	}
	return string(s)
}
