package root

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/OCAP2/osu-parsers/internal/files"
	"github.com/OCAP2/osu-parsers/internal/library"
	"github.com/OCAP2/osu-parsers/internal/ui"
	"github.com/OCAP2/osu-parsers/pkg/core"
)

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <file> [storyboard.osb]",
		Short: "Decode a .osu, .osb or .osr file and print a summary",
		Long: "Decode a beatmap, storyboard or score and print what it contains. " +
			"Given a .osu and a .osb, prints the merged storyboard of both.",
		Args: cobra.RangeArgs(1, 2),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if len(args) == 2 || files.Ext(args[0]) == library.ExtStoryboard {
				second := ""
				if len(args) == 2 {
					second = args[1]
				}
				sb, err := a.lib.DecodeStoryboardFiles(ctx, args[0], second)
				if err != nil {
					return err
				}
				printStoryboard(out, args[0], sb)
				return nil
			}

			switch files.Ext(args[0]) {
			case library.ExtBeatmap:
				f, err := a.lib.DecodeBeatmapFile(ctx, args[0])
				if err != nil {
					return err
				}
				printBeatmap(out, f)
			case library.ExtReplay:
				f, err := a.lib.DecodeScoreFile(ctx, args[0])
				if err != nil {
					return err
				}
				printScore(out, f)
			default:
				return fmt.Errorf("%w: %s", library.ErrUnexpectedExtension, args[0])
			}
			return nil
		}),
	}
}

func printBeatmap(w io.Writer, f *library.BeatmapFile) {
	b := f.Beatmap
	fmt.Fprintln(w, ui.Heading(ui.IconBeatmap, fmt.Sprintf("%s - %s [%s]", b.Metadata.Artist, b.Metadata.Title, b.Metadata.Version)))
	fmt.Fprintln(w, ui.Table("", [][2]string{
		{"Path", f.Path},
		{"MD5", f.MD5},
		{"Format", fmt.Sprintf("v%d", b.FileFormat)},
		{"Mode", modeName(b.General.Mode)},
		{"Creator", b.Metadata.Creator},
		{"Difficulty", fmt.Sprintf("CS %.1f  AR %.1f  OD %.1f  HP %.1f",
			b.Difficulty.CircleSize, b.Difficulty.ApproachRate, b.Difficulty.OverallDifficulty, b.Difficulty.DrainRate)},
		{"Hit objects", ui.Count(len(b.HitObjects))},
		{"Length", fmt.Sprintf("%.1fs", b.Length()/1000)},
		{"Breaks", ui.Count(len(b.Events.Breaks))},
	}))
	if sb := b.Events.Storyboard; sb != nil && sb.HasElements() {
		printStoryboard(w, f.Path, sb)
	}
}

func printStoryboard(w io.Writer, path string, sb *core.Storyboard) {
	rows := [][2]string{{"Source", path}}
	for _, t := range core.LayerOrder {
		layer := sb.Layer(t)
		if layer == nil || len(layer.Elements) == 0 {
			continue
		}
		rows = append(rows, [2]string{core.LayerTypes.Name(t), ui.Count(len(layer.Elements))})
	}
	if len(sb.Variables) > 0 {
		rows = append(rows, [2]string{"Variables", ui.Count(len(sb.Variables))})
	}
	fmt.Fprintln(w, ui.Heading(ui.IconStory, "Storyboard"))
	fmt.Fprintln(w, ui.Table("", rows))
}

func printScore(w io.Writer, f *library.ScoreFile) {
	info := f.Score.Info
	fmt.Fprintln(w, ui.Heading(ui.IconScore, fmt.Sprintf("%s on %s", info.Username, info.BeatmapHashMD5)))
	rows := [][2]string{
		{"Path", f.Path},
		{"Mode", modeName(info.RulesetID)},
		{"Score", ui.Gold.Render(fmt.Sprint(info.TotalScore))},
		{"Combo", fmt.Sprintf("%dx", info.MaxCombo)},
		{"Hits", fmt.Sprintf("%d / %d / %d / %s miss", info.Count300, info.Count100, info.Count50, ui.Failures(info.CountMiss))},
		{"Mods", ui.Mods(info.Mods().Acronyms())},
		{"Played", info.Date.Format("2006-01-02 15:04:05")},
	}
	if info.ID != 0 {
		rows = append(rows, [2]string{"Score ID", fmt.Sprint(info.ID)})
	}
	if r := f.Score.Replay; r != nil {
		rows = append(rows,
			[2]string{"Game version", fmt.Sprint(r.GameVersion)},
			[2]string{"Frames", ui.Count(len(r.Frames))},
		)
	}
	fmt.Fprintln(w, ui.Table("", rows))
}

func modeName(mode int) string {
	if name, ok := modeNames[mode]; ok {
		return name
	}
	return fmt.Sprintf("unknown (%d)", mode)
}

var modeNames = map[int]string{
	core.ModeStandard: "osu!",
	core.ModeTaiko:    "taiko",
	core.ModeCatch:    "catch",
	core.ModeMania:    "mania",
}
