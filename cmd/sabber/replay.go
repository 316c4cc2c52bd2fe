package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okusnadi/SabberStone/internal/game/replay"
)

func newReplayCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Inspect recorded replays",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show [file]",
			Short: "List the frames of a replay",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				r, err := replay.Open(args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, styleTitle.Render(fmt.Sprintf("replay %s, %d frames", r.GameID, r.Size())))
				for {
					f, ok := r.Next()
					if !ok {
						return nil
					}
					fmt.Fprintf(out, "%4d T%-3d %s %s\n", f.Step, f.Turn, short(f.Digest), styleAction.Render(f.Action))
				}
			},
		},
		&cobra.Command{
			Use:   "diff [a] [b]",
			Short: "Report the first step at which two replays diverge",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ra, err := replay.Open(args[0])
				if err != nil {
					return err
				}
				rb, err := replay.Open(args[1])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				step, diverged := replay.Diff(ra, rb)
				if !diverged {
					fmt.Fprintf(out, "identical: %d frames\n", ra.Size())
					return nil
				}
				fmt.Fprintf(out, "diverged at step %d\n", step)
				for _, side := range []struct {
					name string
					r    *replay.Replay
				}{{"a", ra}, {"b", rb}} {
					if f, ok := side.r.FrameAt(step); ok {
						fmt.Fprintf(out, "  %s: %s %s\n", side.name, short(f.Digest), f.Action)
					} else {
						fmt.Fprintf(out, "  %s: ended after %d frames\n", side.name, side.r.Size())
					}
				}
				return nil
			},
		},
	)
	return cmd
}

func short(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
