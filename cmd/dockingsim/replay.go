package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/navuxneeth/NASA-Challenge/replay"
)

func newReplayCmd(a *app) *cobra.Command {
	var frames bool
	cmd := &cobra.Command{
		Use:   "replay <recording>",
		Short: "Summarise a flight recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := replay.ReadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			sessions := replay.SplitSessions(rec.Frames)
			fmt.Fprintf(out, "Recording %s: %d frames, %d sessions\n",
				rec.Recorded.Format("2006-01-02T15:04:05Z07:00"), len(rec.Frames), len(sessions))

			for i, s := range sessions {
				sum := replay.Summarize(s)
				fmt.Fprintf(out, "session %d: %s after %s, %d frames, closest %.1f, top speed %.1f, thrust %d frames\n",
					i+1, sum.Outcome, sum.Duration, sum.Frames, sum.MinDistance, sum.MaxSpeed, sum.ThrustFrames)
				if !frames {
					continue
				}
				for _, f := range s {
					fmt.Fprintf(out, "  #%-5d %7.2fs pos=(%6.1f,%6.1f) speed=%5.1f dist=%6.1f %s\n",
						f.Seq, f.Elapsed.Seconds(), f.Spacecraft.Position.X, f.Spacecraft.Position.Y,
						f.Speed, f.Distance, f.Advisory)
				}
			}
			a.log.Debug(cmd.Context(), "recording replayed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&frames, "frames", false, "print every frame")
	return cmd
}
