package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/navuxneeth/NASA-Challenge/internal/logging"
	"github.com/navuxneeth/NASA-Challenge/orbit"
)

func newISSCmd(a *app) *cobra.Command {
	var (
		at      string
		tleFile string
		points  int
		step    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "iss",
		Short: "Show where the ISS is",
		Long: `ISS propagates a two-line element set with SGP4 and prints the
sub-satellite point. Without --tle the embedded element set is used, which
drifts further from reality the older it gets.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tracker := orbit.DefaultTracker()
			if tleFile != "" {
				var err error
				if tracker, err = loadTracker(tleFile); err != nil {
					return err
				}
			}

			when := time.Now().UTC()
			if at != "" {
				var err error
				if when, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("parse --at: %w", err)
				}
			}
			if age := when.Sub(tracker.Epoch()); age > 14*24*time.Hour || age < -14*24*time.Hour {
				a.log.Warn(cmd.Context(), "element set is far from the requested time; position is approximate",
					logging.Duration("age", age.Round(time.Hour)))
			}

			track, err := tracker.GroundTrack(when, step, max(points, 1))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (epoch %s)\n", tracker.Name(), tracker.Epoch().Format(time.RFC3339))
			for _, p := range track {
				fmt.Fprintf(out, "%s  lat %+8.3f  lon %+9.3f  alt %6.1f km  v %.2f km/s\n",
					p.Time.Format(time.RFC3339), p.Latitude, p.Longitude, p.Altitude, p.Velocity)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&at, "at", "", "time to propagate to (RFC 3339, default now)")
	f.StringVar(&tleFile, "tle", "", "file holding a two- or three-line element set")
	f.IntVar(&points, "points", 1, "number of ground track points")
	f.DurationVar(&step, "step", time.Minute, "spacing between ground track points")
	return cmd
}

// loadTracker reads an element set, with or without a leading name line.
func loadTracker(path string) (*orbit.Tracker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read TLE: %w", err)
	}
	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		if l = strings.TrimRight(l, "\r \t"); l != "" {
			lines = append(lines, l)
		}
	}
	switch len(lines) {
	case 2:
		return orbit.NewTracker(path, lines[0], lines[1])
	case 3:
		return orbit.NewTracker(strings.TrimSpace(lines[0]), lines[1], lines[2])
	default:
		return nil, fmt.Errorf("%w: %s has %d lines, expected 2 or 3", orbit.ErrInvalidTLE, path, len(lines))
	}
}
