package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/navuxneeth/NASA-Challenge/cupola"
	"github.com/navuxneeth/NASA-Challenge/internal/observability"
	"github.com/navuxneeth/NASA-Challenge/orbit"
)

func newCupolaCmd(a *app) *cobra.Command {
	var (
		at           string
		tleFile      string
		missionID    string
		missionsFile string
		within       time.Duration
		step         time.Duration
		rangeKm      float64
		seed         uint64
		metrics      bool
	)
	cmd := &cobra.Command{
		Use:   "cupola",
		Short: "Fly a Cupola Earth-photography mission",
		Long: `Cupola picks a ground target and propagates the ISS until the target
comes within photographing range, then captures it. When no pass happens
within --within the closest approach is reported instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			tracker := orbit.DefaultTracker()
			if tleFile != "" {
				var err error
				if tracker, err = loadTracker(tleFile); err != nil {
					return err
				}
			}
			when := tracker.Epoch()
			if at != "" {
				var err error
				if when, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("parse --at: %w", err)
				}
			}

			reg := prometheus.NewRegistry()
			m, err := observability.NewRewardsCollector(reg)
			if err != nil {
				return err
			}
			opts := []cupola.Option{
				cupola.WithLogger(a.log),
				cupola.WithRange(rangeKm),
				cupola.WithCaptureObserver(func(c cupola.Capture) { m.ObserveCupolaCapture(c.Mission.Category) }),
			}
			if missionsFile != "" {
				ms, err := cupola.LoadMissions(missionsFile)
				if err != nil {
					return err
				}
				opts = append(opts, cupola.WithMissions(ms))
			}
			if cmd.Flags().Changed("seed") {
				opts = append(opts, cupola.WithRand(rand.New(rand.NewPCG(seed, seed))))
			}
			mgr := cupola.NewManager(tracker, opts...)

			var mission cupola.Mission
			if missionID != "" {
				mission, err = mgr.Select(missionID)
			} else {
				mission, err = mgr.Start(ctx)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Mission: %s [%s]\n", mission.Title, mission.Category)
			fmt.Fprintf(out, "Target: %.2f, %.2f\n", mission.Latitude, mission.Longitude)
			fmt.Fprintln(out, mission.ScientificValue)

			st, ok, err := mgr.NextPass(ctx, when, within, step)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(out, "No pass within %v; closest approach %.0f km at %s\n",
					within, st.Distance, st.ISS.Time.Format(time.RFC3339))
			} else {
				c, err := mgr.Capture(ctx, st.ISS.Time)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "📸 Photo captured at %s, %.0f km from target\n", c.Time.Format(time.RFC3339), c.Distance)
				fmt.Fprintf(out, "%s\n  %s\n  %s\n", c.Photo.Description, c.Photo.URL, c.Photo.GatewayLink)
				fmt.Fprintf(out, "Next mission: %s\n", c.Next.Title)
			}

			if metrics {
				return observability.WriteText(out, reg)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&at, "at", "", "time to start looking for a pass (RFC 3339, default the element set epoch)")
	f.StringVar(&tleFile, "tle", "", "file holding a two- or three-line element set")
	f.StringVar(&missionID, "mission", "", "mission id to fly (default random)")
	f.StringVar(&missionsFile, "missions", "", "YAML file of missions replacing the built-in set")
	f.DurationVar(&within, "within", 24*time.Hour, "how far ahead to look for a pass")
	f.DurationVar(&step, "step", 30*time.Second, "propagation step while searching")
	f.Float64Var(&rangeKm, "range", cupola.DefaultRange, "capture range in km")
	f.Uint64Var(&seed, "seed", 0, "seed for mission selection")
	f.BoolVar(&metrics, "metrics", false, "print Prometheus metrics when finished")
	return cmd
}
