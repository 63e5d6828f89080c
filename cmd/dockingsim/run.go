package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/navuxneeth/NASA-Challenge/core"
	"github.com/navuxneeth/NASA-Challenge/internal/logging"
	"github.com/navuxneeth/NASA-Challenge/internal/observability"
	"github.com/navuxneeth/NASA-Challenge/internal/pilot"
	"github.com/navuxneeth/NASA-Challenge/model"
	"github.com/navuxneeth/NASA-Challenge/replay"
	"github.com/navuxneeth/NASA-Challenge/rewards"
	"github.com/navuxneeth/NASA-Challenge/timectrl"
)

const (
	pilotAuto     = "autopilot"
	pilotScript   = "script"
	pilotKeyboard = "keyboard"
)

type runOptions struct {
	pilot      string
	script     string
	fps        int
	realtime   bool
	timeout    time.Duration
	attempts   int
	printEvery int
	record     string
	metrics    bool
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fly docking sessions",
		Long: `Run flies one or more docking sessions.

Pilots:
  autopilot  steer to the port automatically (default)
  script     replay a YAML timeline of held controls (--script)
  keyboard   read held keys from stdin, one line per change:
             "w" thrust, "a" rotate left, "d" rotate right, combinations
             such as "w a", an empty line to release, "q" to quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.fps = a.v.GetInt("run.fps")
			opts.timeout = a.v.GetDuration("run.timeout")
			return a.run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.pilot, "pilot", pilotAuto, "pilot: autopilot, script or keyboard")
	f.StringVar(&opts.script, "script", "", "YAML pilot script (with --pilot script)")
	f.Int("fps", 60, "frames per second")
	f.BoolVar(&opts.realtime, "realtime", false, "pace frames with the wall clock")
	f.Duration("timeout", 90*time.Second, "simulated time limit for the whole run (0 for none)")
	f.IntVar(&opts.attempts, "attempts", 1, "sessions to fly")
	f.IntVar(&opts.printEvery, "print-every", 30, "print telemetry every N frames (0 disables)")
	f.StringVar(&opts.record, "record", "", "write a msgpack flight recording to this file")
	f.BoolVar(&opts.metrics, "metrics", false, "print Prometheus metrics when finished")
	_ = a.v.BindPFlag("run.fps", f.Lookup("fps"))
	_ = a.v.BindPFlag("run.timeout", f.Lookup("timeout"))
	return cmd
}

func (a *app) run(cmd *cobra.Command, opts runOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if opts.fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", opts.fps)
	}
	if opts.attempts <= 0 {
		return fmt.Errorf("attempts must be positive, got %d", opts.attempts)
	}
	cfg, err := a.dockingConfig()
	if err != nil {
		return err
	}
	station := core.DefaultStation()

	tcfg := observability.TracingConfigFromEnv()
	tcfg.Writer = cmd.ErrOrStderr()
	tcfg.Tuning = observability.TuningAttributes(cfg)
	if outcomes := traceOutcomes(a.v.GetStringSlice("tracing.outcomes")); len(outcomes) > 0 {
		tcfg.Outcomes = outcomes
	}
	shutdown, err := observability.InitTracing(ctx, tcfg, a.log)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, a.log)

	reg := prometheus.NewRegistry()
	dockingMetrics, err := observability.NewDockingCollector(reg)
	if err != nil {
		return err
	}
	rewardMetrics, err := observability.NewRewardsCollector(reg)
	if err != nil {
		return err
	}

	ledger := rewards.NewLedger()
	defer ledger.Subscribe(announceRewards(out, rewardMetrics))()

	mode := timectrl.Accelerated
	if opts.realtime || opts.pilot == pilotKeyboard {
		mode = timectrl.RealTime
	}
	driver := timectrl.NewFrameDriver(time.Now().UTC(), time.Second/time.Duration(opts.fps), mode)

	var ctrl *core.Controller
	input, err := a.buildPilot(cmd, opts, driver, station, cfg, func() model.Spacecraft { return ctrl.Spacecraft() })
	if err != nil {
		return err
	}

	recorder := replay.NewRecorder(0)
	ctrl, err = core.NewController(cfg, station, driver,
		core.WithInput(input),
		core.WithRenderer(telemetryPrinter{w: out, every: uint64(max(opts.printEvery, 0))}),
		core.WithRenderer(recorder),
		core.WithStatusDisplay(&statusPrinter{w: out}),
		core.WithRewards(ledger),
		core.WithAchievements(ledger),
		core.WithMetrics(dockingMetrics),
		core.WithLogger(a.log),
	)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if kb, ok := input.(*pilot.Keyboard); ok {
		go readKeys(cmd.InOrStdin(), kb, cancel)
	}

	sup := &supervisor{ctx: runCtx, ctrl: ctrl, attempts: opts.attempts, done: cancel}
	driver.AddListener(sup.onFrame)
	fmt.Fprintf(out, "Starting docking run: pilot=%s fps=%d mode=%s attempts=%d\n", opts.pilot, opts.fps, mode, opts.attempts)
	ctrl.Start(runCtx)
	<-driver.Start(runCtx, opts.timeout)

	switch state := ctrl.State(); {
	case state == model.SessionRunning:
		sup.outcomes = append(sup.outcomes, "timeout")
	case state.Terminal() && !sup.settled:
		sup.outcomes = append(sup.outcomes, state.String())
	}
	ctrl.Stop()

	fmt.Fprintf(out, "Run complete: %s\n", strings.Join(sup.outcomes, ", "))
	profile := ledger.Profile()
	fmt.Fprintf(out, "Score: %d\n", profile.Score)
	for _, b := range profile.Badges {
		fmt.Fprintf(out, "Badge: %s %s\n", b.Icon, b.Name)
	}

	if opts.record != "" {
		if err := replay.WriteFile(opts.record, recorder.Recording(time.Now())); err != nil {
			return err
		}
		a.log.Info(ctx, "flight recording written",
			logging.String("path", opts.record),
			logging.Int("frames", recorder.Len()),
		)
	}
	if opts.metrics {
		if err := observability.WriteText(out, reg); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) buildPilot(cmd *cobra.Command, opts runOptions, clock timectrl.SimClock, station model.Station, cfg core.Config, state func() model.Spacecraft) (core.InputSource, error) {
	switch opts.pilot {
	case pilotAuto:
		return pilot.NewAutopilot(state, station, cfg), nil
	case pilotScript:
		if opts.script == "" {
			return nil, fmt.Errorf("--script is required with --pilot %s", pilotScript)
		}
		s, err := pilot.LoadScript(opts.script, clock)
		if err != nil {
			return nil, err
		}
		a.log.Info(cmd.Context(), "pilot script loaded",
			logging.String("name", s.Name),
			logging.Int("steps", len(s.Steps)),
			logging.Duration("length", s.Total()),
		)
		return s, nil
	case pilotKeyboard:
		return pilot.NewKeyboard(), nil
	default:
		return nil, fmt.Errorf("unknown pilot %q", opts.pilot)
	}
}

// supervisor runs on the frame driver goroutine next to the controller. It
// records outcomes, restarts sessions after the automatic reset and stops
// the run once every attempt has finished.
type supervisor struct {
	ctx      context.Context
	ctrl     *core.Controller
	attempts int
	done     func()

	settled  bool
	outcomes []string
}

func (s *supervisor) onFrame(time.Duration) {
	state := s.ctrl.State()
	switch {
	case state.Terminal() && !s.settled:
		s.settled = true
		s.outcomes = append(s.outcomes, state.String())
		if len(s.outcomes) >= s.attempts {
			s.done()
		}
	case state == model.SessionIdle && s.settled:
		s.settled = false
		s.ctrl.Start(s.ctx)
	}
}

// readKeys treats each input line as the complete set of held keys.
func readKeys(r io.Reader, kb *pilot.Keyboard, quit func()) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "q" {
			quit()
			return
		}
		applyKeys(kb, sc.Text())
	}
}

func applyKeys(kb *pilot.Keyboard, line string) {
	held := make(map[string]bool)
	for _, tok := range strings.Fields(line) {
		if key := pilot.ParseCommand(tok); key != "" {
			held[key] = true
		}
	}
	for _, key := range []string{pilot.KeyThrust, pilot.KeyLeft, pilot.KeyRight} {
		if held[key] {
			kb.Press(key)
		} else {
			kb.Release(key)
		}
	}
}

func announceRewards(w io.Writer, m *observability.RewardsCollector) func(rewards.Event) {
	return func(ev rewards.Event) {
		switch ev.Type {
		case rewards.EventPointsAwarded:
			m.ObservePoints(ev.Points, ev.Score)
			fmt.Fprintf(w, "+%d points (score %d)\n", ev.Points, ev.Score)
		case rewards.EventBadgeGranted:
			m.ObserveBadge(ev.Badge.Name)
			fmt.Fprintf(w, "%s Badge Earned: %s!\n", ev.Badge.Icon, ev.Badge.Name)
		}
	}
}

type telemetryPrinter struct {
	w     io.Writer
	every uint64
}

func (p telemetryPrinter) Render(_ context.Context, f model.Frame) error {
	if p.every == 0 || (f.Seq%p.every != 0 && !f.State.Terminal()) {
		return nil
	}
	_, err := fmt.Fprintf(p.w, "[%7.2fs] pos=(%6.1f,%6.1f) hdg=%+5.2f speed=%5.1f dist=%6.1f %s\n",
		f.Elapsed.Seconds(),
		f.Spacecraft.Position.X, f.Spacecraft.Position.Y,
		f.Spacecraft.Heading,
		f.Speed, f.Distance,
		f.Advisory,
	)
	return err
}

type statusPrinter struct {
	w    io.Writer
	last model.Status
}

func (p *statusPrinter) SetStatus(s model.Status) error {
	if s == p.last {
		return nil
	}
	p.last = s
	if s.Text == "" {
		return nil
	}
	_, err := fmt.Fprintf(p.w, "status: %s\n", s.Text)
	return err
}

// traceOutcomes accepts a YAML list or a comma separated environment value.
func traceOutcomes(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, o := range strings.Split(item, ",") {
			if o = strings.ToLower(strings.TrimSpace(o)); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}
