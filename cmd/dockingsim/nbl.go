package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/navuxneeth/NASA-Challenge/internal/observability"
	"github.com/navuxneeth/NASA-Challenge/model"
	"github.com/navuxneeth/NASA-Challenge/nbl"
	"github.com/navuxneeth/NASA-Challenge/rewards"
)

const nblHelp = `commands:
  begin            open the buoyancy setup for the current task
  add [n]          add n weights (default 1)
  remove [n]       remove n weights (default 1)
  start            enter the pool (needs neutral buoyancy)
  move DX DY       swim by DX, DY
  goto X Y         swim to X, Y
  use              use the tool on the target
  abort            give up the current task
  q                quit`

func newNBLCmd(a *app) *cobra.Command {
	var metrics bool
	cmd := &cobra.Command{
		Use:   "nbl",
		Short: "Train in the Neutral Buoyancy Laboratory",
		Long: `NBL cycles through three pool tasks: a repair, a handrail translation
and a lunar sample collection. Each starts with weighing out to neutral
buoyancy (4 to 6 weights). Commands are read one per line from stdin.

` + nblHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			reg := prometheus.NewRegistry()
			m, err := observability.NewRewardsCollector(reg)
			if err != nil {
				return err
			}
			ledger := rewards.NewLedger()
			defer ledger.Subscribe(announceRewards(out, m))()

			tr := nbl.New(ledger,
				nbl.WithLogger(a.log),
				nbl.WithCompletionObserver(func(c nbl.Completion) { m.ObserveNBLCompletion(c.Task.ID) }),
			)
			task, err := tr.Current()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Next task: %s. Type \"begin\" to weigh out.\n", task.Name)

			in := bufio.NewScanner(cmd.InOrStdin())
			for in.Scan() {
				line := strings.TrimSpace(in.Text())
				if line == "" {
					continue
				}
				if line == "q" {
					break
				}
				if err := nblStep(cmd.Context(), tr, out, strings.Fields(line)); err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
				}
			}

			fmt.Fprintf(out, "\nScore: %d\n", ledger.Score())
			if metrics {
				return observability.WriteText(out, reg)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&metrics, "metrics", false, "print Prometheus metrics when finished")
	return cmd
}

func nblStep(ctx context.Context, tr *nbl.Trainer, out io.Writer, args []string) error {
	switch args[0] {
	case "begin":
		task, err := tr.Begin()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s\n%s\n", task.Name, task.Description, task.SetupText)
		printWeights(out, 0, nbl.ClassifyWeights(0))
	case "add", "remove":
		n, err := countArg(args)
		if err != nil {
			return err
		}
		adjust := tr.AddWeight
		if args[0] == "remove" {
			adjust = tr.RemoveWeight
		}
		var (
			w int
			b nbl.Buoyancy
		)
		for i := 0; i < n; i++ {
			if w, b, err = adjust(); err != nil {
				return err
			}
		}
		printWeights(out, w, b)
	case "start":
		if err := tr.Start(ctx); err != nil {
			return err
		}
		task, _ := tr.Current()
		fmt.Fprintf(out, "In the pool at (0, 0). %d target(s), reach %.0f.\n", len(task.Targets), task.Reach)
	case "move", "goto":
		x, y, err := pointArgs(args)
		if err != nil {
			return err
		}
		var prog nbl.Progress
		if args[0] == "move" {
			prog, err = tr.Move(ctx, x, y)
		} else {
			prog, err = tr.MoveTo(ctx, model.Vec2{X: x, Y: y})
		}
		if err != nil {
			return err
		}
		if prog.Completion != nil {
			printCompletion(out, *prog.Completion)
			return nil
		}
		reach := ""
		if prog.InReach {
			reach = " (in reach)"
		}
		fmt.Fprintf(out, "at (%.0f, %.0f), target %d distance %.0f%s\n",
			prog.Position.X, prog.Position.Y, prog.Target+1, prog.Distance, reach)
	case "use":
		c, err := tr.Interact(ctx)
		if err != nil {
			return err
		}
		printCompletion(out, c)
	case "abort":
		tr.Abort()
		fmt.Fprintln(out, "task aborted")
	case "help":
		fmt.Fprintln(out, nblHelp)
	default:
		return fmt.Errorf("unknown command %q (try help)", args[0])
	}
	return nil
}

func printWeights(out io.Writer, w int, b nbl.Buoyancy) {
	fmt.Fprintf(out, "Weights: %d  %s\n", w, b)
}

func printCompletion(out io.Writer, c nbl.Completion) {
	fmt.Fprintf(out, "✓ Task Complete! %s\n", c.Task.CompletionFact)
	fmt.Fprintf(out, "Next task: %s\n", c.Next.Name)
}

func countArg(args []string) (int, error) {
	if len(args) < 2 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%q is not a positive count", args[1])
	}
	return n, nil
}

func pointArgs(args []string) (float64, float64, error) {
	if len(args) != 3 {
		return 0, 0, errors.New(args[0] + " needs two numbers")
	}
	x, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%q is not a number", args[1])
	}
	y, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%q is not a number", args[2])
	}
	return x, y, nil
}
