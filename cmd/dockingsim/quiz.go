package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/navuxneeth/NASA-Challenge/internal/observability"
	"github.com/navuxneeth/NASA-Challenge/quiz"
	"github.com/navuxneeth/NASA-Challenge/rewards"
)

func newQuizCmd(a *app) *cobra.Command {
	var (
		rounds  int
		seed    uint64
		metrics bool
	)
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Play the Earth Observer photo quiz",
		Long: `Quiz asks questions about photographs taken from the ISS.
Answer with the option number; an empty line or "q" ends the game.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			reg := prometheus.NewRegistry()
			m, err := observability.NewRewardsCollector(reg)
			if err != nil {
				return err
			}
			ledger := rewards.NewLedger()
			defer ledger.Subscribe(announceRewards(out, m))()

			opts := []quiz.Option{
				quiz.WithLogger(a.log),
				quiz.WithAnswerObserver(m.ObserveQuizAnswer),
			}
			if cmd.Flags().Changed("seed") {
				opts = append(opts, quiz.WithRand(rand.New(rand.NewPCG(seed, seed))))
			}
			game := quiz.New(ledger, opts...)

			in := bufio.NewScanner(cmd.InOrStdin())
			for round := 1; rounds <= 0 || round <= rounds; round++ {
				q, err := game.Next()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\nQ%d. %s\n    %s\n", round, q.Prompt, q.Image)
				for i, o := range q.Options {
					fmt.Fprintf(out, "  %d) %s\n", i+1, o)
				}

				res, err := askUntilAnswered(ctx, game, in, out, len(q.Options))
				if errors.Is(err, errQuit) {
					break
				}
				if err != nil {
					return err
				}
				if res.Correct {
					fmt.Fprintln(out, "✓ Correct!")
				} else {
					fmt.Fprintln(out, "✗ Incorrect")
					fmt.Fprintf(out, "The correct answer is: %s\n", res.CorrectOption)
				}
				fmt.Fprintln(out, res.Fact)
			}

			fmt.Fprintf(out, "\nScore: %d\n", ledger.Score())
			if metrics {
				return observability.WriteText(out, reg)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&rounds, "rounds", 5, "questions to ask (0 for unlimited)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for question order")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "print Prometheus metrics when finished")
	return cmd
}

var errQuit = errors.New("quit")

func askUntilAnswered(ctx context.Context, game *quiz.Game, in *bufio.Scanner, out io.Writer, n int) (quiz.Result, error) {
	for {
		fmt.Fprintf(out, "Answer [1-%d]: ", n)
		if !in.Scan() {
			return quiz.Result{}, errQuit
		}
		line := strings.TrimSpace(in.Text())
		if line == "" || line == "q" {
			return quiz.Result{}, errQuit
		}
		choice, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintf(out, "%q is not a number\n", line)
			continue
		}
		res, err := game.Answer(ctx, choice-1)
		if errors.Is(err, quiz.ErrAnswerOutOfRange) {
			fmt.Fprintf(out, "choose between 1 and %d\n", n)
			continue
		}
		return res, err
	}
}
