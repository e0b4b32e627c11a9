package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/zeu5/gridchase-rl/benchmarks/gridchase"
	"github.com/zeu5/gridchase-rl/core"
	"github.com/zeu5/gridchase-rl/util"
)

func TrainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the evader and the pursuers on the reference maze",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.Finalize(); err != nil {
				return err
			}
			if err := flags.EnsureTableDir(); err != nil {
				return err
			}
			if err := flags.Record(); err != nil {
				return err
			}
			logger.WithField("run_id", flags.RunID).Info("starting training")

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt) // channel for interrupts from os

			doneCh := make(chan struct{}) // channel for done signal from application

			ctx, cancel := context.WithCancel(context.Background())
			go func() {
				select {
				case <-sigCh:
				case <-doneCh:
				}
				cancel()
			}()
			defer close(doneCh)

			cmp, err := gridchase.PrepareComparison(flags, logger)
			if err != nil {
				return err
			}

			printer := util.NewTerminalPrinter(200 * time.Millisecond)
			cmp.Output = printer.NewOutput()
			printer.Start(ctx)
			cmp.Run(ctx, flags.NumRuns, &core.RunConfig{
				Episodes:                   flags.Episodes,
				Horizon:                    flags.Horizon,
				ThresholdConsecutiveErrors: flags.MaxConsecutiveErrors,
				SaveEveryEpisode:           flags.SaveEveryEpisode,
			})
			printer.Stop()
			return ctx.Err()
		},
	}

	return cmd
}
