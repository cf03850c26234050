package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	mstats "github.com/montanaflynn/stats"
	"github.com/spf13/cobra"

	"github.com/bft-labs/seqbatch/pkg/log"
	"github.com/bft-labs/seqbatch/pkg/seqbatch"
	"github.com/bft-labs/seqbatch/plugins/configwatcher"
)

func (c *cli) sizesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sizes",
		Short: "Compute or load the per-sample size cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, _, _, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer loader.Close()

			sizes, err := loader.Sizes()
			if err != nil {
				return err
			}
			printSizes(cmd.OutOrStdout(), sizes)
			return nil
		},
	}
}

func (c *cli) planCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print bucket statistics for the configured budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			plan := func() (string, error) {
				loader, _, cfgFile, err := c.open(cmd)
				if err != nil {
					return cfgFile, err
				}
				defer loader.Close()
				if err := printPlan(out, loader); err != nil {
					return cfgFile, err
				}
				return cfgFile, nil
			}

			cfgFile, err := plan()
			if err != nil || !watch {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()
			zl, _ := log.NewConsole(cmd.ErrOrStderr(), c.cfg.LogLevel)
			watcher := configwatcher.New(configwatcher.DefaultConfig(), cfgFile, func(context.Context) error {
				_, err := plan()
				return err
			}, log.NewZerologAdapterWithLogger(zl))
			if err := watcher.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()

			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return watcher.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "re-plan whenever the config file changes")
	return cmd
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Compute or load normalization statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, _, _, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer loader.Close()

			st, err := loader.Stats()
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(st))
			for k := range st {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			out := cmd.OutOrStdout()
			for _, k := range keys {
				v := st[k]
				mean, _ := mstats.Mean(v)
				fmt.Fprintf(out, "%-28s channels=%-5d avg=%.4f\n", k, len(v), mean)
			}
			return nil
		},
	}
}

func (c *cli) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Produce every batch of one epoch and report throughput",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, zl, _, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer loader.Close()

			ctx, cancel := signalContext()
			defer cancel()

			var batches, samples, frames, tokens int
			start := time.Now()
			err = loader.Batches(ctx, func(b *seqbatch.Batch) error {
				batches++
				samples += b.Size()
				frames += realFrames(b)
				tokens += b.Tokens()
				zl.Debug().Int("seq", b.Seq).Int("samples", b.Size()).Int("x_len", b.XLen).Msg("batch")
				return nil
			})
			if err != nil {
				return err
			}

			elapsed := time.Since(start)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "batches:      %d\n", batches)
			fmt.Fprintf(out, "samples:      %d\n", samples)
			fmt.Fprintf(out, "padded:       %d frames\n", tokens)
			if tokens > 0 {
				fmt.Fprintf(out, "efficiency:   %.1f%%\n", 100*float64(frames)/float64(tokens))
			}
			fmt.Fprintf(out, "elapsed:      %s\n", elapsed.Round(time.Millisecond))
			if secs := elapsed.Seconds(); secs > 0 {
				fmt.Fprintf(out, "throughput:   %.1f batches/s\n", float64(batches)/secs)
			}
			return nil
		},
	}
}

// realFrames counts unpadded primary frames using the batch's x mask.
func realFrames(b *seqbatch.Batch) int {
	n := 0
	for _, v := range b.XMask.Data {
		if v > 0 {
			n++
		}
	}
	return n
}

func printSizes(w io.Writer, sizes []int) {
	fmt.Fprintf(w, "samples:  %d\n", len(sizes))
	if len(sizes) == 0 {
		return
	}
	data := mstats.LoadRawData(sizes)
	zeros := 0
	for _, s := range sizes {
		if s == 0 {
			zeros++
		}
	}
	lo, _ := data.Min()
	hi, _ := data.Max()
	mean, _ := data.Mean()
	median, _ := data.Median()
	p95, _ := data.Percentile(95)
	fmt.Fprintf(w, "min:      %.0f\n", lo)
	fmt.Fprintf(w, "max:      %.0f\n", hi)
	fmt.Fprintf(w, "mean:     %.1f\n", mean)
	fmt.Fprintf(w, "median:   %.1f\n", median)
	fmt.Fprintf(w, "p95:      %.1f\n", p95)
	fmt.Fprintf(w, "empty:    %d\n", zeros)
}

func printPlan(w io.Writer, loader *seqbatch.Loader) error {
	sizes, err := loader.Sizes()
	if err != nil {
		return err
	}
	buckets, err := loader.Plan()
	if err != nil {
		return err
	}

	counts := make([]float64, len(buckets))
	padded, actual := 0, 0
	for i, b := range buckets {
		counts[i] = float64(b.Size())
		longest := 0
		for _, idx := range b.Indices {
			actual += sizes[idx]
			if sizes[idx] > longest {
				longest = sizes[idx]
			}
		}
		padded += longest * b.Size()
	}

	cfg := loader.Config()
	fmt.Fprintf(w, "split:        %s\n", cfg.Split)
	fmt.Fprintf(w, "max tokens:   %d\n", cfg.MaxTokens)
	fmt.Fprintf(w, "buckets:      %d\n", len(buckets))
	if len(buckets) == 0 {
		return nil
	}
	mean, _ := mstats.Mean(counts)
	lo, _ := mstats.Min(counts)
	hi, _ := mstats.Max(counts)
	fmt.Fprintf(w, "batch size:   mean %.1f, min %.0f, max %.0f\n", mean, lo, hi)
	if padded > 0 {
		fmt.Fprintf(w, "efficiency:   %.1f%%\n", 100*float64(actual)/float64(padded))
	}
	return nil
}
