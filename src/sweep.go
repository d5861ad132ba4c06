package src

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// SeedResult is the outcome of one seed of a sweep.
type SeedResult struct {
	Seed     int64
	RunID    string
	SavePath string
	Report   string
	Results  []PartitionResult
}

// SweepOptions controls a multi-seed run.
type SweepOptions struct {
	Threads   int
	SaveModel bool
}

// Sweep runs one independent pipeline per seed, at most opt.Threads at a
// time. Reports are written to w in seed order once all runs end. The first
// failure stops seeds that have not started and is returned.
func Sweep(ctx context.Context, cfg Config, provider DatasetProvider, seeds []int64, opt SweepOptions, w io.Writer) ([]SeedResult, error) {
	out := make([]SeedResult, len(seeds))
	threads := opt.Threads
	if threads < 1 {
		threads = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i, seed := range seeds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			runCfg := cfg
			runCfg.Seed = seed
			runCfg.HotDataSplit = append([]float64(nil), cfg.HotDataSplit...)
			runCfg.SelectFt = append([]string(nil), cfg.SelectFt...)

			var buf bytes.Buffer
			res := SeedResult{Seed: seed, RunID: uuid.New().String()}
			defer func() {
				res.Report = buf.String()
				out[i] = res
			}()
			log.Printf("run %s: seed %d started", res.RunID, seed)
			fmt.Fprintln(&buf, "seed = ", seed)
			t, err := NewTrainer(runCfg, provider)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			res.SavePath = t.SavePath()
			if err := t.Fit(); err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			res.Results, err = t.Pred(&buf)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			if opt.SaveModel {
				if err := t.SaveModel(); err != nil {
					return fmt.Errorf("seed %d: %w", seed, err)
				}
			}
			log.Printf("run %s: seed %d finished", res.RunID, seed)
			return nil
		})
	}
	err := g.Wait()
	for _, r := range out {
		io.WriteString(w, r.Report)
	}
	return out, err
}

// MetricSummary aggregates one metric of one partition over seeds.
type MetricSummary struct {
	Partition string
	Metric    string
	N         int
	Mean      float64
	Std       float64
}

// Summarize computes mean and population standard deviation per partition
// and metric. NaN values (e.g. AUC of a one-class partition) are left out.
func Summarize(runs []SeedResult) []MetricSummary {
	summary := make([]MetricSummary, 0, len(partitionOrder)*len(MetricNames))
	for p, name := range partitionOrder {
		for m, metric := range MetricNames {
			values := make(stats.Float64Data, 0, len(runs))
			for _, r := range runs {
				if p >= len(r.Results) {
					continue
				}
				if v := r.Results[p].Metrics.Values()[m]; !math.IsNaN(v) {
					values = append(values, v)
				}
			}
			s := MetricSummary{Partition: partitionLabel[name], Metric: metric, N: len(values), Mean: math.NaN(), Std: math.NaN()}
			if mean, err := stats.Mean(values); err == nil {
				s.Mean = mean
			}
			if std, err := stats.StandardDeviation(values); err == nil {
				s.Std = std
			}
			summary = append(summary, s)
		}
	}
	return summary
}

// WriteSummary prints one line per partition with mean±std per metric.
func WriteSummary(w io.Writer, summary []MetricSummary) {
	fmt.Fprintln(w, "summary over seeds")
	n := len(MetricNames)
	for i := 0; i+n <= len(summary); i += n {
		fmt.Fprintf(w, "%s", summary[i].Partition)
		for _, s := range summary[i : i+n] {
			fmt.Fprintf(w, "\t%s=%.4f±%.4f", s.Metric, s.Mean, s.Std)
		}
		fmt.Fprintln(w)
	}
}
