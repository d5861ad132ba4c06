// Copyright © 2019 Hao Chen <chenhao.mymail@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/chenhao392/abvsvm/src"
	"github.com/spf13/cobra"
)

// sweepCmd represents the sweep command
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "train and evaluate a range of seeds",
	Long: `Run independent train/evaluate pipelines for seeds from --from up to
(not including) --to, --t of them at a time. Each seed prints its own
report, in seed order, followed by the mean and standard deviation of
every metric per partition. Saved models never collide since the file
name carries the seed.

Sample usages:
  abvsvm sweep --data_dir data --from 0 --to 20 --t 4
  abvsvm sweep --config exp.yaml --save --xlsx result/sweep.xlsx`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		resFolder, _ := cmd.Flags().GetString("res")
		from, _ := cmd.Flags().GetInt64("from")
		to, _ := cmd.Flags().GetInt64("to")
		threads, _ := cmd.Flags().GetInt("t")
		isSave, _ := cmd.Flags().GetBool("save")
		xlsxFile, _ := cmd.Flags().GetString("xlsx")

		if to <= from {
			return fmt.Errorf("%w: empty seed range [%d,%d)", src.ErrConfiguration, from, to)
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logFile, err := openLog(resFolder)
		if err != nil {
			return err
		}
		defer logFile.Close()
		runtime.GOMAXPROCS(threads)

		seeds := make([]int64, 0, to-from)
		for s := from; s < to; s++ {
			seeds = append(seeds, s)
		}
		opt := src.SweepOptions{Threads: threads, SaveModel: isSave}
		runs, err := src.Sweep(context.Background(), cfg, src.FileDataset{Dir: cfg.DataDir}, seeds, opt, os.Stdout)
		if err != nil {
			return err
		}
		summary := src.Summarize(runs)
		src.WriteSummary(os.Stdout, summary)
		if xlsxFile != "" {
			if err := src.ExportWorkbook(xlsxFile, runs, summary); err != nil {
				return err
			}
			log.Print("workbook written to ", xlsxFile)
		}
		log.Print("Program finished.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	addExperimentFlags(sweepCmd)
	sweepCmd.Flags().String("res", "result", "result folder")
	sweepCmd.Flags().Int64("from", 0, "first seed")
	sweepCmd.Flags().Int64("to", 20, "seed after the last one")
	sweepCmd.Flags().Int("t", 4, "number of seeds run at a time")
	sweepCmd.Flags().Bool("save", false, "save the fitted model of every seed")
	sweepCmd.Flags().String("xlsx", "", "write per seed metrics and the summary to this workbook")
}
