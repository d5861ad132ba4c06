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
	"github.com/spf13/cobra"
)

// predCmd represents the pred command
var predCmd = &cobra.Command{
	Use:   "pred",
	Short: "evaluate a saved model",
	Long: `Load the model saved for this run_id, seed and label_type from
base_dir/save_model_param_pred/ and report the metric bundle of all four
partitions. The dataset options must match those used for training.

Sample usages:
  abvsvm pred --data_dir data --seed 3 --label_type label_10
  abvsvm pred --config exp.yaml --v`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExperiment(cmd, true)
	},
}

func init() {
	rootCmd.AddCommand(predCmd)
	addExperimentFlags(predCmd)
	predCmd.Flags().String("res", "result", "result folder")
	predCmd.Flags().Bool("v", false, "write per partition predictions to the result folder")
	predCmd.Flags().String("profile", "", "cpu or mem profile written to the result folder")
}
