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
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/chenhao392/abvsvm/src"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

// trainCmd represents the train command
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "train and evaluate one seed",
	Long: `Train the kernel SVM on the train partition of one seed and report
the metric bundle of all four partitions.

The dataset folder (--data_dir) holds pairs.tsv, one feature table per
selected kind and role (antibody_pssm.tsv, virus_pssm.tsv, ...) and an
optional partition.tsv. Without partition.tsv the pairs are split with
--hot_data_split, holding out antibodies for the unseen test set.

Sample usages:
  abvsvm train --data_dir data --select_ft pssm --seed 0 --save
  abvsvm train --data_dir data --select_ft pssm,kmer --svm_c 32 --svm_gamma 0.03125
  abvsvm train --data_dir data --load --v`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		isLoad, _ := cmd.Flags().GetBool("load")
		return runExperiment(cmd, isLoad)
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)
	addExperimentFlags(trainCmd)
	trainCmd.Flags().String("res", "result", "result folder")
	trainCmd.Flags().Bool("save", false, "save the fitted model")
	trainCmd.Flags().Bool("load", false, "load the saved model instead of fitting")
	trainCmd.Flags().Bool("v", false, "write per partition predictions to the result folder")
	trainCmd.Flags().String("profile", "", "cpu or mem profile written to the result folder")
}

// runExperiment is the single seed pipeline shared by train and pred.
func runExperiment(cmd *cobra.Command, isLoad bool) error {
	resFolder, _ := cmd.Flags().GetString("res")
	isSave, _ := cmd.Flags().GetBool("save")
	isVerbose, _ := cmd.Flags().GetBool("v")
	profileMode, _ := cmd.Flags().GetString("profile")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logFile, err := openLog(resFolder)
	if err != nil {
		return err
	}
	defer logFile.Close()
	switch profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(resFolder), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(resFolder), profile.Quiet).Stop()
	default:
		return fmt.Errorf("%w: unknown profile %q", src.ErrConfiguration, profileMode)
	}

	trainer, err := src.NewTrainer(cfg, src.FileDataset{Dir: cfg.DataDir})
	if err != nil {
		return err
	}
	if isLoad {
		err = trainer.LoadModel()
	} else {
		err = trainer.Fit()
	}
	if err != nil {
		return err
	}
	results, err := trainer.Pred(os.Stdout)
	if err != nil {
		return err
	}
	if isVerbose {
		for _, res := range results {
			oFile := filepath.Join(resFolder, res.Name+".pred.txt")
			if err := src.WriteFile(oFile, res.Index, trainer.LabelsAt(res.Index), res.Pred); err != nil {
				return err
			}
		}
	}
	if isSave && !isLoad {
		if err := trainer.SaveModel(); err != nil {
			return err
		}
		fmt.Println("save svm model ", trainer.SavePath())
	}
	log.Print("Program finished.")
	return nil
}
