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

	"github.com/chenhao392/abvsvm/src"
	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "abvsvm",
	Short: "antibody-virus binding prediction with a kernel SVM",
	Long: `Train and evaluate an RBF kernel SVM that predicts antibody-virus
binding labels from per-protein feature matrices (one-hot, pssm, kmer).
Every run reports accuracy, precision, recall, F1, AUC, MCC,
cross entropy, MAE and MSE on the train, seen valid, seen test and
unseen test partitions.

Options can be given as flags, in a config file (--config, default
$HOME/.abvsvm.yaml) or as ABVSVM_<OPTION> environment variables.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.abvsvm.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	_ = godotenv.Load()
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".abvsvm")
	}
	viper.SetEnvPrefix("abvsvm")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// addExperimentFlags registers one flag per Config option.
func addExperimentFlags(cmd *cobra.Command) {
	def := src.DefaultConfig()
	split := make([]string, len(def.HotDataSplit))
	for i, v := range def.HotDataSplit {
		split[i] = fmt.Sprint(v)
	}
	cmd.Flags().Int64("seed", def.Seed, "random seed")
	cmd.Flags().String("label_type", def.LabelType, "label column of pairs.tsv")
	cmd.Flags().Int("max_antibody_len", def.MaxAntibodyLen, "antibody residues kept for positional features")
	cmd.Flags().Int("max_virus_len", def.MaxVirusLen, "virus residues kept for positional features")
	cmd.Flags().StringSlice("hot_data_split", split, "train,valid,test proportions")
	cmd.Flags().StringSlice("select_ft", def.SelectFt, "feature kinds in column order: one_hot,pssm,kmer")
	cmd.Flags().Float64("svm_c", def.SvmC, "SVM regularization C")
	cmd.Flags().Float64("svm_gamma", def.SvmGamma, "RBF kernel gamma, <=0 for 1/(nFeature*Var(X))")
	cmd.Flags().Float64("svm_tol", def.SvmTol, "SMO stopping tolerance")
	cmd.Flags().Int("svm_max_iter", def.SvmMaxIter, "SMO iteration cap, <=0 for none")
	cmd.Flags().String("data_dir", def.DataDir, "dataset folder")
	cmd.Flags().String("base_dir", def.BaseDir, "folder holding save_model_param_pred/")
	cmd.Flags().String("run_id", def.RunID, "run identifier used in the model file name")
}

// loadConfig merges defaults, config file, environment and flags of cmd.
func loadConfig(cmd *cobra.Command) (src.Config, error) {
	cfg := src.DefaultConfig()
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return cfg, err
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", src.ErrConfiguration, err)
	}
	return cfg, nil
}

// openLog sends the standard logger to resFolder/log.txt.
func openLog(resFolder string) (*os.File, error) {
	logFile, err := src.Init(resFolder)
	if err != nil {
		return nil, err
	}
	log.SetOutput(logFile)
	log.Print("Program started.")
	return logFile, nil
}
