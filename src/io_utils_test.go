package src

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTsv(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(strings.Join(lines, "\n")+"\n"), 0644))
}

// toyDir writes 5 antibodies x 2 viruses with kmer features.
func toyDir(t *testing.T) string {
	dir := t.TempDir()
	pairs := []string{"antibody\tvirus\tlabel_10\tlabel_50"}
	for _, ab := range []string{"ab0", "ab1", "ab2", "ab3", "ab4"} {
		for _, vi := range []string{"v0", "v1"} {
			label := "0"
			if ab == "ab0" || ab == "ab2" || ab == "ab4" {
				label = "1"
			}
			pairs = append(pairs, strings.Join([]string{ab, vi, label, "1"}, "\t"))
		}
	}
	writeTsv(t, dir, "pairs.tsv", pairs...)
	writeTsv(t, dir, "antibody_kmer_whole.tsv",
		"ab4\t5\t5", "ab0\t1\t1", "ab1\t2\t2", "ab2\t3\t3", "ab3\t4\t4")
	writeTsv(t, dir, "virus_kmer_whole.tsv", "v0\t7", "v1\t8")
	return dir
}

func kmerConfig() Config {
	cfg := DefaultConfig()
	cfg.SelectFt = []string{"kmer"}
	cfg.HotDataSplit = []float64{0.6, 0.2, 0.2}
	return cfg
}

func TestFileDatasetBuild(t *testing.T) {
	dir := toyDir(t)
	d, err := FileDataset{Dir: dir}.Build(kmerConfig(), SetupSeed(1))
	require.NoError(t, err)
	require.Equal(t, 10, d.PairNum())
	require.Equal(t, []int{0, 0, 1, 1, 2, 2, 3, 3, 4, 4}, d.AntibodyIndexInPair)
	require.Equal(t, []int{0, 1, 0, 1, 0, 1, 0, 1, 0, 1}, d.VirusIndexInPair)
	require.Equal(t, []float64{1, 1, 0, 0, 1, 1, 0, 0, 1, 1}, d.Labels)
	require.Equal(t, []float64{5, 5}, d.ProteinFt["antibody_kmer_whole"].Row(4), "rows follow pair order, not file order")
	require.NotContains(t, d.ProteinFt, "antibody_pssm", "unselected kinds are not read")

	var all []int
	for _, name := range partitionOrder {
		all = append(all, d.Partition(name)...)
	}
	sort.Ints(all)
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, all)
	require.Len(t, d.TestUnseenIndex, 2)
	require.Len(t, d.TrainIndex, 5)

	ftMat, err := AssembleFeatures([]FeatureKind{FtKmer}, d)
	require.NoError(t, err)
	require.Equal(t, []float64{2, 2, 8}, ftMat.RawRowView(3))
}

func TestFileDatasetPartitionFile(t *testing.T) {
	dir := toyDir(t)
	writeTsv(t, dir, "partition.tsv",
		"0\ttrain", "1\ttrain", "2\ttrain", "3\ttrain", "4\tvalid_seen", "5\ttest_seen", "8\ttest_unseen", "9\ttest_unseen")
	d, err := FileDataset{Dir: dir}.Build(kmerConfig(), SetupSeed(1))
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3}, d.TrainIndex)
	require.Equal(t, []int{4}, d.ValidSeenIndex)
	require.Equal(t, []int{5}, d.TestSeenIndex)
	require.Equal(t, []int{8, 9}, d.TestUnseenIndex)

	writeTsv(t, dir, "partition.tsv", "0\ttrain", "0\ttest_seen")
	_, err = FileDataset{Dir: dir}.Build(kmerConfig(), SetupSeed(1))
	require.ErrorIs(t, err, ErrDataset)

	writeTsv(t, dir, "partition.tsv", "0\tholdout")
	_, err = FileDataset{Dir: dir}.Build(kmerConfig(), SetupSeed(1))
	require.ErrorIs(t, err, ErrDataset)
}

func TestFileDatasetErrors(t *testing.T) {
	cfg := kmerConfig()

	_, err := FileDataset{Dir: t.TempDir()}.Build(cfg, SetupSeed(0))
	require.ErrorIs(t, err, ErrDataset, "missing pairs.tsv")

	dir := toyDir(t)
	cfg.LabelType = "label_90"
	_, err = FileDataset{Dir: dir}.Build(cfg, SetupSeed(0))
	require.ErrorIs(t, err, ErrDataset, "unknown label column")

	cfg = kmerConfig()
	writeTsv(t, dir, "virus_kmer_whole.tsv", "v0\t7")
	_, err = FileDataset{Dir: dir}.Build(cfg, SetupSeed(0))
	require.ErrorIs(t, err, ErrDataset, "virus without features")

	cfg.SelectFt = []string{"pssm"}
	_, err = FileDataset{Dir: dir}.Build(cfg, SetupSeed(0))
	require.ErrorIs(t, err, ErrDataset, "missing pssm files")
}

func TestReadProteinTensorPositional(t *testing.T) {
	dir := t.TempDir()
	row := make([]string, 0, 41)
	row = append(row, "p0")
	for i := 0; i < 40; i++ {
		row = append(row, "1")
	}
	writeTsv(t, dir, "antibody_pssm.tsv", strings.Join(row, "\t"))
	inFile := filepath.Join(dir, "antibody_pssm.tsv")

	padded, err := readProteinTensor(inFile, []string{"p0"}, featureRegistry[FtPssm], 3)
	require.NoError(t, err)
	require.Equal(t, []int{1, 3, 20}, padded.Shape)
	require.Equal(t, 1.0, padded.Data[39])
	require.Equal(t, 0.0, padded.Data[40])

	cut, err := readProteinTensor(inFile, []string{"p0"}, featureRegistry[FtPssm], 1)
	require.NoError(t, err)
	require.Equal(t, []int{1, 1, 20}, cut.Shape)

	writeTsv(t, dir, "bad_pssm.tsv", "p0\t1\t2\t3")
	_, err = readProteinTensor(filepath.Join(dir, "bad_pssm.tsv"), []string{"p0"}, featureRegistry[FtPssm], 3)
	require.ErrorIs(t, err, ErrDataset)
}

func TestSplitPairs(t *testing.T) {
	abInPair := []int{0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8, 9, 9}
	split := []float64{0.8, 0.1, 0.1}

	train, valid, test, unseen, err := SplitPairs(abInPair, 10, split, SetupSeed(7))
	require.NoError(t, err)
	train2, valid2, test2, unseen2, err := SplitPairs(abInPair, 10, split, SetupSeed(7))
	require.NoError(t, err)
	require.Equal(t, train, train2)
	require.Equal(t, valid, valid2)
	require.Equal(t, test, test2)
	require.Equal(t, unseen, unseen2)

	require.Len(t, unseen, 2, "one antibody held out with both of its pairs")
	require.Equal(t, abInPair[unseen[0]], abInPair[unseen[1]])
	held := abInPair[unseen[0]]
	for _, i := range append(append(append([]int{}, train...), valid...), test...) {
		require.NotEqual(t, held, abInPair[i])
	}
	require.Len(t, train, 14)
	require.Len(t, valid, 2)
	require.Len(t, test, 2)

	_, _, _, _, err = SplitPairs(abInPair, 10, []float64{0.5, 0.5}, SetupSeed(7))
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestPredFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_seen.pred.txt")
	require.NoError(t, WriteFile(path, []int{7, 2}, []float64{1, 0}, []float64{0, 0}))
	idx, label, pred, err := ReadPredFile(path)
	require.NoError(t, err)
	require.Equal(t, []int{7, 2}, idx)
	require.Equal(t, []float64{1, 0}, label)
	require.Equal(t, []float64{0, 0}, pred)
}

func TestReadLinesReportsReadErrors(t *testing.T) {
	// opening a directory succeeds, reading it does not
	_, err := readLines(t.TempDir())
	require.ErrorIs(t, err, ErrDataset)

	_, _, err = ReadFeatureFile(t.TempDir())
	require.ErrorIs(t, err, ErrDataset)
}
