package src

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FileDataset reads a dataset directory:
//
//	pairs.tsv               antibody, virus, then one column per label type
//	<role>_<key>.tsv        protein ID then its flattened feature values
//	partition.tsv           optional; pair row and partition name
type FileDataset struct {
	Dir string
}

// readLines returns the tab-split non-empty lines of inFile.
func readLines(inFile string) (lines [][]string, err error) {
	file, err := os.Open(inFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataset, err)
	}
	defer file.Close()

	br := bufio.NewReaderSize(file, 32768000)
	for {
		line, isPrefix, err1 := br.ReadLine()
		if err1 == io.EOF {
			break
		}
		if err1 != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDataset, inFile, err1)
		}
		if isPrefix {
			return nil, fmt.Errorf("%w: %s: line too long", ErrDataset, inFile)
		}
		str := strings.TrimRight(string(line), "\r")
		if str == "" {
			continue
		}
		lines = append(lines, strings.Split(str, "\t"))
	}
	return lines, nil
}

func parseFloats(elements []string, inFile string, lineNo int) ([]float64, error) {
	values := make([]float64, len(elements))
	for c, e := range elements {
		v, err := strconv.ParseFloat(e, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d column %d: %v", ErrDataset, inFile, lineNo, c+1, err)
		}
		values[c] = v
	}
	return values, nil
}

// ReadFeatureFile reads one protein per line: ID followed by values.
func ReadFeatureFile(inFile string) (rName []string, data [][]float64, err error) {
	lines, err := readLines(inFile)
	if err != nil {
		return nil, nil, err
	}
	for i, elements := range lines {
		value := Shift(&elements)
		row, err := parseFloats(elements, inFile, i+1)
		if err != nil {
			return nil, nil, err
		}
		rName = append(rName, value)
		data = append(data, row)
	}
	return rName, data, nil
}

// readPairs returns antibody IDs, virus IDs and the labelType column.
func readPairs(inFile string, labelType string) (abIds, viIds []string, labels []float64, err error) {
	lines, err := readLines(inFile)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(lines) < 2 {
		return nil, nil, nil, fmt.Errorf("%w: %s has no pairs", ErrDataset, inFile)
	}
	header := lines[0]
	col := -1
	for c, name := range header {
		if name == labelType {
			col = c
		}
	}
	if len(header) < 3 || header[0] != "antibody" || header[1] != "virus" {
		return nil, nil, nil, fmt.Errorf("%w: %s header must start with antibody, virus", ErrDataset, inFile)
	}
	if col < 2 {
		return nil, nil, nil, fmt.Errorf("%w: %s has no label column %q", ErrDataset, inFile, labelType)
	}
	for i, elements := range lines[1:] {
		if len(elements) != len(header) {
			return nil, nil, nil, fmt.Errorf("%w: %s line %d has %d fields, want %d", ErrDataset, inFile, i+2, len(elements), len(header))
		}
		v, err := strconv.ParseFloat(elements[col], 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %s line %d: %v", ErrDataset, inFile, i+2, err)
		}
		abIds = append(abIds, elements[0])
		viIds = append(viIds, elements[1])
		labels = append(labels, v)
	}
	return abIds, viIds, labels, nil
}

// uniqueIndex maps each ID to the order of its first appearance.
func uniqueIndex(ids []string) (idIdx map[string]int, order []string, inPair []int) {
	idIdx = make(map[string]int)
	inPair = make([]int, len(ids))
	for i, id := range ids {
		idx, exist := idIdx[id]
		if !exist {
			idx = len(order)
			idIdx[id] = idx
			order = append(order, id)
		}
		inPair[i] = idx
	}
	return idIdx, order, inPair
}

// readProteinTensor loads <role>_<key>.tsv for the proteins in order.
// Positional kinds are padded with zeros or truncated to maxLen residues.
func readProteinTensor(inFile string, order []string, spec featureSpec, maxLen int) (*Tensor, error) {
	rName, rows, err := ReadFeatureFile(inFile)
	if err != nil {
		return nil, err
	}
	byId := make(map[string][]float64, len(rName))
	for i, id := range rName {
		byId[id] = rows[i]
	}
	var shape []int
	if spec.channels > 0 {
		shape = []int{len(order), maxLen, spec.channels}
	} else {
		if len(rows) == 0 {
			return nil, fmt.Errorf("%w: %s is empty", ErrDataset, inFile)
		}
		shape = []int{len(order), len(rows[0])}
	}
	width := 1
	for _, d := range shape[1:] {
		width *= d
	}
	data := make([]float64, len(order)*width)
	for i, id := range order {
		row, exist := byId[id]
		if !exist {
			return nil, fmt.Errorf("%w: %s has no row for %s", ErrDataset, inFile, id)
		}
		if spec.channels > 0 && len(row)%spec.channels != 0 {
			return nil, fmt.Errorf("%w: %s row %s has %d values, not a multiple of %d", ErrDataset, inFile, id, len(row), spec.channels)
		}
		if spec.channels == 0 && len(row) != width {
			return nil, fmt.Errorf("%w: %s row %s has %d values, want %d", ErrDataset, inFile, id, len(row), width)
		}
		n := len(row)
		if n > width {
			n = width
		}
		copy(data[i*width:], row[:n])
	}
	return NewTensor(shape, data)
}

// readPartition reads pair row / partition name lines.
func readPartition(inFile string, nPair int) (map[string][]int, error) {
	lines, err := readLines(inFile)
	if err != nil {
		return nil, err
	}
	parts := make(map[string][]int)
	for i, elements := range lines {
		if len(elements) != 2 {
			return nil, fmt.Errorf("%w: %s line %d needs 2 fields", ErrDataset, inFile, i+1)
		}
		idx, err := strconv.Atoi(elements[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrDataset, inFile, i+1, err)
		}
		if _, known := partitionLabel[elements[1]]; !known {
			return nil, fmt.Errorf("%w: %s line %d: unknown partition %q", ErrDataset, inFile, i+1, elements[1])
		}
		if idx < 0 || idx >= nPair {
			return nil, fmt.Errorf("%w: %s line %d: pair %d out of range", ErrDataset, inFile, i+1, idx)
		}
		parts[elements[1]] = append(parts[elements[1]], idx)
	}
	return parts, nil
}

// SplitPairs holds out a split[2] share of antibody identities as the
// unseen test set, then cuts the remaining pairs, shuffled, into train,
// seen valid and seen test by split.
func SplitPairs(abInPair []int, nAntibody int, split []float64, rng *rand.Rand) (train, validSeen, testSeen, testUnseen []int, err error) {
	if err := validateSplit(split); err != nil {
		return nil, nil, nil, nil, err
	}
	nUnseen := int(math.Round(split[2] * float64(nAntibody)))
	if nUnseen >= nAntibody {
		nUnseen = nAntibody - 1
	}
	if nUnseen < 0 {
		nUnseen = 0
	}
	held := make(map[int]bool, nUnseen)
	for _, ab := range rng.Perm(nAntibody)[:nUnseen] {
		held[ab] = true
	}
	seen := make([]int, 0, len(abInPair))
	for i, ab := range abInPair {
		if held[ab] {
			testUnseen = append(testUnseen, i)
		} else {
			seen = append(seen, i)
		}
	}
	perm := rng.Perm(len(seen))
	nSeen := float64(len(seen))
	nTrain := int(math.Round(split[0] * nSeen))
	nValid := int(math.Round(split[1] * nSeen))
	if nTrain > len(seen) {
		nTrain = len(seen)
	}
	if nTrain+nValid > len(seen) {
		nValid = len(seen) - nTrain
	}
	if nTrain == 0 {
		return nil, nil, nil, nil, fmt.Errorf("%w: train partition is empty", ErrDataset)
	}
	for k, p := range perm {
		switch {
		case k < nTrain:
			train = append(train, seen[p])
		case k < nTrain+nValid:
			validSeen = append(validSeen, seen[p])
		default:
			testSeen = append(testSeen, seen[p])
		}
	}
	sort.Ints(train)
	sort.Ints(validSeen)
	sort.Ints(testSeen)
	return train, validSeen, testSeen, testUnseen, nil
}

// Build implements DatasetProvider. Only the selected feature kinds are read.
func (f FileDataset) Build(cfg Config, rng *rand.Rand) (*Dataset, error) {
	kinds, err := ParseFeatureKinds(cfg.SelectFt)
	if err != nil {
		return nil, err
	}
	abIds, viIds, labels, err := readPairs(filepath.Join(f.Dir, "pairs.tsv"), cfg.LabelType)
	if err != nil {
		return nil, err
	}
	_, abOrder, abInPair := uniqueIndex(abIds)
	_, viOrder, viInPair := uniqueIndex(viIds)
	log.Printf("dataset %s: %d pairs, %d antibodies, %d viruses", f.Dir, len(labels), len(abOrder), len(viOrder))

	d := &Dataset{
		Labels:              labels,
		ProteinFt:           make(map[string]*Tensor),
		AntibodyIndexInPair: abInPair,
		VirusIndexInPair:    viInPair,
	}
	for _, kind := range kinds {
		spec := featureRegistry[kind]
		for _, role := range []string{"antibody", "virus"} {
			order, maxLen := abOrder, cfg.MaxAntibodyLen
			if role == "virus" {
				order, maxLen = viOrder, cfg.MaxVirusLen
			}
			key := featureKey(role, kind)
			t, err := readProteinTensor(filepath.Join(f.Dir, key+".tsv"), order, spec, maxLen)
			if err != nil {
				return nil, err
			}
			d.ProteinFt[key] = t
		}
	}

	partFile := filepath.Join(f.Dir, "partition.tsv")
	if _, statErr := os.Stat(partFile); statErr == nil {
		parts, err := readPartition(partFile, len(labels))
		if err != nil {
			return nil, err
		}
		d.TrainIndex = parts[PartTrain]
		d.ValidSeenIndex = parts[PartValidSeen]
		d.TestSeenIndex = parts[PartTestSeen]
		d.TestUnseenIndex = parts[PartTestUnseen]
	} else if errors.Is(statErr, fs.ErrNotExist) {
		d.TrainIndex, d.ValidSeenIndex, d.TestSeenIndex, d.TestUnseenIndex, err = SplitPairs(abInPair, len(abOrder), cfg.HotDataSplit, rng)
		if err != nil {
			return nil, err
		}
	} else {
		return nil, fmt.Errorf("%w: %v", ErrDataset, statErr)
	}
	if err := d.Check(); err != nil {
		return nil, err
	}
	return d, nil
}

// WriteFile writes pair row, label and prediction per line.
func WriteFile(outFile string, idx []int, label []float64, pred []float64) (err error) {
	file, err := os.OpenFile(outFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()
	wr := bufio.NewWriterSize(file, 192000)
	for i := range idx {
		wr.WriteString(strconv.Itoa(idx[i]))
		wr.WriteString("\t")
		wr.WriteString(strconv.FormatFloat(label[i], 'f', 6, 64))
		wr.WriteString("\t")
		wr.WriteString(strconv.FormatFloat(pred[i], 'f', 6, 64))
		wr.WriteString("\n")
	}
	return wr.Flush()
}

// ReadPredFile reads a file written by WriteFile.
func ReadPredFile(inFile string) (idx []int, label []float64, pred []float64, err error) {
	lines, err := readLines(inFile)
	if err != nil {
		return nil, nil, nil, err
	}
	for i, elements := range lines {
		if len(elements) != 3 {
			return nil, nil, nil, fmt.Errorf("%w: %s line %d needs 3 fields", ErrDataset, inFile, i+1)
		}
		r, err := strconv.Atoi(elements[0])
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %s line %d: %v", ErrDataset, inFile, i+1, err)
		}
		values, err := parseFloats(elements[1:], inFile, i+1)
		if err != nil {
			return nil, nil, nil, err
		}
		idx = append(idx, r)
		label = append(label, values[0])
		pred = append(pred, values[1])
	}
	return idx, label, pred, nil
}

// Init creates the result folder and opens its log.txt for appending.
func Init(resFolder string) (logFile *os.File, err error) {
	if err = os.MkdirAll(resFolder, 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(resFolder, "log.txt"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}
