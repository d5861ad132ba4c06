package src

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Fold is a row subset of the feature matrix with its labels.
type Fold struct {
	X *mat.Dense
	Y []float64
}

// SetXY copies rows idxArr of matX and entries of vecY into the fold.
func (f *Fold) SetXY(idxArr []int, matX *mat.Dense, vecY []float64) {
	f.X = SubsetRows(matX, idxArr)
	f.Y = make([]float64, len(idxArr))
	for i, idx := range idxArr {
		f.Y[i] = vecY[idx]
	}
}

// SubsetRows copies the rows idxArr of data, in that order. An empty
// index yields nil since gonum has no zero-row matrix.
func SubsetRows(data *mat.Dense, idxArr []int) *mat.Dense {
	if len(idxArr) == 0 {
		return nil
	}
	_, nCol := data.Dims()
	sub := mat.NewDense(len(idxArr), nCol, nil)
	for i, idx := range idxArr {
		sub.SetRow(i, data.RawRowView(idx))
	}
	return sub
}

// ColStackMatrix places addX to the right of X.
func ColStackMatrix(X *mat.Dense, addX *mat.Dense) *mat.Dense {
	var X2 mat.Dense
	X2.Augment(X, addX)
	return &X2
}

// ExtractClasses returns the sorted label alphabet of y.
func ExtractClasses(y []float64) []float64 {
	seen := make(map[float64]bool)
	classes := make([]float64, 0)
	for _, v := range y {
		if !seen[v] {
			seen[v] = true
			classes = append(classes, v)
		}
	}
	sort.Float64s(classes)
	return classes
}

// NanFilter reports whether any value is NaN or Inf.
func NanFilter(data []float64) (detectNanInf bool) {
	for _, ele := range data {
		if math.IsInf(ele, 0) || math.IsNaN(ele) {
			return true
		}
	}
	return false
}

func Shift(pToSlice *[]string) string {
	sValue := (*pToSlice)[0]
	*pToSlice = (*pToSlice)[1:len(*pToSlice)]
	return sValue
}
