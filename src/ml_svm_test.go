package src

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// blobs places n points around each center, labelled with the center index
// times 10 so labels are not contiguous.
func blobs(centers [][]float64, n int) (*mat.Dense, []float64) {
	offsets := [][]float64{{0, 0}, {0.1, 0}, {0, 0.1}, {-0.1, 0}, {0, -0.1}, {0.05, 0.05}}
	var data, y []float64
	for c, center := range centers {
		for i := 0; i < n; i++ {
			o := offsets[i%len(offsets)]
			data = append(data, center[0]+o[0], center[1]+o[1])
			y = append(y, float64(10*c))
		}
	}
	return mat.NewDense(len(y), 2, data), y
}

func TestSVCBinary(t *testing.T) {
	X, y := blobs([][]float64{{0, 0}, {2, 2}}, 6)
	clf := NewSVC(32, 0.5)
	require.NoError(t, clf.Fit(X, y))
	require.True(t, clf.IsFitted())
	require.Equal(t, []float64{0, 10}, clf.Classes)
	require.Len(t, clf.Machines, 1)
	require.NotEmpty(t, clf.Machines[0].SV)

	pred, err := clf.Predict(X)
	require.NoError(t, err)
	require.Equal(t, y, pred)
}

func TestSVCMulticlassOneVsOne(t *testing.T) {
	X, y := blobs([][]float64{{0, 0}, {3, 0}, {0, 3}}, 6)
	clf := NewSVC(10, 0)
	require.NoError(t, clf.Fit(X, y))
	require.Len(t, clf.Machines, 3)
	require.Greater(t, clf.Gamma, 0.0, "gamma <= 0 resolves to the scaled value")

	query := mat.NewDense(3, 2, []float64{0.02, -0.03, 2.9, 0.1, 0.1, 3.1})
	pred, err := clf.Predict(query)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 10, 20}, pred)
}

func TestSVCErrors(t *testing.T) {
	X, y := blobs([][]float64{{0, 0}, {2, 2}}, 3)

	_, err := NewSVC(1, 1).Predict(X)
	require.ErrorIs(t, err, ErrNotFitted)

	require.ErrorIs(t, NewSVC(0, 1).Fit(X, y), ErrConfiguration)
	require.ErrorIs(t, NewSVC(1, 1).Fit(X, y[:4]), ErrDataset)

	oneClass := make([]float64, len(y))
	require.ErrorIs(t, NewSVC(1, 1).Fit(X, oneClass), ErrDataset)

	clf := NewSVC(1, 1)
	require.NoError(t, clf.Fit(X, y))
	_, err = clf.Predict(mat.NewDense(1, 3, nil))
	require.ErrorIs(t, err, ErrDataset)
}

func TestScaleGamma(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{0, 0, 2, 2})
	// population variance of {0,0,2,2} is 1
	require.InDelta(t, 0.5, scaleGamma(X), 1e-12)
	require.Equal(t, 1.0, scaleGamma(mat.NewDense(2, 2, []float64{3, 3, 3, 3})))
}

func TestKernelRows(t *testing.T) {
	x := [][]float64{{0, 0}, {1, 0}, {0, 2}}
	k := newKernelRows(x, 0.5, 1)
	defer k.release()

	r := k.row(1)
	require.InDelta(t, math.Exp(-0.5), r[0], 1e-12)
	require.InDelta(t, 1, r[1], 1e-12)
	require.InDelta(t, math.Exp(-0.5*5), r[2], 1e-12)
	require.Equal(t, 1, k.rows.ItemCount())
	require.Equal(t, r, k.row(1))

	uncached := newKernelRows(x, 0.5, 0)
	require.Nil(t, uncached.rows)
	require.Equal(t, r, uncached.row(1))
}
