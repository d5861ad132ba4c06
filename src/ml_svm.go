package src

import (
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const tau = 1e-12

// BinaryMachine is one fitted two-class problem: Pos is predicted when
// sum(Coef[i]*K(SV[i], x)) - Rho > 0, Neg otherwise.
type BinaryMachine struct {
	Pos  float64
	Neg  float64
	SV   [][]float64
	Coef []float64
	Rho  float64
	Iter int
}

// SVC is a C-support vector classifier with an RBF kernel. Multi-class
// problems are split one-vs-one over the sorted label alphabet.
//
// The dual is solved by SMO with second order working set selection:
//
//	min 0.5*a'Qa - e'a  s.t. 0 <= a <= C, y'a = 0,  Q_ij = y_i*y_j*K(x_i,x_j)
type SVC struct {
	C         float64
	Gamma     float64
	Tol       float64
	MaxIter   int
	CacheSize int

	NFeature int
	Classes  []float64
	Machines []BinaryMachine
}

// NewSVC returns a classifier with the solver defaults used by libsvm.
// gamma <= 0 selects 1/(nFeature*Var(X)) at fit time.
func NewSVC(c, gamma float64) *SVC {
	return &SVC{C: c, Gamma: gamma, Tol: 1e-3, MaxIter: 10000000, CacheSize: 200}
}

// IsFitted reports whether Fit has completed.
func (s *SVC) IsFitted() bool {
	return len(s.Machines) > 0
}

// scaleGamma is 1/(nFeature*Var(X)) with the population variance of all
// entries, or 1 when X is constant.
func scaleGamma(X *mat.Dense) float64 {
	nRow, nCol := X.Dims()
	all := make([]float64, 0, nRow*nCol)
	for i := 0; i < nRow; i++ {
		all = append(all, X.RawRowView(i)...)
	}
	_, v := stat.MeanVariance(all, nil)
	n := float64(len(all))
	if n > 1 {
		v = v * (n - 1) / n
	}
	if v == 0 || math.IsNaN(v) {
		return 1
	}
	return 1 / (float64(nCol) * v)
}

// Fit replaces any previous state with a model of X, y.
func (s *SVC) Fit(X *mat.Dense, y []float64) error {
	if !(s.C > 0) {
		return fmt.Errorf("%w: C must be positive, got %v", ErrConfiguration, s.C)
	}
	nRow, nCol := X.Dims()
	if nRow != len(y) {
		return fmt.Errorf("%w: %d rows but %d labels", ErrDataset, nRow, len(y))
	}
	classes := ExtractClasses(y)
	if len(classes) < 2 {
		return fmt.Errorf("%w: training labels hold %d class(es), need at least 2", ErrDataset, len(classes))
	}
	gamma := s.Gamma
	if gamma <= 0 {
		gamma = scaleGamma(X)
	}
	machines := make([]BinaryMachine, 0, len(classes)*(len(classes)-1)/2)
	for a := 0; a < len(classes); a++ {
		for b := a + 1; b < len(classes); b++ {
			rows := make([][]float64, 0)
			ys := make([]float64, 0)
			for i, v := range y {
				switch v {
				case classes[a]:
					rows = append(rows, X.RawRowView(i))
					ys = append(ys, 1)
				case classes[b]:
					rows = append(rows, X.RawRowView(i))
					ys = append(ys, -1)
				}
			}
			m := s.solve(rows, ys, gamma)
			m.Pos, m.Neg = classes[a], classes[b]
			log.Printf("svm %v vs %v: %d samples, %d support vectors, %d iterations", m.Pos, m.Neg, len(ys), len(m.SV), m.Iter)
			machines = append(machines, m)
		}
	}
	s.Gamma = gamma
	s.NFeature = nCol
	s.Classes = classes
	s.Machines = machines
	return nil
}

// solve runs SMO on one binary problem with labels in {+1,-1}.
func (s *SVC) solve(x [][]float64, y []float64, gamma float64) BinaryMachine {
	n := len(y)
	C := s.C
	q := newKernelRows(x, gamma, s.CacheSize)
	defer q.release()

	alpha := make([]float64, n)
	G := make([]float64, n)
	for i := range G {
		G[i] = -1
	}
	upper := func(t int) bool { return alpha[t] >= C }
	lower := func(t int) bool { return alpha[t] <= 0 }

	maxIter := s.MaxIter
	if maxIter <= 0 {
		maxIter = math.MaxInt
	}
	iter := 0
	for ; iter < maxIter; iter++ {
		// i maximizes -y_t*G_t over the up set
		gMax := math.Inf(-1)
		i := -1
		for t := 0; t < n; t++ {
			if y[t] > 0 {
				if !upper(t) && -G[t] >= gMax {
					gMax, i = -G[t], t
				}
			} else if !lower(t) && G[t] >= gMax {
				gMax, i = G[t], t
			}
		}
		if i == -1 {
			break
		}
		Ki := q.row(i)
		// j minimizes the second order decrease over the low set
		gMax2 := math.Inf(-1)
		j := -1
		objMin := math.Inf(1)
		for t := 0; t < n; t++ {
			var gradDiff float64
			if y[t] > 0 {
				if lower(t) {
					continue
				}
				gradDiff = gMax + G[t]
				if G[t] >= gMax2 {
					gMax2 = G[t]
				}
			} else {
				if upper(t) {
					continue
				}
				gradDiff = gMax - G[t]
				if -G[t] >= gMax2 {
					gMax2 = -G[t]
				}
			}
			if gradDiff > 0 {
				quad := q.diag(i) + q.diag(t) - 2*Ki[t]
				if quad <= 0 {
					quad = tau
				}
				if obj := -(gradDiff * gradDiff) / quad; obj <= objMin {
					j, objMin = t, obj
				}
			}
		}
		if gMax+gMax2 < s.Tol || j == -1 {
			break
		}
		Kj := q.row(j)

		quad := q.diag(i) + q.diag(j) - 2*Ki[j]
		if quad <= 0 {
			quad = tau
		}
		oldAi, oldAj := alpha[i], alpha[j]
		if y[i] != y[j] {
			delta := (-G[i] - G[j]) / quad
			diff := alpha[i] - alpha[j]
			alpha[i] += delta
			alpha[j] += delta
			if diff > 0 {
				if alpha[j] < 0 {
					alpha[j] = 0
					alpha[i] = diff
				}
			} else if alpha[i] < 0 {
				alpha[i] = 0
				alpha[j] = -diff
			}
			if diff > 0 {
				if alpha[i] > C {
					alpha[i] = C
					alpha[j] = C - diff
				}
			} else if alpha[j] > C {
				alpha[j] = C
				alpha[i] = C + diff
			}
		} else {
			delta := (G[i] - G[j]) / quad
			sum := alpha[i] + alpha[j]
			alpha[i] -= delta
			alpha[j] += delta
			if sum > C {
				if alpha[i] > C {
					alpha[i] = C
					alpha[j] = sum - C
				}
			} else if alpha[j] < 0 {
				alpha[j] = 0
				alpha[i] = sum
			}
			if sum > C {
				if alpha[j] > C {
					alpha[j] = C
					alpha[i] = sum - C
				}
			} else if alpha[i] < 0 {
				alpha[i] = 0
				alpha[j] = sum
			}
		}
		dAi := alpha[i] - oldAi
		dAj := alpha[j] - oldAj
		for t := 0; t < n; t++ {
			G[t] += y[t] * (y[i]*Ki[t]*dAi + y[j]*Kj[t]*dAj)
		}
	}
	if iter >= maxIter {
		log.Print("svm: reaching max number of iterations ", maxIter)
	}

	m := BinaryMachine{Rho: calculateRho(alpha, G, y, C), Iter: iter}
	for t := 0; t < n; t++ {
		if alpha[t] > 0 {
			sv := make([]float64, len(x[t]))
			copy(sv, x[t])
			m.SV = append(m.SV, sv)
			m.Coef = append(m.Coef, alpha[t]*y[t])
		}
	}
	return m
}

// calculateRho averages y*G over free vectors, falling back to the
// midpoint of the feasible interval when every alpha sits on a bound.
func calculateRho(alpha, G, y []float64, C float64) float64 {
	ub, lb := math.Inf(1), math.Inf(-1)
	nFree := 0
	sumFree := 0.0
	for t := range alpha {
		yG := y[t] * G[t]
		switch {
		case alpha[t] >= C:
			if y[t] < 0 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		case alpha[t] <= 0:
			if y[t] > 0 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		default:
			nFree++
			sumFree += yG
		}
	}
	if nFree > 0 {
		return sumFree / float64(nFree)
	}
	return (ub + lb) / 2
}

// decision is the signed distance of x for machine m.
func (m *BinaryMachine) decision(gamma float64, x []float64, xNorm float64, svNorms []float64) float64 {
	f := -m.Rho
	for i, sv := range m.SV {
		f += m.Coef[i] * rbf(gamma, sv, svNorms[i], x, xNorm)
	}
	return f
}

// Predict returns one class label per row of X by one-vs-one voting; ties
// go to the smaller label.
func (s *SVC) Predict(X *mat.Dense) ([]float64, error) {
	if !s.IsFitted() {
		return nil, ErrNotFitted
	}
	nRow, nCol := X.Dims()
	if nCol != s.NFeature {
		return nil, fmt.Errorf("%w: model expects %d features, got %d", ErrDataset, s.NFeature, nCol)
	}
	classIdx := make(map[float64]int, len(s.Classes))
	for i, c := range s.Classes {
		classIdx[c] = i
	}
	svNorms := make([][]float64, len(s.Machines))
	for k := range s.Machines {
		svNorms[k] = sqNorms(s.Machines[k].SV)
	}
	pred := make([]float64, nRow)
	votes := make([]int, len(s.Classes))
	for r := 0; r < nRow; r++ {
		x := X.RawRowView(r)
		xNorm := sqNorms([][]float64{x})[0]
		for i := range votes {
			votes[i] = 0
		}
		for k := range s.Machines {
			m := &s.Machines[k]
			if m.decision(s.Gamma, x, xNorm, svNorms[k]) > 0 {
				votes[classIdx[m.Pos]]++
			} else {
				votes[classIdx[m.Neg]]++
			}
		}
		best := 0
		for i := 1; i < len(votes); i++ {
			if votes[i] > votes[best] {
				best = i
			}
		}
		pred[r] = s.Classes[best]
	}
	return pred, nil
}
