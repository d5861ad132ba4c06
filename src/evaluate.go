package src

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// MetricNames is the fixed order of the metric bundle.
var MetricNames = []string{"acc", "precision", "recall", "f1_s", "auc", "mcc", "cross_entropy", "mae", "mse"}

// Metrics is the bundle reported for one partition.
type Metrics struct {
	Accuracy     float64
	Precision    float64
	Recall       float64
	F1           float64
	AUC          float64
	MCC          float64
	CrossEntropy float64
	MAE          float64
	MSE          float64
}

// Values returns the metrics in MetricNames order.
func (m Metrics) Values() []float64 {
	return []float64{m.Accuracy, m.Precision, m.Recall, m.F1, m.AUC, m.MCC, m.CrossEntropy, m.MAE, m.MSE}
}

func (m Metrics) String() string {
	parts := make([]string, 0, len(MetricNames))
	for _, v := range m.Values() {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// EvaluateFunc scores predictions against ground truth labels.
type EvaluateFunc func(pred, label []float64) Metrics

const logLossEps = 1e-15

// EvaluateClassification scores binary predictions. pred may be hard labels
// or positive-class probabilities; the discrete metrics threshold it at 0.5.
func EvaluateClassification(pred, label []float64) Metrics {
	nan := math.NaN()
	if len(pred) == 0 || len(pred) != len(label) {
		return Metrics{nan, nan, nan, nan, nan, nan, nan, nan, nan}
	}
	var tp, fp, fn, tn float64
	var ce, ae, se float64
	for i, p := range pred {
		y := label[i]
		pos := p >= 0.5
		switch {
		case pos && y == 1:
			tp++
		case pos:
			fp++
		case y == 1:
			fn++
		default:
			tn++
		}
		pc := math.Min(math.Max(p, logLossEps), 1-logLossEps)
		ce -= y*math.Log(pc) + (1-y)*math.Log(1-pc)
		ae += math.Abs(p - y)
		se += (p - y) * (p - y)
	}
	n := float64(len(pred))
	m := Metrics{
		Accuracy:     (tp + tn) / n,
		AUC:          rocAuc(pred, label),
		CrossEntropy: ce / n,
		MAE:          ae / n,
		MSE:          se / n,
	}
	if tp+fp > 0 {
		m.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		m.Recall = tp / (tp + fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	if den := math.Sqrt((tp + fp) * (tp + fn) * (tn + fp) * (tn + fn)); den > 0 {
		m.MCC = (tp*tn - fp*fn) / den
	}
	return m
}

// rocAuc is the area under the ROC curve, NaN unless both classes occur.
func rocAuc(pred, label []float64) float64 {
	y := make([]float64, len(pred))
	copy(y, pred)
	classes := make([]bool, len(label))
	nPos := 0
	for i, l := range label {
		classes[i] = l == 1
		if classes[i] {
			nPos++
		}
	}
	if nPos == 0 || nPos == len(label) {
		return math.NaN()
	}
	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}
