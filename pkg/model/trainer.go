package model

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/richard-senior/matchcast/internal/logger"
	"github.com/richard-senior/matchcast/pkg/features"
	"github.com/richard-senior/matchcast/pkg/history"
)

// MinTrainingRows is the smallest history the trainer accepts
const MinTrainingRows = 10

// TrainOptions tunes the gradient descent fits
type TrainOptions struct {
	Iterations      int
	LearningRate    float64
	L2              float64 // penalty of the plain models
	RidgeL2         float64 // penalty of the ridge variants
	SelectorMax     int     // most features the BTTS selector keeps
	HoldoutFraction float64 // newest share of rows kept back for evaluation
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Iterations:      500,
		LearningRate:    0.1,
		L2:              0.01,
		RidgeL2:         1.0,
		SelectorMax:     8,
		HoldoutFraction: 0.2,
	}
}

// Report holds holdout metrics per family member
type Report struct {
	Rows         int                `json:"rows"`
	Holdout      int                `json:"holdout"`
	Result       map[string]float64 `json:"resultAccuracy"`
	ScoreRMSE    map[string]float64 `json:"scoreRmse"`
	HTFT         map[string]float64 `json:"htftAccuracy"`
	BTTS         map[string]float64 `json:"bttsAccuracy"`
	BTTSFeatures []string           `json:"bttsFeatures"`
}

// TrainFromSource builds features from every team of src and trains a bundle. Teams that
// fail to load are logged and skipped.
func TrainFromSource(src history.Source, opts TrainOptions) (*Bundle, *Report, error) {
	matches, err := history.All(src)
	if err != nil {
		logger.Warn("Some teams could not be loaded for training", err.Error())
	}
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("no match history to train on")
	}
	rows, labels := features.Build(newestFirst(matches))
	return Train(rows, labels, opts)
}

// newestFirst orders matches of all teams by date, most recent first. Teams arrive one
// after another from history.All, so without this the holdout would be whole teams.
func newestFirst(matches []*history.MatchRecord) []*history.MatchRecord {
	out := make([]*history.MatchRecord, len(matches))
	copy(out, matches)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// Train fits every family. The newest HoldoutFraction of rows is used only for the report.
func Train(rows []features.Vector, labels *features.Labels, opts TrainOptions) (*Bundle, *Report, error) {
	if labels == nil || len(labels.Result) != len(rows) || len(labels.Goals) != len(rows) ||
		len(labels.HTFT) != len(rows) || len(labels.BTTS) != len(rows) {
		return nil, nil, fmt.Errorf("labels do not match %d rows", len(rows))
	}
	if len(rows) < MinTrainingRows {
		return nil, nil, fmt.Errorf("need at least %d rows to train, got %d", MinTrainingRows, len(rows))
	}
	if opts.Iterations < 1 || opts.LearningRate <= 0 {
		return nil, nil, fmt.Errorf("invalid training options: iterations %d, learning rate %f", opts.Iterations, opts.LearningRate)
	}

	raw := make([][]float64, len(rows))
	for i, r := range rows {
		raw[i] = []float64(r)
	}
	scaler, err := FitScaler(raw)
	if err != nil {
		return nil, nil, err
	}
	scaled := make([][]float64, len(raw))
	for i, r := range raw {
		if scaled[i], err = scaler.Transform(r); err != nil {
			return nil, nil, err
		}
	}

	// rows are newest first, the holdout is the front of rows
	holdout := int(float64(len(scaled)) * opts.HoldoutFraction)
	if len(scaled)-holdout < MinTrainingRows {
		holdout = 0
	}
	test, train := scaled[:holdout], scaled[holdout:]

	b := &Bundle{
		Meta: Meta{
			TrainedAt:    time.Now().UTC(),
			Rows:         len(rows),
			FeatureNames: features.Names(),
		},
		Scaler: scaler,
	}
	rep := &Report{
		Rows:      len(rows),
		Holdout:   holdout,
		Result:    map[string]float64{},
		ScoreRMSE: map[string]float64{},
		HTFT:      map[string]float64{},
		BTTS:      map[string]float64{},
	}

	// result
	resultY := labels.Result
	b.Result = fitClassifiers(train, resultY[holdout:], ResultClasses, opts)
	for _, m := range b.Result {
		rep.Result[m.Name] = accuracy(m.Model, test, resultY[:holdout])
	}

	// score
	goals := labels.Goals
	b.Score = Family{
		{Name: "Linear", Model: fitLinear(train, goals[holdout:], opts.L2, opts)},
		{Name: "Ridge", Model: fitLinear(train, goals[holdout:], opts.RidgeL2, opts)},
	}
	for _, m := range b.Score {
		rep.ScoreRMSE[m.Name] = rmse(m.Model, test, goals[:holdout])
	}

	// half time / full time
	htftClasses := uniqueSorted(labels.HTFT)
	htftY := indexLabels(labels.HTFT, htftClasses)
	b.HTFT = fitClassifiers(train, htftY[holdout:], htftClasses, opts)
	for _, m := range b.HTFT {
		rep.HTFT[m.Name] = accuracy(m.Model, test, htftY[:holdout])
	}

	// both teams to score
	bttsY := make([]int, len(labels.BTTS))
	for i, v := range labels.BTTS {
		if v {
			bttsY[i] = 1
		}
	}
	selector := selectFeatures(train, bttsY[holdout:], opts.SelectorMax)
	b.BTTSSelector = selector
	trainSel, err := transformAll(selector, train)
	if err != nil {
		return nil, nil, err
	}
	testSel, err := transformAll(selector, test)
	if err != nil {
		return nil, nil, err
	}
	b.BTTS = fitClassifiers(trainSel, bttsY[holdout:], BTTSClasses, opts)
	for _, m := range b.BTTS {
		rep.BTTS[m.Name] = accuracy(m.Model, testSel, bttsY[:holdout])
	}
	for _, idx := range selector.Indices {
		rep.BTTSFeatures = append(rep.BTTSFeatures, b.Meta.FeatureNames[idx])
	}

	logger.Info("Trained model bundle", rep)
	return b, rep, nil
}

func fitClassifiers(rows [][]float64, y []int, labels []string, opts TrainOptions) Family {
	return Family{
		{Name: "Logistic", Model: fitSoftmax(rows, y, labels, opts.L2, opts)},
		{Name: "RidgeLogistic", Model: fitSoftmax(rows, y, labels, opts.RidgeL2, opts)},
		{Name: "Centroid", Model: fitCentroid(rows, y, labels)},
	}
}

// fitSoftmax runs batch gradient descent on the multinomial log loss
func fitSoftmax(rows [][]float64, y []int, labels []string, l2 float64, opts TrainOptions) *SoftmaxClassifier {
	k := len(labels)
	d := len(rows[0])
	w := make([][]float64, k)
	for c := range w {
		w[c] = make([]float64, d+1)
	}
	grad := make([][]float64, k)
	for c := range grad {
		grad[c] = make([]float64, d+1)
	}
	n := float64(len(rows))
	z := make([]float64, k)

	for iter := 0; iter < opts.Iterations; iter++ {
		for c := range grad {
			for j := range grad[c] {
				grad[c][j] = 0
			}
		}
		for i, x := range rows {
			for c := range w {
				z[c] = w[c][0] + dot(w[c][1:], x)
			}
			p := softmax(z)
			for c := range w {
				e := p[c]
				if y[i] == c {
					e -= 1
				}
				grad[c][0] += e
				for j, v := range x {
					grad[c][j+1] += e * v
				}
			}
		}
		for c := range w {
			w[c][0] -= opts.LearningRate * grad[c][0] / n
			for j := 1; j <= d; j++ {
				w[c][j] -= opts.LearningRate * (grad[c][j]/n + l2*w[c][j])
			}
		}
	}
	return &SoftmaxClassifier{Labels: append([]string(nil), labels...), Weights: w}
}

func fitCentroid(rows [][]float64, y []int, labels []string) *CentroidClassifier {
	d := len(rows[0])
	sums := make([][]float64, len(labels))
	counts := make([]int, len(labels))
	for i, x := range rows {
		c := y[i]
		if sums[c] == nil {
			sums[c] = make([]float64, d)
		}
		for j, v := range x {
			sums[c][j] += v
		}
		counts[c]++
	}
	centroids := make([][]float64, len(labels))
	for c, s := range sums {
		if counts[c] == 0 {
			centroids[c] = []float64{}
			continue
		}
		for j := range s {
			s[j] /= float64(counts[c])
		}
		centroids[c] = s
	}
	return &CentroidClassifier{Labels: append([]string(nil), labels...), Centroids: centroids}
}

// fitLinear runs batch gradient descent on squared error with an L2 penalty
func fitLinear(rows [][]float64, y []float64, l2 float64, opts TrainOptions) *LinearRegressor {
	d := len(rows[0])
	w := make([]float64, d+1)
	for _, v := range y {
		w[0] += v
	}
	w[0] /= float64(len(y))

	grad := make([]float64, d+1)
	n := float64(len(rows))
	for iter := 0; iter < opts.Iterations; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		for i, x := range rows {
			e := w[0] + dot(w[1:], x) - y[i]
			grad[0] += e
			for j, v := range x {
				grad[j+1] += e * v
			}
		}
		w[0] -= opts.LearningRate * grad[0] / n
		for j := 1; j <= d; j++ {
			w[j] -= opts.LearningRate * (grad[j]/n + l2*w[j])
		}
	}
	return &LinearRegressor{Weights: w}
}

// selectFeatures ranks columns by absolute Pearson correlation with y and keeps at most
// limit of those at or above the median
func selectFeatures(rows [][]float64, y []int, limit int) *IndexSelector {
	d := len(rows[0])
	target := make([]float64, len(y))
	for i, v := range y {
		target[i] = float64(v)
	}
	corr := make([]float64, d)
	col := make([]float64, len(rows))
	for j := 0; j < d; j++ {
		for i, r := range rows {
			col[i] = r[j]
		}
		corr[j] = math.Abs(pearson(col, target))
	}

	sorted := append([]float64(nil), corr...)
	sort.Float64s(sorted)
	var median float64
	if d%2 == 1 {
		median = sorted[d/2]
	} else {
		median = (sorted[d/2-1] + sorted[d/2]) / 2
	}

	var candidates []int
	for j, c := range corr {
		if c >= median {
			candidates = append(candidates, j)
		}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return corr[candidates[a]] > corr[candidates[b]]
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	sort.Ints(candidates)
	return &IndexSelector{Indices: candidates, Width: d}
}

// pearson is 0 when either side is constant
func pearson(x, y []float64) float64 {
	n := float64(len(x))
	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= n
	my /= n
	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	return sxy / math.Sqrt(sxx*syy)
}

func transformAll(t Transformer, rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		v, err := t.Transform(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func uniqueSorted(values []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func indexLabels(values, classes []string) []int {
	idx := make(map[string]int, len(classes))
	for i, c := range classes {
		idx[c] = i
	}
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = idx[v]
	}
	return out
}

// accuracy is 0 without holdout rows
func accuracy(m Predictor, rows [][]float64, y []int) float64 {
	if len(rows) == 0 {
		return 0
	}
	hits := 0
	for i, r := range rows {
		v, err := m.PredictValue(r)
		if err == nil && int(v) == y[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(rows))
}

func rmse(m Predictor, rows [][]float64, y []float64) float64 {
	if len(rows) == 0 {
		return 0
	}
	sum := 0.0
	for i, r := range rows {
		v, err := m.PredictValue(r)
		if err != nil {
			return 0
		}
		sum += (v - y[i]) * (v - y[i])
	}
	return math.Sqrt(sum / float64(len(rows)))
}
