package model

import (
	"fmt"
	"math"
)

// StandardScaler centres each column on its mean and divides by its population
// standard deviation. Constant columns are divided by 1.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitScaler computes column statistics over rows
func FitScaler(rows [][]float64) (*StandardScaler, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot fit scaler on no rows")
	}
	width := len(rows[0])
	s := &StandardScaler{Mean: make([]float64, width), Std: make([]float64, width)}
	for _, r := range rows {
		if len(r) != width {
			return nil, fmt.Errorf("fit scaler: %w", ErrWidth)
		}
		for i, v := range r {
			s.Mean[i] += v
		}
	}
	n := float64(len(rows))
	for i := range s.Mean {
		s.Mean[i] /= n
	}
	for _, r := range rows {
		for i, v := range r {
			d := v - s.Mean[i]
			s.Std[i] += d * d
		}
	}
	for i := range s.Std {
		s.Std[i] = math.Sqrt(s.Std[i] / n)
		if s.Std[i] == 0 {
			s.Std[i] = 1
		}
	}
	return s, nil
}

func (s *StandardScaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.Mean) {
		return nil, fmt.Errorf("scaler expects %d columns, got %d: %w", len(s.Mean), len(row), ErrWidth)
	}
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = (v - s.Mean[i]) / s.Std[i]
	}
	return out, nil
}

// IndexSelector keeps the listed columns in order
type IndexSelector struct {
	Indices []int `json:"indices"`
	Width   int   `json:"width"`
}

func (s *IndexSelector) Transform(row []float64) ([]float64, error) {
	if s.Width > 0 && len(row) != s.Width {
		return nil, fmt.Errorf("selector expects %d columns, got %d: %w", s.Width, len(row), ErrWidth)
	}
	out := make([]float64, len(s.Indices))
	for i, idx := range s.Indices {
		if idx < 0 || idx >= len(row) {
			return nil, fmt.Errorf("selector index %d out of range for %d columns: %w", idx, len(row), ErrWidth)
		}
		out[i] = row[idx]
	}
	return out, nil
}

// SoftmaxClassifier is a multinomial logistic regression. Each weight row starts with
// the bias.
type SoftmaxClassifier struct {
	Labels  []string    `json:"labels"`
	Weights [][]float64 `json:"weights"`
}

func (c *SoftmaxClassifier) Classes() []string {
	return c.Labels
}

func (c *SoftmaxClassifier) scores(row []float64) ([]float64, error) {
	if len(c.Weights) == 0 {
		return nil, fmt.Errorf("softmax classifier has no weights")
	}
	if len(row)+1 != len(c.Weights[0]) {
		return nil, fmt.Errorf("classifier expects %d columns, got %d: %w", len(c.Weights[0])-1, len(row), ErrWidth)
	}
	z := make([]float64, len(c.Weights))
	for k, w := range c.Weights {
		z[k] = w[0] + dot(w[1:], row)
	}
	return z, nil
}

func (c *SoftmaxClassifier) PredictProba(row []float64) ([]float64, error) {
	z, err := c.scores(row)
	if err != nil {
		return nil, err
	}
	return softmax(z), nil
}

func (c *SoftmaxClassifier) PredictValue(row []float64) (float64, error) {
	p, err := c.PredictProba(row)
	if err != nil {
		return 0, err
	}
	return float64(argmax(p)), nil
}

// CentroidClassifier assigns the class whose centroid is nearest. Probabilities are a
// softmax over negative squared distances. A class never seen in training has an empty
// centroid and probability 0.
type CentroidClassifier struct {
	Labels    []string    `json:"labels"`
	Centroids [][]float64 `json:"centroids"`
}

func (c *CentroidClassifier) Classes() []string {
	return c.Labels
}

func (c *CentroidClassifier) PredictProba(row []float64) ([]float64, error) {
	z := make([]float64, len(c.Centroids))
	present := make([]bool, len(c.Centroids))
	fitted := false
	for k, centroid := range c.Centroids {
		if len(centroid) == 0 {
			continue
		}
		if len(centroid) != len(row) {
			return nil, fmt.Errorf("centroid expects %d columns, got %d: %w", len(centroid), len(row), ErrWidth)
		}
		d := 0.0
		for i, v := range row {
			diff := v - centroid[i]
			d += diff * diff
		}
		z[k] = -d
		present[k] = true
		fitted = true
	}
	if !fitted {
		return nil, fmt.Errorf("centroid classifier has no fitted classes")
	}

	top := math.Inf(-1)
	for k, v := range z {
		if present[k] && v > top {
			top = v
		}
	}
	p := make([]float64, len(z))
	sum := 0.0
	for k, v := range z {
		if present[k] {
			p[k] = math.Exp(v - top)
			sum += p[k]
		}
	}
	for k := range p {
		p[k] /= sum
	}
	return p, nil
}

func (c *CentroidClassifier) PredictValue(row []float64) (float64, error) {
	p, err := c.PredictProba(row)
	if err != nil {
		return 0, err
	}
	return float64(argmax(p)), nil
}

// LinearRegressor predicts Weights[0] + Weights[1:]·row
type LinearRegressor struct {
	Weights []float64 `json:"weights"`
}

func (r *LinearRegressor) PredictProba(row []float64) ([]float64, error) {
	return nil, ErrNotClassifier
}

func (r *LinearRegressor) PredictValue(row []float64) (float64, error) {
	if len(row)+1 != len(r.Weights) {
		return 0, fmt.Errorf("regressor expects %d columns, got %d: %w", len(r.Weights)-1, len(row), ErrWidth)
	}
	return r.Weights[0] + dot(r.Weights[1:], row), nil
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func softmax(z []float64) []float64 {
	top := math.Inf(-1)
	for _, v := range z {
		if v > top {
			top = v
		}
	}
	out := make([]float64, len(z))
	sum := 0.0
	for i, v := range z {
		out[i] = math.Exp(v - top)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// argmax returns the first index of the largest value
func argmax(p []float64) int {
	best := 0
	for i, v := range p {
		if v > p[best] {
			best = i
		}
	}
	return best
}
