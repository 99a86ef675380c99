package ensemble

import (
	"fmt"
	"math"

	"github.com/richard-senior/matchcast/pkg/features"
	"github.com/richard-senior/matchcast/pkg/model"
)

const (
	// homeAdvantage is added to each side's own winning class before blending
	homeAdvantage = 0.10
	ownWeight     = 0.6
	otherWeight   = 0.4
	drawWeight    = 0.5

	maxScoreConfidence = 0.70
	maxLabelConfidence = 0.65

	// maxGoals bounds a regressed goal mean before it is rounded to an int
	maxGoals = math.MaxInt32
)

// ResultProbabilities is the blended three-way outcome from the home side's view
type ResultProbabilities struct {
	HomeWin float64 `json:"homeWin"`
	Draw    float64 `json:"draw"`
	AwayWin float64 `json:"awayWin"`
}

// ScorePrediction is the predicted full-time score
type ScorePrediction struct {
	Home       int     `json:"home"`
	Away       int     `json:"away"`
	Confidence float64 `json:"confidence"`
}

func (s ScorePrediction) String() string {
	return fmt.Sprintf("%d-%d", s.Home, s.Away)
}

// LabelPrediction is a voted label with its confidence
type LabelPrediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Fallbacks returned when a task cannot be computed
var (
	FallbackResult = ResultProbabilities{HomeWin: 0.33, Draw: 0.34, AwayWin: 0.33}
	FallbackScore  = ScorePrediction{Home: 1, Away: 1, Confidence: 0.33}
	FallbackHTFT   = LabelPrediction{Label: "X-X", Confidence: 0.33}
	FallbackBTTS   = LabelPrediction{Label: BTTSNo, Confidence: 0.33}
)

const (
	BTTSYes = "YES"
	BTTSNo  = "NO"
)

// PredictResult blends every result classifier's view of both sides
func (b *Blender) PredictResult(home, away string) ResultProbabilities {
	out := FallbackResult
	guard("match result", home, away, func() error {
		r, err := b.predictResult(home, away)
		if err != nil {
			return err
		}
		out = r
		return nil
	})
	return out
}

func (b *Blender) predictResult(home, away string) (ResultProbabilities, error) {
	var out ResultProbabilities
	if err := b.ready(); err != nil {
		return out, err
	}
	family := b.bundle.Result
	h, a, err := b.prepare(home, away, family)
	if err != nil {
		return out, err
	}

	for _, m := range family {
		hp, err := m.Model.PredictProba(h)
		if err != nil {
			return out, fmt.Errorf("%s on %s: %w", m.Name, home, err)
		}
		ap, err := m.Model.PredictProba(a)
		if err != nil {
			return out, fmt.Errorf("%s on %s: %w", m.Name, away, err)
		}
		if len(hp) != 3 || len(ap) != 3 {
			return out, fmt.Errorf("%s returned %d and %d classes, want 3", m.Name, len(hp), len(ap))
		}
		if err := finite(m.Name, hp, ap); err != nil {
			return out, err
		}
		out.HomeWin += (hp[features.ClassWin]+homeAdvantage)*ownWeight + ap[features.ClassLoss]*otherWeight
		out.Draw += hp[features.ClassDraw]*drawWeight + ap[features.ClassDraw]*drawWeight
		out.AwayWin += hp[features.ClassLoss]*otherWeight + (ap[features.ClassWin]+homeAdvantage)*ownWeight
	}

	n := float64(len(family))
	out.HomeWin /= n
	out.Draw /= n
	out.AwayWin /= n
	return normalize(out), nil
}

// normalize leaves an all-zero distribution untouched
func normalize(p ResultProbabilities) ResultProbabilities {
	total := p.HomeWin + p.Draw + p.AwayWin
	if total == 0 {
		return p
	}
	return ResultProbabilities{
		HomeWin: p.HomeWin / total,
		Draw:    p.Draw / total,
		AwayWin: p.AwayWin / total,
	}
}

// PredictScore averages the goal regressors for each side
func (b *Blender) PredictScore(home, away string) ScorePrediction {
	out := FallbackScore
	guard("score", home, away, func() error {
		s, err := b.predictScore(home, away)
		if err != nil {
			return err
		}
		out = s
		return nil
	})
	return out
}

func (b *Blender) predictScore(home, away string) (ScorePrediction, error) {
	if err := b.ready(); err != nil {
		return ScorePrediction{}, err
	}
	family := b.bundle.Score
	h, a, err := b.prepare(home, away, family)
	if err != nil {
		return ScorePrediction{}, err
	}

	var homeSum, awaySum float64
	for _, m := range family {
		hv, err := m.Model.PredictValue(h)
		if err != nil {
			return ScorePrediction{}, fmt.Errorf("%s on %s: %w", m.Name, home, err)
		}
		av, err := m.Model.PredictValue(a)
		if err != nil {
			return ScorePrediction{}, fmt.Errorf("%s on %s: %w", m.Name, away, err)
		}
		homeSum += hv
		awaySum += av
	}
	return scoreFrom(homeSum/float64(len(family)), awaySum/float64(len(family)))
}

// scoreFrom rounds half to even, floors at zero and penalises the rounding distance.
// Means that are not finite or exceed maxGoals are rejected.
func scoreFrom(homeMean, awayMean float64) (ScorePrediction, error) {
	for _, v := range []float64{homeMean, awayMean} {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > maxGoals {
			return ScorePrediction{}, fmt.Errorf("goal mean %v out of range", v)
		}
	}
	hr := math.RoundToEven(homeMean)
	ar := math.RoundToEven(awayMean)
	conf := math.Exp(-(math.Abs(hr-homeMean)+math.Abs(ar-awayMean))/2) * maxScoreConfidence
	return ScorePrediction{
		Home:       int(math.Max(0, hr)),
		Away:       int(math.Max(0, ar)),
		Confidence: conf,
	}, nil
}

// PredictHalfTimeFullTime lets each classifier vote with the label of the side it is
// more confident about
func (b *Blender) PredictHalfTimeFullTime(home, away string) LabelPrediction {
	out := FallbackHTFT
	guard("half time / full time", home, away, func() error {
		p, err := b.predictHTFT(home, away)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	return out
}

func (b *Blender) predictHTFT(home, away string) (LabelPrediction, error) {
	if err := b.ready(); err != nil {
		return LabelPrediction{}, err
	}
	family := b.bundle.HTFT
	h, a, err := b.prepare(home, away, family)
	if err != nil {
		return LabelPrediction{}, err
	}

	votes := make([]string, 0, len(family))
	confs := make([]float64, 0, len(family))
	for _, m := range family {
		c, ok := m.Model.(model.Classifier)
		if !ok {
			return LabelPrediction{}, fmt.Errorf("%s: %w", m.Name, model.ErrNotClassifier)
		}
		hl, hc, err := topLabel(c, h)
		if err != nil {
			return LabelPrediction{}, fmt.Errorf("%s on %s: %w", m.Name, home, err)
		}
		al, ac, err := topLabel(c, a)
		if err != nil {
			return LabelPrediction{}, fmt.Errorf("%s on %s: %w", m.Name, away, err)
		}
		if hc > ac {
			votes = append(votes, hl)
			confs = append(confs, hc)
		} else {
			votes = append(votes, al)
			confs = append(confs, ac)
		}
	}
	return LabelPrediction{Label: plurality(votes), Confidence: voteConfidence(confs)}, nil
}

// topLabel returns the predicted class name and the highest class probability
func topLabel(c model.Classifier, row []float64) (string, float64, error) {
	v, err := c.PredictValue(row)
	if err != nil {
		return "", 0, err
	}
	p, err := c.PredictProba(row)
	if err != nil {
		return "", 0, err
	}
	if err := finite("classifier", p); err != nil {
		return "", 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", 0, fmt.Errorf("class index %v is not finite", v)
	}
	classes := c.Classes()
	idx := int(v)
	if idx < 0 || idx >= len(classes) {
		return "", 0, fmt.Errorf("class index %d outside %d classes", idx, len(classes))
	}
	return classes[idx], maxOf(p), nil
}

// PredictBothTeamsScore votes YES when a model predicts scoring for either side
func (b *Blender) PredictBothTeamsScore(home, away string) LabelPrediction {
	out := FallbackBTTS
	guard("both teams to score", home, away, func() error {
		p, err := b.predictBTTS(home, away)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	return out
}

func (b *Blender) predictBTTS(home, away string) (LabelPrediction, error) {
	if err := b.ready(); err != nil {
		return LabelPrediction{}, err
	}
	family := b.bundle.BTTS
	h, a, err := b.prepare(home, away, family)
	if err != nil {
		return LabelPrediction{}, err
	}
	if sel := b.bundle.BTTSSelector; sel != nil {
		if h, err = sel.Transform(h); err != nil {
			return LabelPrediction{}, fmt.Errorf("select features of %s: %w", home, err)
		}
		if a, err = sel.Transform(a); err != nil {
			return LabelPrediction{}, fmt.Errorf("select features of %s: %w", away, err)
		}
	}

	votes := make([]string, 0, len(family))
	confs := make([]float64, 0, len(family))
	for _, m := range family {
		hv, err := m.Model.PredictValue(h)
		if err != nil {
			return LabelPrediction{}, fmt.Errorf("%s on %s: %w", m.Name, home, err)
		}
		av, err := m.Model.PredictValue(a)
		if err != nil {
			return LabelPrediction{}, fmt.Errorf("%s on %s: %w", m.Name, away, err)
		}
		hp, err := m.Model.PredictProba(h)
		if err != nil {
			return LabelPrediction{}, fmt.Errorf("%s on %s: %w", m.Name, home, err)
		}
		ap, err := m.Model.PredictProba(a)
		if err != nil {
			return LabelPrediction{}, fmt.Errorf("%s on %s: %w", m.Name, away, err)
		}
		if err := finite(m.Name, []float64{hv, av}, hp, ap); err != nil {
			return LabelPrediction{}, err
		}

		if hv != 0 || av != 0 {
			votes = append(votes, BTTSYes)
		} else {
			votes = append(votes, BTTSNo)
		}
		confs = append(confs, math.Max(maxOf(hp), maxOf(ap)))
	}
	return LabelPrediction{Label: plurality(votes), Confidence: voteConfidence(confs)}, nil
}

// plurality returns the most frequent label, the first seen among equals
func plurality(votes []string) string {
	counts := make(map[string]int, len(votes))
	var order []string
	for _, v := range votes {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best := ""
	for _, v := range order {
		if best == "" || counts[v] > counts[best] {
			best = v
		}
	}
	return best
}

// voteConfidence shrinks the mean confidence by the spread between models
func voteConfidence(confs []float64) float64 {
	if len(confs) == 0 {
		return 0
	}
	var mean float64
	for _, c := range confs {
		mean += c
	}
	mean /= float64(len(confs))
	var variance float64
	for _, c := range confs {
		variance += (c - mean) * (c - mean)
	}
	std := math.Sqrt(variance / float64(len(confs)))
	return math.Min(maxLabelConfidence, mean*math.Exp(-std))
}

// finite rejects model output holding NaN or an infinity
func finite(name string, outputs ...[]float64) error {
	for _, out := range outputs {
		for _, v := range out {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%s produced a non-finite value %v", name, v)
			}
		}
	}
	return nil
}

func maxOf(p []float64) float64 {
	if len(p) == 0 {
		return 0
	}
	top := p[0]
	for _, v := range p[1:] {
		if v > top {
			top = v
		}
	}
	return top
}
