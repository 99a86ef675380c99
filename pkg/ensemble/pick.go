package ensemble

// Candidate names in the order ties are resolved
const (
	PickHomeWin = "Home Win"
	PickDraw    = "Draw"
	PickAwayWin = "Away Win"
	PickScore   = "Predicted Score"
	PickHTFT    = "HT/FT"
	PickBTTS    = "BTTS"
)

// Pick is the single most probable call among all predictions
type Pick struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Prediction gathers the four task results for one fixture
type Prediction struct {
	Home   string              `json:"home"`
	Away   string              `json:"away"`
	Result ResultProbabilities `json:"result"`
	Score  ScorePrediction     `json:"score"`
	HTFT   LabelPrediction     `json:"htft"`
	BTTS   LabelPrediction     `json:"btts"`
	Pick   Pick                `json:"pick"`
}

// Highest returns the largest of the six candidate values. The first candidate wins a tie.
func Highest(result ResultProbabilities, score ScorePrediction, htft, btts LabelPrediction) Pick {
	candidates := []Pick{
		{PickHomeWin, result.HomeWin},
		{PickDraw, result.Draw},
		{PickAwayWin, result.AwayWin},
		{PickScore, score.Confidence},
		{PickHTFT, htft.Confidence},
		{PickBTTS, btts.Confidence},
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Value > best.Value {
			best = c
		}
	}
	return best
}

// PredictAll runs each task independently, a failing task falls back on its own
func (b *Blender) PredictAll(home, away string) Prediction {
	p := Prediction{
		Home:   home,
		Away:   away,
		Result: b.PredictResult(home, away),
		Score:  b.PredictScore(home, away),
		HTFT:   b.PredictHalfTimeFullTime(home, away),
		BTTS:   b.PredictBothTeamsScore(home, away),
	}
	p.Pick = Highest(p.Result, p.Score, p.HTFT, p.BTTS)
	return p
}
