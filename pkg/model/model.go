// Package model defines the predictor capabilities the blender relies on, the typed
// bundle of trained artifacts, and the concrete artifacts produced by the trainer.
package model

import (
	"errors"
	"time"
)

// Predictor is the minimal capability every family member offers.
// PredictProba returns a distribution over Classes() for classifiers. PredictValue returns
// the class index for classifiers and the regression value for regressors.
type Predictor interface {
	PredictProba(row []float64) ([]float64, error)
	PredictValue(row []float64) (float64, error)
}

// Classifier is a Predictor with named classes
type Classifier interface {
	Predictor
	Classes() []string
}

// Transformer maps a row to another row, used for scaling and feature selection
type Transformer interface {
	Transform(row []float64) ([]float64, error)
}

// NamedModel is one member of a family
type NamedModel struct {
	Name  string
	Model Predictor
}

// Family is the ordered set of models trained for one task
type Family []NamedModel

// Meta describes how a bundle was produced
type Meta struct {
	TrainedAt    time.Time `json:"trainedAt"`
	Rows         int       `json:"rows"`
	FeatureNames []string  `json:"featureNames"`
}

// Bundle holds everything needed to predict. It is never modified after Load or Train,
// so one Bundle can serve concurrent requests.
type Bundle struct {
	Meta   Meta
	Scaler Transformer

	Result Family // 3-class classifiers over Loss, Draw, Win
	Score  Family // goal regressors
	HTFT   Family // HT/FT label classifiers
	BTTS   Family // NO/YES classifiers on the selected feature subspace

	// BTTSSelector is optional
	BTTSSelector Transformer
}

var (
	// ErrNoBundle is returned by Load when no bundle has been saved yet
	ErrNoBundle = errors.New("no trained model bundle")
	// ErrNotClassifier is returned by PredictProba on a regressor
	ErrNotClassifier = errors.New("model does not produce probabilities")
	// ErrWidth is returned when a row does not match the width a model was fitted on
	ErrWidth = errors.New("row width does not match model")
)

// Labels of the BTTS family, index 1 means both teams score
var BTTSClasses = []string{"NO", "YES"}

// ResultClasses are indexed like features.ClassLoss, ClassDraw and ClassWin
var ResultClasses = []string{"Loss", "Draw", "Win"}
