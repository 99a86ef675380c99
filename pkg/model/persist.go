package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/richard-senior/matchcast/internal/logger"
)

const bundleVersion = 1

const (
	kindScaler   = "standard_scaler"
	kindSelector = "index_selector"
	kindSoftmax  = "softmax_classifier"
	kindCentroid = "centroid_classifier"
	kindLinear   = "linear_regressor"
)

// artifact is the on-disk form of one model or transformer
type artifact struct {
	Kind string          `json:"kind"`
	Name string          `json:"name,omitempty"`
	Data json.RawMessage `json:"data"`
}

type bundleFile struct {
	Version      int        `json:"version"`
	Meta         Meta       `json:"meta"`
	Scaler       *artifact  `json:"scaler"`
	Result       []artifact `json:"result"`
	Score        []artifact `json:"score"`
	HTFT         []artifact `json:"htft"`
	BTTS         []artifact `json:"btts"`
	BTTSSelector *artifact  `json:"bttsSelector,omitempty"`
}

func encode(name string, v interface{}) (*artifact, error) {
	var kind string
	switch v.(type) {
	case *StandardScaler:
		kind = kindScaler
	case *IndexSelector:
		kind = kindSelector
	case *SoftmaxClassifier:
		kind = kindSoftmax
	case *CentroidClassifier:
		kind = kindCentroid
	case *LinearRegressor:
		kind = kindLinear
	default:
		return nil, fmt.Errorf("cannot persist %s of type %T", name, v)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", name, err)
	}
	return &artifact{Kind: kind, Name: name, Data: data}, nil
}

func decode(a *artifact) (interface{}, error) {
	var v interface{}
	switch a.Kind {
	case kindScaler:
		v = &StandardScaler{}
	case kindSelector:
		v = &IndexSelector{}
	case kindSoftmax:
		v = &SoftmaxClassifier{}
	case kindCentroid:
		v = &CentroidClassifier{}
	case kindLinear:
		v = &LinearRegressor{}
	default:
		return nil, fmt.Errorf("unknown artifact kind %q", a.Kind)
	}
	if err := json.Unmarshal(a.Data, v); err != nil {
		return nil, fmt.Errorf("unmarshal %s %s: %w", a.Kind, a.Name, err)
	}
	return v, nil
}

func encodeFamily(f Family) ([]artifact, error) {
	out := make([]artifact, 0, len(f))
	for _, m := range f {
		a, err := encode(m.Name, m.Model)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, nil
}

func decodeFamily(arts []artifact) (Family, error) {
	f := make(Family, 0, len(arts))
	for i := range arts {
		v, err := decode(&arts[i])
		if err != nil {
			return nil, err
		}
		p, ok := v.(Predictor)
		if !ok {
			return nil, fmt.Errorf("artifact %s (%s) is not a predictor", arts[i].Name, arts[i].Kind)
		}
		f = append(f, NamedModel{Name: arts[i].Name, Model: p})
	}
	return f, nil
}

func decodeTransformer(a *artifact) (Transformer, error) {
	if a == nil {
		return nil, nil
	}
	v, err := decode(a)
	if err != nil {
		return nil, err
	}
	t, ok := v.(Transformer)
	if !ok {
		return nil, fmt.Errorf("artifact %s (%s) is not a transformer", a.Name, a.Kind)
	}
	return t, nil
}

// Save writes the bundle as JSON, replacing any previous file
func Save(path string, b *Bundle) error {
	if b == nil || b.Scaler == nil {
		return fmt.Errorf("bundle without scaler cannot be saved")
	}

	file := bundleFile{Version: bundleVersion, Meta: b.Meta}
	var err error
	if file.Scaler, err = encode("scaler", b.Scaler); err != nil {
		return err
	}
	if b.BTTSSelector != nil {
		if file.BTTSSelector, err = encode("btts_selector", b.BTTSSelector); err != nil {
			return err
		}
	}
	if file.Result, err = encodeFamily(b.Result); err != nil {
		return err
	}
	if file.Score, err = encodeFamily(b.Score); err != nil {
		return err
	}
	if file.HTFT, err = encodeFamily(b.HTFT); err != nil {
		return err
	}
	if file.BTTS, err = encodeFamily(b.BTTS); err != nil {
		return err
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace bundle: %w", err)
	}
	logger.Info("Saved model bundle", path)
	return nil
}

// Load reads a bundle written by Save. A missing file yields ErrNoBundle.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoBundle
		}
		return nil, fmt.Errorf("read bundle %s: %w", path, err)
	}

	var file bundleFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse bundle %s: %w", path, err)
	}
	if file.Version != bundleVersion {
		return nil, fmt.Errorf("bundle %s has version %d, want %d", path, file.Version, bundleVersion)
	}
	if file.Scaler == nil {
		return nil, fmt.Errorf("bundle %s has no scaler", path)
	}

	b := &Bundle{Meta: file.Meta}
	if b.Scaler, err = decodeTransformer(file.Scaler); err != nil {
		return nil, err
	}
	if b.BTTSSelector, err = decodeTransformer(file.BTTSSelector); err != nil {
		return nil, err
	}
	if b.Result, err = decodeFamily(file.Result); err != nil {
		return nil, err
	}
	if b.Score, err = decodeFamily(file.Score); err != nil {
		return nil, err
	}
	if b.HTFT, err = decodeFamily(file.HTFT); err != nil {
		return nil, err
	}
	if b.BTTS, err = decodeFamily(file.BTTS); err != nil {
		return nil, err
	}

	logger.Debug("Loaded model bundle", path)
	return b, nil
}
