package mlmodel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	ESTIMATOR_LOGISTIC_REGRESSION = "logistic_regression"
	ESTIMATOR_RANDOM_FOREST       = "random_forest"
)

type estimator interface {
	predictProba(x []float64) []float64
}

// estimatorFile is the JSON export of a fitted binary classifier.
type estimatorFile struct {
	Type      string     `json:"type"`
	Classes   []int      `json:"classes"`
	Coef      []float64  `json:"coef"`
	Intercept float64    `json:"intercept"`
	Trees     []treeFile `json:"trees"`
}

// treeFile follows the node arrays of sklearn's tree_ attribute. A node is a
// leaf when its left child is -1.
type treeFile struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

func (f estimatorFile) build(features int) (estimator, error) {
	if len(f.Classes) != 0 && (len(f.Classes) != 2 || f.Classes[0] != 0 || f.Classes[1] != 1) {
		return nil, fmt.Errorf("expected binary classes [0 1], got %v", f.Classes)
	}

	switch f.Type {
	case ESTIMATOR_LOGISTIC_REGRESSION:
		if len(f.Coef) != features {
			return nil, fmt.Errorf("coef has %d weights, vectorizer has %d features", len(f.Coef), features)
		}
		return logisticRegression{coef: f.Coef, intercept: f.Intercept}, nil
	case ESTIMATOR_RANDOM_FOREST:
		if len(f.Trees) == 0 {
			return nil, fmt.Errorf("random forest has no trees")
		}
		for i, t := range f.Trees {
			if err := t.validate(features); err != nil {
				return nil, fmt.Errorf("tree %d: %w", i, err)
			}
		}
		return randomForest{trees: f.Trees}, nil
	default:
		return nil, fmt.Errorf("unsupported estimator type %q", f.Type)
	}
}

type logisticRegression struct {
	coef      []float64
	intercept float64
}

func (m logisticRegression) predictProba(x []float64) []float64 {
	p := 1 / (1 + math.Exp(-(floats.Dot(m.coef, x) + m.intercept)))
	return []float64{1 - p, p}
}

type randomForest struct {
	trees []treeFile
}

func (m randomForest) predictProba(x []float64) []float64 {
	probs := make([]float64, 2)
	for _, t := range m.trees {
		leaf := t.Value[t.leaf(x)]
		if sum := floats.Sum(leaf); sum > 0 {
			floats.AddScaled(probs, 1/sum, leaf)
		}
	}
	floats.Scale(1/float64(len(m.trees)), probs)
	return probs
}

func (t treeFile) leaf(x []float64) int {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return node
}

func (t treeFile) validate(features int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays have mismatched lengths")
	}
	for i := 0; i < n; i++ {
		if t.ChildrenLeft[i] == -1 {
			if len(t.Value[i]) != 2 {
				return fmt.Errorf("leaf %d has %d class values", i, len(t.Value[i]))
			}
			continue
		}
		// children are stored after their parent
		if t.ChildrenLeft[i] <= i || t.ChildrenLeft[i] >= n || t.ChildrenRight[i] <= i || t.ChildrenRight[i] >= n {
			return fmt.Errorf("node %d has invalid children", i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= features {
			return fmt.Errorf("node %d splits on unknown feature %d", i, t.Feature[i])
		}
	}
	return nil
}

// TextModel chains a vectorizer with an estimator.
type TextModel struct {
	vectorizer *TfidfVectorizer
	estimator  estimator
}

func (m *TextModel) Predict(text string) (Prediction, error) {
	probs := m.estimator.predictProba(m.vectorizer.Transform(text))
	return Prediction{Class: floats.MaxIdx(probs), Probabilities: probs}, nil
}
