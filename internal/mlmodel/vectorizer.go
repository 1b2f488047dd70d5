package mlmodel

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"gonum.org/v1/gonum/floats"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// TfidfVectorizer mirrors the fitted state of a scikit-learn TfidfVectorizer
// exported to JSON by the training scripts.
type TfidfVectorizer struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	Lowercase   bool           `json:"lowercase"`
	StopWords   []string       `json:"stop_words"`
	SublinearTF bool           `json:"sublinear_tf"`
	Norm        string         `json:"norm"`
	NGramRange  [2]int         `json:"ngram_range"`

	stopWords map[string]struct{}
}

func (v *TfidfVectorizer) prepare() error {
	if len(v.Vocabulary) == 0 {
		return fmt.Errorf("empty vocabulary")
	}
	if len(v.IDF) != len(v.Vocabulary) {
		return fmt.Errorf("idf has %d entries, vocabulary has %d", len(v.IDF), len(v.Vocabulary))
	}
	for term, idx := range v.Vocabulary {
		if idx < 0 || idx >= len(v.IDF) {
			return fmt.Errorf("term %q has out of range index %d", term, idx)
		}
	}
	if v.NGramRange[0] <= 0 {
		v.NGramRange[0] = 1
	}
	if v.NGramRange[1] < v.NGramRange[0] {
		v.NGramRange[1] = v.NGramRange[0]
	}

	v.stopWords = make(map[string]struct{}, len(v.StopWords))
	for _, w := range v.StopWords {
		v.stopWords[w] = struct{}{}
	}
	return nil
}

func (v *TfidfVectorizer) Features() int {
	return len(v.IDF)
}

func (v *TfidfVectorizer) tokens(text string) []string {
	if v.Lowercase {
		text = strings.ToLower(text)
	}
	raw := tokenPattern.FindAllString(text, -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := v.stopWords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Transform returns the dense tf-idf vector of text.
func (v *TfidfVectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.IDF))
	toks := v.tokens(text)

	for n := v.NGramRange[0]; n <= v.NGramRange[1]; n++ {
		for i := 0; i+n <= len(toks); i++ {
			term := toks[i]
			if n > 1 {
				term = strings.Join(toks[i:i+n], " ")
			}
			if idx, ok := v.Vocabulary[term]; ok {
				vec[idx]++
			}
		}
	}

	for i, tf := range vec {
		if tf == 0 {
			continue
		}
		if v.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		vec[i] = tf * v.IDF[i]
	}

	if v.Norm == "l2" {
		if norm := floats.Norm(vec, 2); norm > 0 {
			floats.Scale(1/norm, vec)
		}
	}
	return vec
}
