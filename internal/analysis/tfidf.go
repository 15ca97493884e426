package analysis

import (
	"math"
	"regexp"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vectorizer turns titles into L2-normalised TF-IDF rows over a vocabulary
// capped at MaxFeatures terms.
type Vectorizer struct {
	MaxFeatures int
	StopWords   map[string]struct{}

	vocabulary map[string]int
	terms      []string
	idf        []float64
}

// NewVectorizer returns a vectorizer using the English stop-word list.
func NewVectorizer(maxFeatures int) *Vectorizer {
	return &Vectorizer{
		MaxFeatures: maxFeatures,
		StopWords:   englishStopWords,
	}
}

// Tokenize lowercases and normalises text, then splits it into words of at
// least two characters with stop words removed.
func (v *Vectorizer) Tokenize(text string) []string {
	text = norm.NFKC.String(text)
	text = cases.Lower(language.Und).String(text)

	raw := tokenPattern.FindAllString(text, -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if _, stop := v.StopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// FitTransform learns the vocabulary and idf weights from docs and returns
// one row per doc.
func (v *Vectorizer) FitTransform(docs []string) [][]float64 {
	tokenized := make([][]string, len(docs))
	freq := make(map[string]int)
	docFreq := make(map[string]int)

	for i, doc := range docs {
		tokenized[i] = v.Tokenize(doc)
		seen := make(map[string]struct{})
		for _, tok := range tokenized[i] {
			freq[tok]++
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				docFreq[tok]++
			}
		}
	}

	v.buildVocabulary(freq)

	n := float64(len(docs))
	v.idf = make([]float64, len(v.terms))
	for j, term := range v.terms {
		v.idf[j] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	rows := make([][]float64, len(docs))
	for i, tokens := range tokenized {
		row := make([]float64, len(v.terms))
		for _, tok := range tokens {
			if j, ok := v.vocabulary[tok]; ok {
				row[j]++
			}
		}
		var norm2 float64
		for j := range row {
			row[j] *= v.idf[j]
			norm2 += row[j] * row[j]
		}
		if norm2 > 0 {
			l2 := math.Sqrt(norm2)
			for j := range row {
				row[j] /= l2
			}
		}
		rows[i] = row
	}
	return rows
}

// Terms returns the fitted vocabulary in feature order.
func (v *Vectorizer) Terms() []string {
	return v.terms
}

// buildVocabulary keeps the most frequent terms, ties broken alphabetically,
// and assigns feature indices in alphabetical order.
func (v *Vectorizer) buildVocabulary(freq map[string]int) {
	terms := make([]string, 0, len(freq))
	for term := range freq {
		terms = append(terms, term)
	}

	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if freq[terms[i]] != freq[terms[j]] {
				return freq[terms[i]] > freq[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)

	v.terms = terms
	v.vocabulary = make(map[string]int, len(terms))
	for i, term := range terms {
		v.vocabulary[term] = i
	}
}
