// internal/workers/hr-assistant/classify-intent/similarity.go
package classifyintent

import (
	"context"
	"fmt"
	"math"

	"hr-assistant/internal/common/llm"
	"hr-assistant/internal/models"
)

const DefaultSimilarityThreshold = 0.55

type categoryEmbeddings struct {
	label   models.IntentLabel
	vectors [][]float32
}

// SimilarityClassifier matches a query against precomputed example
// embeddings. The table is built once in NewSimilarityClassifier and only
// read afterwards, so one instance is safe for concurrent use.
type SimilarityClassifier struct {
	embedder   llm.Embedder
	threshold  float64
	categories []categoryEmbeddings
}

// NewSimilarityClassifier embeds every example phrase in a single batch.
// Categories are stored in models.IntentLabels order.
func NewSimilarityClassifier(ctx context.Context, embedder llm.Embedder, examples map[models.IntentLabel][]string, threshold float64) (*SimilarityClassifier, error) {
	var texts []string
	var owners []int
	var categories []categoryEmbeddings

	for _, label := range models.IntentLabels {
		phrases := examples[label]
		if len(phrases) == 0 {
			continue
		}
		categories = append(categories, categoryEmbeddings{label: label})
		for _, p := range phrases {
			texts = append(texts, p)
			owners = append(owners, len(categories)-1)
		}
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no intent examples", ErrClassifierInit)
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassifierInit, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d example vectors, got %d", ErrClassifierInit, len(texts), len(vectors))
	}

	for i, v := range vectors {
		c := &categories[owners[i]]
		c.vectors = append(c.vectors, v)
	}

	return &SimilarityClassifier{
		embedder:   embedder,
		threshold:  threshold,
		categories: categories,
	}, nil
}

// ClassifyBySimilarity returns the best category and its score. ok is false
// when the score does not strictly exceed the threshold. Ties go to the
// category that comes first in priority order.
func (s *SimilarityClassifier) ClassifyBySimilarity(ctx context.Context, query string) (models.IntentLabel, float64, bool, error) {
	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return "", 0, false, err
	}
	if len(vectors) != 1 {
		return "", 0, false, fmt.Errorf("%w: expected 1 query vector, got %d", llm.ErrEmbeddingFailed, len(vectors))
	}

	best, score := s.best(vectors[0])
	if score > s.threshold {
		return best, score, true, nil
	}
	return best, score, false, nil
}

func (s *SimilarityClassifier) best(query []float32) (models.IntentLabel, float64) {
	var best models.IntentLabel
	bestScore := math.Inf(-1)

	for _, c := range s.categories {
		catMax := math.Inf(-1)
		for _, v := range c.vectors {
			if sim := cosineSimilarity(query, v); sim > catMax {
				catMax = sim
			}
		}
		if catMax > bestScore {
			best, bestScore = c.label, catMax
		}
	}
	return best, bestScore
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
