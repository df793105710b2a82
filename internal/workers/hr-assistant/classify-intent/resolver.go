// internal/workers/hr-assistant/classify-intent/resolver.go
package classifyintent

import (
	"context"
	"time"

	"hr-assistant/internal/common/metrics"
	"hr-assistant/internal/models"
)

// Resolver tries the similarity classifier and falls back to the generative
// classifier when it abstains or fails. It always yields one of the labels.
type Resolver struct {
	similarity  *SimilarityClassifier
	generative  *GenerativeClassifier
	callTimeout time.Duration
	logger      Logger
}

// NewResolver accepts a nil similarity classifier, in which case every query
// goes to the language model.
func NewResolver(similarity *SimilarityClassifier, generative *GenerativeClassifier, callTimeout time.Duration, log Logger) *Resolver {
	return &Resolver{
		similarity:  similarity,
		generative:  generative,
		callTimeout: callTimeout,
		logger:      log,
	}
}

func (r *Resolver) Resolve(ctx context.Context, query string) models.Resolution {
	if r.similarity != nil {
		label, score, ok, err := r.classifySimilarity(ctx, query)
		switch {
		case err != nil:
			r.logger.Warn("similarity classification failed", map[string]interface{}{
				"error": err.Error(),
			})
		case ok:
			metrics.IntentClassifications.WithLabelValues(string(label), string(models.SourceSimilarity)).Inc()
			return models.Resolution{Intent: label, Source: models.SourceSimilarity, Score: score}
		default:
			r.logger.Info("similarity classifier abstained", map[string]interface{}{
				"closest": string(label),
				"score":   score,
			})
		}
	}

	genCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	label := r.generative.ClassifyByGeneration(genCtx, query)

	metrics.IntentClassifications.WithLabelValues(string(label), string(models.SourceGenerative)).Inc()
	return models.Resolution{Intent: label, Source: models.SourceGenerative}
}

func (r *Resolver) classifySimilarity(ctx context.Context, query string) (models.IntentLabel, float64, bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.similarity.ClassifyBySimilarity(ctx, query)
}

func (r *Resolver) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.callTimeout)
}
