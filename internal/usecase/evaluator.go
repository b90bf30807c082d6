package usecase

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/domain"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/infrastructure/metrics"
)

const probEpsilon = 1e-12

// Evaluator scores a batch of generated images against a reference set.
// Inception Score comes from the classifier softmax outputs, FID from the
// embedding statistics of both sets. The feature extraction itself runs in
// the sidecar behind the FeatureExtractor port.
type Evaluator struct {
	Extractor domain.FeatureExtractor
	MinImages int
	Logger    domain.LoggingRepository
}

func NewEvaluator(extractor domain.FeatureExtractor, minimages int, logger domain.LoggingRepository) *Evaluator {
	return &Evaluator{Extractor: extractor, MinImages: minimages, Logger: logger}
}

func (e *Evaluator) Evaluate(ctx context.Context, generated [][]byte, reference [][]byte) (*domain.EvaluationReport, error) {
	if len(generated) < e.MinImages || len(reference) < e.MinImages {
		return nil, domain.ErrEvaluationSetTooSmall
	}

	log := e.Logger.With("service", "evaluator", "generated_count", len(generated), "reference_count", len(reference))
	log.Info("evaluation_started")

	genProbs := make([][]float64, 0, len(generated))
	genEmbeddings := make([][]float64, 0, len(generated))
	for _, img := range generated {
		features, err := e.Extractor.Extract(ctx, img)
		if err != nil {
			metrics.EvaluationTotal.WithLabelValues("failed").Inc()
			log.Error("evaluation_failed_extract_generated", "reason", err.Error())
			return nil, err
		}
		genProbs = append(genProbs, features.Probs)
		genEmbeddings = append(genEmbeddings, features.Embedding)
	}

	refEmbeddings := make([][]float64, 0, len(reference))
	for _, img := range reference {
		features, err := e.Extractor.Extract(ctx, img)
		if err != nil {
			metrics.EvaluationTotal.WithLabelValues("failed").Inc()
			log.Error("evaluation_failed_extract_reference", "reason", err.Error())
			return nil, err
		}
		refEmbeddings = append(refEmbeddings, features.Embedding)
	}

	is, err := inceptionScore(genProbs)
	if err != nil {
		metrics.EvaluationTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	fid, err := frechetDistance(genEmbeddings, refEmbeddings)
	if err != nil {
		metrics.EvaluationTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	metrics.EvaluationTotal.WithLabelValues("success").Inc()
	log.Info("evaluation_completed", "inception_score", is, "fid", fid)

	return &domain.EvaluationReport{
		InceptionScore: is,
		FID:            fid,
		GeneratedCount: len(generated),
		ReferenceCount: len(reference),
	}, nil
}

// inceptionScore is exp of the mean KL divergence between each per-image
// class distribution and the marginal over the whole set.
func inceptionScore(probs [][]float64) (float64, error) {
	classes := len(probs[0])
	for _, p := range probs {
		if len(p) != classes {
			return 0, domain.NewDomainError(domain.ErrCodeExternal, "classifier returned inconsistent probability vectors", nil)
		}
	}

	marginal := make([]float64, classes)
	for _, p := range probs {
		for i, v := range p {
			marginal[i] += v / float64(len(probs))
		}
	}

	var meanKL float64
	for _, p := range probs {
		var kl float64
		for i, v := range p {
			if v <= 0 {
				continue
			}
			kl += v * math.Log(v/(marginal[i]+probEpsilon))
		}
		meanKL += kl / float64(len(probs))
	}

	return math.Exp(meanKL), nil
}

// frechetDistance computes FID between the two embedding sets:
// |mu_g - mu_r|^2 + tr(C_g + C_r - 2*sqrt(C_g*C_r)). The trace of the
// matrix square root is taken from the eigenvalues of the product, which
// avoids an explicit sqrtm.
func frechetDistance(generated, reference [][]float64) (float64, error) {
	dims := len(generated[0])
	for _, e := range append(generated, reference...) {
		if len(e) != dims {
			return 0, domain.NewDomainError(domain.ErrCodeExternal, "extractor returned inconsistent embedding sizes", nil)
		}
	}

	muG, covG := embeddingStats(generated, dims)
	muR, covR := embeddingStats(reference, dims)

	var meanDist float64
	for i := 0; i < dims; i++ {
		d := muG[i] - muR[i]
		meanDist += d * d
	}

	product := mat.NewDense(dims, dims, nil)
	product.Mul(covG, covR)

	var eig mat.Eigen
	if ok := eig.Factorize(product, mat.EigenNone); !ok {
		return 0, domain.NewDomainError(domain.ErrCodeInternal, "eigendecomposition of covariance product failed", nil)
	}

	var traceSqrt float64
	for _, v := range eig.Values(nil) {
		// small negative eigenvalues are numerical noise, clamp them
		re := real(v)
		if re > 0 {
			traceSqrt += math.Sqrt(re)
		}
	}

	fid := meanDist + mat.Trace(covG) + mat.Trace(covR) - 2*traceSqrt
	if fid < 0 {
		fid = 0
	}

	return fid, nil
}

func embeddingStats(embeddings [][]float64, dims int) ([]float64, *mat.Dense) {
	samples := mat.NewDense(len(embeddings), dims, nil)
	for i, e := range embeddings {
		samples.SetRow(i, e)
	}

	mu := make([]float64, dims)
	col := make([]float64, len(embeddings))
	for j := 0; j < dims; j++ {
		mat.Col(col, j, samples)
		mu[j] = stat.Mean(col, nil)
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, samples, nil)

	dense := mat.NewDense(dims, dims, nil)
	dense.Copy(&cov)

	return mu, dense
}
