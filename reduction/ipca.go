package reduction

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// IncrementalPCA is principal component analysis fit one batch at a time.
//
// Each PartialFit folds the batch into a running mean and variance, then
// takes a thin SVD of the previous components (scaled by their singular
// values) stacked on the centered batch and a mean-correction row. Memory is
// bounded by the batch size and the input width.
//
// The first batch must hold at least as many rows as components; later
// batches may be of any size.
type IncrementalPCA struct {
	k int

	components *mat.Dense // k x d, rows are unit-length directions
	singular   []float64
	mean       []float64
	variance   []float64
	explained  []float64
	seen       int
}

// NewIncrementalPCA returns an unfit model producing k components.
func NewIncrementalPCA(k int) *IncrementalPCA {
	return &IncrementalPCA{k: k}
}

// PartialFit folds x into the model.
func (p *IncrementalPCA) PartialFit(x *mat.Dense) error {
	n, d := x.Dims()
	if n == 0 {
		return nil
	}
	if p.k <= 0 || p.k > d {
		return fmt.Errorf("%w: %d components for %d features", ErrInvalidComponents, p.k, d)
	}
	if p.components == nil {
		if n < p.k {
			return fmt.Errorf("%w: first batch has %d rows, need at least %d", ErrTooFewSamples, n, p.k)
		}
	} else if d != len(p.mean) {
		return fmt.Errorf("%w: batch has %d features, model has %d", ErrDimensionMismatch, d, len(p.mean))
	}

	batchMean := make([]float64, d)
	batchVar := make([]float64, d)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, x)
		batchMean[j], batchVar[j] = stat.PopMeanVariance(col, nil)
	}

	total := p.seen + n
	mean := make([]float64, d)
	variance := make([]float64, d)
	for j := 0; j < d; j++ {
		if p.seen == 0 {
			mean[j], variance[j] = batchMean[j], batchVar[j]
			continue
		}
		lastSum := p.mean[j] * float64(p.seen)
		newSum := batchMean[j] * float64(n)
		mean[j] = (lastSum + newSum) / float64(total)

		ratio := float64(p.seen) / float64(n)
		delta := lastSum/ratio - newSum
		unnormalized := p.variance[j]*float64(p.seen) + batchVar[j]*float64(n) +
			ratio/float64(total)*delta*delta
		variance[j] = unnormalized / float64(total)
	}

	// Rows: previous components, centered batch, mean correction.
	prev := 0
	if p.components != nil {
		prev = p.k
	}
	extra := 0
	if p.seen > 0 {
		extra = 1
	}
	stacked := mat.NewDense(prev+n+extra, d, nil)
	for i := 0; i < prev; i++ {
		for j := 0; j < d; j++ {
			stacked.Set(i, j, p.singular[i]*p.components.At(i, j))
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			stacked.Set(prev+i, j, x.At(i, j)-batchMean[j])
		}
	}
	if extra == 1 {
		scale := math.Sqrt(float64(p.seen) / float64(total) * float64(n))
		for j := 0; j < d; j++ {
			stacked.Set(prev+n, j, scale*(p.mean[j]-batchMean[j]))
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(stacked, mat.SVDThin); !ok {
		return errors.New("reduction: svd did not converge")
	}
	values := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	components := mat.NewDense(p.k, d, nil)
	for i := 0; i < p.k; i++ {
		for j := 0; j < d; j++ {
			components.Set(i, j, v.At(j, i))
		}
	}
	flipSigns(components)

	denom := math.Max(float64(total-1), 1)
	explained := make([]float64, p.k)
	for i := range explained {
		explained[i] = values[i] * values[i] / denom
	}

	p.components = components
	p.singular = values[:p.k]
	p.mean = mean
	p.variance = variance
	p.explained = explained
	p.seen = total
	return nil
}

// Transform projects x onto the fitted components.
func (p *IncrementalPCA) Transform(x *mat.Dense) (*mat.Dense, error) {
	if p.components == nil {
		return nil, ErrUnfitModel
	}
	return project(x, p.mean, p.components)
}

// Components returns a copy of the k x d component matrix.
func (p *IncrementalPCA) Components() *mat.Dense {
	if p.components == nil {
		return nil
	}
	return mat.DenseCopyOf(p.components)
}

// Mean returns the running per-feature mean.
func (p *IncrementalPCA) Mean() []float64 { return append([]float64(nil), p.mean...) }

// ExplainedVariance returns the variance captured by each component.
func (p *IncrementalPCA) ExplainedVariance() []float64 {
	return append([]float64(nil), p.explained...)
}

// ExplainedVarianceRatio returns each component's share of the total
// variance.
func (p *IncrementalPCA) ExplainedVarianceRatio() []float64 {
	if p.seen < 2 {
		return nil
	}
	total := 0.0
	for _, v := range p.variance {
		total += v * float64(p.seen) / float64(p.seen-1)
	}
	ratio := make([]float64, len(p.explained))
	if total == 0 {
		return ratio
	}
	for i, v := range p.explained {
		ratio[i] = v / total
	}
	return ratio
}

// SamplesSeen returns the number of rows folded into the model.
func (p *IncrementalPCA) SamplesSeen() int { return p.seen }

// project centers x by mean and multiplies by components transposed.
func project(x *mat.Dense, mean []float64, components *mat.Dense) (*mat.Dense, error) {
	n, d := x.Dims()
	if d != len(mean) {
		return nil, fmt.Errorf("%w: batch has %d features, model has %d", ErrDimensionMismatch, d, len(mean))
	}
	centered := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			centered.Set(i, j, x.At(i, j)-mean[j])
		}
	}
	var out mat.Dense
	out.Mul(centered, components.T())
	return &out, nil
}

// flipSigns makes the largest-magnitude loading of every row positive so the
// projection is deterministic.
func flipSigns(components *mat.Dense) {
	rows, cols := components.Dims()
	for i := 0; i < rows; i++ {
		best := 0
		for j := 1; j < cols; j++ {
			if math.Abs(components.At(i, j)) > math.Abs(components.At(i, best)) {
				best = j
			}
		}
		if components.At(i, best) < 0 {
			for j := 0; j < cols; j++ {
				components.Set(i, j, -components.At(i, j))
			}
		}
	}
}
