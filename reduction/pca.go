package reduction

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCA is principal component analysis over a single in-memory matrix.
// It implements Model: PartialFit refits from scratch on each call, so it
// only makes sense when the source fits in one batch.
type PCA struct {
	k          int
	mean       []float64
	components *mat.Dense // k x d
	vars       []float64
}

// NewPCA returns an unfit model producing k components.
func NewPCA(k int) *PCA {
	return &PCA{k: k}
}

// Fit computes the principal components of x.
func (p *PCA) Fit(x *mat.Dense) error {
	n, d := x.Dims()
	if p.k <= 0 || p.k > d {
		return fmt.Errorf("%w: %d components for %d features", ErrInvalidComponents, p.k, d)
	}
	if n < 2 || n < p.k {
		return fmt.Errorf("%w: %d rows for %d components", ErrTooFewSamples, n, p.k)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return errors.New("reduction: principal component analysis failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	components := mat.NewDense(p.k, d, nil)
	for i := 0; i < p.k; i++ {
		for j := 0; j < d; j++ {
			components.Set(i, j, vecs.At(j, i))
		}
	}
	flipSigns(components)

	mean := make([]float64, d)
	col := make([]float64, n)
	for j := range mean {
		mat.Col(col, j, x)
		mean[j] = stat.Mean(col, nil)
	}

	p.mean = mean
	p.components = components
	p.vars = pc.VarsTo(nil)[:p.k]
	return nil
}

// PartialFit implements Model by refitting on x.
func (p *PCA) PartialFit(x *mat.Dense) error { return p.Fit(x) }

// Transform projects x onto the fitted components.
func (p *PCA) Transform(x *mat.Dense) (*mat.Dense, error) {
	if p.components == nil {
		return nil, ErrUnfitModel
	}
	return project(x, p.mean, p.components)
}

// FitTransform fits on x and returns its projection.
func (p *PCA) FitTransform(x *mat.Dense) (*mat.Dense, error) {
	if err := p.Fit(x); err != nil {
		return nil, err
	}
	return p.Transform(x)
}

// Components returns a copy of the k x d component matrix.
func (p *PCA) Components() *mat.Dense {
	if p.components == nil {
		return nil
	}
	return mat.DenseCopyOf(p.components)
}

// ExplainedVariance returns the variance captured by each component.
func (p *PCA) ExplainedVariance() []float64 { return append([]float64(nil), p.vars...) }
