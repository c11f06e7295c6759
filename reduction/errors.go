package reduction

import "errors"

var (
	// ErrUnfitModel is returned when a transform is requested before a fit
	// completed.
	ErrUnfitModel = errors.New("reduction: model is not fit")

	// ErrAlreadyFit is returned when Fit is called on a reducer that has
	// already started or finished a fit pass.
	ErrAlreadyFit = errors.New("reduction: reducer already fit")

	// ErrNoData is returned when a fit pass sees no batches.
	ErrNoData = errors.New("reduction: no data to fit")

	// ErrTooFewSamples is returned when a first batch has fewer rows than
	// the requested number of components.
	ErrTooFewSamples = errors.New("reduction: too few samples")

	// ErrInvalidComponents is returned for a non-positive component count or
	// one larger than the input width.
	ErrInvalidComponents = errors.New("reduction: invalid number of components")

	// ErrDimensionMismatch is returned when a batch's width differs from the
	// width the model was fit on, or rows within a batch differ in length.
	ErrDimensionMismatch = errors.New("reduction: dimension mismatch")
)
