package reduction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/spagbol-team/spagbol/partition"
	"github.com/spagbol-team/spagbol/testutil"
)

// recordingModel echoes the first input column and records batch sizes.
type recordingModel struct {
	fitBatches       []int
	transformBatches []int
}

func (m *recordingModel) PartialFit(x *mat.Dense) error {
	n, _ := x.Dims()
	m.fitBatches = append(m.fitBatches, n)
	return nil
}

func (m *recordingModel) Transform(x *mat.Dense) (*mat.Dense, error) {
	n, _ := x.Dims()
	m.transformBatches = append(m.transformBatches, n)
	out := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, x.At(i, 0))
		out.Set(i, 1, float64(i))
	}
	return out, nil
}

func openStore(t *testing.T, size int, entries []partition.Entry) *partition.Store {
	t.Helper()
	s, err := partition.Open(t.TempDir(), partition.WithPartitionSize(size))
	require.NoError(t, err)
	require.NoError(t, s.AddData(entries))
	return s
}

func TestStreaming_TwoPassesOverThreePartitions(t *testing.T) {
	s := openStore(t, 100, testutil.SentinelEntries("e", 250))
	m := &recordingModel{}
	r := NewStreaming(m, WithBatchSize(100))
	assert.Equal(t, Unfit, r.State())

	require.NoError(t, r.Fit(s))
	assert.Equal(t, Fit, r.State())
	assert.Equal(t, []int{100, 100, 50}, m.fitBatches)
	assert.Equal(t, 250, r.Samples())

	out, err := r.Transform(s)
	require.NoError(t, err)
	assert.Equal(t, []int{100, 100, 50}, m.transformBatches)

	rows, cols := out.Dims()
	require.Equal(t, 250, rows)
	require.Equal(t, 2, cols)
	for k := 0; k < rows; k++ {
		assert.Equal(t, float64(k+1), out.At(k, 0), "row %d", k)
	}
}

func TestStreaming_FitTransformKeepsInsertionOrder(t *testing.T) {
	s := openStore(t, 100, testutil.SentinelEntries("e", 250))
	r := NewStreaming(NewIncrementalPCA(2), WithBatchSize(100))

	out, err := r.FitTransform(s)
	require.NoError(t, err)

	rows, _ := out.Dims()
	require.Equal(t, 250, rows)
	for k := 1; k < rows; k++ {
		assert.Greater(t, out.At(k, 0), out.At(k-1, 0), "row %d", k)
	}
}

func TestStreaming_UnfitGuards(t *testing.T) {
	s := openStore(t, 10, testutil.SentinelEntries("e", 5))
	r := NewStreaming(&recordingModel{})

	_, err := r.Transform(s)
	assert.ErrorIs(t, err, ErrUnfitModel)

	_, err = r.TransformBatch([]partition.Vector{{1, 2, 3}})
	assert.ErrorIs(t, err, ErrUnfitModel)

	require.NoError(t, r.Fit(s))
	assert.ErrorIs(t, r.Fit(s), ErrAlreadyFit)

	out, err := r.TransformBatch([]partition.Vector{{7, 0, 0}, {8, 0, 0}})
	require.NoError(t, err)
	assert.Equal(t, 8.0, out.At(1, 0))
}

func TestStreaming_EmptySource(t *testing.T) {
	s, err := partition.Open(t.TempDir())
	require.NoError(t, err)

	r := NewStreaming(&recordingModel{})
	assert.ErrorIs(t, r.Fit(s), ErrNoData)
	assert.Equal(t, Unfit, r.State())
}

func TestStreaming_InvalidBatchSize(t *testing.T) {
	s := openStore(t, 10, testutil.SentinelEntries("e", 5))
	r := NewStreaming(&recordingModel{}, WithBatchSize(0))
	assert.ErrorIs(t, r.Fit(s), partition.ErrInvalidBatchSize)
}

type failingModel struct{ recordingModel }

func (failingModel) PartialFit(*mat.Dense) error { return ErrTooFewSamples }

func TestStreaming_FitErrorStopsReducer(t *testing.T) {
	s := openStore(t, 10, testutil.SentinelEntries("e", 5))
	r := NewStreaming(&failingModel{})

	assert.ErrorIs(t, r.Fit(s), ErrTooFewSamples)
	assert.Equal(t, Fitting, r.State())
	_, err := r.Transform(s)
	assert.ErrorIs(t, err, ErrUnfitModel)
}

func TestMatrix(t *testing.T) {
	x, err := Matrix([]partition.Vector{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)
	n, d := x.Dims()
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, d)
	assert.Equal(t, 6.0, x.At(2, 1))

	_, err = Matrix([]partition.Vector{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = Matrix(nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unfit", Unfit.String())
	assert.Equal(t, "fitting", Fitting.String())
	assert.Equal(t, "fit", Fit.String())
	assert.Equal(t, "State(9)", State(9).String())
}
