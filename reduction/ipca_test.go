package reduction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/spagbol-team/spagbol/partition"
	"github.com/spagbol-team/spagbol/testutil"
)

func reconstructionError(t *testing.T, x *mat.Dense, mean []float64, components, coords *mat.Dense) float64 {
	t.Helper()
	var back mat.Dense
	back.Mul(coords, components)
	n, d := x.Dims()
	worst := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			worst = math.Max(worst, math.Abs(back.At(i, j)+mean[j]-x.At(i, j)))
		}
	}
	return worst
}

func TestIncrementalPCA_RecoversPlane(t *testing.T) {
	rng := testutil.NewRNG(4711)
	points, _, _ := rng.PlaneVectors(200, 6)
	x, err := Matrix(points)
	require.NoError(t, err)

	p := NewIncrementalPCA(2)
	for start := 0; start < 200; start += 30 {
		end := min(start+30, 200)
		require.NoError(t, p.PartialFit(mat.DenseCopyOf(x.Slice(start, end, 0, 6))))
	}
	assert.Equal(t, 200, p.SamplesSeen())

	coords, err := p.Transform(x)
	require.NoError(t, err)
	assert.Less(t, reconstructionError(t, x, p.Mean(), p.Components(), coords), 1e-4)

	ratio := p.ExplainedVarianceRatio()
	require.Len(t, ratio, 2)
	assert.InDelta(t, 1.0, ratio[0]+ratio[1], 1e-6)
	assert.Greater(t, ratio[0], ratio[1])
}

func TestIncrementalPCA_MatchesBatchPCA(t *testing.T) {
	rng := testutil.NewRNG(99)
	points, _, _ := rng.PlaneVectors(120, 5)
	x, err := Matrix(points)
	require.NoError(t, err)

	ipca := NewIncrementalPCA(2)
	for start := 0; start < 120; start += 25 {
		end := min(start+25, 120)
		require.NoError(t, ipca.PartialFit(mat.DenseCopyOf(x.Slice(start, end, 0, 5))))
	}
	pca := NewPCA(2)
	require.NoError(t, pca.Fit(x))

	a, b := ipca.Components(), pca.Components()
	for i := 0; i < 2; i++ {
		for j := 0; j < 5; j++ {
			assert.InDelta(t, b.At(i, j), a.At(i, j), 1e-4, "component %d feature %d", i, j)
		}
	}
	for i, v := range pca.ExplainedVariance() {
		assert.InEpsilon(t, v, ipca.ExplainedVariance()[i], 1e-4)
	}
}

func TestIncrementalPCA_Errors(t *testing.T) {
	p := NewIncrementalPCA(2)

	_, err := p.Transform(mat.NewDense(1, 3, nil))
	assert.ErrorIs(t, err, ErrUnfitModel)
	assert.Nil(t, p.Components())

	assert.ErrorIs(t, p.PartialFit(mat.NewDense(1, 3, []float64{1, 2, 3})), ErrTooFewSamples)
	assert.ErrorIs(t, NewIncrementalPCA(4).PartialFit(mat.NewDense(5, 3, nil)), ErrInvalidComponents)

	require.NoError(t, p.PartialFit(mat.NewDense(3, 3, []float64{1, 0, 0, 0, 2, 0, 0, 0, 3})))
	// Later batches may be smaller than the component count.
	require.NoError(t, p.PartialFit(mat.NewDense(1, 3, []float64{1, 1, 1})))
	assert.ErrorIs(t, p.PartialFit(mat.NewDense(2, 4, nil)), ErrDimensionMismatch)

	_, err = p.Transform(mat.NewDense(1, 4, nil))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestIncrementalPCA_DeterministicSigns(t *testing.T) {
	batch := []partition.Vector{{-4, 0.1}, {-2, 0}, {0, 0.1}, {2, 0}, {4, 0.1}}
	x, err := Matrix(batch)
	require.NoError(t, err)

	p := NewIncrementalPCA(1)
	require.NoError(t, p.PartialFit(x))
	c := p.Components()
	assert.Greater(t, c.At(0, 0), 0.0)

	out, err := p.Transform(x)
	require.NoError(t, err)
	assert.Less(t, out.At(0, 0), out.At(4, 0))
}

func TestPCA(t *testing.T) {
	p := NewPCA(2)
	_, err := p.Transform(mat.NewDense(1, 3, nil))
	assert.ErrorIs(t, err, ErrUnfitModel)

	assert.ErrorIs(t, p.Fit(mat.NewDense(1, 3, []float64{1, 2, 3})), ErrTooFewSamples)
	assert.ErrorIs(t, NewPCA(0).Fit(mat.NewDense(3, 3, nil)), ErrInvalidComponents)

	rng := testutil.NewRNG(3)
	points, _, _ := rng.PlaneVectors(40, 4)
	x, err := Matrix(points)
	require.NoError(t, err)

	coords, err := p.FitTransform(x)
	require.NoError(t, err)
	n, k := coords.Dims()
	assert.Equal(t, 40, n)
	assert.Equal(t, 2, k)

	mean := make([]float64, 4)
	for j := range mean {
		for i := 0; i < 40; i++ {
			mean[j] += x.At(i, j) / 40
		}
	}
	assert.Less(t, reconstructionError(t, x, mean, p.Components(), coords), 1e-4)
}

func TestPCA_InStreamingReducer(t *testing.T) {
	s, err := partition.Open(t.TempDir(), partition.WithPartitionSize(50))
	require.NoError(t, err)
	require.NoError(t, s.AddData(testutil.SentinelEntries("e", 40)))

	r := NewStreaming(NewPCA(2), WithBatchSize(100))
	out, err := r.FitTransform(s)
	require.NoError(t, err)
	rows, _ := out.Dims()
	assert.Equal(t, 40, rows)
}
