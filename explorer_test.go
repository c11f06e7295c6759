package spagbol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spagbol-team/spagbol/partition"
	"github.com/spagbol-team/spagbol/reduction"
	"github.com/spagbol-team/spagbol/similarity"
	"github.com/spagbol-team/spagbol/testutil"
)

func rows(rng *testutil.RNG, n int) []Row {
	in := rng.GaussianVectors(n, 8)
	out := rng.GaussianVectors(n, 4)
	rs := make([]Row, n)
	for i, e := range testutil.Entries("r", in) {
		rs[i] = Row{ID: e.ID, Input: in[i], Output: out[i]}
	}
	return rs
}

func TestExplorer_ProjectKeepsIngestOrder(t *testing.T) {
	ctx := context.Background()
	ex, err := Open(t.TempDir(), WithPartitionSize(16), WithBatchSize(10))
	require.NoError(t, err)

	rs := rows(testutil.NewRNG(1), 50)
	require.NoError(t, ex.Ingest(ctx, rs[:20]))
	require.NoError(t, ex.Ingest(ctx, rs[20:]))
	require.NoError(t, ex.Flush())

	for _, c := range Columns {
		points, err := ex.Project(ctx, c)
		require.NoError(t, err)
		require.Len(t, points, 50)
		for i, p := range points {
			assert.Equal(t, rs[i].ID, p.ID)
		}
	}
}

func TestExplorer_ProjectSentinel(t *testing.T) {
	ctx := context.Background()
	for _, method := range []Method{MethodIncremental, MethodPCA} {
		t.Run(string(method), func(t *testing.T) {
			ex, err := Open(t.TempDir(), WithPartitionSize(100), WithMethod(method))
			require.NoError(t, err)

			var rs []Row
			for _, e := range testutil.SentinelEntries("s", 250) {
				rs = append(rs, Row{ID: e.ID, Input: e.Vector})
			}
			require.NoError(t, ex.Ingest(ctx, rs))

			points, err := ex.Project(ctx, ColumnInput)
			require.NoError(t, err)
			require.Len(t, points, 250)
			for k := 1; k < len(points); k++ {
				assert.Greater(t, points[k].X, points[k-1].X, "row %d", k)
			}
		})
	}
}

func TestExplorer_ProjectAll(t *testing.T) {
	ctx := context.Background()
	ex, err := Open(t.TempDir(), WithPartitionSize(25))
	require.NoError(t, err)

	rs := rows(testutil.NewRNG(2), 60)
	for i := range rs[40:] {
		rs[40+i].Output = nil
	}
	require.NoError(t, ex.Ingest(ctx, rs))

	all, err := ex.ProjectAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all[ColumnInput], 60)
	assert.Len(t, all[ColumnOutput], 40)
}

func TestExplorer_ProjectAllSkipsEmptyColumns(t *testing.T) {
	ctx := context.Background()
	ex, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, ex.Ingest(ctx, []Row{
		{ID: "a", Input: partition.Vector{1, 0}},
		{ID: "b", Input: partition.Vector{0, 1}},
		{ID: "c", Input: partition.Vector{1, 1}},
	}))

	all, err := ex.ProjectAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Len(t, all[ColumnInput], 3)
}

func TestExplorer_Transform(t *testing.T) {
	ctx := context.Background()
	ex, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = ex.Transform(ColumnInput, []partition.Vector{{1, 2, 3}})
	assert.ErrorIs(t, err, reduction.ErrUnfitModel)

	var rs []Row
	for _, e := range testutil.SentinelEntries("s", 30) {
		rs = append(rs, Row{ID: e.ID, Input: e.Vector})
	}
	require.NoError(t, ex.Ingest(ctx, rs))
	points, err := ex.Project(ctx, ColumnInput)
	require.NoError(t, err)

	out, err := ex.Transform(ColumnInput, []partition.Vector{rs[4].Input})
	require.NoError(t, err)
	assert.InDelta(t, points[4].X, out.At(0, 0), 1e-9)
	assert.InDelta(t, points[4].Y, out.At(0, 1), 1e-9)
}

func TestExplorer_Similar(t *testing.T) {
	ctx := context.Background()
	ex, err := Open(t.TempDir(), WithPartitionSize(2), WithBatchSize(2))
	require.NoError(t, err)

	require.NoError(t, ex.Ingest(ctx, []Row{
		{ID: "a", Input: partition.Vector{1, 0}},
		{ID: "b", Input: partition.Vector{0, 1}},
		{ID: "c", Input: partition.Vector{1, 0.1}},
		{ID: "d", Input: partition.Vector{-1, 0}},
		{ID: "e", Input: partition.Vector{2, 0}},
	}))

	got, err := ex.Similar(ctx, ColumnInput, "a", 2, similarity.Cosine{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "e", got[0].ID)
	assert.InDelta(t, 1, got[0].Score, 1e-6)
	assert.Equal(t, "c", got[1].ID)

	got, err = ex.Similar(ctx, ColumnInput, "a", 10, similarity.Manhattan{})
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"c", "e", "b", "d"}, []string{got[0].ID, got[1].ID, got[2].ID, got[3].ID})

	_, err = ex.Similar(ctx, ColumnInput, "zzz", 1, similarity.Cosine{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = ex.Similar(ctx, ColumnInput, "a", 0, similarity.Cosine{})
	assert.ErrorIs(t, err, ErrInvalidK)
}

func TestExplorer_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(t.TempDir(), WithMethod("umap"))
	var methodErr *ErrUnknownMethod
	assert.ErrorAs(t, err, &methodErr)

	ex, err := Open(t.TempDir())
	require.NoError(t, err)

	var colErr *ErrUnknownColumn
	_, err = ex.Project(ctx, "label")
	assert.ErrorAs(t, err, &colErr)
	_, _, err = ex.Get("label", "x")
	assert.ErrorAs(t, err, &colErr)

	assert.ErrorIs(t, ex.Ingest(ctx, []Row{{ID: "x"}}), ErrEmptyRow)

	_, err = ex.Project(ctx, ColumnInput)
	assert.ErrorIs(t, err, reduction.ErrNoData)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, ex.Ingest(cancelled, []Row{{ID: "x", Input: partition.Vector{1}}}), context.Canceled)
}

func TestExplorer_ReopenAndGet(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ex, err := Open(dir, WithPartitionSize(3))
	require.NoError(t, err)
	rs := rows(testutil.NewRNG(5), 10)
	require.NoError(t, ex.Ingest(ctx, rs))
	require.NoError(t, ex.Flush())

	again, err := Open(dir, WithPartitionSize(3))
	require.NoError(t, err)
	for _, r := range rs {
		vec, ok, err := again.Get(ColumnOutput, r.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, r.Output, vec)
	}
	st, err := again.Store(ColumnInput)
	require.NoError(t, err)
	assert.Equal(t, 10, st.Stats().Entries)
}

func TestExplorer_RejectedIngestLeavesColumnsUnchanged(t *testing.T) {
	ctx := context.Background()
	ex, err := Open(t.TempDir(), WithPartitionSize(2))
	require.NoError(t, err)
	require.NoError(t, ex.Ingest(ctx, []Row{
		{ID: "a", Input: partition.Vector{1, 0}, Output: partition.Vector{1, 1, 1}},
		{ID: "b", Input: partition.Vector{0, 1}, Output: partition.Vector{2, 2, 2}},
	}))

	counts := func() (int, int) {
		in, err := ex.Store(ColumnInput)
		require.NoError(t, err)
		out, err := ex.Store(ColumnOutput)
		require.NoError(t, err)
		return in.Index().Count(), out.Index().Count()
	}

	var dimErr *partition.DimensionMismatchError
	err = ex.Ingest(ctx, []Row{{ID: "c", Input: partition.Vector{1, 1}, Output: partition.Vector{3, 3}}})
	require.ErrorAs(t, err, &dimErr)
	in, out := counts()
	assert.Equal(t, 2, in)
	assert.Equal(t, 2, out)

	var dupErr *partition.DuplicateIDError
	err = ex.Ingest(ctx, []Row{{ID: "c", Input: partition.Vector{1, 1}}, {ID: "a", Input: partition.Vector{5, 5}}})
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "a", dupErr.ID)

	require.NoError(t, ex.Ingest(ctx, []Row{{ID: "c", Input: partition.Vector{1, 1}, Output: partition.Vector{3, 3, 3}}}))
	in, out = counts()
	assert.Equal(t, 3, in)
	assert.Equal(t, 3, out)
}
