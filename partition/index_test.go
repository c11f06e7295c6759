package partition

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_AddMintsFirstPartition(t *testing.T) {
	x := NewIndex()
	assert.Equal(t, "", x.CurrentPartition())
	_, ok := x.LastPartition()
	assert.False(t, ok)

	x.Add("a")
	x.AddBatch([]string{"b", "c"})

	assert.Equal(t, "partition_1", x.CurrentPartition())
	assert.Equal(t, []string{"a", "b", "c"}, x.Members("partition_1"))
	last, ok := x.LastPartition()
	require.True(t, ok)
	assert.Equal(t, "partition_1", last)
}

func TestIndex_PropagateResumesThenMints(t *testing.T) {
	x := NewIndex()
	x.Add("a")
	assert.Equal(t, "partition_2", x.PropagatePartition())
	x.Add("b")
	assert.Equal(t, "partition_3", x.PropagatePartition())
	x.Add("c")

	// Rewind and walk forward over existing partitions.
	x.SetCurrentPartition("partition_1")
	assert.Equal(t, "partition_2", x.PropagatePartition())
	assert.Equal(t, "partition_3", x.PropagatePartition())
	assert.Equal(t, "partition_4", x.PropagatePartition())

	assert.Equal(t, []string{"partition_1", "partition_2", "partition_3"}, x.Partitions())
	assert.Equal(t, 3, x.Len())
	assert.False(t, x.Has("partition_4"))
}

func TestIndex_SetUnknownPartitionBumpsCounter(t *testing.T) {
	x := NewIndex()
	x.SetCurrentPartition("partition_7")
	x.Add("a")
	assert.Equal(t, "partition_8", x.PropagatePartition())
}

func TestIndex_FindPartition(t *testing.T) {
	x := NewIndex()
	x.AddBatch([]string{"a", "b"})
	x.PropagatePartition()
	x.AddBatch([]string{"c"})

	p, ok := x.FindPartition("c")
	require.True(t, ok)
	assert.Equal(t, "partition_2", p)

	p, ok = x.FindPartition("a")
	require.True(t, ok)
	assert.Equal(t, "partition_1", p)

	_, ok = x.FindPartition("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b", "c"}, x.Order())
	assert.Equal(t, 3, x.Count())
}

func TestIndex_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	x := NewIndex()
	// Partition ids deliberately sort differently as strings and as numbers.
	for i := 0; i < 11; i++ {
		if i > 0 {
			x.PropagatePartition()
		}
		x.AddBatch([]string{"id-" + string(rune('a'+i)), "id-" + string(rune('A'+i))})
	}
	require.NoError(t, x.Save(dir))

	y := NewIndex()
	loaded, err := y.Load(dir)
	require.NoError(t, err)
	require.True(t, loaded)

	assert.Equal(t, x.Partitions(), y.Partitions())
	for _, name := range x.Partitions() {
		assert.Equal(t, x.Members(name), y.Members(name), name)
	}
	assert.Equal(t, "partition_11", y.CurrentPartition())
	assert.Equal(t, "partition_12", y.PropagatePartition())
}

func TestIndex_LoadMissing(t *testing.T) {
	x := NewIndex()
	loaded, err := x.Load(t.TempDir())
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Equal(t, "", x.CurrentPartition())
}

func TestIndex_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"garbage", "{not json"},
		{"wrong value type", `{"partition_1": [1, 2]}`},
		{"duplicate id", `{"partition_1": ["a"], "partition_2": ["a"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFileName), []byte(tt.data), 0o644))

			_, err := NewIndex().Load(dir)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestIndex_LoadEmptyMap(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFileName), []byte("{}"), 0o644))

	x := NewIndex()
	loaded, err := x.Load(dir)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "", x.CurrentPartition())
	assert.Equal(t, "partition_1", x.PropagatePartition())
}
