package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	for _, name := range Names() {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("protobuf")
	assert.False(t, ok)
}

func TestRoundTripPartitionPayload(t *testing.T) {
	payload := map[string][]float32{
		"e1": {0.25, -1.5, 3},
		"e2": {1e-7, 42, -0.125},
		"e3": {},
	}

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, _ := ByName(name)
			data, err := c.Marshal(payload)
			require.NoError(t, err)

			var got map[string][]float32
			require.NoError(t, c.Unmarshal(data, &got))
			require.Len(t, got, len(payload))
			for id, vec := range payload {
				assert.Equal(t, len(vec), len(got[id]), id)
				for i := range vec {
					assert.Equal(t, vec[i], got[id][i], id)
				}
			}
		})
	}
}

func TestCompressedRejectsGarbage(t *testing.T) {
	var out map[string][]float32
	assert.Error(t, Zstd{Inner: JSON{}}.Unmarshal([]byte("not zstd"), &out))
	assert.Error(t, LZ4{Inner: JSON{}}.Unmarshal([]byte("not lz4"), &out))
}

func TestDefaultIsJSON(t *testing.T) {
	b, err := Default.Marshal(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(b))
}
