// Package codec centralizes partition payload encoding.
//
// A partition directory is written with exactly one codec: the codec is not
// recorded in the files themselves, so opening a directory with a different
// codec than it was written with fails at decode time.
package codec

import "sort"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

var registry = map[string]Codec{
	"json":         JSON{},
	"go-json":      GoJSON{},
	"msgpack":      Msgpack{},
	"json+zstd":    Zstd{Inner: JSON{}},
	"msgpack+zstd": Zstd{Inner: Msgpack{}},
	"json+lz4":     LZ4{Inner: JSON{}},
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	c, ok := registry[name]
	return c, ok
}

// Names lists the stable names accepted by ByName, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
