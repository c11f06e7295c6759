package partition

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/spagbol-team/spagbol/internal/fs"
)

// IndexFileName is the name of the persisted index inside a store directory.
const IndexFileName = "partition_map.json"

const namePrefix = "partition_"

// Index is the durable directory of partitions: an ordered mapping from
// partition id to the ordered ids of its members, plus a pointer to the
// current partition.
//
// Partition ids are minted as partition_<n> with n strictly increasing. A
// minted partition is registered in the mapping by its first Add, so a
// partition that never received an entry is not persisted.
//
// Index is not safe for concurrent use.
type Index struct {
	partitions *orderedmap.OrderedMap[string, []string]
	counter    int
	current    string
	position   int // position of current in traversal order; Len() when unregistered
	fsys       fs.FileSystem
}

// NewIndex returns an empty index with no current partition.
func NewIndex() *Index {
	return newIndex(fs.Default)
}

func newIndex(fsys fs.FileSystem) *Index {
	return &Index{
		partitions: orderedmap.New[string, []string](),
		position:   -1,
		fsys:       fsys,
	}
}

// Add appends id to the current partition, minting the first partition if
// none exists yet.
func (x *Index) Add(id string) {
	x.AddBatch([]string{id})
}

// AddBatch appends ids, in order, to the current partition.
func (x *Index) AddBatch(ids []string) {
	if x.current == "" {
		x.PropagatePartition()
	}
	members, _ := x.partitions.Get(x.current)
	x.partitions.Set(x.current, append(members, ids...))
}

// PropagatePartition advances the current pointer. If a registered partition
// follows the current one in traversal order it becomes current, otherwise a
// new partition id is minted. The new current partition id is returned.
func (x *Index) PropagatePartition() string {
	next := x.position + 1
	if next < x.partitions.Len() {
		x.current = x.nameAt(next)
		x.position = next
		return x.current
	}

	x.current = x.mint()
	x.position = x.partitions.Len()
	return x.current
}

func (x *Index) mint() string {
	for {
		x.counter++
		name := namePrefix + strconv.Itoa(x.counter)
		if _, taken := x.partitions.Get(name); !taken {
			return name
		}
	}
}

// SetCurrentPartition points the index at name. An unknown name becomes the
// next partition to be registered.
func (x *Index) SetCurrentPartition(name string) {
	x.current = name
	for pair, i := x.partitions.Oldest(), 0; pair != nil; pair, i = pair.Next(), i+1 {
		if pair.Key == name {
			x.position = i
			return
		}
	}
	x.position = x.partitions.Len()
	if n, ok := parseName(name); ok && n > x.counter {
		x.counter = n
	}
}

// FindPartition returns the partition that owns id.
//
// The lookup scans every partition's member list in traversal order.
// TODO: keep an id -> partition reverse map once callers stop relying on the
// scan order for duplicate ids.
func (x *Index) FindPartition(id string) (string, bool) {
	for pair := x.partitions.Oldest(); pair != nil; pair = pair.Next() {
		for _, member := range pair.Value {
			if member == id {
				return pair.Key, true
			}
		}
	}
	return "", false
}

// LastPartition returns the most recently registered partition.
func (x *Index) LastPartition() (string, bool) {
	pair := x.partitions.Newest()
	if pair == nil {
		return "", false
	}
	return pair.Key, true
}

// CurrentPartition returns the partition the pointer is at, or "" if none.
func (x *Index) CurrentPartition() string { return x.current }

// Has reports whether name is a registered partition.
func (x *Index) Has(name string) bool {
	_, ok := x.partitions.Get(name)
	return ok
}

// Len returns the number of registered partitions.
func (x *Index) Len() int { return x.partitions.Len() }

// Partitions returns the registered partition ids in traversal order.
func (x *Index) Partitions() []string {
	names := make([]string, 0, x.partitions.Len())
	for pair := x.partitions.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Members returns the ids recorded for partition name, in insertion order.
// The returned slice must not be modified.
func (x *Index) Members(name string) []string {
	members, _ := x.partitions.Get(name)
	return members
}

// Order returns every recorded id in traversal order.
func (x *Index) Order() []string {
	var ids []string
	for pair := x.partitions.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Value...)
	}
	return ids
}

// ids collects every recorded id in one scan over the member lists.
func (x *Index) ids() map[string]struct{} {
	set := make(map[string]struct{}, x.Count())
	for pair := x.partitions.Oldest(); pair != nil; pair = pair.Next() {
		for _, id := range pair.Value {
			set[id] = struct{}{}
		}
	}
	return set
}

// Count returns the number of recorded ids across all partitions.
func (x *Index) Count() int {
	n := 0
	for pair := x.partitions.Oldest(); pair != nil; pair = pair.Next() {
		n += len(pair.Value)
	}
	return n
}

// Load restores the index from dir/partition_map.json. It reports false with a
// nil error when the file does not exist. On success the last partition
// becomes current.
func (x *Index) Load(dir string) (bool, error) {
	path := filepath.Join(dir, IndexFileName)
	data, err := fs.ReadFile(x.fsys, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	partitions := orderedmap.New[string, []string]()
	if err := json.Unmarshal(data, partitions); err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrCorrupt, path, err)
	}

	counter := partitions.Len()
	seen := make(map[string]string)
	for pair := partitions.Oldest(); pair != nil; pair = pair.Next() {
		for _, id := range pair.Value {
			if owner, dup := seen[id]; dup {
				return false, fmt.Errorf("%w: %s: id %q recorded in %s and %s", ErrCorrupt, path, id, owner, pair.Key)
			}
			seen[id] = pair.Key
		}
		if n, ok := parseName(pair.Key); ok && n > counter {
			counter = n
		}
	}

	x.partitions = partitions
	x.counter = counter
	x.current = ""
	x.position = -1
	if last, ok := x.LastPartition(); ok {
		x.current = last
		x.position = partitions.Len() - 1
	}
	return true, nil
}

// Save writes the index to dir/partition_map.json, replacing any previous file.
func (x *Index) Save(dir string) error {
	data, err := json.MarshalIndent(x.partitions, "", "    ")
	if err != nil {
		return err
	}
	if err := x.fsys.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, IndexFileName)
	if err := fs.WriteFileAtomic(x.fsys, path, data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (x *Index) nameAt(i int) string {
	pair := x.partitions.Oldest()
	for ; i > 0 && pair != nil; i-- {
		pair = pair.Next()
	}
	return pair.Key
}

func parseName(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, namePrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
