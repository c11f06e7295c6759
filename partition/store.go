package partition

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/spagbol-team/spagbol/internal/fs"
)

// Store is a single-slot paging cache over partition files.
//
// Exactly one partition (the resident partition) is decoded in memory at a
// time. Every other partition lives only on disk, one file per partition,
// named after the partition id. Lookups that miss the resident partition
// flush it and page the owning partition in.
//
// Store holds no lock and is not safe for concurrent use. State is persisted
// only by SavePartition (and the operations that call it); a Store dropped
// without a final SavePartition loses the resident partition's unsaved
// entries.
type Store struct {
	opts options
	dir  string
	dim  int

	index    *Index
	resident string
	order    []string // resident entry ids in insertion order
	cache    map[string]Vector
}

// Open returns a store bound to dir. An existing index in dir is loaded and
// its last partition becomes resident. A missing dir is created on the first
// flush.
func Open(dir string, optFns ...Option) (*Store, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	if o.partitionSize <= 0 {
		return nil, ErrInvalidPartitionSize
	}
	if o.dimension < 0 {
		return nil, ErrInvalidDimension
	}

	s := &Store{opts: o}
	if _, err := s.SetPartitionPath(dir); err != nil {
		return nil, err
	}
	return s, nil
}

// SetPartitionPath rebinds the store to dir, discarding all in-memory state
// (unsaved entries included). It reports whether dir already held an index.
// When it did, the index's last partition is loaded as resident.
func (s *Store) SetPartitionPath(dir string) (bool, error) {
	s.dir = dir
	s.dim = s.opts.dimension
	s.index = newIndex(s.opts.fs)
	s.resetResident("")

	loaded, err := s.index.Load(dir)
	if err != nil {
		return false, err
	}
	if !loaded {
		return false, nil
	}
	if current := s.index.CurrentPartition(); current != "" {
		s.resident = current
		if err := s.LoadPartition(); err != nil {
			return true, err
		}
	}
	return true, nil
}

// LoadPartition reads the resident partition's file into memory. A missing
// file yields an empty partition. On error the store is left without a
// resident partition so that nothing stale is flushed afterwards.
func (s *Store) LoadPartition() error {
	name := s.resident
	if name == "" {
		s.resetResident("")
		return nil
	}

	n, err := s.loadPartition(name)
	s.opts.metrics.RecordLoad(name, n, err)
	if err != nil {
		s.resetResident("")
		return err
	}
	s.opts.logger.Debug("partition loaded", slog.String("partition", name), slog.Int("entries", n))
	return nil
}

func (s *Store) loadPartition(name string) (int, error) {
	path := s.partitionPath(name)
	members := s.index.Members(name)

	data, err := fs.ReadFile(s.opts.fs, path)
	if errors.Is(err, os.ErrNotExist) {
		if len(members) > 0 {
			return 0, fmt.Errorf("%w: %s: missing file for %d indexed entries", ErrCorrupt, path, len(members))
		}
		s.resetResident(name)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	var payload map[string]Vector
	if err := s.opts.codec.Unmarshal(data, &payload); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrCorrupt, path, err)
	}

	cache := make(map[string]Vector, len(members))
	for _, id := range members {
		vec, ok := payload[id]
		if !ok {
			return 0, fmt.Errorf("%w: %s: indexed id %q not in file", ErrCorrupt, path, id)
		}
		if err := s.checkDimension(id, vec); err != nil {
			return 0, fmt.Errorf("%w: %s: %w", ErrCorrupt, path, err)
		}
		cache[id] = vec
	}
	if extra := len(payload) - len(cache); extra > 0 {
		// The partition file was written but the index was not.
		s.opts.logger.Warn("dropping unindexed entries",
			slog.String("partition", name), slog.Int("count", extra))
	}

	s.resident = name
	s.order = slices.Clone(members)
	s.cache = cache
	return len(cache), nil
}

// SavePartition writes the resident partition's file, creating the store
// directory if needed, and then the index. It is a no-op when no partition
// is resident.
func (s *Store) SavePartition() error {
	name := s.resident
	if name == "" {
		return nil
	}

	n, err := s.savePartition(name)
	s.opts.metrics.RecordFlush(name, len(s.order), n, err)
	if err != nil {
		return err
	}
	s.opts.logger.Debug("partition flushed",
		slog.String("partition", name), slog.Int("entries", len(s.order)), slog.Int("bytes", n))
	return nil
}

func (s *Store) savePartition(name string) (int, error) {
	data, err := s.opts.codec.Marshal(s.cache)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", name, err)
	}
	if err := s.opts.fs.MkdirAll(s.dir, 0o755); err != nil {
		return 0, fmt.Errorf("create %s: %w", s.dir, err)
	}
	path := s.partitionPath(name)
	if err := fs.WriteFileAtomic(s.opts.fs, path, data); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	if err := s.index.Save(s.dir); err != nil {
		return len(data), err
	}
	return len(data), nil
}

// Get returns a copy of the vector stored for id. An id unknown to the index
// yields (nil, false, nil). If id lives outside the resident partition, the
// resident partition is flushed and the owner is paged in.
func (s *Store) Get(id string) (Vector, bool, error) {
	owner, ok := s.index.FindPartition(id)
	if !ok {
		return nil, false, nil
	}
	if owner != s.resident {
		s.opts.metrics.RecordPageSwap(s.resident, owner)
		s.opts.logger.Debug("page swap", slog.String("from", s.resident), slog.String("to", owner))
		if err := s.visit(owner); err != nil {
			return nil, false, err
		}
	}
	vec, ok := s.cache[id]
	if !ok {
		return nil, false, nil
	}
	return vec.Clone(), true, nil
}

// Entries yields the resident partition's entries in insertion order.
// Each call starts over. Yielded vectors are shared with the store and must
// not be modified.
func (s *Store) Entries() iter.Seq2[string, Vector] {
	return func(yield func(string, Vector) bool) {
		for _, id := range s.order {
			if !yield(id, s.cache[id]) {
				return
			}
		}
	}
}

// Batches chunks the resident partition's vectors into batches of size n;
// the last batch may be shorter. A non-positive n yields nothing.
func (s *Store) Batches(n int) iter.Seq[[]Vector] {
	return func(yield func([]Vector) bool) {
		if n <= 0 {
			return
		}
		for ids := range slices.Chunk(s.order, n) {
			if !yield(s.vectors(ids)) {
				return
			}
		}
	}
}

// PropagatePartition flushes the resident partition, advances the index
// pointer and loads (or initializes) the partition it now points at.
func (s *Store) PropagatePartition() error {
	if err := s.SavePartition(); err != nil {
		return err
	}
	s.resident = s.index.PropagatePartition()
	return s.LoadPartition()
}

// AddData appends entries, in order, to the last partition. A full partition
// is rolled over before the next entry is placed, and again after the last
// entry so that the following call starts on a fresh partition.
//
// The whole call is checked with Validate before any entry is inserted.
func (s *Store) AddData(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := s.Validate(entries); err != nil {
		return err
	}
	if err := s.enterLastPartition(); err != nil {
		return err
	}

	for _, e := range entries {
		if len(s.order) >= s.opts.partitionSize {
			if err := s.rollover(); err != nil {
				return err
			}
		}
		s.cache[e.ID] = e.Vector.Clone()
		s.order = append(s.order, e.ID)
		s.index.Add(e.ID)
	}
	if s.dim == 0 {
		s.dim = len(entries[0].Vector)
	}
	if len(s.order) >= s.opts.partitionSize {
		return s.rollover()
	}
	return nil
}

// Validate reports whether AddData would accept entries without inserting
// them. Ids must be non-empty and unique within entries and across every
// partition; vectors must be non-empty and match the store's dimension.
func (s *Store) Validate(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	dim := s.dim
	recorded := s.index.ids()
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			return ErrEmptyID
		}
		if len(e.Vector) == 0 {
			return fmt.Errorf("%w: %q", ErrEmptyVector, e.ID)
		}
		if dim == 0 {
			dim = len(e.Vector)
		}
		if len(e.Vector) != dim {
			return &DimensionMismatchError{ID: e.ID, Expected: dim, Actual: len(e.Vector)}
		}
		if _, dup := seen[e.ID]; dup {
			return &DuplicateIDError{ID: e.ID}
		}
		if _, dup := recorded[e.ID]; dup {
			return &DuplicateIDError{ID: e.ID}
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}

// enterLastPartition makes the write target resident: the last registered
// partition, or a freshly minted partition that has not received entries yet.
func (s *Store) enterLastPartition() error {
	last, ok := s.index.LastPartition()
	switch {
	case !ok && s.resident == "":
		return s.PropagatePartition()
	case !ok, s.resident == last:
		return nil
	case s.resident != "" && !s.index.Has(s.resident):
		return nil
	default:
		return s.visit(last)
	}
}

func (s *Store) rollover() error {
	full := s.resident
	if err := s.PropagatePartition(); err != nil {
		return err
	}
	s.opts.metrics.RecordRollover(full)
	s.opts.logger.Debug("partition rollover", slog.String("full", full), slog.String("next", s.resident))
	return nil
}

// visit flushes the resident partition and makes name resident.
func (s *Store) visit(name string) error {
	if err := s.SavePartition(); err != nil {
		return err
	}
	s.index.SetCurrentPartition(name)
	s.resident = name
	return s.LoadPartition()
}

func (s *Store) checkDimension(id string, vec Vector) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: %q", ErrEmptyVector, id)
	}
	if s.dim == 0 {
		s.dim = len(vec)
	}
	if len(vec) != s.dim {
		return &DimensionMismatchError{ID: id, Expected: s.dim, Actual: len(vec)}
	}
	return nil
}

func (s *Store) vectors(ids []string) []Vector {
	out := make([]Vector, len(ids))
	for i, id := range ids {
		out[i] = s.cache[id]
	}
	return out
}

func (s *Store) resetResident(name string) {
	s.resident = name
	s.order = nil
	s.cache = make(map[string]Vector)
}

func (s *Store) partitionPath(name string) string {
	return filepath.Join(s.dir, name)
}

// ResidentPartition returns the id of the resident partition, or "".
func (s *Store) ResidentPartition() string { return s.resident }

// ResidentSize returns the number of entries in the resident partition.
func (s *Store) ResidentSize() int { return len(s.order) }

// Index returns the store's partition index. Callers must not mutate it.
func (s *Store) Index() *Index { return s.index }

// Dir returns the directory the store is bound to.
func (s *Store) Dir() string { return s.dir }

// Dimension returns the vector length, or 0 if no vector has been seen.
func (s *Store) Dimension() int { return s.dim }

// PartitionSize returns the configured partition size bound.
func (s *Store) PartitionSize() int { return s.opts.partitionSize }

// PartitionStat describes one registered partition.
type PartitionStat struct {
	ID      string `json:"id"`
	Entries int    `json:"entries"`
}

// Stats summarizes a store without paging any partition in.
type Stats struct {
	Dir        string          `json:"dir"`
	Codec      string          `json:"codec"`
	Dimension  int             `json:"dimension"`
	Resident   string          `json:"resident"`
	Entries    int             `json:"entries"`
	Partitions []PartitionStat `json:"partitions"`
}

// Stats reports per-partition member counts from the index.
func (s *Store) Stats() Stats {
	st := Stats{
		Dir:       s.dir,
		Codec:     s.opts.codec.Name(),
		Dimension: s.dim,
		Resident:  s.resident,
	}
	for _, name := range s.index.Partitions() {
		n := len(s.index.Members(name))
		st.Partitions = append(st.Partitions, PartitionStat{ID: name, Entries: n})
		st.Entries += n
	}
	return st
}
