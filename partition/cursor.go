package partition

// traversal walks every registered partition in index order, paging each one
// in through the store. It is shared by Cursor and BatchCursor.
type traversal struct {
	s     *Store
	names []string
	next  int // index into names of the partition to visit next
	ids   []string
	pos   int // position in ids
	err   error
	done  bool
}

func newTraversal(s *Store) traversal {
	return traversal{s: s, names: s.index.Partitions()}
}

// advance pages in partitions until one with unread entries is resident.
func (t *traversal) advance() bool {
	for t.pos >= len(t.ids) {
		if t.next >= len(t.names) {
			t.done = true
			return false
		}
		if err := t.s.visit(t.names[t.next]); err != nil {
			t.err = err
			t.done = true
			return false
		}
		t.next++
		t.ids = t.s.order
		t.pos = 0
	}
	return true
}

// Cursor iterates (id, vector) pairs across every partition in traversal
// order: partition creation order, then insertion order. Before each
// partition is read the resident partition is flushed and the next one is
// loaded, so a traversal leaves the last partition resident.
//
// A Cursor is single-pass. The partition list is fixed when the cursor is
// created; the store must not be modified until the cursor is exhausted.
//
//	c := store.Iterator()
//	for c.Next() {
//		use(c.ID(), c.Vector())
//	}
//	if err := c.Err(); err != nil {
//		...
//	}
type Cursor struct {
	t   traversal
	id  string
	vec Vector
}

// Iterator returns a cursor positioned before the first entry of the first
// partition.
func (s *Store) Iterator() *Cursor {
	return &Cursor{t: newTraversal(s)}
}

// Next advances to the next entry. It returns false when the traversal is
// complete or failed; check Err to tell the two apart.
func (c *Cursor) Next() bool {
	if c.t.done || !c.t.advance() {
		c.id, c.vec = "", nil
		return false
	}
	c.id = c.t.ids[c.t.pos]
	c.vec = c.t.s.cache[c.id]
	c.t.pos++
	return true
}

// ID returns the current entry id.
func (c *Cursor) ID() string { return c.id }

// Vector returns the current vector. It is shared with the store and must
// not be modified.
func (c *Cursor) Vector() Vector { return c.vec }

// Partition returns the partition the current entry belongs to.
func (c *Cursor) Partition() string { return c.t.s.resident }

// Err returns the error that stopped the traversal, if any.
func (c *Cursor) Err() error { return c.t.err }

// BatchCursor iterates fixed-size batches of vectors across every partition
// in the same order as Cursor. Batches never span partitions: the final
// batch of each partition may be shorter than the batch size.
type BatchCursor struct {
	t     traversal
	size  int
	ids   []string
	batch []Vector
}

// BatchIterator returns a cursor over batches of at most size vectors.
// A non-positive size fails on the first Next with ErrInvalidBatchSize.
func (s *Store) BatchIterator(size int) *BatchCursor {
	c := &BatchCursor{t: newTraversal(s), size: size}
	if size <= 0 {
		c.t.err = ErrInvalidBatchSize
		c.t.done = true
	}
	return c
}

// Next advances to the next batch.
func (c *BatchCursor) Next() bool {
	if c.t.done || !c.t.advance() {
		c.ids, c.batch = nil, nil
		return false
	}
	end := min(c.t.pos+c.size, len(c.t.ids))
	c.ids = c.t.ids[c.t.pos:end:end]
	c.batch = c.t.s.vectors(c.ids)
	c.t.pos = end
	return true
}

// Batch returns the current batch. The vectors are shared with the store
// and must not be modified.
func (c *BatchCursor) Batch() []Vector { return c.batch }

// IDs returns the ids of the current batch, aligned with Batch.
func (c *BatchCursor) IDs() []string { return c.ids }

// Partition returns the partition the current batch belongs to.
func (c *BatchCursor) Partition() string { return c.t.s.resident }

// Err returns the error that stopped the traversal, if any.
func (c *BatchCursor) Err() error { return c.t.err }
