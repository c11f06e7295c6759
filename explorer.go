package spagbol

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/spagbol-team/spagbol/internal/queue"
	"github.com/spagbol-team/spagbol/partition"
	"github.com/spagbol-team/spagbol/reduction"
	"github.com/spagbol-team/spagbol/similarity"
)

// Column names an embedded field of a dataset row.
type Column string

const (
	ColumnInput  Column = "input"
	ColumnOutput Column = "output"
)

// Columns lists every column in a fixed order.
var Columns = []Column{ColumnInput, ColumnOutput}

// Method selects a reduction algorithm.
type Method string

const (
	MethodIncremental Method = "incremental"
	MethodPCA         Method = "pca"
)

// Row is one dataset row's embeddings. A nil vector leaves the row out of
// that column.
type Row struct {
	ID     string
	Input  partition.Vector
	Output partition.Vector
}

func (r Row) vector(c Column) partition.Vector {
	if c == ColumnOutput {
		return r.Output
	}
	return r.Input
}

// Projection is a row's 2-D coordinate in a column's reduced space.
type Projection struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Match is one similarity search result.
type Match struct {
	ID    string  `json:"id"`
	Score float32 `json:"score"`
}

type column struct {
	name   Column
	store  *partition.Store
	fitted reduction.Model
	log    *Logger
}

// Explorer keeps one partitioned store per column under a data directory
// (dir/input, dir/output) and projects each column to two dimensions.
//
// Explorer is not safe for concurrent use. ProjectAll runs columns in
// parallel internally; each column's store is touched by one goroutine.
type Explorer struct {
	dir     string
	opts    options
	columns map[Column]*column
}

// Open opens (or prepares) the column stores under dir.
func Open(dir string, optFns ...Option) (*Explorer, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	if o.method != MethodIncremental && o.method != MethodPCA {
		return nil, &ErrUnknownMethod{Method: o.method}
	}

	e := &Explorer{dir: dir, opts: o, columns: make(map[Column]*column, len(Columns))}
	for _, name := range Columns {
		log := o.logger.WithDir(dir).WithColumn(name)
		store, err := partition.Open(filepath.Join(dir, string(name)),
			partition.WithPartitionSize(o.partitionSize),
			partition.WithCodec(o.codec),
			partition.WithLogger(log.Logger),
			partition.WithMetricsCollector(o.metrics),
		)
		if err != nil {
			return nil, fmt.Errorf("open %s column: %w", name, err)
		}
		e.columns[name] = &column{name: name, store: store, log: log}
	}
	return e, nil
}

// Dir returns the data directory.
func (e *Explorer) Dir() string { return e.dir }

// Store returns the partitioned store backing column.
func (e *Explorer) Store(c Column) (*partition.Store, error) {
	col, err := e.column(c)
	if err != nil {
		return nil, err
	}
	return col.store, nil
}

// Ingest appends rows to the column stores, preserving row order. Every
// column's entries are validated before any column is written, so a rejected
// batch leaves all stores unchanged.
func (e *Explorer) Ingest(ctx context.Context, rows []Row) (err error) {
	defer func() { e.opts.logger.LogIngest(ctx, len(rows), err) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range rows {
		if r.Input == nil && r.Output == nil {
			return fmt.Errorf("%w: %q", ErrEmptyRow, r.ID)
		}
	}
	batches := make([][]partition.Entry, len(Columns))
	for i, name := range Columns {
		for _, r := range rows {
			if vec := r.vector(name); vec != nil {
				batches[i] = append(batches[i], partition.Entry{ID: r.ID, Vector: vec})
			}
		}
		if err := e.columns[name].store.Validate(batches[i]); err != nil {
			return fmt.Errorf("ingest %s: %w", name, err)
		}
	}
	for i, name := range Columns {
		if err := e.columns[name].store.AddData(batches[i]); err != nil {
			return fmt.Errorf("ingest %s: %w", name, err)
		}
	}
	return nil
}

// Flush writes every column's resident partition and index.
func (e *Explorer) Flush() error {
	for _, name := range Columns {
		if err := e.columns[name].store.SavePartition(); err != nil {
			return fmt.Errorf("flush %s: %w", name, err)
		}
	}
	return nil
}

// Get returns the vector stored for id in column c.
func (e *Explorer) Get(c Column, id string) (partition.Vector, bool, error) {
	col, err := e.column(c)
	if err != nil {
		return nil, false, err
	}
	return col.store.Get(id)
}

// Project reduces column c to two dimensions and returns one projection per
// entry in traversal order. A new model is fit on every call; the fitted
// model is kept for Transform.
func (e *Explorer) Project(ctx context.Context, c Column) (out []Projection, err error) {
	col, err := e.column(c)
	if err != nil {
		return nil, err
	}
	defer func() { e.opts.logger.LogProjection(ctx, c, e.opts.method, len(out), err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		coords *mat.Dense
		ids    []string
		model  reduction.Model
	)
	switch e.opts.method {
	case MethodPCA:
		coords, ids, model, err = e.projectInMemory(col)
	default:
		coords, ids, model, err = e.projectStreaming(col)
	}
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", c, err)
	}

	rows, _ := coords.Dims()
	if rows != len(ids) {
		return nil, &ErrMisaligned{Column: c, Rows: rows, IDs: len(ids)}
	}
	out = make([]Projection, rows)
	for k := range out {
		out[k] = Projection{ID: ids[k], X: coords.At(k, 0), Y: coords.At(k, 1)}
	}
	col.fitted = model
	return out, nil
}

func (e *Explorer) projectStreaming(col *column) (*mat.Dense, []string, reduction.Model, error) {
	r := reduction.NewStreaming(reduction.NewIncrementalPCA(2),
		reduction.WithBatchSize(e.opts.batchSize),
		reduction.WithLogger(col.log.Logger),
	)
	coords, err := r.FitTransform(col.store)
	if err != nil {
		return nil, nil, nil, err
	}
	return coords, col.store.Index().Order(), r.Model(), nil
}

func (e *Explorer) projectInMemory(col *column) (*mat.Dense, []string, reduction.Model, error) {
	var (
		ids     []string
		vectors []partition.Vector
	)
	c := col.store.Iterator()
	for c.Next() {
		ids = append(ids, c.ID())
		vectors = append(vectors, c.Vector())
	}
	if err := c.Err(); err != nil {
		return nil, nil, nil, err
	}
	if len(vectors) == 0 {
		return nil, nil, nil, reduction.ErrNoData
	}

	x, err := reduction.Matrix(vectors)
	if err != nil {
		return nil, nil, nil, err
	}
	pca := reduction.NewPCA(2)
	coords, err := pca.FitTransform(x)
	if err != nil {
		return nil, nil, nil, err
	}
	return coords, ids, pca, nil
}

// ProjectAll projects every non-empty column concurrently.
func (e *Explorer) ProjectAll(ctx context.Context) (map[Column][]Projection, error) {
	results := make([][]Projection, len(Columns))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range Columns {
		if e.columns[name].store.Index().Count() == 0 {
			continue
		}
		g.Go(func() error {
			out, err := e.Project(gctx, name)
			results[i] = out
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make(map[Column][]Projection)
	for i, name := range Columns {
		if results[i] != nil {
			all[name] = results[i]
		}
	}
	return all, nil
}

// Transform maps vectors through the model fitted by the last successful
// Project of column c.
func (e *Explorer) Transform(c Column, vectors []partition.Vector) (*mat.Dense, error) {
	col, err := e.column(c)
	if err != nil {
		return nil, err
	}
	if col.fitted == nil {
		return nil, reduction.ErrUnfitModel
	}
	x, err := reduction.Matrix(vectors)
	if err != nil {
		return nil, err
	}
	return col.fitted.Transform(x)
}

// Similar returns the k entries of column c most similar to id under m,
// best first. id itself is excluded. Ties keep traversal order.
func (e *Explorer) Similar(ctx context.Context, c Column, id string, k int, m similarity.Measure) (out []Match, err error) {
	col, err := e.column(c)
	if err != nil {
		return nil, err
	}
	defer func() { e.opts.logger.LogSimilar(ctx, c, id, k, len(out), err) }()

	if k <= 0 {
		return nil, ErrInvalidK
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q, ok, err := col.store.Get(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrNotFound, id, c)
	}

	top := queue.NewTopK(k)
	seq := 0
	cur := col.store.BatchIterator(e.opts.batchSize)
	for cur.Next() {
		scores, err := similarity.ComputeBatch(m, q, cur.Batch())
		if err != nil {
			return nil, err
		}
		for i, other := range cur.IDs() {
			if other != id {
				top.Push(queue.Item{ID: other, Score: scores[i], Seq: seq})
			}
			seq++
		}
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	items := top.Sorted()
	out = make([]Match, len(items))
	for i, it := range items {
		out[i] = Match{ID: it.ID, Score: it.Score}
	}
	return out, nil
}

func (e *Explorer) column(c Column) (*column, error) {
	col, ok := e.columns[c]
	if !ok {
		return nil, &ErrUnknownColumn{Column: c}
	}
	return col, nil
}
