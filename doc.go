// Package spagbol is the storage and reduction core of a dataset explorer.
//
// Rows of a dataset carry two embeddings, one per [Column]. An [Explorer]
// writes each column into its own partitioned, disk-backed store (package
// partition), which keeps a single bounded partition in memory at a time, and
// projects a column to 2-D coordinates with a two-pass streaming PCA (package
// reduction) without loading the column at once.
//
// # Quick Start
//
//	ex, _ := spagbol.Open("./data", spagbol.WithPartitionSize(1000))
//	_ = ex.Ingest(ctx, []spagbol.Row{
//	    {ID: "r1", Input: in1, Output: out1},
//	    {ID: "r2", Input: in2, Output: out2},
//	})
//	_ = ex.Flush()
//
//	points, _ := ex.Project(ctx, spagbol.ColumnInput)
//	for _, p := range points {
//	    fmt.Println(p.ID, p.X, p.Y)
//	}
//
// Projections are returned in the store's traversal order (partition
// creation order, then insertion order), which is also the order rows were
// ingested.
//
// # Similarity
//
//	matches, _ := ex.Similar(ctx, spagbol.ColumnOutput, "r1", 10, similarity.Cosine{})
//
// # Durability
//
// Nothing is guaranteed on disk until Flush returns. Stores are not safe for
// concurrent use; the spagbol CLI serializes processes with a lock file in
// the data directory.
package spagbol
