// Package partition implements a disk-backed embedding store that keeps
// exactly one bounded partition in memory at a time.
//
// A [Store] writes entries into numbered partitions (partition_1,
// partition_2, ...) of at most a configured size, one file per partition,
// and records which ids live in which partition in an [Index] persisted as
// partition_map.json:
//
//	{
//	    "partition_1": ["e1", "e2", "e3"],
//	    "partition_2": ["e4", "e5"]
//	}
//
// The index is ordered. Cross-partition cursors ([Store.Iterator],
// [Store.BatchIterator]) visit partitions in creation order and entries in
// insertion order, so two full traversals produce the same sequence and
// per-row results can be re-attached to ids by position via [Index.Order].
//
// Durability is best-effort: a partition file and the index are replaced
// atomically one after the other, and a crash between the two leaves the
// partition file ahead of the index. Extra entries found in a partition file
// on load are dropped.
package partition
