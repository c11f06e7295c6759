// Package fs provides the filesystem seam used by the partition store.
//
// Production code uses fs.Default ([LocalFS]). Tests inject [FaultyFS] to
// make writes, syncs or renames fail against chosen file names:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("partition_map.json", fs.Fault{FailOnRename: true})
//
// [WriteFileAtomic] is the only way the store replaces a file: data goes to
// "<name>.tmp", is synced, and is renamed over the target, so a crash leaves
// either the previous or the next version on disk.
//
// Operations take no context.Context. Local filesystem calls are short and
// cannot be interrupted at the syscall level.
package fs
