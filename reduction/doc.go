// Package reduction fits dimensionality-reduction models over a partitioned
// store without holding the whole dataset in memory.
//
// A [Streaming] reducer makes two full traversals of a store through its
// batch cursor: a fit pass that feeds every batch to [Model.PartialFit], and
// a transform pass that maps every batch through [Model.Transform] and stacks
// the results. Both passes walk the store in the same order, so row k of the
// output belongs to the k-th id of the store's index order.
//
//	r := reduction.NewStreaming(reduction.NewIncrementalPCA(2))
//	coords, err := r.FitTransform(store)
//
// [IncrementalPCA] is the streaming model. [PCA] fits in one shot and is
// meant for data that fits in memory.
package reduction
