package usage

import "mmdu/config"

// Total folds the whole tree into one accumulator, with the hard-link
// occurrence map scoped to the entire walk. The numbers match running
// the flat total accumulator over the same records.
func (t *FSTree) Total(mode config.ByteMode, countLinks bool) Acc {
	sum := newTotalAcc(countLinks)
	t.Walk(func(_ string, data Data) {
		sum.fold(data.bytes(mode), data.Nlink, data.Inode)
	})
	return sum.acc
}

// Depth folds the tree into per-directory rollups with per-prefix
// hard-link scoping, matching the flat depth accumulator over the same
// records, including the drop of single-entry prefixes.
func (t *FSTree) Depth(maxDepth int, mode config.ByteMode, countLinks bool) map[string]Acc {
	sums := newDepthSums(t.Path, maxDepth, countLinks)
	t.Walk(func(path string, data Data) {
		sums.fold(path, data.bytes(mode), data.Nlink, data.Inode)
	})
	return sums.result()
}
