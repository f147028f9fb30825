package usage

import "mmdu/utils"

// Acc accumulates the disk usage of one point of interest: the number
// of accounted objects and their byte total.
type Acc struct {
	Inodes uint64
	Bytes  uint64
}

func (a *Acc) add(bytes uint64) {
	a.Inodes++
	a.Bytes += bytes
}

// totalAcc is the whole-scope accumulator: one occurrence map covers
// the entire pass, so each hard-linked object counts once overall.
type totalAcc struct {
	acc        Acc
	hardLinks  map[uint64]uint64
	countLinks bool
}

func newTotalAcc(countLinks bool) *totalAcc {
	return &totalAcc{
		hardLinks:  make(map[uint64]uint64),
		countLinks: countLinks,
	}
}

func (t *totalAcc) fold(bytes uint64, nlink uint32, inode uint64) {
	if t.countLinks || nlink <= 1 {
		t.acc.add(bytes)
		return
	}

	t.hardLinks[inode]++
	if t.hardLinks[inode] == 1 {
		t.acc.add(bytes)
	}
}

// depthAcc is the rollup of a single directory prefix. Its occurrence
// map is scoped to that prefix alone: the same hard-linked object is
// counted once per prefix it appears under, never twice within one.
type depthAcc struct {
	acc       Acc
	hardLinks map[uint64]uint64
}

// depthSums maps every prefix up to maxDepth components below dir to
// its own rollup.
type depthSums struct {
	dir         string
	maxDepth    int
	prefixDepth int
	countLinks  bool
	sums        map[string]*depthAcc
}

func newDepthSums(dir string, maxDepth int, countLinks bool) *depthSums {
	return &depthSums{
		dir:         dir,
		maxDepth:    maxDepth,
		prefixDepth: utils.PathDepth(dir),
		countLinks:  countLinks,
		sums:        make(map[string]*depthAcc),
	}
}

func (d *depthSums) fold(path string, bytes uint64, nlink uint32, inode uint64) {
	suffixDepth := utils.PathDepth(path) - d.prefixDepth
	if suffixDepth < 0 {
		return
	}

	limit := d.maxDepth
	if suffixDepth < limit {
		limit = suffixDepth
	}

	for k := 0; k <= limit; k++ {
		prefix := utils.TruncatePath(path, d.prefixDepth+k)

		v, ok := d.sums[prefix]
		if !ok {
			v = &depthAcc{hardLinks: make(map[uint64]uint64)}
			d.sums[prefix] = v
		}

		if d.countLinks || nlink <= 1 {
			v.acc.add(bytes)
			continue
		}

		v.hardLinks[inode]++
		if v.hardLinks[inode] == 1 {
			v.acc.add(bytes)
		}
	}
}

// result extracts the surviving rollups. Prefixes with a single entry
// are bare files or empty directories and are dropped: a real directory
// accumulates itself plus at least one descendant.
func (d *depthSums) result() map[string]Acc {
	result := make(map[string]Acc, len(d.sums))
	for prefix, v := range d.sums {
		if v.acc.Inodes > 1 {
			result[prefix] = v.acc
		}
	}
	return result
}
