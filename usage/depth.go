package usage

import (
	"fmt"
	"io"

	"mmdu/policy"
)

// Depth sums a du-mode report into per-directory rollups, one for each
// prefix up to maxDepth components below dir, the dir itself included.
// Every rollup deduplicates hard links within its own scope only: an
// object linked under two sibling subtrees counts once in each.
func Depth(dir string, maxDepth int, report io.Reader, countLinks bool) (map[string]Acc, error) {
	sums := newDepthSums(dir, maxDepth, countLinks)

	scanner := newLineScanner(report)
	for scanner.Scan() {
		entry, err := policy.ParseEntry(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("reading policy report: %w", err)
		}

		sums.fold(entry.Path, entry.Bytes, entry.Nlink, entry.Inode)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading policy report: %w", err)
	}

	return sums.result(), nil
}
