package usage

import (
	"bufio"
	"fmt"
	"io"

	"mmdu/policy"
)

// maxLineSize bounds a single report line; paths on large filesystems
// can get long, report fields cannot.
const maxLineSize = 1024 * 1024

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return scanner
}

// Total sums a whole du-mode report into one accumulator. With
// countLinks every record counts in full; otherwise hard-linked
// objects count only on the first occurrence of their inode.
func Total(report io.Reader, countLinks bool) (Acc, error) {
	sum := newTotalAcc(countLinks)

	scanner := newLineScanner(report)
	for scanner.Scan() {
		entry, err := policy.ParseEntry(scanner.Text())
		if err != nil {
			return Acc{}, fmt.Errorf("reading policy report: %w", err)
		}

		sum.fold(entry.Bytes, entry.Nlink, entry.Inode)
	}
	if err := scanner.Err(); err != nil {
		return Acc{}, fmt.Errorf("reading policy report: %w", err)
	}

	return sum.acc, nil
}
