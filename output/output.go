package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"mmdu/config"
	"mmdu/usage"
)

// WriteDu writes per-directory rollups as tab-separated rows in
// ascending prefix order. The fields depend on the configured count
// mode; byte counts are humanized.
func WriteDu(w io.Writer, sums map[string]usage.Acc, cfg *config.Config) error {
	dirs := make([]string, 0, len(sums))
	for dir := range sums {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		acc := sums[dir]
		humanized := humanizeBytes(acc.Bytes, cfg.ByteMode)

		var err error
		switch cfg.CountMode {
		case config.CountBoth:
			_, err = fmt.Fprintf(w, "%s\t%d\t%s\n", humanized, acc.Inodes, dir)
		case config.CountInodes:
			_, err = fmt.Fprintf(w, "%d\t%s\n", acc.Inodes, dir)
		default:
			_, err = fmt.Fprintf(w, "%s\t%s\n", humanized, dir)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// humanizeBytes renders a byte count in short IEC form, "4.0K" style.
// In allocation mode the accumulated value is in KiB units.
func humanizeBytes(value uint64, mode config.ByteMode) string {
	if mode == config.KBAllocated {
		value *= 1024
	}

	s := humanize.IBytes(value)
	s = strings.ReplaceAll(s, "iB", "")
	s = strings.ReplaceAll(s, " ", "")
	return strings.ToUpper(s)
}

// CreateReport creates a report file with the given name inside dir.
func CreateReport(dir, name string) (*os.File, error) {
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("creating report %s: %w", path, err)
	}
	return f, nil
}

// Buffered wraps a report writer and returns a flush function to call
// once all rows are written.
func Buffered(w io.Writer) (*bufio.Writer, func() error) {
	buf := bufio.NewWriterSize(w, 64*1024)
	return buf, buf.Flush
}
