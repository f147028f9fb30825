package policy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Separator divides the metadata fields of a policy report line from
// the path. The same byte sequence may also occur inside the path.
const Separator = " -- "

// ErrMalformedRecord marks a report line that does not match the record
// grammar at all: no separator, or no separator position that leaves
// the expected number of metadata fields.
var ErrMalformedRecord = errors.New("malformed policy report record")

// FieldError reports a metadata field that failed numeric parsing.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("parsing field %s from %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Entry is one record of a du-mode policy report. Bytes holds whatever
// byte attribute the policy showed, FILE_SIZE or KB_ALLOCATED.
type Entry struct {
	Inode      uint64
	Generation uint64
	SnapshotID uint64
	Bytes      uint64
	Nlink      uint32
	Path       string
}

// NcduEntry is one record of an ncdu-mode policy report. It carries
// both byte attributes; the configured byte mode selects which one is
// accounted.
type NcduEntry struct {
	Inode       uint64
	Generation  uint64
	SnapshotID  uint64
	Mode        string
	Nlink       uint32
	FileSize    uint64
	KBAllocated uint64
	Path        string
}

// Dir reports whether the entry describes a directory.
func (e *NcduEntry) Dir() bool {
	return strings.HasPrefix(e.Mode, "d")
}

// splitRecord divides a report line into its metadata fields and the
// path. The path may contain the separator sequence itself, so the
// split is accepted at the first separator occurrence that leaves
// exactly nfields metadata fields on the left.
func splitRecord(line string, nfields int) ([]string, string, error) {
	offset := 0
	for {
		i := strings.Index(line[offset:], Separator)
		if i < 0 {
			return nil, "", fmt.Errorf("%w: %q", ErrMalformedRecord, line)
		}

		end := offset + i
		fields := strings.Fields(line[:end])
		if len(fields) == nfields {
			return fields, line[end+len(Separator):], nil
		}
		if len(fields) > nfields {
			// moving the split further right only adds fields
			return nil, "", fmt.Errorf("%w: %q", ErrMalformedRecord, line)
		}

		offset = end + len(Separator)
	}
}

func parseUintField(name, value string, bits int) (uint64, error) {
	n, err := strconv.ParseUint(value, 10, bits)
	if err != nil {
		return 0, &FieldError{Field: name, Value: value, Err: err}
	}
	return n, nil
}

// ParseEntry parses one du-mode report line: inode, generation,
// snapshot id, bytes, and nlink, separated from the path by " -- ".
func ParseEntry(line string) (Entry, error) {
	fields, path, err := splitRecord(line, 5)
	if err != nil {
		return Entry{}, err
	}

	var e Entry
	e.Path = path

	if e.Inode, err = parseUintField("inode", fields[0], 64); err != nil {
		return Entry{}, err
	}
	if e.Generation, err = parseUintField("generation", fields[1], 64); err != nil {
		return Entry{}, err
	}
	if e.SnapshotID, err = parseUintField("snapshot id", fields[2], 64); err != nil {
		return Entry{}, err
	}
	if e.Bytes, err = parseUintField("bytes", fields[3], 64); err != nil {
		return Entry{}, err
	}
	nlink, err := parseUintField("nlink", fields[4], 32)
	if err != nil {
		return Entry{}, err
	}
	e.Nlink = uint32(nlink)

	return e, nil
}

// ParseNcduEntry parses one ncdu-mode report line: inode, generation,
// snapshot id, mode, nlink, file size, and kb allocated, separated from
// the path by " -- ".
func ParseNcduEntry(line string) (NcduEntry, error) {
	fields, path, err := splitRecord(line, 7)
	if err != nil {
		return NcduEntry{}, err
	}

	var e NcduEntry
	e.Path = path
	e.Mode = fields[3]

	if e.Inode, err = parseUintField("inode", fields[0], 64); err != nil {
		return NcduEntry{}, err
	}
	if e.Generation, err = parseUintField("generation", fields[1], 64); err != nil {
		return NcduEntry{}, err
	}
	if e.SnapshotID, err = parseUintField("snapshot id", fields[2], 64); err != nil {
		return NcduEntry{}, err
	}
	nlink, err := parseUintField("nlink", fields[4], 32)
	if err != nil {
		return NcduEntry{}, err
	}
	e.Nlink = uint32(nlink)
	if e.FileSize, err = parseUintField("file size", fields[5], 64); err != nil {
		return NcduEntry{}, err
	}
	if e.KBAllocated, err = parseUintField("kb allocated", fields[6], 64); err != nil {
		return NcduEntry{}, err
	}

	return e, nil
}
