package usage

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"mmdu/config"
	"mmdu/logger"
	"mmdu/policy"
	"mmdu/utils"
)

// ErrInsertIntoLeaf marks inconsistent report data: the same path was
// reported both as a file and as a directory with children.
var ErrInsertIntoLeaf = errors.New("insert into leaf node")

// Data is the payload of one tree node. Inode is meaningful only for
// hard-linked objects (Nlink > 1).
type Data struct {
	FileSize    uint64
	KBAllocated uint64
	Nlink       uint32
	Inode       uint64
}

func dataFromEntry(e *policy.NcduEntry) Data {
	var inode uint64
	if e.Nlink > 1 {
		inode = e.Inode
	}

	return Data{
		FileSize:    e.FileSize,
		KBAllocated: e.KBAllocated,
		Nlink:       e.Nlink,
		Inode:       inode,
	}
}

func (d Data) bytes(mode config.ByteMode) uint64 {
	if mode == config.KBAllocated {
		return d.KBAllocated
	}
	return d.FileSize
}

// FSObj is one child of a tree node: a directory subtree or a leaf.
type FSObj struct {
	Dir  *FSTree // non-nil for directories
	Data Data    // leaf payload, unused for directories
}

// FSTree is the filesystem hierarchy reconstructed from unordered
// extended records. Children are keyed by their absolute path.
type FSTree struct {
	Path     string
	Data     Data
	Children map[string]*FSObj
}

func NewFSTree(root string) *FSTree {
	return &FSTree{
		Path:     filepath.Clean(root),
		Children: make(map[string]*FSObj),
	}
}

// Insert places one record into the tree. Records arrive in arbitrary
// order: a directory whose descendants arrived first already exists as
// a placeholder with default data and only gets its real data here.
func (t *FSTree) Insert(e *policy.NcduEntry) error {
	path := filepath.Clean(e.Path)
	data := dataFromEntry(e)

	if t.Path == path {
		t.Data = data
		return nil
	}

	parent := filepath.Dir(path)

	if t.Path == parent {
		if existing, ok := t.Children[path]; ok {
			if existing.Dir != nil {
				existing.Dir.Data = data
			} else {
				logger.Warnf("Discovered node %s twice, overriding data", path)
				existing.Data = data
			}
			return nil
		}

		if e.Dir() {
			subtree := NewFSTree(path)
			subtree.Data = data
			t.Children[path] = &FSObj{Dir: subtree}
		} else {
			t.Children[path] = &FSObj{Data: data}
		}
		return nil
	}

	// the record belongs to a deeper subtree; descend one component,
	// creating a placeholder directory if it is not known yet
	key := utils.TruncatePath(path, utils.PathDepth(t.Path)+1)

	child, ok := t.Children[key]
	if !ok {
		child = &FSObj{Dir: NewFSTree(key)}
		t.Children[key] = child
	}
	if child.Dir == nil {
		return fmt.Errorf("%w: %s", ErrInsertIntoLeaf, key)
	}

	return child.Dir.Insert(e)
}

// SortedChildren returns the child paths in ascending order;
// serialization and reduction depend on deterministic traversal.
func (t *FSTree) SortedChildren() []string {
	keys := make([]string, 0, len(t.Children))
	for key := range t.Children {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Walk visits the tree in pre-order: the node's own data first, then
// every child in ascending path order.
func (t *FSTree) Walk(fn func(path string, data Data)) {
	fn(t.Path, t.Data)
	for _, key := range t.SortedChildren() {
		child := t.Children[key]
		if child.Dir != nil {
			child.Dir.Walk(fn)
		} else {
			fn(key, child.Data)
		}
	}
}

// BuildTree reconstructs the filesystem hierarchy rooted at root from
// an ncdu-mode report.
func BuildTree(root string, report io.Reader) (*FSTree, error) {
	tree := NewFSTree(root)

	scanner := newLineScanner(report)
	for scanner.Scan() {
		entry, err := policy.ParseNcduEntry(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("reading policy report: %w", err)
		}

		if err := tree.Insert(&entry); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading policy report: %w", err)
	}

	return tree, nil
}
