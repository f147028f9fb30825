package output

import (
	"fmt"
	"io"
	"path/filepath"

	"mmdu/usage"
	"mmdu/version"
)

// WriteNcdu writes the tree in the ncdu export format: a header naming
// the tool, then one nested array per directory whose first element is
// the directory itself, children following in ascending path order.
// The root carries its full absolute path, every other element only
// its final component.
func WriteNcdu(w io.Writer, tree *usage.FSTree) error {
	if _, err := fmt.Fprintf(w, `[1,2,{"progname":"mmdu","progver":"%s"}`, version.Version); err != nil {
		return err
	}

	if err := writeTree(w, tree, true); err != nil {
		return err
	}

	_, err := io.WriteString(w, "]\n")
	return err
}

func writeTree(w io.Writer, tree *usage.FSTree, root bool) error {
	name := tree.Path
	if !root {
		name = filepath.Base(tree.Path)
	}

	if _, err := fmt.Fprintf(w, ",\n[{\"name\":\"%s\"", name); err != nil {
		return err
	}
	if err := writeData(w, tree.Data); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "}"); err != nil {
		return err
	}

	for _, key := range tree.SortedChildren() {
		child := tree.Children[key]

		if child.Dir != nil {
			if err := writeTree(w, child.Dir, false); err != nil {
				return err
			}
			continue
		}

		if _, err := fmt.Fprintf(w, ",\n{\"name\":\"%s\"", filepath.Base(key)); err != nil {
			return err
		}
		if err := writeData(w, child.Data); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "}"); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "]")
	return err
}

// writeData emits the optional size attributes of one element. Zero
// sizes are omitted; the inode is only interesting for hard-linked
// objects.
func writeData(w io.Writer, data usage.Data) error {
	if data.FileSize != 0 {
		if _, err := fmt.Fprintf(w, `,"asize":%d`, data.FileSize); err != nil {
			return err
		}
	}
	if data.KBAllocated != 0 {
		if _, err := fmt.Fprintf(w, `,"dsize":%d`, data.KBAllocated*1024); err != nil {
			return err
		}
	}
	if data.Nlink > 1 {
		if _, err := fmt.Fprintf(w, `,"nlink":%d,"ino":%d`, data.Nlink, data.Inode); err != nil {
			return err
		}
	}
	return nil
}
