package output

import (
	"bytes"
	"fmt"
	"testing"

	"mmdu/usage"
	"mmdu/version"
)

func header() string {
	return fmt.Sprintf(`[1,2,{"progname":"mmdu","progver":"%s"}`, version.Version)
}

func TestWriteNcduEmpty(t *testing.T) {
	tree := usage.NewFSTree("/data/test")
	tree.Data = usage.Data{FileSize: 4096, Nlink: 1}

	var buf bytes.Buffer
	if err := WriteNcdu(&buf, tree); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := header() + ",\n" +
		`[{"name":"/data/test","asize":4096}]]` + "\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", buf.String(), want)
	}
}

func TestWriteNcduFlat(t *testing.T) {
	tree := usage.NewFSTree("/data/test")
	tree.Data = usage.Data{FileSize: 4096, Nlink: 1, Inode: 1}
	tree.Children["/data/test/bar"] = &usage.FSObj{Data: usage.Data{FileSize: 1024, Nlink: 2, Inode: 2}}
	tree.Children["/data/test/foo"] = &usage.FSObj{Data: usage.Data{FileSize: 1024, Nlink: 2, Inode: 2}}

	var buf bytes.Buffer
	if err := WriteNcdu(&buf, tree); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := header() + ",\n" +
		`[{"name":"/data/test","asize":4096},` + "\n" +
		`{"name":"bar","asize":1024,"nlink":2,"ino":2},` + "\n" +
		`{"name":"foo","asize":1024,"nlink":2,"ino":2}]]` + "\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", buf.String(), want)
	}
}

func TestWriteNcduNested(t *testing.T) {
	linked := usage.Data{FileSize: 1024, Nlink: 4, Inode: 1}

	a := usage.NewFSTree("/data/test/a")
	a.Data = usage.Data{FileSize: 4096, Nlink: 1}
	a.Children["/data/test/a/baz"] = &usage.FSObj{Data: usage.Data{FileSize: 1024, Nlink: 1}}
	a.Children["/data/test/a/foo"] = &usage.FSObj{Data: linked}

	b := usage.NewFSTree("/data/test/b")
	b.Data = usage.Data{FileSize: 4096, Nlink: 1}
	b.Children["/data/test/b/bar"] = &usage.FSObj{Data: linked}

	tree := usage.NewFSTree("/data/test")
	tree.Data = usage.Data{FileSize: 4096, Nlink: 1}
	tree.Children["/data/test/a"] = &usage.FSObj{Dir: a}
	tree.Children["/data/test/b"] = &usage.FSObj{Dir: b}
	tree.Children["/data/test/bar"] = &usage.FSObj{Data: linked}
	tree.Children["/data/test/foo"] = &usage.FSObj{Data: linked}

	var buf bytes.Buffer
	if err := WriteNcdu(&buf, tree); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := header() + ",\n" +
		`[{"name":"/data/test","asize":4096},` + "\n" +
		`[{"name":"a","asize":4096},` + "\n" +
		`{"name":"baz","asize":1024},` + "\n" +
		`{"name":"foo","asize":1024,"nlink":4,"ino":1}],` + "\n" +
		`[{"name":"b","asize":4096},` + "\n" +
		`{"name":"bar","asize":1024,"nlink":4,"ino":1}],` + "\n" +
		`{"name":"bar","asize":1024,"nlink":4,"ino":1},` + "\n" +
		`{"name":"foo","asize":1024,"nlink":4,"ino":1}]]` + "\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", buf.String(), want)
	}
}

func TestWriteNcduDsize(t *testing.T) {
	tree := usage.NewFSTree("/data/test")
	tree.Data = usage.Data{FileSize: 4096, KBAllocated: 8, Nlink: 1}

	var buf bytes.Buffer
	if err := WriteNcdu(&buf, tree); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := header() + ",\n" +
		`[{"name":"/data/test","asize":4096,"dsize":8192}]]` + "\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", buf.String(), want)
	}
}
