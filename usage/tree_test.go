package usage

import (
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"mmdu/logger"
	"mmdu/policy"
)

// ncduLines mimics an ncdu-mode policy report: inode, generation,
// snapshot id, mode, nlink, file size, kb allocated -- path. Children
// of /data/test/b arrive before the directory itself.
var ncduLines = []string{
	"1 0 0  drwx------ 1 4096 0 -- /data/test",
	"2 0 0  drwxr-xr-x 1 4096 0 -- /data/test/a",
	"3 0 0  -rw-r--r-- 1 1024 0 -- /data/test/a/baz",
	"4 0 0  -rw-r--r-- 4 1024 0 -- /data/test/bar",
	"4 0 0  -rw-r--r-- 4 1024 0 -- /data/test/foo",
	"4 0 0  -rw-r--r-- 4 1024 0 -- /data/test/a/foo",
	"4 0 0  -rw-r--r-- 4 1024 0 -- /data/test/b/bar",
	"5 0 0  drwxr-xr-x 1 4096 0 -- /data/test/b",
}

func ncduReport(lines []string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func expectedTree() *FSTree {
	dirData := Data{FileSize: 4096, Nlink: 1}
	linked := Data{FileSize: 1024, Nlink: 4, Inode: 4}

	a := NewFSTree("/data/test/a")
	a.Data = dirData
	a.Children["/data/test/a/baz"] = &FSObj{Data: Data{FileSize: 1024, Nlink: 1}}
	a.Children["/data/test/a/foo"] = &FSObj{Data: linked}

	b := NewFSTree("/data/test/b")
	b.Data = dirData
	b.Children["/data/test/b/bar"] = &FSObj{Data: linked}

	root := NewFSTree("/data/test")
	root.Data = dirData
	root.Children["/data/test/a"] = &FSObj{Dir: a}
	root.Children["/data/test/b"] = &FSObj{Dir: b}
	root.Children["/data/test/bar"] = &FSObj{Data: linked}
	root.Children["/data/test/foo"] = &FSObj{Data: linked}

	return root
}

func TestBuildTree(t *testing.T) {
	logger.Init("error")

	tree, err := BuildTree("/data/test", ncduReport(ncduLines))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if !reflect.DeepEqual(tree, expectedTree()) {
		t.Fatalf("unexpected tree:\n got %+v\nwant %+v", tree, expectedTree())
	}
}

func TestBuildTreeOrderIndependence(t *testing.T) {
	logger.Init("error")

	want := expectedTree()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 20; i++ {
		lines := append([]string(nil), ncduLines...)
		rng.Shuffle(len(lines), func(a, b int) {
			lines[a], lines[b] = lines[b], lines[a]
		})

		tree, err := BuildTree("/data/test", ncduReport(lines))
		if err != nil {
			t.Fatalf("build (permutation %d): %v", i, err)
		}
		if !reflect.DeepEqual(tree, want) {
			t.Fatalf("permutation %d produced a different tree:\n%v", i, lines)
		}
	}
}

func TestBuildTreePlaceholderOverwritten(t *testing.T) {
	logger.Init("error")

	tree := NewFSTree("/data/test")

	leaf, err := policy.ParseNcduEntry("3 0 0  -rw-r--r-- 1 1024 0 -- /data/test/a/baz")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := tree.Insert(&leaf); err != nil {
		t.Fatalf("insert: %v", err)
	}

	a := tree.Children["/data/test/a"]
	if a == nil || a.Dir == nil {
		t.Fatal("expected placeholder directory for /data/test/a")
	}
	if a.Dir.Data != (Data{}) {
		t.Fatalf("placeholder should carry default data, got %+v", a.Dir.Data)
	}

	dir, err := policy.ParseNcduEntry("2 0 0  drwxr-xr-x 1 4096 0 -- /data/test/a")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := tree.Insert(&dir); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if a.Dir.Data != (Data{FileSize: 4096, Nlink: 1}) {
		t.Fatalf("placeholder not overwritten, got %+v", a.Dir.Data)
	}
	if a.Dir.Children["/data/test/a/baz"] == nil {
		t.Fatal("placeholder lost its children")
	}
}

func TestBuildTreeRootDataArrivesLate(t *testing.T) {
	logger.Init("error")

	tree := NewFSTree("/data/test")

	root, err := policy.ParseNcduEntry("1 0 0  drwx------ 1 4096 0 -- /data/test")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := tree.Insert(&root); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if tree.Data != (Data{FileSize: 4096, Nlink: 1}) {
		t.Fatalf("root data not updated: %+v", tree.Data)
	}
}

func TestInsertIntoLeaf(t *testing.T) {
	logger.Init("error")

	lines := []string{
		"1 0 0  drwx------ 1 4096 0 -- /data/test",
		"2 0 0  -rw-r--r-- 1 1024 0 -- /data/test/x",
		"3 0 0  -rw-r--r-- 1 1024 0 -- /data/test/x/y",
	}

	_, err := BuildTree("/data/test", ncduReport(lines))
	if !errors.Is(err, ErrInsertIntoLeaf) {
		t.Fatalf("got %v, want ErrInsertIntoLeaf", err)
	}
}

func TestBuildTreeLeafRediscovery(t *testing.T) {
	logger.Init("error")

	lines := []string{
		"1 0 0  drwx------ 1 4096 0 -- /data/test",
		"2 0 0  -rw-r--r-- 1 1024 0 -- /data/test/x",
		"2 0 0  -rw-r--r-- 1 2048 0 -- /data/test/x",
	}

	tree, err := BuildTree("/data/test", ncduReport(lines))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	x := tree.Children["/data/test/x"]
	if x == nil || x.Dir != nil {
		t.Fatal("expected leaf /data/test/x")
	}
	if x.Data.FileSize != 2048 {
		t.Fatalf("last record should win, got %+v", x.Data)
	}
}

func TestBuildTreeEmptyReport(t *testing.T) {
	tree, err := BuildTree("/data/test", strings.NewReader(""))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if tree.Path != "/data/test" || len(tree.Children) != 0 || tree.Data != (Data{}) {
		t.Fatalf("unexpected tree: %+v", tree)
	}
}
