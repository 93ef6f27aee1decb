package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/odvcencio/twig/pkg/object"
)

func initTestRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r
}

func writeWorktreeFile(t *testing.T, r *Repo, name, content string) {
	t.Helper()
	p := filepath.Join(r.RootDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestBuildTree_SingleFile(t *testing.T) {
	r := initTestRepo(t)
	h, err := r.BuildTree(fstest.MapFS{
		"a.txt": {Data: []byte("x")},
	})
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if h != "9375a50d54bf5374615a3378349e298761a4b116" {
		t.Errorf("tree hash = %s", h)
	}

	entries, err := r.ListTree(h)
	if err != nil {
		t.Fatalf("ListTree: %v", err)
	}
	want := []object.TreeEntry{{
		Mode: object.TreeModeFile,
		Name: "a.txt",
		Hash: object.HashBytes([]byte("blob 1\x00x")),
	}}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteTree_MatchesGit(t *testing.T) {
	r := initTestRepo(t)
	writeWorktreeFile(t, r, "a.txt", "x")
	writeWorktreeFile(t, r, "b", "z")
	writeWorktreeFile(t, r, "sub/b.txt", "y\n")

	h, err := r.WriteTree()
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	// git write-tree over the same three files
	if h != "8d6170eaa6e619c5eebd6b56af6fd93c5e6dfd75" {
		t.Errorf("WriteTree = %s", h)
	}
}

func TestWriteTree_SkipsMetadataDir(t *testing.T) {
	r := initTestRepo(t)
	writeWorktreeFile(t, r, "a.txt", "x")
	if _, err := r.HashBlob([]byte("stored object"), true); err != nil {
		t.Fatalf("HashBlob: %v", err)
	}

	h, err := r.WriteTree()
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	names, err := r.ListTreeNames(h)
	if err != nil {
		t.Fatalf("ListTreeNames: %v", err)
	}
	if diff := cmp.Diff([]string{"a.txt"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTree_MetadataSkippedOnlyAtRoot(t *testing.T) {
	r := initTestRepo(t)
	h, err := r.BuildTree(fstest.MapFS{
		".git/HEAD":        {Data: []byte("ref: refs/heads/main\n")},
		"a.txt":            {Data: []byte("x")},
		"vendor/.git/HEAD": {Data: []byte("nested\n")},
		"sub/.git":         {Data: []byte("gitdir: ../elsewhere\n")},
	})
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	files, err := r.FlattenTree(h)
	if err != nil {
		t.Fatalf("FlattenTree: %v", err)
	}
	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	if diff := cmp.Diff([]string{"a.txt", "sub/.git", "vendor/.git/HEAD"}, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTree_KeepsRootFileNamedMeta(t *testing.T) {
	r := initTestRepo(t)
	h, err := r.BuildTree(fstest.MapFS{
		".git":  {Data: []byte("gitdir: ../main/.git/worktrees/w\n")},
		"a.txt": {Data: []byte("x")},
	})
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	names, err := r.ListTreeNames(h)
	if err != nil {
		t.Fatalf("ListTreeNames: %v", err)
	}
	if diff := cmp.Diff([]string{".git", "a.txt"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTree_Deterministic(t *testing.T) {
	r := initTestRepo(t)
	writeWorktreeFile(t, r, "z.txt", "last")
	writeWorktreeFile(t, r, "A.txt", "upper")
	writeWorktreeFile(t, r, "dir/inner/deep.txt", "deep")
	writeWorktreeFile(t, r, "dir.txt", "sibling")

	h1, err := r.WriteTree()
	if err != nil {
		t.Fatalf("WriteTree 1: %v", err)
	}
	h2, err := r.WriteTree()
	if err != nil {
		t.Fatalf("WriteTree 2: %v", err)
	}
	if h1 != h2 {
		t.Errorf("WriteTree not deterministic: %s vs %s", h1, h2)
	}

	entries, err := r.ListTree(h1)
	if err != nil {
		t.Fatalf("ListTree: %v", err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Name)
	}
	// Byte-wise: upper case sorts first, "dir" before "dir.txt".
	want := []string{"A.txt", "dir", "dir.txt", "z.txt"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stored order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTree_ChangesWithContent(t *testing.T) {
	r := initTestRepo(t)
	writeWorktreeFile(t, r, "a.txt", "one")
	h1, err := r.WriteTree()
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	writeWorktreeFile(t, r, "a.txt", "two")
	h2, err := r.WriteTree()
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	if h1 == h2 {
		t.Error("tree hash did not change with file content")
	}
}

func TestBuildTree_EveryEntryResolves(t *testing.T) {
	r := initTestRepo(t)
	h, err := r.BuildTree(fstest.MapFS{
		"README":           {Data: []byte("readme\n")},
		"pkg/a.go":         {Data: []byte("package a\n")},
		"pkg/b/b.go":       {Data: []byte("package b\n")},
		"pkg/b/testdata/x": {Data: []byte{0, 1, 2}},
		"docs/guide.md":    {Data: []byte("# guide\n")},
		"empty":            {Mode: fs.ModeDir},
		"same/one.txt":     {Data: []byte("dup")},
		"same/two.txt":     {Data: []byte("dup")},
	})
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	var check func(tree object.Hash)
	check = func(tree object.Hash) {
		entries, err := r.ListTree(tree)
		if err != nil {
			t.Fatalf("ListTree(%s): %v", tree, err)
		}
		for _, e := range entries {
			if _, err := r.Store.Get(e.Hash); err != nil {
				t.Errorf("entry %q (%s) does not resolve: %v", e.Name, e.Hash, err)
			}
			if e.IsDir() {
				check(e.Hash)
			}
		}
	}
	check(h)

	n, err := r.Store.CheckConnectivity(h)
	if err != nil {
		t.Fatalf("CheckConnectivity: %v", err)
	}
	// Both files under "same" share one blob.
	if n != 13 {
		t.Errorf("reachable objects = %d, want 13", n)
	}
}

func TestBuildTree_EmptyDirectory(t *testing.T) {
	r := initTestRepo(t)
	h, err := r.BuildTree(fstest.MapFS{
		"empty": {Mode: fs.ModeDir},
	})
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	entries, err := r.ListTree(h)
	if err != nil {
		t.Fatalf("ListTree: %v", err)
	}
	want := []object.TreeEntry{{
		Mode: object.TreeModeDir,
		Name: "empty",
		Hash: "4b825dc642cb6eb9a060e54bf8d69288fbee4904",
	}}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTree_UnsupportedEntryType(t *testing.T) {
	r := initTestRepo(t)
	_, err := r.BuildTree(fstest.MapFS{
		"a.txt":      {Data: []byte("x")},
		"dir/link":   {Data: []byte("a.txt"), Mode: fs.ModeSymlink},
		"dir/pipe":   {Mode: fs.ModeNamedPipe},
		"dir/zz.txt": {Data: []byte("z")},
	})
	if !errors.Is(err, ErrUnsupportedEntryType) {
		t.Fatalf("BuildTree err = %v, want ErrUnsupportedEntryType", err)
	}
}

func TestWriteTree_SymlinkOnDisk(t *testing.T) {
	r := initTestRepo(t)
	writeWorktreeFile(t, r, "target.txt", "t")
	if err := os.Symlink("target.txt", filepath.Join(r.RootDir, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if _, err := r.WriteTree(); !errors.Is(err, ErrUnsupportedEntryType) {
		t.Fatalf("WriteTree err = %v, want ErrUnsupportedEntryType", err)
	}
}

func TestListTree_NotATree(t *testing.T) {
	r := initTestRepo(t)
	h, err := r.HashBlob([]byte("blob"), true)
	if err != nil {
		t.Fatalf("HashBlob: %v", err)
	}
	if _, err := r.ListTree(h); err == nil {
		t.Fatal("ListTree on a blob should fail")
	}
	if _, err := r.ListTree(object.ZeroHash); !errors.Is(err, object.ErrObjectNotFound) {
		t.Fatalf("ListTree missing err = %v, want ErrObjectNotFound", err)
	}
}

func TestListTree_CorruptPayload(t *testing.T) {
	r := initTestRepo(t)
	raw := []byte("100644 a.txt\x00short")
	h, err := r.Store.Write(object.TypeTree, raw)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := r.ListTree(h); !errors.Is(err, object.ErrCorruptObject) {
		t.Fatalf("ListTree err = %v, want ErrCorruptObject", err)
	}
}

func TestListTreeNames_SortsForDisplay(t *testing.T) {
	r := initTestRepo(t)
	// Stored out of order on purpose.
	h, err := r.Store.WriteTree(&object.TreeObj{Entries: []object.TreeEntry{
		{Mode: object.TreeModeFile, Name: "zeta", Hash: testTreeHash(1)},
		{Mode: object.TreeModeDir, Name: "alpha", Hash: testTreeHash(2)},
		{Mode: object.TreeModeFile, Name: "Mid", Hash: testTreeHash(3)},
	}})
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}

	names, err := r.ListTreeNames(h)
	if err != nil {
		t.Fatalf("ListTreeNames: %v", err)
	}
	if diff := cmp.Diff([]string{"Mid", "alpha", "zeta"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	entries, err := r.ListTree(h)
	if err != nil {
		t.Fatalf("ListTree: %v", err)
	}
	if entries[0].Name != "zeta" {
		t.Errorf("ListTree reordered entries: first = %q", entries[0].Name)
	}
}

func TestFlattenTree_TraversalOrder(t *testing.T) {
	r := initTestRepo(t)

	nestedTreeHash, err := r.Store.WriteTree(&object.TreeObj{Entries: []object.TreeEntry{
		{Mode: object.TreeModeFile, Name: "d.txt", Hash: testTreeHash(3)},
	}})
	if err != nil {
		t.Fatalf("write nested tree: %v", err)
	}
	dirTreeHash, err := r.Store.WriteTree(&object.TreeObj{Entries: []object.TreeEntry{
		{Mode: object.TreeModeFile, Name: "a.txt", Hash: testTreeHash(4)},
		{Mode: object.TreeModeFile, Name: "b.txt", Hash: testTreeHash(2)},
		{Mode: object.TreeModeDir, Name: "nested", Hash: nestedTreeHash},
	}})
	if err != nil {
		t.Fatalf("write dir tree: %v", err)
	}
	rootHash, err := r.Store.WriteTree(&object.TreeObj{Entries: []object.TreeEntry{
		{Mode: object.TreeModeDir, Name: "dir", Hash: dirTreeHash},
		{Mode: object.TreeModeExecutable, Name: "m.sh", Hash: testTreeHash(5)},
		{Mode: object.TreeModeFile, Name: "z.txt", Hash: testTreeHash(1)},
	}})
	if err != nil {
		t.Fatalf("write root tree: %v", err)
	}

	entries, err := r.FlattenTree(rootHash)
	if err != nil {
		t.Fatalf("FlattenTree: %v", err)
	}
	want := []TreeFileEntry{
		{Path: "dir/a.txt", Mode: object.TreeModeFile, Hash: testTreeHash(4)},
		{Path: "dir/b.txt", Mode: object.TreeModeFile, Hash: testTreeHash(2)},
		{Path: "dir/nested/d.txt", Mode: object.TreeModeFile, Hash: testTreeHash(3)},
		{Path: "m.sh", Mode: object.TreeModeExecutable, Hash: testTreeHash(5)},
		{Path: "z.txt", Mode: object.TreeModeFile, Hash: testTreeHash(1)},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("FlattenTree mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenTree_MissingSubtree(t *testing.T) {
	r := initTestRepo(t)
	rootHash, err := r.Store.WriteTree(&object.TreeObj{Entries: []object.TreeEntry{
		{Mode: object.TreeModeDir, Name: "gone", Hash: testTreeHash(9)},
	}})
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	if _, err := r.FlattenTree(rootHash); !errors.Is(err, object.ErrObjectNotFound) {
		t.Fatalf("FlattenTree err = %v, want ErrObjectNotFound", err)
	}
}

func TestHashFile(t *testing.T) {
	r := initTestRepo(t)
	writeWorktreeFile(t, r, "hello.txt", "hello\n")
	p := filepath.Join(r.RootDir, "hello.txt")

	h, err := r.HashFile(p, false)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if h != "ce013625030ba8dba906f756967f9e9ca394464a" {
		t.Errorf("HashFile = %s", h)
	}
	if r.Store.Has(h) {
		t.Error("HashFile without write stored the object")
	}

	if _, err := r.HashFile(p, true); err != nil {
		t.Fatalf("HashFile write: %v", err)
	}
	blob, err := r.Store.ReadBlob(h)
	if err != nil {
		t.Fatalf("ReadBlob: %v", err)
	}
	if string(blob.Data) != "hello\n" {
		t.Errorf("blob = %q", blob.Data)
	}
}

func testTreeHash(seed int) object.Hash {
	return object.Hash(fmt.Sprintf("%040x", seed))
}
