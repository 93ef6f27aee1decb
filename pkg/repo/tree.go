package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"go.uber.org/zap"

	"github.com/odvcencio/twig/pkg/object"
)

// TreeFileEntry represents a single non-directory entry in a flattened tree.
type TreeFileEntry struct {
	Path string
	Mode string
	Hash object.Hash
}

// WriteTree captures the working directory into tree objects and returns
// the root tree hash.
func (r *Repo) WriteTree() (object.Hash, error) {
	return r.BuildTree(os.DirFS(r.RootDir))
}

// BuildTree captures the root of fsys into the store. Children are written
// before the tree that references them, so every hash inside a stored tree
// already resolves. Entries are ordered by byte-wise name comparison, which
// makes the result depend only on directory content. Only the metadata
// directory at the root is left out; a .git deeper in the tree is content.
func (r *Repo) BuildTree(fsys fs.FS) (object.Hash, error) {
	return r.buildTreeDir(fsys, ".")
}

func (r *Repo) buildTreeDir(fsys fs.FS, dir string) (object.Hash, error) {
	dirEntries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("build tree %q: %w", dir, err)
	}
	sort.Slice(dirEntries, func(i, j int) bool {
		return dirEntries[i].Name() < dirEntries[j].Name()
	})

	entries := make([]object.TreeEntry, 0, len(dirEntries))
	for _, d := range dirEntries {
		name := d.Name()
		if dir == "." && name == MetaDir && d.IsDir() {
			continue
		}
		p := path.Join(dir, name)

		mode, err := modeFromDirEntry(d)
		if err != nil {
			return "", fmt.Errorf("build tree %q: %w", p, err)
		}

		var h object.Hash
		if mode == object.TreeModeDir {
			h, err = r.buildTreeDir(fsys, p)
			if err != nil {
				return "", err
			}
		} else {
			h, err = r.writeBlobFile(fsys, p)
			if err != nil {
				return "", fmt.Errorf("build tree %q: %w", p, err)
			}
		}
		entries = append(entries, object.TreeEntry{Mode: mode, Name: name, Hash: h})
	}

	h, err := r.Store.WriteTree(&object.TreeObj{Entries: entries})
	if err != nil {
		return "", fmt.Errorf("write tree %q: %w", dir, err)
	}
	r.logger.Debug("tree written", zap.String("dir", dir), zap.String("hash", string(h)), zap.Int("entries", len(entries)))
	return h, nil
}

func (r *Repo) writeBlobFile(fsys fs.FS, p string) (object.Hash, error) {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return "", err
	}
	return r.Store.Put(object.EncodeBlob(data))
}

// HashFile stores (or, when write is false, only hashes) the contents of
// the file at p as a blob.
func (r *Repo) HashFile(p string, write bool) (object.Hash, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return r.HashBlob(data, write)
}

// HashBlob stores (or only hashes) data as a blob.
func (r *Repo) HashBlob(data []byte, write bool) (object.Hash, error) {
	canonical := object.EncodeBlob(data)
	if !write {
		return object.HashBytes(canonical), nil
	}
	return r.Store.Put(canonical)
}

// ListTree returns the entries of a stored tree in their stored order.
func (r *Repo) ListTree(h object.Hash) ([]object.TreeEntry, error) {
	raw, err := r.Store.Get(h)
	if err != nil {
		return nil, fmt.Errorf("list tree: %w", err)
	}
	objType, payload, err := object.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("list tree %s: %w", h, err)
	}
	if objType != object.TypeTree {
		return nil, fmt.Errorf("list tree %s: object is a %s, not a tree", h, objType)
	}
	entries, err := object.ParseTreeEntries(payload)
	if err != nil {
		return nil, fmt.Errorf("list tree %s: %w", h, err)
	}
	return entries, nil
}

// ListTreeNames returns the entry names of a stored tree sorted byte-wise
// for display.
func (r *Repo) ListTreeNames(h object.Hash) ([]string, error) {
	entries, err := r.ListTree(h)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	sort.Strings(names)
	return names, nil
}

// FlattenTree walks a tree object recursively, returning all non-directory
// entries with their full paths (using forward slashes).
func (r *Repo) FlattenTree(h object.Hash) ([]TreeFileEntry, error) {
	return r.flattenTreeRec(h, "")
}

func (r *Repo) flattenTreeRec(h object.Hash, prefix string) ([]TreeFileEntry, error) {
	entries, err := r.ListTree(h)
	if err != nil {
		return nil, fmt.Errorf("flatten tree: %w", err)
	}

	var result []TreeFileEntry
	for _, entry := range entries {
		fullPath := entry.Name
		if prefix != "" {
			fullPath = prefix + "/" + entry.Name
		}

		if entry.IsDir() {
			sub, err := r.flattenTreeRec(entry.Hash, fullPath)
			if err != nil {
				return nil, err
			}
			result = append(result, sub...)
			continue
		}
		result = append(result, TreeFileEntry{
			Path: fullPath,
			Mode: entry.Mode,
			Hash: entry.Hash,
		})
	}
	return result, nil
}
