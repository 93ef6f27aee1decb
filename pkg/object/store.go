package object

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"go.uber.org/zap"
)

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123...
//
// Every file holds the zlib-compressed canonical encoding of one object.
// Objects are never rewritten or removed.
type Store struct {
	root   string
	level  int
	logger *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for debug output. The default discards.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCompressionLevel sets the zlib level used for new objects.
func WithCompressionLevel(level int) StoreOption {
	return func(s *Store) {
		s.level = level
	}
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string, opts ...StoreOption) *Store {
	s := &Store{
		root:   root,
		level:  DefaultCompression,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the directory the store was opened at.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) objectsDir() string {
	return filepath.Join(s.root, "objects")
}

// objectPath returns the filesystem path for a validated hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.objectsDir(), string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	h, err := ParseHash(string(h))
	if err != nil {
		return false
	}
	_, err = os.Stat(s.objectPath(h))
	return err == nil
}

// Put stores canonical object bytes and returns their address. If a file
// for the address already exists it is trusted and left untouched. New
// files are written to a temp file and renamed into place, so concurrent
// writers of the same object never expose a partial file.
func (s *Store) Put(canonical []byte) (Hash, error) {
	h := HashBytes(canonical)
	if s.Has(h) {
		s.logger.Debug("object exists", zap.String("hash", string(h)))
		return h, nil
	}

	dir := filepath.Join(s.objectsDir(), string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}
	compressed, err := CompressLevel(canonical, s.level)
	if err != nil {
		return "", fmt.Errorf("object write %s: %w", h, err)
	}
	if err := renameio.WriteFile(s.objectPath(h), compressed, 0o444); err != nil {
		return "", fmt.Errorf("object write %s: %w", h, err)
	}

	s.logger.Debug("object written",
		zap.String("hash", string(h)),
		zap.Int("size", len(canonical)),
		zap.Int("compressed", len(compressed)),
	)
	return h, nil
}

// Get returns the canonical bytes stored under h.
func (s *Store) Get(h Hash) ([]byte, error) {
	h, err := ParseHash(string(h))
	if err != nil {
		return nil, fmt.Errorf("object read: %w", err)
	}
	data, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("object read %s: %w", h, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}
	raw, err := Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("object read: %w", withHash(err, h))
	}
	s.logger.Debug("object read", zap.String("hash", string(h)), zap.Int("size", len(raw)))
	return raw, nil
}

// Write stores an object given its kind and payload and returns its
// content hash.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	return s.Put(Envelope(objType, data))
}

// Read retrieves an object by hash, returning its type and payload.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	raw, err := s.Get(h)
	if err != nil {
		return "", nil, err
	}
	objType, payload, err := Decode(raw)
	if err != nil {
		return "", nil, fmt.Errorf("object read: %w", withHash(err, h))
	}
	return objType, payload, nil
}

// ReadObject retrieves and parses an object of any kind.
func (s *Store) ReadObject(h Hash) (Object, error) {
	raw, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	obj, err := ParseObject(raw)
	if err != nil {
		return nil, fmt.Errorf("object read: %w", withHash(err, h))
	}
	return obj, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

func (s *Store) readTyped(h Hash, want ObjectType) ([]byte, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != want {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, want)
	}
	return data, nil
}

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Put(EncodeBlob(b.Data))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	data, err := s.readTyped(h, TypeBlob)
	if err != nil {
		return nil, err
	}
	return UnmarshalBlob(data)
}

// WriteTree serializes and stores a TreeObj.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	raw, err := EncodeTree(tr.Entries)
	if err != nil {
		return "", err
	}
	return s.Put(raw)
}

// ReadTree reads and deserializes a TreeObj.
func (s *Store) ReadTree(h Hash) (*TreeObj, error) {
	data, err := s.readTyped(h, TypeTree)
	if err != nil {
		return nil, err
	}
	tr, err := UnmarshalTree(data)
	if err != nil {
		return nil, fmt.Errorf("object read: %w", withHash(err, h))
	}
	return tr, nil
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Put(EncodeCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	data, err := s.readTyped(h, TypeCommit)
	if err != nil {
		return nil, err
	}
	c, err := UnmarshalCommit(data)
	if err != nil {
		return nil, fmt.Errorf("object read: %w", withHash(err, h))
	}
	return c, nil
}
