package object

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// VerifySummary reports how many objects of each kind passed verification.
type VerifySummary struct {
	Objects int
	Blobs   int
	Trees   int
	Commits int
}

// Verify reads every loose object, checks that it inflates, decodes and
// parses, and that its content hashes to the address it is stored under.
// Every failure is collected; the returned error combines all of them.
func (s *Store) Verify() (*VerifySummary, error) {
	report := &VerifySummary{}

	hashes, err := s.listLooseObjectHashes()
	if err != nil {
		return nil, err
	}

	var errs error
	for _, h := range hashes {
		obj, err := s.verifyOne(h)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("verify %s: %w", h, err))
			continue
		}
		report.Objects++
		switch obj.(type) {
		case *Blob:
			report.Blobs++
		case *TreeObj:
			report.Trees++
		case *CommitObj:
			report.Commits++
		}
	}
	s.logger.Debug("verify finished",
		zap.Int("objects", report.Objects),
		zap.Int("failures", len(multierr.Errors(errs))),
	)
	return report, errs
}

func (s *Store) verifyOne(h Hash) (Object, error) {
	raw, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	if actual := HashBytes(raw); actual != h {
		return nil, &CorruptObjectError{Hash: h, Reason: fmt.Sprintf("hash mismatch (computed %s)", actual)}
	}
	obj, err := ParseObject(raw)
	if err != nil {
		return nil, withHash(err, h)
	}
	return obj, nil
}

// Hashes returns the addresses of every object in the store, sorted.
func (s *Store) Hashes() ([]Hash, error) {
	return s.listLooseObjectHashes()
}

func (s *Store) listLooseObjectHashes() ([]Hash, error) {
	fanout, err := os.ReadDir(s.objectsDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list objects: %w", err)
	}

	var out []Hash
	for _, dirEntry := range fanout {
		if !dirEntry.IsDir() || !isHexHashComponent(dirEntry.Name(), 2) {
			continue
		}
		dir := filepath.Join(s.objectsDir(), dirEntry.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("list objects %s: %w", dirEntry.Name(), err)
		}
		for _, f := range files {
			if f.IsDir() || !isHexHashComponent(f.Name(), 2*HashSize-2) {
				continue
			}
			out = append(out, Hash(dirEntry.Name()+f.Name()))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func isHexHashComponent(s string, expectedLen int) bool {
	if len(s) != expectedLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
