package repo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/odvcencio/twig/pkg/object"
)

// NormalizeMessage appends a newline to msg unless it already ends with
// one. Existing trailing newlines are kept as they are.
func NormalizeMessage(msg string) string {
	if strings.HasSuffix(msg, "\n") {
		return msg
	}
	return msg + "\n"
}

// CommitTree writes a commit for tree with an optional parent (empty for a
// root commit). The same identity and time are recorded as author and
// committer; an identity that would not survive a round trip through the
// header fails with ErrInvalidIdentity. Neither hash is checked for presence
// in the store; a commit may name objects that are only written later.
func (r *Repo) CommitTree(tree, parent object.Hash, message string, id object.Identity, when time.Time) (object.Hash, error) {
	if err := validateIdentity(id); err != nil {
		return "", fmt.Errorf("commit tree: %w", err)
	}
	treeHash, err := object.ParseHash(string(tree))
	if err != nil {
		return "", fmt.Errorf("commit tree: tree: %w", err)
	}
	var parents []object.Hash
	if parent != "" {
		parentHash, err := object.ParseHash(string(parent))
		if err != nil {
			return "", fmt.Errorf("commit tree: parent: %w", err)
		}
		parents = append(parents, parentHash)
	}

	sig := object.Signature{Identity: id, When: when}
	commitObj := &object.CommitObj{
		TreeHash:  treeHash,
		Parents:   parents,
		Author:    sig,
		Committer: sig,
		Message:   NormalizeMessage(message),
	}

	h, err := r.Store.WriteCommit(commitObj)
	if err != nil {
		return "", fmt.Errorf("commit tree: write commit: %w", err)
	}
	r.logger.Debug("commit written",
		zap.String("hash", string(h)),
		zap.String("tree", string(treeHash)),
		zap.Int("parents", len(parents)),
	)
	return h, nil
}

// LogEntry is one commit in a history walk.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// Log walks the commit history starting from the given hash, following
// first-parent links, returning up to limit commits newest first. A limit
// of zero or less means no limit. The walk ends quietly at a parent that is
// not in the store.
func (r *Repo) Log(start object.Hash, limit int) ([]LogEntry, error) {
	var entries []LogEntry
	current := start

	for limit <= 0 || len(entries) < limit {
		c, err := r.Store.ReadCommit(current)
		if err != nil {
			if len(entries) > 0 && errors.Is(err, object.ErrObjectNotFound) {
				break
			}
			return nil, fmt.Errorf("log: read commit %s: %w", current, err)
		}
		entries = append(entries, LogEntry{Hash: current, Commit: c})

		if len(c.Parents) == 0 {
			break
		}
		current = c.Parents[0]
	}

	return entries, nil
}
