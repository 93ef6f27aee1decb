package object

import "time"

// Hash is a 40-character lower-case hex-encoded SHA-1 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

const (
	// Tree mode constants compatible with Git's canonical mode strings.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
	TreeModeSymlink    = "120000"
	TreeModeGitlink    = "160000"
)

// Object is the closed set of stored object kinds: *Blob, *TreeObj and
// *CommitObj.
type Object interface {
	Type() ObjectType
	isObject()
}

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Mode string
	Name string
	Hash Hash
}

// IsDir reports whether the entry references a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Mode == TreeModeDir
}

// TreeObj holds tree entries in their stored order.
type TreeObj struct {
	Entries []TreeEntry
}

// Identity is the "Name <email>" part of an author or committer line.
type Identity struct {
	Name  string
	Email string
}

// Signature is an identity stamped with a point in time.
type Signature struct {
	Identity
	When time.Time
}

// CommitObj represents a commit pointing to a tree with metadata.
type CommitObj struct {
	TreeHash  Hash
	Parents   []Hash
	Author    Signature
	Committer Signature
	Message   string
}

func (*Blob) Type() ObjectType      { return TypeBlob }
func (*TreeObj) Type() ObjectType   { return TypeTree }
func (*CommitObj) Type() ObjectType { return TypeCommit }

func (*Blob) isObject()      {}
func (*TreeObj) isObject()   {}
func (*CommitObj) isObject() {}
