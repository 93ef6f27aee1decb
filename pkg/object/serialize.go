package object

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

func envelopeHeader(objType ObjectType, n int) []byte {
	return []byte(string(objType) + " " + strconv.Itoa(n) + "\x00")
}

// Envelope wraps a payload in its canonical "type len\0" header.
func Envelope(objType ObjectType, payload []byte) []byte {
	header := envelopeHeader(objType, len(payload))
	out := make([]byte, 0, len(header)+len(payload))
	out = append(out, header...)
	return append(out, payload...)
}

// ---------------------------------------------------------------------------
// Canonical encodings
// ---------------------------------------------------------------------------

// EncodeBlob returns the canonical bytes "blob <len>\0<content>".
func EncodeBlob(content []byte) []byte {
	return Envelope(TypeBlob, content)
}

// EncodeTree returns the canonical bytes of a tree holding entries in the
// given order.
func EncodeTree(entries []TreeEntry) ([]byte, error) {
	payload, err := MarshalTree(&TreeObj{Entries: entries})
	if err != nil {
		return nil, err
	}
	return Envelope(TypeTree, payload), nil
}

// EncodeCommit returns the canonical bytes of c.
func EncodeCommit(c *CommitObj) []byte {
	return Envelope(TypeCommit, MarshalCommit(c))
}

// Encode returns the canonical bytes of any object.
func Encode(obj Object) ([]byte, error) {
	switch o := obj.(type) {
	case *Blob:
		return EncodeBlob(o.Data), nil
	case *TreeObj:
		return EncodeTree(o.Entries)
	case *CommitObj:
		return EncodeCommit(o), nil
	default:
		return nil, fmt.Errorf("encode: unsupported object %T", obj)
	}
}

// Decode splits canonical bytes into kind and payload, checking that the
// header names a known kind and that the declared length matches.
func Decode(raw []byte) (ObjectType, []byte, error) {
	nul := bytes.IndexByte(raw, 0)
	if nul < 0 {
		return "", nil, corruptf("missing header terminator")
	}
	header := string(raw[:nul])
	payload := raw[nul+1:]

	kind, size, ok := strings.Cut(header, " ")
	if !ok {
		return "", nil, corruptf("malformed header %q", header)
	}
	objType := ObjectType(kind)
	switch objType {
	case TypeBlob, TypeTree, TypeCommit:
	default:
		return "", nil, corruptf("unknown object kind %q", kind)
	}
	n, err := parseDecimal(size)
	if err != nil {
		return "", nil, corruptf("bad length %q", size)
	}
	if n != len(payload) {
		return "", nil, corruptf("length mismatch (header=%d, actual=%d)", n, len(payload))
	}
	return objType, payload, nil
}

// parseDecimal accepts only plain ASCII digits, no sign and no leading zeros.
func parseDecimal(s string) (int, error) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, fmt.Errorf("not a canonical decimal: %q", s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("not a canonical decimal: %q", s)
		}
	}
	return strconv.Atoi(s)
}

// ParseObject decodes canonical bytes into a typed object.
func ParseObject(raw []byte) (Object, error) {
	objType, payload, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	switch objType {
	case TypeBlob:
		return UnmarshalBlob(payload)
	case TypeTree:
		return UnmarshalTree(payload)
	case TypeCommit:
		return UnmarshalCommit(payload)
	}
	return nil, corruptf("unknown object kind %q", objType)
}

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// MarshalTree serializes tree entries in their given order. Each entry is
//
//	<mode> <name>\0<20-byte raw hash>
//
// Entries are not re-sorted here; callers that want a deterministic address
// must supply a deterministic order.
func MarshalTree(tr *TreeObj) ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range tr.Entries {
		if err := validateTreeEntry(e); err != nil {
			return nil, fmt.Errorf("marshal tree: %w", err)
		}
		raw, err := e.Hash.Raw()
		if err != nil {
			return nil, fmt.Errorf("marshal tree: entry %q: %w", e.Name, err)
		}
		buf.WriteString(e.Mode)
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

func validateTreeEntry(e TreeEntry) error {
	if !isOctalMode(e.Mode) {
		return fmt.Errorf("entry %q: invalid mode %q", e.Name, e.Mode)
	}
	if e.Name == "" || e.Name == "." || e.Name == ".." {
		return fmt.Errorf("invalid entry name %q", e.Name)
	}
	if strings.ContainsAny(e.Name, "/\x00") {
		return fmt.Errorf("entry name %q contains a path separator or NUL", e.Name)
	}
	return nil
}

func isOctalMode(mode string) bool {
	if mode == "" {
		return false
	}
	for i := 0; i < len(mode); i++ {
		if mode[i] < '0' || mode[i] > '7' {
			return false
		}
	}
	return true
}

// ParseTreeEntries scans a tree payload left to right. The 20 hash bytes may
// contain any value, so they are taken by offset rather than by delimiter.
func ParseTreeEntries(payload []byte) ([]TreeEntry, error) {
	var entries []TreeEntry
	pos := 0
	for pos < len(payload) {
		sp := bytes.IndexByte(payload[pos:], ' ')
		if sp < 0 {
			return nil, corruptf("tree entry at offset %d: missing mode terminator", pos)
		}
		mode := string(payload[pos : pos+sp])
		if !isOctalMode(mode) {
			return nil, corruptf("tree entry at offset %d: invalid mode %q", pos, mode)
		}
		nameStart := pos + sp + 1

		nul := bytes.IndexByte(payload[nameStart:], 0)
		if nul < 0 {
			return nil, corruptf("tree entry at offset %d: missing name terminator", pos)
		}
		if nul == 0 {
			return nil, corruptf("tree entry at offset %d: empty name", pos)
		}
		name := string(payload[nameStart : nameStart+nul])
		hashStart := nameStart + nul + 1

		if len(payload)-hashStart < HashSize {
			return nil, corruptf("tree entry %q: truncated hash (%d of %d bytes)", name, len(payload)-hashStart, HashSize)
		}
		h, err := HashFromRaw(payload[hashStart : hashStart+HashSize])
		if err != nil {
			return nil, corruptf("tree entry %q: %v", name, err)
		}
		entries = append(entries, TreeEntry{Mode: mode, Name: name, Hash: h})
		pos = hashStart + HashSize
	}
	return entries, nil
}

// UnmarshalTree parses a TreeObj from its serialized form.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	entries, err := ParseTreeEntries(data)
	if err != nil {
		return nil, err
	}
	return &TreeObj{Entries: entries}, nil
}

// EntryType names the kind of object a tree entry mode points at.
func EntryType(mode string) ObjectType {
	switch mode {
	case TreeModeDir:
		return TypeTree
	case TreeModeGitlink:
		return TypeCommit
	default:
		return TypeBlob
	}
}

// FormatTree renders entries one per line as
//
//	<6-digit mode> <type> <hash>\t<name>
func FormatTree(entries []TreeEntry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		mode := e.Mode
		if len(mode) < 6 {
			mode = strings.Repeat("0", 6-len(mode)) + mode
		}
		fmt.Fprintf(&buf, "%s %s %s\t%s\n", mode, EntryType(e.Mode), e.Hash, e.Name)
	}
	return buf.Bytes()
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// String renders the identity as "Name <email>".
func (id Identity) String() string {
	return id.Name + " <" + id.Email + ">"
}

// String renders the signature as it appears in a commit header:
// "Name <email> <unix seconds> <+hhmm>".
func (s Signature) String() string {
	return fmt.Sprintf("%s %d %s", s.Identity, s.When.Unix(), s.When.Format("-0700"))
}

// MarshalCommit serializes a CommitObj:
//
//	tree H
//	parent H     (zero or more)
//	author A
//	committer C
//
//	message
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "committer %s\n", c.Committer)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, corruptf("commit: missing header/message separator")
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &CommitObj{Message: message}
	var haveTree, haveAuthor, haveCommitter bool
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, corruptf("commit: malformed header line %q", line)
		}
		switch key {
		case "tree":
			h, err := ParseHash(val)
			if err != nil {
				return nil, corruptf("commit: tree: %v", err)
			}
			c.TreeHash = h
			haveTree = true
		case "parent":
			h, err := ParseHash(val)
			if err != nil {
				return nil, corruptf("commit: parent: %v", err)
			}
			c.Parents = append(c.Parents, h)
		case "author":
			sig, err := ParseSignature(val)
			if err != nil {
				return nil, corruptf("commit: author: %v", err)
			}
			c.Author = sig
			haveAuthor = true
		case "committer":
			sig, err := ParseSignature(val)
			if err != nil {
				return nil, corruptf("commit: committer: %v", err)
			}
			c.Committer = sig
			haveCommitter = true
		default:
			// Git writes further headers (encoding, gpgsig, mergetag);
			// they do not affect the graph and are skipped.
		}
	}
	if !haveTree || !haveAuthor || !haveCommitter {
		return nil, corruptf("commit: missing tree, author or committer header")
	}
	return c, nil
}

// ParseSignature parses "Name <email> <unix seconds> <+hhmm>".
func ParseSignature(s string) (Signature, error) {
	lt := strings.IndexByte(s, '<')
	gt := strings.LastIndexByte(s, '>')
	if lt < 0 || gt < lt {
		return Signature{}, fmt.Errorf("missing <email> in %q", s)
	}
	id := Identity{
		Name:  strings.TrimSuffix(s[:lt], " "),
		Email: s[lt+1 : gt],
	}

	fields := strings.Fields(s[gt+1:])
	if len(fields) != 2 {
		return Signature{}, fmt.Errorf("want timestamp and timezone after email in %q", s)
	}
	secs, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("bad timestamp %q: %w", fields[0], err)
	}
	loc, err := parseTimezone(fields[1])
	if err != nil {
		return Signature{}, err
	}
	return Signature{Identity: id, When: time.Unix(secs, 0).In(loc)}, nil
}

func parseTimezone(tz string) (*time.Location, error) {
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return nil, fmt.Errorf("bad timezone %q", tz)
	}
	hh, err1 := strconv.Atoi(tz[1:3])
	mm, err2 := strconv.Atoi(tz[3:5])
	if err1 != nil || err2 != nil || mm >= 60 {
		return nil, fmt.Errorf("bad timezone %q", tz)
	}
	offset := hh*3600 + mm*60
	if tz[0] == '-' {
		offset = -offset
	}
	return time.FixedZone("", offset), nil
}
