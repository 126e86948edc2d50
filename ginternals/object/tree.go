package object

import (
	"bytes"
	"sort"
	"strconv"

	"github.com/gitgo-dev/gogit/ginternals"
	"github.com/gitgo-dev/gogit/internal/readutil"
	"golang.org/x/xerrors"
)

// TreeObjectMode represents the mode of an entry inside a tree.
// Non-standard modes (like 0o100664) are not supported.
type TreeObjectMode int32

const (
	// ModeFile represents the mode to use for a regular file
	ModeFile TreeObjectMode = 0o100644
	// ModeExecutable represents the mode to use for an executable file
	ModeExecutable TreeObjectMode = 0o100755
	// ModeDirectory represents the mode to use for a directory
	ModeDirectory TreeObjectMode = 0o040000
	// ModeSymLink represents the mode to use for a symbolic link
	ModeSymLink TreeObjectMode = 0o120000
	// ModeGitLink represents the mode to use for a gitlink (submodule)
	ModeGitLink TreeObjectMode = 0o160000
)

// IsValid returns whether the mode is a supported mode or not
func (m TreeObjectMode) IsValid() bool {
	switch m {
	case ModeFile, ModeExecutable, ModeDirectory, ModeSymLink, ModeGitLink:
		return true
	default:
		return false
	}
}

// ObjectType returns the object type associated with a mode.
// Uses the normalized-to-6-char mode's leading two digits: 04->tree,
// 10/12->blob, 16->commit/gitlink; any other leading digits -> blob.
func (m TreeObjectMode) ObjectType() Type {
	switch m >> 12 {
	case ModeDirectory >> 12:
		return TypeTree
	case ModeGitLink >> 12:
		return TypeCommit
	default:
		return TypeBlob
	}
}

// Tree represents a git tree object: an ordered set of (mode, path, id)
// entries describing one directory level.
type Tree struct {
	rawObject *Object
	// entries is kept unexported so callers can't mutate it out from
	// under the backing rawObject
	entries []TreeEntry
}

// TreeEntry represents a single entry inside a git tree
type TreeEntry struct {
	Path string
	ID   ginternals.Oid
	Mode TreeObjectMode
}

// NewTree returns a new tree with the given entries. Entries don't
// need to be pre-sorted: ToObject canonicalizes their order.
func NewTree(entries []TreeEntry) *Tree {
	t := &Tree{
		entries: entries,
	}
	t.rawObject = t.ToObject()
	return t
}

// NewTreeWithID returns a new tree already bound to a known object id,
// used when building a Tree straight from a parsed Object.
func NewTreeWithID(o *Object, entries []TreeEntry) *Tree {
	return &Tree{
		rawObject: o,
		entries:   entries,
	}
}

// NewTreeFromObject parses a tree from a raw object.
//
// Record format: mode(ASCII octal) SP path(no NUL, no slash) NUL id(20
// binary bytes), repeated back to back until the payload is exhausted.
func NewTreeFromObject(o *Object) (*Tree, error) {
	if o.Type() != TypeTree {
		return nil, xerrors.Errorf("type %s is not a tree: %w", o.Type(), ErrObjectInvalid)
	}

	entries := []TreeEntry{}

	objData := o.Bytes()
	offset := 0
	for i := 1; offset < len(objData); i++ {
		entry := TreeEntry{}
		data := readutil.ReadTo(objData[offset:], ' ')
		if len(data) == 0 {
			return nil, xerrors.Errorf("could not retrieve the mode of entry %d: %w", i, ErrTreeInvalid)
		}
		offset += len(data) + 1 // +1 for the space
		mode, err := strconv.ParseInt(string(data), 8, 32)
		if err != nil {
			return nil, xerrors.Errorf("could not parse mode of entry %d: %s: %w", i, err.Error(), ErrTreeInvalid)
		}
		entry.Mode = TreeObjectMode(mode)

		data = readutil.ReadTo(objData[offset:], 0)
		if len(data) == 0 {
			return nil, xerrors.Errorf("could not retrieve the path of entry %d: %w", i, ErrTreeInvalid)
		}
		offset += len(data) + 1 // +1 for the \0
		entry.Path = string(data)

		if offset+ginternals.OidSize > len(objData) {
			return nil, xerrors.Errorf("not enough space to retrieve the ID of entry %d: %w", i, ErrTreeInvalid)
		}
		entry.ID, err = ginternals.NewOidFromHex(objData[offset : offset+ginternals.OidSize])
		if err != nil {
			return nil, xerrors.Errorf("invalid SHA for entry %d (%s): %w", i, err.Error(), ErrTreeInvalid)
		}
		offset += ginternals.OidSize

		entries = append(entries, entry)
	}

	return NewTreeWithID(o, entries), nil
}

// Entries returns a copy of the tree's entries, in canonical order.
func (t *Tree) Entries() []TreeEntry {
	out := make([]TreeEntry, len(t.entries))
	copy(out, t.entries)
	sortTreeEntries(out)
	return out
}

// ID returns the object's ID.
func (t *Tree) ID() ginternals.Oid {
	return t.rawObject.ID()
}

// sortKey returns the string a tree entry sorts on: directory entries
// compare as if their path had a trailing "/", so that "b" (a
// directory) sorts after "b.txt" but before "b/anything".
func sortKey(e TreeEntry) string {
	if e.Mode == ModeDirectory {
		return e.Path + "/"
	}
	return e.Path
}

// sortTreeEntries orders entries by the canonical tree sort rule.
// Ties never arise because path components within one directory level
// are unique.
func sortTreeEntries(entries []TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return sortKey(entries[i]) < sortKey(entries[j])
	})
}

// ToObject returns an Object representing the tree, with entries
// emitted in canonical sort order.
func (t *Tree) ToObject() *Object {
	if t.rawObject != nil {
		return t.rawObject
	}

	sorted := make([]TreeEntry, len(t.entries))
	copy(sorted, t.entries)
	sortTreeEntries(sorted)

	buf := new(bytes.Buffer)
	for _, e := range sorted {
		entryBuf := new(bytes.Buffer)
		entryBuf.WriteString(strconv.FormatInt(int64(e.Mode), 8))
		entryBuf.WriteByte(' ')
		entryBuf.WriteString(e.Path)
		entryBuf.WriteByte(0)
		entryBuf.Write(e.ID.Bytes())
		buf.Write(entryBuf.Bytes())
	}

	t.rawObject = New(TypeTree, buf.Bytes())
	return t.rawObject
}
