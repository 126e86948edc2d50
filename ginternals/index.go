package ginternals

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrIndexInvalid is returned when an index file's header or one of
// its entries doesn't follow the expected binary layout.
var ErrIndexInvalid = errors.New("invalid index")

// indexMagic is the 4-byte signature every index file starts with.
const indexMagic = "DIRC"

// indexVersion is the only index format version this module reads
// and writes.
const indexVersion = 2

// indexEntryFixedSize is the number of bytes in an entry before its
// variable-length name: ctime/mtime (16), dev/inode (8), reserved+mode
// (4), uid/gid (8), size (4), object id (20), flags (2).
const indexEntryFixedSize = 62

// indexEntryAlignment is the boundary every entry's total on-disk
// length (fixed prefix + name + NUL padding) is rounded up to.
const indexEntryAlignment = 8

// IndexEntryType is the 4-bit object type carried by an index entry's
// mode field.
type IndexEntryType uint8

// Valid index entry types
const (
	IndexEntryRegular IndexEntryType = 0b1000
	IndexEntrySymlink IndexEntryType = 0b1010
	IndexEntryGitlink IndexEntryType = 0b1110
)

const (
	indexModeTypeShift = 12
	indexModeTypeMask  = 0xF
	indexModePermsMask = 0x1FF

	indexFlagAssumeValid = 1 << 15
	indexFlagExtended    = 1 << 14
	indexFlagStageShift  = 12
	indexFlagStageMask   = 0x3
	indexFlagNameMask    = 0x0FFF
	indexFlagNameMax     = 0x0FFF
)

// IndexEntry represents a single staged path: the cached stat data
// used to cheaply detect worktree changes, and the id of the blob
// last staged for that path.
type IndexEntry struct {
	CTimeSec  uint32
	CTimeNsec uint32
	MTimeSec  uint32
	MTimeNsec uint32
	Dev       uint32
	Ino       uint32

	// Type is the entry's object type: regular file, symlink, or gitlink
	Type IndexEntryType
	// Perms holds the low 9 bits of the POSIX permissions (e.g. 0o644,
	// 0o755). Meaningless for symlinks and gitlinks.
	Perms uint16

	UID  uint32
	GID  uint32
	Size uint32

	ID Oid

	// AssumeValid mirrors flags bit 15
	AssumeValid bool
	// Stage is the merge stage (0-3) carried by flags bits 12-13.
	// 0 means "not in conflict".
	Stage uint8

	// Path is the entry's name, relative to the repository root
	Path string
}

// Mode packs Type and Perms into the on-disk 16-bit mode field.
func (e IndexEntry) Mode() uint16 {
	return uint16(e.Type&indexModeTypeMask)<<indexModeTypeShift | uint16(e.Perms)&indexModePermsMask
}

// Index represents the parsed content of the `.git/index` file: the
// staging area between the worktree and the next commit.
type Index struct {
	Version uint32
	// Entries are kept in the order they were parsed/added; Serialize
	// writes them in that order and does not sort them.
	Entries []IndexEntry
}

// NewIndex returns an empty Index at the only supported version.
func NewIndex() *Index {
	return &Index{Version: indexVersion}
}

// ParseIndex decodes the raw bytes of a `.git/index` file.
func ParseIndex(data []byte) (*Index, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("header too short (%d bytes): %w", len(data), ErrIndexInvalid)
	}
	if string(data[0:4]) != indexMagic {
		return nil, fmt.Errorf("bad magic %q: %w", data[0:4], ErrIndexInvalid)
	}

	version := binary.BigEndian.Uint32(data[4:8])
	if version != indexVersion {
		return nil, fmt.Errorf("unsupported index version %d: %w", version, ErrIndexInvalid)
	}

	count := binary.BigEndian.Uint32(data[8:12])
	idx := &Index{Version: version}
	if count > 0 {
		idx.Entries = make([]IndexEntry, 0, count)
	}

	offset := 12
	for i := uint32(0); i < count; i++ {
		entry, consumed, err := parseIndexEntry(data, offset)
		if err != nil {
			return nil, fmt.Errorf("entry %d at offset %d: %w", i, offset, err)
		}
		idx.Entries = append(idx.Entries, entry)
		offset += consumed
	}

	return idx, nil
}

func parseIndexEntry(data []byte, start int) (IndexEntry, int, error) {
	if start+indexEntryFixedSize > len(data) {
		return IndexEntry{}, 0, fmt.Errorf("not enough data for entry prefix: %w", ErrIndexInvalid)
	}
	p := data[start:]

	var e IndexEntry
	e.CTimeSec = binary.BigEndian.Uint32(p[0:4])
	e.CTimeNsec = binary.BigEndian.Uint32(p[4:8])
	e.MTimeSec = binary.BigEndian.Uint32(p[8:12])
	e.MTimeNsec = binary.BigEndian.Uint32(p[12:16])
	e.Dev = binary.BigEndian.Uint32(p[16:20])
	e.Ino = binary.BigEndian.Uint32(p[20:24])

	if p[24] != 0 || p[25] != 0 {
		return IndexEntry{}, 0, fmt.Errorf("reserved bytes must be 0: %w", ErrIndexInvalid)
	}

	mode := binary.BigEndian.Uint16(p[26:28])
	e.Type = IndexEntryType((mode >> indexModeTypeShift) & indexModeTypeMask)
	e.Perms = mode & indexModePermsMask

	e.UID = binary.BigEndian.Uint32(p[28:32])
	e.GID = binary.BigEndian.Uint32(p[32:36])
	e.Size = binary.BigEndian.Uint32(p[36:40])

	oid, err := NewOidFromHex(p[40:60])
	if err != nil {
		return IndexEntry{}, 0, fmt.Errorf("invalid object id: %w", ErrIndexInvalid)
	}
	e.ID = oid

	flags := binary.BigEndian.Uint16(p[60:62])
	if flags&indexFlagExtended != 0 {
		return IndexEntry{}, 0, fmt.Errorf("extended flag must be 0: %w", ErrIndexInvalid)
	}
	e.AssumeValid = flags&indexFlagAssumeValid != 0
	e.Stage = uint8((flags >> indexFlagStageShift) & indexFlagStageMask)

	nameStart := start + indexEntryFixedSize
	nulIdx := -1
	for i := nameStart; i < len(data); i++ {
		if data[i] == 0 {
			nulIdx = i
			break
		}
	}
	if nulIdx == -1 {
		return IndexEntry{}, 0, fmt.Errorf("name has no NUL terminator: %w", ErrIndexInvalid)
	}
	e.Path = string(data[nameStart:nulIdx])

	pathLen := nulIdx - nameStart
	rawLen := indexEntryFixedSize + pathLen + 1 // +1 mandatory NUL
	paddedLen := (rawLen + indexEntryAlignment - 1) &^ (indexEntryAlignment - 1)

	if start+paddedLen > len(data) {
		return IndexEntry{}, 0, fmt.Errorf("entry extends past end of data: %w", ErrIndexInvalid)
	}

	return e, paddedLen, nil
}

// Serialize re-encodes the index byte-for-byte, preserving entry
// order. Parsing the result yields an Index equal to idx.
func (idx *Index) Serialize() []byte {
	out := make([]byte, 12)
	copy(out[0:4], indexMagic)
	binary.BigEndian.PutUint32(out[4:8], indexVersion)
	binary.BigEndian.PutUint32(out[8:12], uint32(len(idx.Entries)))

	for _, e := range idx.Entries {
		out = append(out, serializeIndexEntry(e)...)
	}
	return out
}

func serializeIndexEntry(e IndexEntry) []byte {
	pathLen := len(e.Path)
	rawLen := indexEntryFixedSize + pathLen + 1
	paddedLen := (rawLen + indexEntryAlignment - 1) &^ (indexEntryAlignment - 1)

	buf := make([]byte, paddedLen)
	binary.BigEndian.PutUint32(buf[0:4], e.CTimeSec)
	binary.BigEndian.PutUint32(buf[4:8], e.CTimeNsec)
	binary.BigEndian.PutUint32(buf[8:12], e.MTimeSec)
	binary.BigEndian.PutUint32(buf[12:16], e.MTimeNsec)
	binary.BigEndian.PutUint32(buf[16:20], e.Dev)
	binary.BigEndian.PutUint32(buf[20:24], e.Ino)
	// buf[24:26] stays 0 (reserved)
	binary.BigEndian.PutUint16(buf[26:28], e.Mode())
	binary.BigEndian.PutUint32(buf[28:32], e.UID)
	binary.BigEndian.PutUint32(buf[32:36], e.GID)
	binary.BigEndian.PutUint32(buf[36:40], e.Size)
	copy(buf[40:60], e.ID.Bytes())

	nameLen := pathLen
	if nameLen > indexFlagNameMax {
		nameLen = indexFlagNameMax
	}
	var flags uint16
	if e.AssumeValid {
		flags |= indexFlagAssumeValid
	}
	flags |= uint16(e.Stage&indexFlagStageMask) << indexFlagStageShift
	flags |= uint16(nameLen) & indexFlagNameMask
	binary.BigEndian.PutUint16(buf[60:62], flags)

	copy(buf[62:62+pathLen], e.Path)
	// buf[62+pathLen:] is already zero-valued: the mandatory NUL plus padding

	return buf
}
