package ginternals

import (
	"bytes"
)

// kvlmMessageKey is a key reserved for the trailing message. It cannot
// collide with a real header name because header names never contain a
// space. The message itself is kept in KVLM.Message, not under this key.
const kvlmMessageKey = " "

// KVLM is an ordered key-value-list-with-message: the grammar shared
// by commit and tag objects. Keys preserve first-appearance order;
// a key may repeat (e.g. "parent"), and its values accumulate in
// arrival order. The trailing free-form message is stored separately
// from the headers.
//
// KVLM must round-trip: Serialize(Parse(x)) == x for any well-formed x,
// since commit/tag ids are digests of the serialized form.
type KVLM struct {
	keys    []string
	values  map[string][][]byte
	Message []byte
}

// NewKVLM returns an empty KVLM ready to be populated with Add/Set and
// its Message field
func NewKVLM() *KVLM {
	return &KVLM{
		values: map[string][][]byte{},
	}
}

// Add appends a value for key, preserving arrival order. If key hasn't
// been seen before it's appended to the key order.
func (k *KVLM) Add(key string, value []byte) {
	if _, ok := k.values[key]; !ok {
		k.keys = append(k.keys, key)
	}
	k.values[key] = append(k.values[key], value)
}

// Set replaces all the values for key with a single value
func (k *KVLM) Set(key string, value []byte) {
	if _, ok := k.values[key]; !ok {
		k.keys = append(k.keys, key)
	}
	k.values[key] = [][]byte{value}
}

// Get returns the first value for key, if any
func (k *KVLM) Get(key string) ([]byte, bool) {
	v, ok := k.values[key]
	if !ok || len(v) == 0 {
		return nil, false
	}
	return v[0], true
}

// GetAll returns every value for key, in arrival order
func (k *KVLM) GetAll(key string) [][]byte {
	return k.values[key]
}

// Keys returns the set of keys in first-appearance order
func (k *KVLM) Keys() []string {
	return k.keys
}

// ParseKVLM parses a commit/tag payload into a KVLM.
//
// Grammar: a sequence of "key SP value LF" lines where value may
// contain embedded LFs, provided each continuation line begins with
// a single leading space (stripped here, re-added on Serialize). A
// single blank line (bare LF) terminates the headers; everything
// after it is the message.
func ParseKVLM(data []byte) (*KVLM, error) {
	kv := NewKVLM()
	offset := 0
	for {
		nl := bytes.IndexByte(data[offset:], '\n')
		if nl == -1 {
			// No trailing blank line and no more data: treat whatever
			// remains (possibly nothing) as the message.
			kv.Message = data[offset:]
			return kv, nil
		}
		lineEnd := offset + nl

		// A bare newline at the start of this "line" marks the header/message
		// boundary.
		if lineEnd == offset {
			if lineEnd+1 < len(data) {
				kv.Message = data[lineEnd+1:]
			}
			return kv, nil
		}

		sp := bytes.IndexByte(data[offset:lineEnd], ' ')
		if sp == -1 {
			return nil, ErrKVLMInvalid
		}
		key := string(data[offset : offset+sp])
		valueStart := offset + sp + 1

		// Consume continuation lines: any line immediately following that
		// starts with a single leading space is folded into this value.
		valueEnd := lineEnd
		cursor := lineEnd + 1
		var folded []byte
		rawValue := data[valueStart:valueEnd]
		for cursor < len(data) && data[cursor] == ' ' {
			nextNl := bytes.IndexByte(data[cursor:], '\n')
			if nextNl == -1 {
				nextNl = len(data) - cursor
			}
			if folded == nil {
				folded = append([]byte{}, rawValue...)
			}
			folded = append(folded, '\n')
			folded = append(folded, data[cursor+1:cursor+nextNl]...)
			cursor += nextNl + 1
		}
		if folded != nil {
			rawValue = folded
		}

		kv.Add(key, rawValue)
		offset = cursor
		if offset >= len(data) {
			return kv, nil
		}
	}
}

// Serialize re-emits a KVLM as bytes. Embedded LFs in a value are
// re-folded as "LF SP" continuation sequences. Keys are iterated in
// their stored first-appearance order; each key's values are emitted
// in arrival order.
func (k *KVLM) Serialize() []byte {
	buf := new(bytes.Buffer)
	for _, key := range k.keys {
		for _, value := range k.values[key] {
			buf.WriteString(key)
			buf.WriteByte(' ')
			buf.Write(bytes.ReplaceAll(value, []byte{'\n'}, []byte{'\n', ' '}))
			buf.WriteByte('\n')
		}
	}
	buf.WriteByte('\n')
	buf.Write(k.Message)
	return buf.Bytes()
}
