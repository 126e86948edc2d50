package object

import (
	"fmt"

	"github.com/gitgo-dev/gogit/ginternals"
)

// TagParams represents all the data needed to create a Tag.
// Fields prefixed with Opt are optional.
type TagParams struct {
	Target    *Object
	Name      string
	Tagger    Signature
	Message   string
	OptGPGSig string
}

// Tag represents an annotated tag object
type Tag struct {
	rawObject *Object

	tagger  Signature
	tag     string
	message string

	gpgSig string

	target ginternals.Oid
	typ    Type
}

// NewTag creates a new Tag object
func NewTag(p *TagParams) *Tag {
	t := &Tag{
		target:  p.Target.ID(),
		typ:     p.Target.Type(),
		tag:     p.Name,
		tagger:  p.Tagger,
		message: p.Message,
		gpgSig:  p.OptGPGSig,
	}
	t.rawObject = t.ToObject()
	return t
}

// NewTagFromObject creates a new Tag from a raw git object, using the
// shared KVLM grammar.
//
// Well-known keys: object, type, tag, tagger.
func NewTagFromObject(o *Object) (*Tag, error) {
	if o.typ != TypeTag {
		return nil, fmt.Errorf("type %s is not a tag: %w", o.typ, ErrObjectInvalid)
	}

	kv, err := ginternals.ParseKVLM(o.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), ErrTagInvalid)
	}

	tag := &Tag{
		rawObject: o,
		message:   string(kv.Message),
	}

	targetRaw, ok := kv.Get("object")
	if !ok {
		return nil, fmt.Errorf("tag has no target: %w", ErrTagInvalid)
	}
	tag.target, err = ginternals.NewOidFromChars(targetRaw)
	if err != nil {
		return nil, fmt.Errorf("could not parse target id %#v: %w", targetRaw, err)
	}

	typRaw, ok := kv.Get("type")
	if !ok {
		return nil, fmt.Errorf("tag has no type: %w", ErrTagInvalid)
	}
	tag.typ, err = NewTypeFromString(string(typRaw))
	if err != nil {
		return nil, fmt.Errorf("invalid object type %s: %w", typRaw, err)
	}

	if name, ok := kv.Get("tag"); ok {
		tag.tag = string(name)
	}

	taggerRaw, ok := kv.Get("tagger")
	if !ok {
		return nil, fmt.Errorf("tag has no tagger: %w", ErrTagInvalid)
	}
	tag.tagger, err = NewSignatureFromBytes(taggerRaw)
	if err != nil {
		return nil, fmt.Errorf("could not parse tagger [%s]: %w", taggerRaw, err)
	}

	if gpgsig, ok := kv.Get("gpgsig"); ok {
		tag.gpgSig = string(gpgsig)
	}

	return tag, nil
}

// ID returns the SHA of the tag object
func (t *Tag) ID() ginternals.Oid {
	return t.rawObject.ID()
}

// Target returns the ID of the object targeted by the tag
func (t *Tag) Target() ginternals.Oid {
	return t.target
}

// Type returns the type of the targeted object
func (t *Tag) Type() Type {
	return t.typ
}

// Name returns the tag's name
func (t *Tag) Name() string {
	return t.tag
}

// Tagger returns the Signature of the person that created the tag
func (t *Tag) Tagger() Signature {
	return t.tagger
}

// Message returns the tag's message
func (t *Tag) Message() string {
	return t.message
}

// GPGSig returns the GPG signature of the tag, if any
func (t *Tag) GPGSig() string {
	return t.gpgSig
}

// ToObject returns the underlying Object
func (t *Tag) ToObject() *Object {
	if t.rawObject != nil {
		return t.rawObject
	}

	kv := ginternals.NewKVLM()
	kv.Set("object", []byte(t.target.String()))
	kv.Set("tag", []byte(t.Name()))
	kv.Set("type", []byte(t.Type().String()))
	kv.Set("tagger", []byte(t.Tagger().String()))
	if t.gpgSig != "" {
		kv.Set("gpgsig", []byte(t.gpgSig))
	}
	kv.Message = []byte(t.message)

	t.rawObject = New(TypeTag, kv.Serialize())
	return t.rawObject
}
