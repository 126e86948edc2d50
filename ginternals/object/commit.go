package object

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gitgo-dev/gogit/ginternals"
)

// ErrSignatureInvalid is an error thrown when the signature of a commit
// couldn't be parsed
var ErrSignatureInvalid = errors.New("commit signature is invalid")

// Signature represents the author/committer and time of a commit
type Signature struct {
	Time  time.Time
	Name  string
	Email string
}

// String returns a stringified version of the Signature
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.Time.Unix(), s.Time.Format("-0700"))
}

// IsZero returns whether the signature has zero value
func (s Signature) IsZero() bool {
	return s.Time.IsZero() && s.Name == "" && s.Email == ""
}

// NewSignature generates a signature at the current date and time
func NewSignature(name, email string) Signature {
	return Signature{
		Name:  name,
		Email: email,
		Time:  time.Now(),
	}
}

// NewSignatureFromBytes returns a signature from an array of bytes
//
// A signature has the following format:
// User Name <user.email@domain.tld> timestamp timezone
func NewSignatureFromBytes(b []byte) (Signature, error) {
	sig := Signature{}

	i := strings.IndexByte(string(b), '<')
	if i == -1 {
		return sig, fmt.Errorf("couldn't retrieve the name: %w", ErrSignatureInvalid)
	}
	sig.Name = strings.TrimSpace(string(b[:i]))

	rest := string(b[i+1:])
	j := strings.IndexByte(rest, '>')
	if j == -1 {
		return sig, fmt.Errorf("couldn't retrieve the email: %w", ErrSignatureInvalid)
	}
	sig.Email = rest[:j]

	rest = strings.TrimPrefix(rest[j+1:], " ")
	fields := strings.SplitN(rest, " ", 2)
	if len(fields) != 2 {
		return sig, fmt.Errorf("couldn't retrieve the timestamp/timezone: %w", ErrSignatureInvalid)
	}

	t, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return sig, fmt.Errorf("invalid timestamp %s: %w", fields[0], err)
	}
	sig.Time = time.Unix(t, 0)

	tz, err := time.Parse("-0700", fields[1])
	if err != nil {
		return sig, fmt.Errorf("invalid timezone format %s: %w", fields[1], err)
	}
	sig.Time = sig.Time.In(tz.Location())
	return sig, nil
}

// CommitOptions represents all the optional data available to create a commit
type CommitOptions struct {
	Message string
	GPGSig  string
	// Committer represents the person creating the commit.
	// If not provided, the author will be used as committer
	Committer Signature
	ParentsID []ginternals.Oid
}

// Commit represents a commit object
type Commit struct {
	rawObject *Object

	author    Signature
	committer Signature

	gpgSig  string
	message string

	parentIDs []ginternals.Oid
	treeID    ginternals.Oid
}

// NewCommit creates a new Commit object.
// Any provided Oids won't be checked.
func NewCommit(treeID ginternals.Oid, author Signature, opts *CommitOptions) *Commit {
	c := &Commit{
		treeID:    treeID,
		author:    author,
		committer: opts.Committer,
		message:   opts.Message,
		parentIDs: opts.ParentsID,
		gpgSig:    opts.GPGSig,
	}

	if c.committer.IsZero() {
		c.committer = author
	}
	c.rawObject = c.ToObject()

	return c
}

// NewCommitFromObject creates a Commit from a raw object, using the
// shared KVLM grammar.
//
// Well-known keys: tree (exactly one), parent (zero or more, order
// preserved), author, committer, gpgsig. Anything else is tolerated
// and simply ignored on read (carried forward would require mutation
// support, which is out of scope).
func NewCommitFromObject(o *Object) (*Commit, error) {
	if o.typ != TypeCommit {
		return nil, fmt.Errorf("type %s is not a commit: %w", o.typ, ErrObjectInvalid)
	}

	kv, err := ginternals.ParseKVLM(o.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), ErrCommitInvalid)
	}

	ci := &Commit{
		rawObject: o,
		message:   string(kv.Message),
	}

	treeRaw, ok := kv.Get("tree")
	if !ok {
		return nil, fmt.Errorf("commit has no tree: %w", ErrCommitInvalid)
	}
	ci.treeID, err = ginternals.NewOidFromChars(treeRaw)
	if err != nil {
		return nil, fmt.Errorf("could not parse tree id %#v: %w", treeRaw, err)
	}

	for _, p := range kv.GetAll("parent") {
		oid, err := ginternals.NewOidFromChars(p)
		if err != nil {
			return nil, fmt.Errorf("could not parse parent id %#v: %w", p, err)
		}
		ci.parentIDs = append(ci.parentIDs, oid)
	}

	authorRaw, ok := kv.Get("author")
	if !ok {
		return nil, fmt.Errorf("commit has no author: %w", ErrCommitInvalid)
	}
	ci.author, err = NewSignatureFromBytes(authorRaw)
	if err != nil {
		return nil, fmt.Errorf("could not parse author signature [%s]: %w", authorRaw, err)
	}

	if committerRaw, ok := kv.Get("committer"); ok {
		ci.committer, err = NewSignatureFromBytes(committerRaw)
		if err != nil {
			return nil, fmt.Errorf("could not parse committer signature [%s]: %w", committerRaw, err)
		}
	}

	if gpgsig, ok := kv.Get("gpgsig"); ok {
		ci.gpgSig = string(gpgsig)
	}

	return ci, nil
}

// ID returns the SHA of the commit object
func (c *Commit) ID() ginternals.Oid {
	return c.rawObject.ID()
}

// Author returns the Signature of the person that made the changes
func (c *Commit) Author() Signature {
	return c.author
}

// Committer returns the Signature of the person that created the commit
func (c *Commit) Committer() Signature {
	return c.committer
}

// Message returns the commit's message
func (c *Commit) Message() string {
	return c.message
}

// ParentIDs returns the list of SHA of the parent commits (if any)
// - The first commit of an orphan branch has 0 parents
// - A regular commit or the result of a fast-forward merge has 1 parent
// - A true merge (no fast-forward) has 2 or more parents
func (c *Commit) ParentIDs() []ginternals.Oid {
	out := make([]ginternals.Oid, len(c.parentIDs))
	copy(out, c.parentIDs)
	return out
}

// TreeID returns the SHA of the commit's tree
func (c *Commit) TreeID() ginternals.Oid {
	return c.treeID
}

// GPGSig returns the GPG signature of the commit, if any
func (c *Commit) GPGSig() string {
	return c.gpgSig
}

// ToObject returns the underlying Object, serializing through the
// shared KVLM grammar so round-trip identity holds.
func (c *Commit) ToObject() *Object {
	if c.rawObject != nil {
		return c.rawObject
	}

	kv := ginternals.NewKVLM()
	kv.Set("tree", []byte(c.treeID.String()))
	for _, p := range c.parentIDs {
		kv.Add("parent", []byte(p.String()))
	}
	kv.Set("author", []byte(c.Author().String()))
	kv.Set("committer", []byte(c.Committer().String()))
	if c.gpgSig != "" {
		kv.Set("gpgsig", []byte(c.gpgSig))
	}
	kv.Message = []byte(c.message)

	return New(TypeCommit, kv.Serialize())
}
