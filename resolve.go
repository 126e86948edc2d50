package git

import (
	"errors"
	"regexp"
	"strings"

	"github.com/gitgo-dev/gogit/ginternals"
	"github.com/gitgo-dev/gogit/ginternals/object"
	"golang.org/x/xerrors"
)

// List of errors returned while resolving a name to an object id
var (
	// ErrUnknownReference is returned when a name doesn't resolve to
	// any object
	ErrUnknownReference = errors.New("unknown reference")
	// ErrAmbiguousReference is returned when a name resolves to more
	// than one object
	ErrAmbiguousReference = errors.New("ambiguous reference")
	// ErrTypeMismatch is returned when type-directed follow can't
	// reach the requested type
	ErrTypeMismatch = errors.New("type mismatch")
)

// abbreviatedIDPattern matches a (possibly abbreviated) hex object id,
// per spec rule 4.7.2
var abbreviatedIDPattern = regexp.MustCompile(`^[0-9A-Fa-f]{4,40}$`)

// ResolveCandidates implements the name resolver's union of resolution
// rules (spec 4.7): it never fails on ambiguity or on no match, it
// simply returns however many candidates were found. Callers that want
// disambiguation should use Resolve instead.
func (r *Repository) ResolveCandidates(name string) ([]ginternals.Oid, error) {
	seen := map[ginternals.Oid]struct{}{}
	var candidates []ginternals.Oid
	add := func(oid ginternals.Oid) {
		if _, ok := seen[oid]; ok {
			return
		}
		seen[oid] = struct{}{}
		candidates = append(candidates, oid)
	}

	// Rule 1: the literal string HEAD
	if name == ginternals.Head {
		if ref, err := r.Reference(ginternals.Head); err == nil {
			add(ref.Target())
		} else if !errors.Is(err, ginternals.ErrRefNotFound) {
			return nil, xerrors.Errorf("could not resolve HEAD: %w", err)
		}
	}

	// Rule 2: a (possibly abbreviated) hex identifier
	if abbreviatedIDPattern.MatchString(name) {
		ids, err := r.resolveAbbreviation(name)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			add(id)
		}
	}

	// Rules 3-5: tag, local branch, remote-tracking branch. A name that
	// already looks like a full ref path (e.g. "refs/heads/master") is
	// tried as-is too, so a caller never has to strip the prefix itself.
	refCandidates := []string{
		ginternals.LocalTagFullName(name),
		ginternals.LocalBranchFullName(name),
		ginternals.RefFullName("remotes/" + name),
	}
	if strings.HasPrefix(name, "refs/") {
		refCandidates = append(refCandidates, name)
	}
	for _, refName := range refCandidates {
		ref, err := r.Reference(refName)
		if err == nil {
			add(ref.Target())
			continue
		}
		if !errors.Is(err, ginternals.ErrRefNotFound) {
			return nil, xerrors.Errorf("could not resolve %s: %w", refName, err)
		}
	}

	return candidates, nil
}

// resolveAbbreviation implements spec rule 4.7.2: a full 40-char id is
// looked up directly; a shorter one is resolved by scanning every
// loose object id for a matching prefix.
func (r *Repository) resolveAbbreviation(name string) ([]ginternals.Oid, error) {
	lower := strings.ToLower(name)

	if len(lower) == ginternals.OidHexSize {
		oid, err := ginternals.NewOidFromStr(lower)
		if err != nil {
			return nil, nil
		}
		has, err := r.HasObject(oid)
		if err != nil {
			return nil, xerrors.Errorf("could not check object %s: %w", lower, err)
		}
		if !has {
			return nil, nil
		}
		return []ginternals.Oid{oid}, nil
	}

	var matches []ginternals.Oid
	err := r.WalkLooseObjectIDs(func(oid ginternals.Oid) error {
		if strings.HasPrefix(oid.String(), lower) {
			matches = append(matches, oid)
		}
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("could not scan objects for %s: %w", name, err)
	}
	return matches, nil
}

// Resolve disambiguates the candidates returned by ResolveCandidates:
// exactly one candidate resolves, zero yields ErrUnknownReference, and
// more than one yields ErrAmbiguousReference listing every candidate.
func (r *Repository) Resolve(name string) (ginternals.Oid, error) {
	candidates, err := r.ResolveCandidates(name)
	if err != nil {
		return ginternals.NullOid, err
	}
	switch len(candidates) {
	case 0:
		return ginternals.NullOid, xerrors.Errorf("%s: %w", name, ErrUnknownReference)
	case 1:
		return candidates[0], nil
	default:
		ids := make([]string, len(candidates))
		for i, c := range candidates {
			ids[i] = c.String()
		}
		return ginternals.NullOid, xerrors.Errorf("%s matches multiple objects (%s): %w", name, strings.Join(ids, ", "), ErrAmbiguousReference)
	}
}

// ResolveType resolves name, then repeatedly dereferences the result
// until an object of the requested type is reached: a tag follows its
// target, a commit follows its tree when a tree is wanted. It fails
// with ErrTypeMismatch if the desired type can never be reached.
func (r *Repository) ResolveType(name string, want object.Type) (ginternals.Oid, error) {
	oid, err := r.Resolve(name)
	if err != nil {
		return ginternals.NullOid, err
	}
	return r.followType(oid, want)
}

func (r *Repository) followType(oid ginternals.Oid, want object.Type) (ginternals.Oid, error) {
	const maxFollowDepth = 16
	for i := 0; i < maxFollowDepth; i++ {
		o, err := r.GetObject(oid)
		if err != nil {
			return ginternals.NullOid, xerrors.Errorf("could not load object %s: %w", oid.String(), err)
		}
		if o.Type() == want {
			return oid, nil
		}
		switch o.Type() {
		case object.TypeTag:
			tag, err := o.AsTag()
			if err != nil {
				return ginternals.NullOid, err
			}
			oid = tag.Target()
		case object.TypeCommit:
			if want != object.TypeTree {
				return ginternals.NullOid, xerrors.Errorf("%s is a commit: %w", oid.String(), ErrTypeMismatch)
			}
			c, err := o.AsCommit()
			if err != nil {
				return ginternals.NullOid, err
			}
			oid = c.TreeID()
		default:
			return ginternals.NullOid, xerrors.Errorf("%s is a %s, expected %s: %w", oid.String(), o.Type(), want, ErrTypeMismatch)
		}
	}
	return ginternals.NullOid, xerrors.Errorf("too many levels of indirection resolving to %s: %w", want, ErrTypeMismatch)
}
