package ginternals

import "errors"

// ErrObjectNotFound is an error corresponding to a git object not being
// found
var ErrObjectNotFound = errors.New("object not found")

// ErrKVLMInvalid is returned when a commit/tag payload doesn't follow
// the key-value-list-with-message grammar
var ErrKVLMInvalid = errors.New("invalid kvlm payload")
