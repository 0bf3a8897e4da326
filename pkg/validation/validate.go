// Package validation holds the domain constraints on caller-supplied
// keys and payloads.
package validation

import (
	"unicode/utf8"

	"tagme/pkg/errs"
)

const (
	maxTopicNameLen = 128
	maxTagLen       = 64
)

// TopicName checks the constraint on topic names: 1 to 128 bytes of
// valid UTF-8.
func TopicName(name string) error {
	if name == "" {
		return errs.Invalid("topic name required")
	}
	if len(name) > maxTopicNameLen {
		return errs.Invalid("topic name too long")
	}
	if !utf8.ValidString(name) {
		return errs.Invalid("topic name must be valid UTF-8")
	}
	return nil
}

// Tag checks the constraint on tag strings: 1 to 64 bytes of valid
// UTF-8.
func Tag(tag string) error {
	if tag == "" {
		return errs.Invalid("tag required")
	}
	if len(tag) > maxTagLen {
		return errs.Invalid("tag too long")
	}
	if !utf8.ValidString(tag) {
		return errs.Invalid("tag must be valid UTF-8")
	}
	return nil
}
