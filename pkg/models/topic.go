package models

import (
	"tagme/pkg/records"
)

// Topic holds one votable topic. Tags maps endorsed tags to their
// counts; PendingTags holds proposals awaiting the author's (or an
// admin's) endorsement. A tag lives in at most one of the two.
type Topic struct {
	Author      records.UserID      `json:"author"`
	Description string              `json:"description"`
	Tags        map[string]uint32   `json:"tags"`
	PendingTags map[string]struct{} `json:"pending_tags"`
}

func (Topic) RecordPrefix() []byte { return []byte("#") }

// NewTopic returns a topic with no tags.
func NewTopic(author records.UserID, description string) Topic {
	return Topic{
		Author:      author,
		Description: description,
		Tags:        map[string]uint32{},
		PendingTags: map[string]struct{}{},
	}
}

// Endorse applies one tag endorsement. An already-endorsed tag gains
// exactly one count. Otherwise a curator call (author or admin, as
// established by Verified) moves the tag into Tags with count 1,
// leaving PendingTags; a non-curator call parks it in PendingTags,
// where duplicate adds are no-ops.
func (t *Topic) Endorse(tag string, curator bool) {
	if t.Tags == nil {
		t.Tags = map[string]uint32{}
	}
	if t.PendingTags == nil {
		t.PendingTags = map[string]struct{}{}
	}
	if _, ok := t.Tags[tag]; ok {
		t.Tags[tag]++
		return
	}
	if curator {
		delete(t.PendingTags, tag)
		t.Tags[tag] = 1
		return
	}
	t.PendingTags[tag] = struct{}{}
}

// RemoveTag deletes the tag from whichever set holds it.
func (t *Topic) RemoveTag(tag string) {
	delete(t.Tags, tag)
	delete(t.PendingTags, tag)
}

// Top is the singleton ordered list of topic names. Order is topic
// creation order; nothing re-sorts it.
type Top []records.TopicName

func (Top) RecordPrefix() []byte { return []byte("!top") }

// Add appends a topic name.
func (t Top) Add(name records.TopicName) Top {
	return append(t, name)
}

// Remove drops a topic name, preserving order of the rest.
func (t Top) Remove(name records.TopicName) Top {
	out := t[:0]
	for _, n := range t {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
