package entities

import "strings"

// Label classifies an imported record as a proper book or a
// podcast/article that leaked into a highlights export.
type Label string

const (
	LabelBook    Label = "book"
	LabelPodcast Label = "podcast"
	LabelArticle Label = "article"
)

const podcastTag = "podcast"

// Reclassify returns a copy of the input with its classification changed.
// It is a pure function: the receiver is never mutated, so callers can
// re-run classification after an external lookup without touching state
// shared with the UI layer.
func Reclassify(in BookInput, label Label) BookInput {
	out := in
	out.Tags = append([]string(nil), in.Tags...)

	switch label {
	case LabelPodcast:
		out.Source = SourceSnipd
		if !containsFold(out.Tags, podcastTag) {
			out.Tags = append(out.Tags, podcastTag)
		}
	case LabelBook, LabelArticle:
		if in.Source == SourceSnipd {
			out.Source = SourceReadwise
		}
		out.Tags = removeFold(out.Tags, podcastTag)
	}
	return out
}

func containsFold(list []string, want string) bool {
	for _, s := range list {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}

func removeFold(list []string, drop string) []string {
	out := list[:0]
	for _, s := range list {
		if !strings.EqualFold(s, drop) {
			out = append(out, s)
		}
	}
	return out
}
