package metadata

import (
	"context"
	"strings"

	"github.com/readstack/readstack/internal/entities"
)

// TitleAuthor identifies one item to classify.
type TitleAuthor struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Classifier labels imported items as books, podcasts, or articles.
//
// The contract is defensive: implementations return exactly one label per
// input, in input order, and never an error. When a backend cannot decide,
// the item stays a book.
type Classifier interface {
	Classify(ctx context.Context, items []TitleAuthor) []entities.Label
}

// HeuristicClassifier labels items from surface cues alone: podcast feed
// markers in the author, episode-style pipes in the title, URLs.
type HeuristicClassifier struct{}

var podcastAuthorCues = []string{"podcast", "uploads", "private feed"}

func (HeuristicClassifier) Classify(_ context.Context, items []TitleAuthor) []entities.Label {
	labels := make([]entities.Label, len(items))
	for i, item := range items {
		labels[i] = heuristicLabel(item)
	}
	return labels
}

func heuristicLabel(item TitleAuthor) entities.Label {
	loweredAuthor := strings.ToLower(item.Author)
	for _, cue := range podcastAuthorCues {
		if strings.Contains(loweredAuthor, cue) {
			return entities.LabelPodcast
		}
	}
	if strings.Contains(item.Title, " | ") {
		return entities.LabelPodcast
	}
	lowered := strings.ToLower(item.Title)
	if strings.HasPrefix(lowered, "http://") || strings.HasPrefix(lowered, "https://") {
		return entities.LabelArticle
	}
	return entities.LabelBook
}

// LookupClassifier asks the catalog provider whether each item exists as a
// book and falls back to the heuristic when it does not, or when the lookup
// fails. Results always line up with the input.
type LookupClassifier struct {
	provider Provider
	fallback HeuristicClassifier
}

// NewLookupClassifier creates a catalog-backed classifier.
func NewLookupClassifier(provider Provider) *LookupClassifier {
	return &LookupClassifier{provider: provider}
}

func (c *LookupClassifier) Classify(ctx context.Context, items []TitleAuthor) []entities.Label {
	labels := make([]entities.Label, len(items))
	for i, item := range items {
		// A confirmed catalog hit settles it; anything else falls through
		// to the heuristic, including transport errors.
		if meta, err := c.provider.SearchByTitle(ctx, item.Title, item.Author); err == nil && meta != nil && meta.Title != "" {
			labels[i] = entities.LabelBook
			continue
		}
		labels[i] = heuristicLabel(item)
	}
	return labels
}

// NormalizeLabels pads or truncates labels so len(labels) == want, filling
// gaps with LabelBook. Guards callers against misbehaving backends.
func NormalizeLabels(labels []entities.Label, want int) []entities.Label {
	if len(labels) == want {
		return labels
	}
	out := make([]entities.Label, want)
	for i := range out {
		if i < len(labels) && labels[i] != "" {
			out[i] = labels[i]
		} else {
			out[i] = entities.LabelBook
		}
	}
	return out
}
