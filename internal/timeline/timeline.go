// Package timeline derives the display-ordered history of a project from its
// current fields. The timeline is a pure projection: it is recomputed on
// demand and never stored, so it cannot drift from the record. Only the most
// recent status message is retained; earlier ones are overwritten.
package timeline

import (
	"sort"
	"time"

	"vugru/internal/models"
)

// Kind classifies a timeline entry.
type Kind string

const (
	KindEvent   Kind = "event"
	KindMessage Kind = "message"
	KindComment Kind = "comment"
)

// Entry is one row of a project's derived timeline.
type Entry struct {
	Kind    Kind      `json:"type"`
	Content string    `json:"content"`
	Author  string    `json:"author,omitempty"`
	Date    time.Time `json:"date"`
}

// entries emits the creation event, the current status message when present,
// and every comment, in that order.
func entries(p models.Project) []Entry {
	out := make([]Entry, 0, 2+len(p.Comments))

	out = append(out, Entry{
		Kind:    KindEvent,
		Content: "Project created",
		Date:    p.CreatedAt,
	})

	if p.LastMessage != "" {
		date := p.LastUpdate
		if date.IsZero() {
			date = p.CreatedAt
		}
		out = append(out, Entry{
			Kind:    KindMessage,
			Content: p.LastMessage,
			Date:    date,
		})
	}

	for _, comment := range p.Comments {
		out = append(out, Entry{
			Kind:    KindComment,
			Content: comment.Text,
			Author:  comment.Author,
			Date:    comment.CreatedAt,
		})
	}

	return out
}

// History returns the timeline oldest first, for full-history views. The sort
// is stable: entries sharing a timestamp keep their emission order.
func History(p models.Project) []Entry {
	out := entries(p)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Summary returns the timeline newest first, for list and card views. Ties
// keep their emission order, same as History.
func Summary(p models.Project) []Entry {
	out := entries(p)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
