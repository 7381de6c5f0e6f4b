// Package lifecycle owns the project status state machine. It builds the
// partial updates each transition applies; it performs no I/O and trusts its
// caller, so role gating and input validation stay at the HTTP boundary.
package lifecycle

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"vugru/internal/models"
)

// ResponseKind is a videographer's answer to a pending or awaiting_info
// project.
type ResponseKind string

const (
	KindAccept  ResponseKind = "accept" // send a quote
	KindDecline ResponseKind = "decline"
	KindInfo    ResponseKind = "info" // request more information
)

// ValidResponseKinds enumerates the accepted response kinds.
var ValidResponseKinds = map[ResponseKind]struct{}{
	KindAccept:  {},
	KindDecline: {},
	KindInfo:    {},
}

// Fixed confirmation messages written when a client decides on a quote.
const (
	QuoteAcceptedMessage = "Quote accepted by client"
	QuoteDeclinedMessage = "Quote declined by client"
)

// Response carries a videographer's reply. The quote fields are only
// consulted when Kind is KindAccept.
type Response struct {
	Kind              ResponseKind
	Message           string
	QuotedPrice       string
	EstimatedDuration string
	IncludedServices  []string
}

// Update is a partial project mutation. Nil pointer fields are left
// untouched by the store; the whole update commits as one write.
type Update struct {
	Status            models.Status
	LastMessage       *string
	QuotedPrice       *string
	EstimatedDuration *string
	IncludedServices  *[]string
	LastUpdate        time.Time
}

// RespondToRequest builds the update for a videographer response. Accepting
// sets the quote fields; included services default to the project's requested
// deliverables when none were picked. Declining or requesting info leaves any
// existing quote fields untouched.
func RespondToRequest(p models.Project, r Response, now time.Time) Update {
	u := Update{
		LastMessage: &r.Message,
		LastUpdate:  now,
	}

	switch r.Kind {
	case KindAccept:
		u.Status = models.StatusQuoted
		services := r.IncludedServices
		if len(services) == 0 {
			services = p.Deliverables
		}
		u.QuotedPrice = &r.QuotedPrice
		u.EstimatedDuration = &r.EstimatedDuration
		u.IncludedServices = &services
	case KindDecline:
		u.Status = models.StatusDeclined
	default:
		u.Status = models.StatusAwaitingInfo
	}

	return u
}

// DecideQuote builds the update for a client accepting or declining a quote.
// The last message is a fixed confirmation string.
func DecideQuote(accepted bool, now time.Time) Update {
	message := QuoteDeclinedMessage
	status := models.StatusDeclined
	if accepted {
		message = QuoteAcceptedMessage
		status = models.StatusAccepted
	}
	return Update{
		Status:      status,
		LastMessage: &message,
		LastUpdate:  now,
	}
}

// NewComment constructs a comment authored by the given user. Whitespace-only
// text yields ok=false and the caller issues no write at all. The identifier
// is a ULID, so it is derived from the creation time and sorts with it.
func NewComment(text string, author models.User, now time.Time) (models.Comment, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Comment{}, false
	}
	return models.Comment{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Text:      text,
		CreatedAt: now,
		Author:    author.Name,
		AuthorID:  author.ID,
	}, true
}
