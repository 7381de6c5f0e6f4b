package models

import "time"

// Status is the current stage of a project in the quoting workflow.
type Status string

const (
	StatusPending      Status = "pending"
	StatusQuoted       Status = "quoted"
	StatusAccepted     Status = "accepted"
	StatusDeclined     Status = "declined"
	StatusAwaitingInfo Status = "awaiting_info"
)

// ValidStatuses enumerates the statuses a project can hold.
var ValidStatuses = map[Status]struct{}{
	StatusPending:      {},
	StatusQuoted:       {},
	StatusAccepted:     {},
	StatusDeclined:     {},
	StatusAwaitingInfo: {},
}

// Role distinguishes the two kinds of portal users.
type Role string

const (
	RoleClient       Role = "client"
	RoleVideographer Role = "videographer"
)

// ValidRoles enumerates the supported user roles.
var ValidRoles = map[Role]struct{}{
	RoleClient:       {},
	RoleVideographer: {},
}

// Comment is an append-only timestamped note attached to a project.
// Comments are never edited or deleted individually.
type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Author    string    `json:"author"`
	AuthorID  string    `json:"authorId"`
}

// Project is a unit of work requested by a client for a videographer.
// Quote fields (QuotedPrice, EstimatedDuration, IncludedServices) are only
// meaningful once a quote has been sent and stay empty before that.
type Project struct {
	ID                string    `json:"id"`
	ClientID          string    `json:"clientId"`
	ClientName        string    `json:"clientName"`
	ClientEmail       string    `json:"clientEmail"`
	ProjectName       string    `json:"projectName"`
	Description       string    `json:"description"`
	Status            Status    `json:"status"`
	Date              time.Time `json:"date"`
	Deliverables      []string  `json:"deliverables"`
	Budget            string    `json:"budget"`
	Location          string    `json:"location"`
	VideographerID    string    `json:"videographerId"`
	CreatedAt         time.Time `json:"createdAt"`
	LastUpdate        time.Time `json:"lastUpdate"`
	LastMessage       string    `json:"lastMessage,omitempty"`
	QuotedPrice       string    `json:"quotedPrice,omitempty"`
	EstimatedDuration string    `json:"estimatedDuration,omitempty"`
	IncludedServices  []string  `json:"includedServices,omitempty"`
	Comments          []Comment `json:"comments"`
}

// User is either a client requesting work or a videographer quoting it.
// The password hash lives in storage only and is never serialized.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"userType"`
	Company      string    `json:"company,omitempty"`
	Rating       float64   `json:"rating,omitempty"`
	Specialties  []string  `json:"specialties,omitempty"`
	PortfolioURL string    `json:"portfolioUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
