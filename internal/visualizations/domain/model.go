package domain

import (
	"time"
)

// Record is a visualization row as the repository reads it, before it is
// shaped into a Summary.
type Record struct {
	ID          int64
	Title       string
	Type        string
	DBKey       *string
	Slug        *string
	Deleted     bool
	Importable  bool
	Published   bool
	UserID      int64
	Username    string
	Email       string
	Annotation  *string
	Tags        []string
	CreateTime  time.Time
	UpdateTime  time.Time
	LatestRevID *int64
}

// Revision is a stored revision of a visualization.
type Revision struct {
	ID              int64
	VisualizationID int64
	Title           string
	DBKey           *string
	Config          map[string]any
	CreateTime      time.Time
}

// Detail is everything the repository knows about one visualization.
type Detail struct {
	Record
	LatestRevision *Revision
	RevisionIDs    []int64
}

// Page is one page of records plus the total match count.
type Page struct {
	Records      []Record
	TotalMatches int
}

// Viewer identifies the caller a listing is evaluated for. A nil *Viewer is
// an anonymous caller.
type Viewer struct {
	UserID int64
}

// CachedDetail is what the detail cache stores: the serialized view plus
// the fields access checks need without another database read.
type CachedDetail struct {
	OwnerID    int64          `json:"owner_id"`
	Published  bool           `json:"published"`
	Importable bool           `json:"importable"`
	View       map[string]any `json:"view"`
}
