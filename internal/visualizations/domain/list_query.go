package domain

import (
	"net/url"
)

// SortBy is the attribute a visualization listing is ordered by.
type SortBy string

const (
	SortByCreateTime SortBy = "create_time"
	SortByTitle      SortBy = "title"
	SortByUpdateTime SortBy = "update_time"
	SortByUsername   SortBy = "username"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000 // exclusive
)

// ListQuery holds the query parameters for listing visualizations.
type ListQuery struct {
	Deleted       bool       `json:"deleted"`
	ShowOwn       *bool      `json:"show_own"`
	ShowPublished *bool      `json:"show_published"`
	ShowShared    *bool      `json:"show_shared"`
	UserID        *DecodedID `json:"user_id"`
	SortBy        SortBy     `json:"sort_by" validate:"oneof=create_time title update_time username"`
	SortDesc      *bool      `json:"sort_desc"`
	Search        *string    `json:"search"`
	Limit         *int       `json:"limit" validate:"omitempty,lt=1000"`
	Offset        *int       `json:"offset"`
}

var ListQuerySpec = SchemaSpec{
	Name:  "ListQuery",
	Title: "Visualization index query",
	Fields: []FieldSpec{
		{Name: "deleted", Type: "boolean", Default: false},
		{Name: "show_own", Type: "boolean", Nullable: true},
		{Name: "show_published", Type: "boolean", Nullable: true},
		{Name: "show_shared", Type: "boolean", Nullable: true},
		{Name: "user_id", Type: "decoded_id", Nullable: true},
		{
			Name: "sort_by", Type: "string", Title: "Sort By",
			Description: "Sort pages by this attribute.",
			Default:     string(SortByUpdateTime),
			Enum:        []string{string(SortByCreateTime), string(SortByTitle), string(SortByUpdateTime), string(SortByUsername)},
		},
		{Name: "sort_desc", Type: "boolean", Title: "Sort descending", Description: "Sort in descending order.", Nullable: true, Default: true},
		{Name: "search", Type: "string", Title: "Filter text", Description: "Freetext to search.", Nullable: true},
		{Name: "limit", Type: "integer", Title: "Limit", Description: "Maximum number of pages to return.", Nullable: true, Default: DefaultListLimit, Constraints: []string{"lt=1000"}},
		{Name: "offset", Type: "integer", Title: "Offset", Description: "Number of pages to skip.", Nullable: true, Default: 0},
	},
}

// NewListQuery builds a ListQuery from raw input, applying defaults for
// omitted fields.
func (s *Schemas) NewListQuery(raw map[string]any) (*ListQuery, error) {
	r := newFieldReader(raw, s.codec)
	q := &ListQuery{
		Deleted:       r.boolOr("deleted", false),
		ShowOwn:       r.optionalBool("show_own", nil),
		ShowPublished: r.optionalBool("show_published", nil),
		ShowShared:    r.optionalBool("show_shared", nil),
		UserID:        r.optionalDecodedID("user_id"),
		SortBy:        SortBy(r.stringOr("sort_by", string(SortByUpdateTime))),
		SortDesc:      r.optionalBool("sort_desc", boolPtr(true)),
		Search:        r.optionalString("search"),
		Limit:         r.optionalInt("limit", intPtr(DefaultListLimit)),
		Offset:        r.optionalInt("offset", intPtr(0)),
	}
	r.checkConstraints(q)
	if err := r.result(ListQuerySpec); err != nil {
		return nil, err
	}
	return q, nil
}

// NewListQueryFromValues binds a query string. Only the first value of a
// repeated parameter is used.
func (s *Schemas) NewListQueryFromValues(values url.Values) (*ListQuery, error) {
	raw := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			raw[k] = vs[0]
		}
	}
	return s.NewListQuery(raw)
}

// Raw serializes q, emitting every field including nulls.
func (q *ListQuery) Raw(codec IDCodec) map[string]any {
	var userID any
	if q.UserID != nil {
		userID = codec.Encode(int64(*q.UserID))
	}
	return map[string]any{
		"deleted":        q.Deleted,
		"show_own":       boolOrNil(q.ShowOwn),
		"show_published": boolOrNil(q.ShowPublished),
		"show_shared":    boolOrNil(q.ShowShared),
		"user_id":        userID,
		"sort_by":        string(q.SortBy),
		"sort_desc":      boolOrNil(q.SortDesc),
		"search":         stringOrNil(q.Search),
		"limit":          intOrNil(q.Limit),
		"offset":         intOrNil(q.Offset),
	}
}

// EffectiveLimit is the page size with a null limit read as the default.
func (q *ListQuery) EffectiveLimit() int {
	if q.Limit == nil {
		return DefaultListLimit
	}
	return *q.Limit
}

// EffectiveOffset is the page offset with a null offset read as zero.
func (q *ListQuery) EffectiveOffset() int {
	if q.Offset == nil {
		return 0
	}
	return *q.Offset
}

// Descending reports the sort direction, defaulting to descending.
func (q *ListQuery) Descending() bool {
	return q.SortDesc == nil || *q.SortDesc
}
