package domain

import (
	"errors"
	"fmt"
	"time"
)

// TagCollection is an ordered list of tags attached to a resource.
type TagCollection []string

func (tc TagCollection) raw() any {
	if tc == nil {
		return nil
	}
	out := make([]any, len(tc))
	for i, t := range tc {
		out[i] = t
	}
	return out
}

// Timestamps is the create/update time pair shared by listed resources.
type Timestamps struct {
	CreateTime *time.Time `json:"create_time"`
	UpdateTime *time.Time `json:"update_time"`
}

var timestampFields = []FieldSpec{
	{Name: "create_time", Type: "datetime", Title: "Create Time", Description: "The time and date this item was created.", Nullable: true},
	{Name: "update_time", Type: "datetime", Title: "Update Time", Description: "The last time and date this item was updated.", Nullable: true},
}

func (r *fieldReader) timestamps() Timestamps {
	return Timestamps{
		CreateTime: r.optionalTime("create_time"),
		UpdateTime: r.optionalTime("update_time"),
	}
}

func (ts Timestamps) raw(out map[string]any) {
	out["create_time"] = formatTime(ts.CreateTime)
	out["update_time"] = formatTime(ts.UpdateTime)
}

// Summary is one row of a visualization listing. It is an open schema:
// undeclared input fields are kept in Extra and serialized back out.
type Summary struct {
	ID         EncodedID     `json:"id"`
	Annotation *string       `json:"annotation"`
	DBKey      *string       `json:"dbkey"`
	Deleted    bool          `json:"deleted"`
	Importable bool          `json:"importable"`
	Published  bool          `json:"published"`
	Tags       TagCollection `json:"tags" validate:"dive,tagitem"`
	Title      string        `json:"title"`
	Type       string        `json:"type"`
	Username   string        `json:"username"`
	Timestamps
	Extra map[string]any `json:"-"`
}

var SummarySpec = SchemaSpec{
	Name:               "Summary",
	Title:              "Visualization summary",
	AllowUnknownFields: true,
	Fields: append([]FieldSpec{
		{Name: "id", Type: "encoded_id", Title: "ID", Description: "Encoded ID of the Visualization.", Required: true},
		{Name: "annotation", Type: "string", Title: "Annotation", Description: "The annotation of this Visualization.", Nullable: true},
		{Name: "dbkey", Type: "string", Title: "DbKey", Description: "The database key of the visualization.", Nullable: true},
		{Name: "deleted", Type: "boolean", Title: "Deleted", Description: "Whether this Visualization has been deleted.", Required: true},
		{Name: "importable", Type: "boolean", Title: "Importable", Description: "Whether this Visualization can be imported.", Required: true},
		{Name: "published", Type: "boolean", Title: "Published", Description: "Whether this Visualization has been published.", Required: true},
		{Name: "tags", Type: "tag_collection", Title: "Tags", Description: "A list of tags to add to this item.", Required: true, Nullable: true, Constraints: []string{"pattern=" + TagPattern}},
		{Name: "title", Type: "string", Title: "Title", Description: "The name of the visualization.", Required: true},
		{Name: "type", Type: "string", Title: "Type", Description: "The type of the visualization.", Required: true},
		{Name: "username", Type: "string", Title: "Username", Description: "The name of the user owning this Visualization.", Required: true},
	}, timestampFields...),
}

// NewSummary builds a Summary from raw input.
func (s *Schemas) NewSummary(raw map[string]any) (*Summary, error) {
	r := newFieldReader(raw, s.codec)
	sum := r.summary()
	if err := r.result(SummarySpec); err != nil {
		return nil, err
	}
	return sum, nil
}

func (r *fieldReader) summary() *Summary {
	sum := &Summary{
		ID:         r.requiredEncodedID("id"),
		Annotation: r.optionalString("annotation"),
		DBKey:      r.optionalString("dbkey"),
		Deleted:    r.requiredBool("deleted"),
		Importable: r.requiredBool("importable"),
		Published:  r.requiredBool("published"),
		Tags:       r.tags("tags", true, true),
		Title:      r.requiredString("title"),
		Type:       r.requiredString("type"),
		Username:   r.requiredString("username"),
		Timestamps: r.timestamps(),
	}
	for _, k := range SummarySpec.unknownKeys(r.raw) {
		if sum.Extra == nil {
			sum.Extra = make(map[string]any)
		}
		sum.Extra[k] = r.raw[k]
	}
	r.checkConstraints(sum)
	return sum
}

// Raw serializes s with its passthrough fields. Declared fields win over
// extras of the same name.
func (s *Summary) Raw(_ IDCodec) map[string]any {
	out := make(map[string]any, 13+len(s.Extra))
	for k, v := range s.Extra {
		out[k] = v
	}
	out["id"] = string(s.ID)
	out["annotation"] = stringOrNil(s.Annotation)
	out["dbkey"] = stringOrNil(s.DBKey)
	out["deleted"] = s.Deleted
	out["importable"] = s.Importable
	out["published"] = s.Published
	out["tags"] = s.Tags.raw()
	out["title"] = s.Title
	out["type"] = s.Type
	out["username"] = s.Username
	s.Timestamps.raw(out)
	return out
}

// SummaryList is an ordered listing of summaries.
type SummaryList []Summary

var SummaryListSpec = SchemaSpec{
	Name:  "SummaryList",
	Title: "List with detailed information of Visualizations.",
	Fields: []FieldSpec{
		{Name: "root", Type: "list[Summary]", Title: "List with detailed information of Visualizations.", Default: []any{}},
	},
}

// NewSummaryList builds a SummaryList, preserving input order. Errors of
// the members are reported with a "[index]." prefix.
func (s *Schemas) NewSummaryList(raw []map[string]any) (SummaryList, error) {
	out := make(SummaryList, 0, len(raw))
	var errs []FieldError
	for i, item := range raw {
		sum, err := s.NewSummary(item)
		if err != nil {
			var verr *ValidationError
			if !errors.As(err, &verr) {
				return nil, err
			}
			for _, fe := range verr.Errors {
				fe.Field = fmt.Sprintf("[%d].%s", i, fe.Field)
				errs = append(errs, fe)
			}
			continue
		}
		out = append(out, *sum)
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Schema: SummaryListSpec.Name, Errors: errs}
	}
	return out, nil
}

// Raw serializes the list; an empty list serializes as [] rather than null.
func (l SummaryList) Raw(codec IDCodec) []map[string]any {
	out := make([]map[string]any, 0, len(l))
	for i := range l {
		out = append(out, l[i].Raw(codec))
	}
	return out
}
