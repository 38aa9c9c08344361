package domain

// ModelClassVisualization is the constant model_class tag of a DetailedView.
const ModelClassVisualization = "Visualization"

// DetailedView is the full representation of a single visualization.
//
// LatestRevision and Plugin are owned by the revision and plugin
// subsystems; at this boundary they are only guaranteed to be objects.
type DetailedView struct {
	ModelClass     string         `json:"model_class" validate:"eq=Visualization"`
	ID             EncodedID      `json:"id"`
	Title          string         `json:"title"`
	Type           string         `json:"type"`
	UserID         DecodedID      `json:"user_id"`
	DBKey          *string        `json:"dbkey"`
	Slug           *string        `json:"slug"`
	LatestRevision map[string]any `json:"latest_revision"`
	Revisions      []EncodedID    `json:"revisions"`
	URL            *string        `json:"url"`
	Username       string         `json:"username"`
	EmailHash      *string        `json:"email_hash"`
	Tags           TagCollection  `json:"tags" validate:"dive,tagitem"`
	Annotation     *string        `json:"annotation"`
	Plugin         map[string]any `json:"plugin"`
}

var DetailedViewSpec = SchemaSpec{
	Name:  "DetailedView",
	Title: "Visualization",
	Fields: []FieldSpec{
		{Name: "model_class", Type: "string", Title: "Model Class", Description: "The model class name for this object.", Default: ModelClassVisualization, Enum: []string{ModelClassVisualization}},
		{Name: "id", Type: "encoded_id", Title: "ID", Description: "Encoded ID of the Visualization.", Required: true},
		{Name: "title", Type: "string", Title: "Title", Description: "The name of the visualization.", Required: true},
		{Name: "type", Type: "string", Title: "Type", Description: "The type of the visualization.", Required: true},
		{Name: "user_id", Type: "decoded_id", Title: "User ID", Description: "The ID of the user owning this Visualization.", Required: true},
		{Name: "dbkey", Type: "string", Title: "DbKey", Description: "The database key of the visualization.", Nullable: true},
		{Name: "slug", Type: "string", Title: "Slug", Description: "The slug of the visualization.", Nullable: true},
		{Name: "latest_revision", Type: "object", Title: "Latest Revision", Description: "The latest revision of this Visualization.", Required: true},
		{Name: "revisions", Type: "list[encoded_id]", Title: "Revisions", Description: "A list of encoded IDs of the revisions of this Visualization.", Default: []any{}},
		{Name: "url", Type: "string", Title: "URL", Description: "The URL of the visualization.", Nullable: true},
		{Name: "username", Type: "string", Title: "Username", Description: "The name of the user owning this Visualization.", Required: true},
		{Name: "email_hash", Type: "string", Title: "Email Hash", Description: "The hash of the email of the user owning this Visualization.", Nullable: true},
		{Name: "tags", Type: "tag_collection", Title: "Tags", Description: "A list of tags to add to this item.", Default: []any{}, Constraints: []string{"pattern=" + TagPattern}},
		{Name: "annotation", Type: "string", Title: "Annotation", Description: "The annotation of this Visualization.", Nullable: true},
		{Name: "plugin", Type: "object", Title: "Plugin", Description: "The plugin of this Visualization.", Required: true},
	},
}

// NewDetailedView builds a DetailedView from raw input. user_id accepts an
// encoded token, which is decoded with the schema codec, or a plain id.
func (s *Schemas) NewDetailedView(raw map[string]any) (*DetailedView, error) {
	r := newFieldReader(raw, s.codec)
	v := &DetailedView{
		ModelClass:     r.stringOr("model_class", ModelClassVisualization),
		ID:             r.requiredEncodedID("id"),
		Title:          r.requiredString("title"),
		Type:           r.requiredString("type"),
		UserID:         r.requiredDecodedID("user_id"),
		DBKey:          r.optionalString("dbkey"),
		Slug:           r.optionalString("slug"),
		LatestRevision: r.requiredObject("latest_revision"),
		Revisions:      r.encodedIDList("revisions"),
		URL:            r.optionalString("url"),
		Username:       r.requiredString("username"),
		EmailHash:      r.optionalString("email_hash"),
		Tags:           r.tags("tags", false, false),
		Annotation:     r.optionalString("annotation"),
		Plugin:         r.requiredObject("plugin"),
	}
	r.checkConstraints(v)
	if err := r.result(DetailedViewSpec); err != nil {
		return nil, err
	}
	return v, nil
}

// Raw serializes v. user_id goes back out as an encoded token.
func (v *DetailedView) Raw(codec IDCodec) map[string]any {
	revisions := make([]any, len(v.Revisions))
	for i, id := range v.Revisions {
		revisions[i] = string(id)
	}
	tags := v.Tags.raw()
	if tags == nil {
		tags = []any{}
	}
	return map[string]any{
		"model_class":     v.ModelClass,
		"id":              string(v.ID),
		"title":           v.Title,
		"type":            v.Type,
		"user_id":         codec.Encode(int64(v.UserID)),
		"dbkey":           stringOrNil(v.DBKey),
		"slug":            stringOrNil(v.Slug),
		"latest_revision": v.LatestRevision,
		"revisions":       revisions,
		"url":             stringOrNil(v.URL),
		"username":        v.Username,
		"email_hash":      stringOrNil(v.EmailHash),
		"tags":            tags,
		"annotation":      stringOrNil(v.Annotation),
		"plugin":          v.Plugin,
	}
}
