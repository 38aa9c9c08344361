package repository

import (
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/viz-backend/internal/visualizations/domain"
)

// tagText renders a tag association the way tags are shown on the wire.
const tagText = `CASE WHEN t.user_value IS NULL OR t.user_value = '' THEN t.user_tname ELSE t.user_tname || ':' || t.user_value END`

// queryBuilder accumulates WHERE conditions with positional arguments.
type queryBuilder struct {
	conds []string
	args  []any
}

func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *queryBuilder) where(cond string) {
	b.conds = append(b.conds, cond)
}

func (b *queryBuilder) clause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.conds, "\n  AND ")
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func sharedWith(b *queryBuilder, userID int64) string {
	return "EXISTS (SELECT 1 FROM visualization_user_share_association s WHERE s.visualization_id = v.id AND s.user_id = " + b.arg(userID) + ")"
}

func tagMatches(b *queryBuilder, value string) string {
	if name, val, ok := strings.Cut(value, ":"); ok {
		return "EXISTS (SELECT 1 FROM visualization_tag_association t WHERE t.visualization_id = v.id AND t.user_tname ILIKE " +
			b.arg(name) + " AND t.user_value ILIKE " + b.arg(likePattern(val)) + ")"
	}
	return "EXISTS (SELECT 1 FROM visualization_tag_association t WHERE t.visualization_id = v.id AND t.user_tname ILIKE " + b.arg(likePattern(value)) + ")"
}

// buildFilters translates a ListQuery into WHERE conditions for viewer.
//
// Ownership, published and shared-with-viewer filters are alternatives and
// OR-ed together; every other filter narrows the result.
func buildFilters(q *domain.ListQuery, viewer *domain.Viewer) (*queryBuilder, error) {
	showOwn := q.ShowOwn != nil && *q.ShowOwn
	showPublished := q.ShowPublished != nil && *q.ShowPublished
	showShared := !q.Deleted
	if q.ShowShared != nil {
		showShared = *q.ShowShared
	}
	showDeleted := q.Deleted

	if viewer == nil && !showPublished {
		return nil, domain.ErrLoginRequired
	}
	if showShared && showDeleted {
		return nil, domain.ErrConflictingFilters
	}

	b := &queryBuilder{}

	var scope []string
	if showOwn || (!showPublished && !showShared) {
		if viewer != nil {
			scope = append(scope, "v.user_id = "+b.arg(viewer.UserID))
		}
	}
	if showPublished {
		scope = append(scope, "v.published = TRUE")
	}
	if viewer != nil && showShared {
		scope = append(scope, sharedWith(b, viewer.UserID))
	}
	if len(scope) == 0 {
		scope = append(scope, "FALSE")
	}
	b.where("(" + strings.Join(scope, " OR ") + ")")

	if q.UserID != nil {
		b.where("v.user_id = " + b.arg(int64(*q.UserID)))
	}

	if q.Search != nil {
		for _, term := range parseSearch(*q.Search) {
			switch term.Key {
			case "title":
				b.where("v.title ILIKE " + b.arg(likePattern(term.Value)))
			case "slug":
				b.where("v.slug ILIKE " + b.arg(likePattern(term.Value)))
			case "tag":
				b.where(tagMatches(b, term.Value))
			case "user":
				b.where("u.username ILIKE " + b.arg(likePattern(term.Value)))
			case "is":
				switch strings.ToLower(term.Value) {
				case "published":
					b.where("v.published = TRUE")
				case "importable":
					b.where("v.importable = TRUE")
				case "deleted":
					showDeleted = true
				case "shared_with_me":
					if viewer == nil {
						return nil, domain.ErrLoginRequired
					}
					b.where(sharedWith(b, viewer.UserID))
				}
			default:
				p := b.arg(likePattern(term.Value))
				b.where("(v.title ILIKE " + p + " OR v.slug ILIKE " + p + " OR u.username ILIKE " + p +
					" OR EXISTS (SELECT 1 FROM visualization_tag_association t WHERE t.visualization_id = v.id AND (" + tagText + ") ILIKE " + p + "))")
			}
		}
	}

	// Published listings never expose deleted rows.
	if showPublished {
		showDeleted = false
	}
	if showDeleted {
		b.where("v.deleted = TRUE")
	} else {
		b.where("v.deleted = FALSE")
	}

	return b, nil
}

func orderBy(q *domain.ListQuery) string {
	var col string
	switch q.SortBy {
	case domain.SortByCreateTime:
		col = "v.create_time"
	case domain.SortByTitle:
		col = "LOWER(v.title)"
	case domain.SortByUsername:
		col = "LOWER(u.username)"
	default:
		col = "v.update_time"
	}
	dir := "ASC"
	if q.Descending() {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, v.id %s", col, dir, dir)
}
