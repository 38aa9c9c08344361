package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/GoSim-25-26J-441/viz-backend/internal/visualizations/domain"
)

// Repo reads visualizations, their revisions, tags, annotations and shares
// from Postgres.
type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

const recordColumns = `
	v.id, v.title, v.type, v.dbkey, v.slug, v.deleted, v.importable, v.published,
	v.user_id, u.username, u.email,
	(SELECT a.annotation FROM visualization_annotation_association a
	  WHERE a.visualization_id = v.id AND a.user_id = v.user_id
	  ORDER BY a.id LIMIT 1) AS annotation,
	COALESCE(ARRAY(SELECT ` + tagText + ` FROM visualization_tag_association t
	  WHERE t.visualization_id = v.id ORDER BY t.id), '{}') AS tags,
	v.create_time, v.update_time, v.latest_revision_id`

const fromVisualization = `
FROM visualization v
JOIN galaxy_user u ON u.id = v.user_id`

// List returns one page of visualizations visible to viewer (nil for an
// anonymous caller) together with the total number of matches.
func (r *Repo) List(ctx context.Context, q *domain.ListQuery, viewer *domain.Viewer) (*domain.Page, error) {
	b, err := buildFilters(q, viewer)
	if err != nil {
		return nil, err
	}

	countQ := "SELECT COUNT(*)" + fromVisualization + "\n" + b.clause()
	var total int
	if err := r.db.QueryRowContext(ctx, countQ, b.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count visualizations: %w", err)
	}

	limit, offset := q.EffectiveLimit(), q.EffectiveOffset()
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}

	listQ := "SELECT" + recordColumns + fromVisualization + "\n" + b.clause() + "\n" + orderBy(q) +
		"\nLIMIT " + b.arg(limit) + " OFFSET " + b.arg(offset)

	rows, err := r.db.QueryContext(ctx, listQ, b.args...)
	if err != nil {
		return nil, fmt.Errorf("list visualizations: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan visualization: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list visualizations: %w", err)
	}

	return &domain.Page{Records: out, TotalMatches: total}, nil
}

// Get loads a visualization with its revision ids (oldest first) and its
// latest revision.
func (r *Repo) Get(ctx context.Context, id int64) (*domain.Detail, error) {
	q := "SELECT" + recordColumns + fromVisualization + "\nWHERE v.id = $1"
	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get visualization: %w", err)
	}

	d := &domain.Detail{Record: *rec}

	d.RevisionIDs, err = r.revisionIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	if rec.LatestRevID != nil {
		rev, err := r.revision(ctx, *rec.LatestRevID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		d.LatestRevision = rev
	}

	return d, nil
}

// IsSharedWith reports whether the visualization has been shared with userID.
func (r *Repo) IsSharedWith(ctx context.Context, id, userID int64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM visualization_user_share_association WHERE visualization_id = $1 AND user_id = $2)`
	var shared bool
	if err := r.db.QueryRowContext(ctx, q, id, userID).Scan(&shared); err != nil {
		return false, fmt.Errorf("check visualization share: %w", err)
	}
	return shared, nil
}

func (r *Repo) revisionIDs(ctx context.Context, id int64) ([]int64, error) {
	const q = `
SELECT id FROM visualization_revision
WHERE visualization_id = $1
ORDER BY create_time, id`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	out := make([]int64, 0, 8)
	for rows.Next() {
		var revID int64
		if err := rows.Scan(&revID); err != nil {
			return nil, fmt.Errorf("scan revision id: %w", err)
		}
		out = append(out, revID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	return out, nil
}

func (r *Repo) revision(ctx context.Context, revID int64) (*domain.Revision, error) {
	const q = `
SELECT id, visualization_id, title, dbkey, config, create_time
FROM visualization_revision
WHERE id = $1`
	var (
		rev    domain.Revision
		dbkey  sql.NullString
		config []byte
	)
	err := r.db.QueryRowContext(ctx, q, revID).
		Scan(&rev.ID, &rev.VisualizationID, &rev.Title, &dbkey, &config, &rev.CreateTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get revision: %w", err)
	}
	rev.DBKey = nullString(dbkey)

	rev.Config = map[string]any{}
	if len(config) > 0 {
		if err := json.Unmarshal(config, &rev.Config); err != nil || rev.Config == nil {
			rev.Config = map[string]any{}
		}
	}
	return &rev, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*domain.Record, error) {
	var (
		rec                     domain.Record
		dbkey, slug, annotation sql.NullString
		email                   sql.NullString
		latestRev               sql.NullInt64
	)
	err := s.Scan(
		&rec.ID, &rec.Title, &rec.Type, &dbkey, &slug, &rec.Deleted, &rec.Importable, &rec.Published,
		&rec.UserID, &rec.Username, &email,
		&annotation,
		pq.Array(&rec.Tags),
		&rec.CreateTime, &rec.UpdateTime, &latestRev,
	)
	if err != nil {
		return nil, err
	}
	rec.DBKey = nullString(dbkey)
	rec.Slug = nullString(slug)
	rec.Annotation = nullString(annotation)
	rec.Email = email.String
	if latestRev.Valid {
		v := latestRev.Int64
		rec.LatestRevID = &v
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	return &rec, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
