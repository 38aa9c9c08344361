package repository

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/viz-backend/internal/visualizations/domain"
)

var recordCols = []string{
	"id", "title", "type", "dbkey", "slug", "deleted", "importable", "published",
	"user_id", "username", "email", "annotation", "tags",
	"create_time", "update_time", "latest_revision_id",
}

func setupRepo(t *testing.T) (*Repo, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewRepo(db), mock, db
}

func mustQuery(t *testing.T, raw map[string]any) *domain.ListQuery {
	t.Helper()
	q, err := domain.NewSchemas(nil).NewListQuery(raw)
	require.NoError(t, err)
	return q
}

func TestBuildFilters(t *testing.T) {
	viewer := &domain.Viewer{UserID: 7}

	t.Run("anonymous callers must ask for published", func(t *testing.T) {
		_, err := buildFilters(mustQuery(t, nil), nil)
		assert.ErrorIs(t, err, domain.ErrLoginRequired)
	})

	t.Run("shared and deleted conflict", func(t *testing.T) {
		_, err := buildFilters(mustQuery(t, map[string]any{"deleted": true, "show_shared": true}), viewer)
		assert.ErrorIs(t, err, domain.ErrConflictingFilters)
	})

	t.Run("shared defaults on for live listings", func(t *testing.T) {
		b, err := buildFilters(mustQuery(t, nil), viewer)
		require.NoError(t, err)
		require.Len(t, b.conds, 2)
		assert.Contains(t, b.conds[0], "visualization_user_share_association")
		assert.NotContains(t, b.conds[0], "v.user_id =")
		assert.Equal(t, "v.deleted = FALSE", b.conds[1])
		assert.Equal(t, []any{int64(7)}, b.args)
	})

	t.Run("own listing", func(t *testing.T) {
		b, err := buildFilters(mustQuery(t, map[string]any{"show_own": true, "show_shared": false}), viewer)
		require.NoError(t, err)
		assert.Equal(t, "(v.user_id = $1)", b.conds[0])
	})

	t.Run("deleted own listing", func(t *testing.T) {
		b, err := buildFilters(mustQuery(t, map[string]any{"deleted": true}), viewer)
		require.NoError(t, err)
		assert.Equal(t, "(v.user_id = $1)", b.conds[0])
		assert.Equal(t, "v.deleted = TRUE", b.conds[len(b.conds)-1])
	})

	t.Run("published never lists deleted", func(t *testing.T) {
		b, err := buildFilters(mustQuery(t, map[string]any{"show_published": true, "show_shared": false, "deleted": true}), nil)
		require.NoError(t, err)
		assert.Equal(t, "(v.published = TRUE)", b.conds[0])
		assert.Equal(t, "v.deleted = FALSE", b.conds[len(b.conds)-1])
		assert.Empty(t, b.args)
	})

	t.Run("alternatives are OR-ed", func(t *testing.T) {
		b, err := buildFilters(mustQuery(t, map[string]any{"show_own": true, "show_published": true}), viewer)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(b.conds[0], "(v.user_id = $1 OR v.published = TRUE OR EXISTS"))
	})

	t.Run("owner filter", func(t *testing.T) {
		b, err := buildFilters(mustQuery(t, map[string]any{"show_published": true, "user_id": 12}), nil)
		require.NoError(t, err)
		assert.Contains(t, b.conds, "v.user_id = $1")
		assert.Equal(t, []any{int64(12)}, b.args)
	})

	t.Run("search terms", func(t *testing.T) {
		b, err := buildFilters(mustQuery(t, map[string]any{
			"show_own":    true,
			"show_shared": false,
			"search":      "title:'my plot' tag:name:genome is:importable u:alice coverage",
		}), viewer)
		require.NoError(t, err)

		all := strings.Join(b.conds, "\n")
		assert.Contains(t, all, "v.title ILIKE $2")
		assert.Contains(t, all, "t.user_tname ILIKE $3 AND t.user_value ILIKE $4")
		assert.Contains(t, all, "v.importable = TRUE")
		assert.Contains(t, all, "u.username ILIKE $5")
		assert.Contains(t, all, "v.slug ILIKE $6")
		assert.Equal(t, []any{int64(7), "%my plot%", "name", "%genome%", "%alice%", "%coverage%"}, b.args)
	})

	t.Run("is:deleted turns on deleted rows", func(t *testing.T) {
		b, err := buildFilters(mustQuery(t, map[string]any{"show_own": true, "show_shared": false, "search": "is:deleted"}), viewer)
		require.NoError(t, err)
		assert.Equal(t, "v.deleted = TRUE", b.conds[len(b.conds)-1])
	})

	t.Run("shared_with_me requires a user", func(t *testing.T) {
		_, err := buildFilters(mustQuery(t, map[string]any{"show_published": true, "search": "is:shared_with_me"}), nil)
		assert.ErrorIs(t, err, domain.ErrLoginRequired)
	})

	t.Run("like patterns are escaped", func(t *testing.T) {
		assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
	})
}

func TestOrderBy(t *testing.T) {
	cases := map[string]string{
		"create_time": "ORDER BY v.create_time DESC, v.id DESC",
		"title":       "ORDER BY LOWER(v.title) DESC, v.id DESC",
		"update_time": "ORDER BY v.update_time DESC, v.id DESC",
		"username":    "ORDER BY LOWER(u.username) DESC, v.id DESC",
	}
	for sortBy, want := range cases {
		assert.Equal(t, want, orderBy(mustQuery(t, map[string]any{"sort_by": sortBy})))
	}
	assert.Equal(t, "ORDER BY v.update_time ASC, v.id ASC", orderBy(mustQuery(t, map[string]any{"sort_desc": false})))
}

func TestParseSearch(t *testing.T) {
	terms := parseSearch(`  title:"a b"  slug:x  plain  unknown:key u:bob tag: `)
	assert.Equal(t, []searchTerm{
		{Key: "title", Value: "a b"},
		{Key: "slug", Value: "x"},
		{Value: "plain"},
		{Value: "unknown:key"},
		{Key: "user", Value: "bob"},
	}, terms)

	assert.Empty(t, parseSearch(""))

	assert.Equal(t, []searchTerm{
		{Key: "title", Value: "my plot"},
		{Value: "x y"},
	}, parseSearch(`title:'my plot' "x y"`))

	assert.Equal(t, []searchTerm{
		{Key: "title", Value: "broken"},
		{Value: "quote"},
	}, parseSearch(`title:'broken quote`))
}

func TestRepo_List(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	viewer := &domain.Viewer{UserID: 7}

	mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM visualization v\s+JOIN galaxy_user u`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	mock.ExpectQuery(`ORDER BY v.update_time DESC, v.id DESC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs(int64(7), 100, 0).
		WillReturnRows(sqlmock.NewRows(recordCols).
			AddRow(1, "Coverage", "trackster", "hg38", "coverage", false, true, false,
				7, "alice", "alice@example.org", "notes", "{name:genome,qc}",
				now, now, 10).
			AddRow(2, "Scatter", "scatterplot", nil, nil, false, false, true,
				8, "bob", nil, nil, "{}",
				now, now, nil))

	page, err := repo.List(context.Background(), mustQuery(t, nil), viewer)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalMatches)
	require.Len(t, page.Records, 2)

	first := page.Records[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "hg38", *first.DBKey)
	assert.Equal(t, "notes", *first.Annotation)
	assert.Equal(t, []string{"name:genome", "qc"}, first.Tags)
	assert.Equal(t, int64(10), *first.LatestRevID)

	second := page.Records[1]
	assert.Nil(t, second.DBKey)
	assert.Nil(t, second.Slug)
	assert.Nil(t, second.LatestRevID)
	assert.Equal(t, []string{}, second.Tags)
	assert.Equal(t, "", second.Email)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_List_RejectsBeforeQuerying(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	_, err := repo.List(context.Background(), mustQuery(t, nil), nil)
	assert.ErrorIs(t, err, domain.ErrLoginRequired)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_Get(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("loads revisions", func(t *testing.T) {
		mock.ExpectQuery(`WHERE v.id = \$1`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(recordCols).
				AddRow(3, "Coverage", "trackster", nil, "coverage", false, true, true,
					7, "alice", "alice@example.org", nil, "{qc}", now, now, 31))
		mock.ExpectQuery(`SELECT id FROM visualization_revision`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(30).AddRow(31))
		mock.ExpectQuery(`SELECT id, visualization_id, title, dbkey, config, create_time`).
			WithArgs(int64(31)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "visualization_id", "title", "dbkey", "config", "create_time"}).
				AddRow(31, 3, "Coverage", "hg38", []byte(`{"view":{"chrom":"chr1"}}`), now))

		d, err := repo.Get(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, []int64{30, 31}, d.RevisionIDs)
		require.NotNil(t, d.LatestRevision)
		assert.Equal(t, int64(31), d.LatestRevision.ID)
		assert.Equal(t, "hg38", *d.LatestRevision.DBKey)
		assert.Equal(t, map[string]any{"chrom": "chr1"}, d.LatestRevision.Config["view"])
		assert.Equal(t, "coverage", *d.Slug)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`WHERE v.id = \$1`).
			WithArgs(int64(404)).
			WillReturnRows(sqlmock.NewRows(recordCols))

		_, err := repo.Get(context.Background(), 404)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("without latest revision", func(t *testing.T) {
		mock.ExpectQuery(`WHERE v.id = \$1`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(recordCols).
				AddRow(5, "Empty", "trackster", nil, nil, false, false, false,
					7, "alice", "alice@example.org", nil, "{}", now, now, nil))
		mock.ExpectQuery(`SELECT id FROM visualization_revision`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		d, err := repo.Get(context.Background(), 5)
		require.NoError(t, err)
		assert.Nil(t, d.LatestRevision)
		assert.Empty(t, d.RevisionIDs)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepo_IsSharedWith(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(3), int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	shared, err := repo.IsSharedWith(context.Background(), 3, 8)
	require.NoError(t, err)
	assert.True(t, shared)
	require.NoError(t, mock.ExpectationsWereMet())
}
