package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/GoSim-25-26J-441/viz-backend/internal/visualizations/cache"
	"github.com/GoSim-25-26J-441/viz-backend/internal/visualizations/domain"
)

// Repository is the read side of visualization storage.
type Repository interface {
	List(ctx context.Context, q *domain.ListQuery, viewer *domain.Viewer) (*domain.Page, error)
	Get(ctx context.Context, id int64) (*domain.Detail, error)
	IsSharedWith(ctx context.Context, id, userID int64) (bool, error)
}

// DetailCache stores serialized detailed views. Get returns cache.ErrMiss
// when nothing is stored.
type DetailCache interface {
	Get(ctx context.Context, id int64) (*domain.CachedDetail, error)
	Set(ctx context.Context, id int64, entry *domain.CachedDetail) error
}

// Plugins resolves the plugin descriptor for a visualization type.
type Plugins interface {
	Plugin(name string) (map[string]any, bool)
}

// VisualizationService assembles listings and detailed views.
type VisualizationService struct {
	repo    Repository
	cache   DetailCache
	plugins Plugins
	schemas *domain.Schemas
	logger  *slog.Logger
}

// NewVisualizationService wires the service. cache may be nil.
func NewVisualizationService(repo Repository, cache DetailCache, plugins Plugins, schemas *domain.Schemas, logger *slog.Logger) *VisualizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VisualizationService{
		repo:    repo,
		cache:   cache,
		plugins: plugins,
		schemas: schemas,
		logger:  logger,
	}
}

// List runs q for viewer and returns the page as summaries together with
// the total number of matches ignoring limit and offset.
func (s *VisualizationService) List(ctx context.Context, q *domain.ListQuery, viewer *domain.Viewer) (domain.SummaryList, int, error) {
	page, err := s.repo.List(ctx, q, viewer)
	if err != nil {
		return nil, 0, err
	}

	raws := make([]map[string]any, 0, len(page.Records))
	for i := range page.Records {
		raws = append(raws, summaryInput(&page.Records[i]))
	}
	list, err := s.schemas.NewSummaryList(raws)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			s.logger.ErrorContext(ctx, "stored visualizations failed validation",
				"visualization_ids", invalidRecordIDs(page.Records, verr),
				"error", err,
			)
		}
		return nil, 0, fmt.Errorf("build summaries: %w", err)
	}
	return list, page.TotalMatches, nil
}

// invalidRecordIDs maps "[i].field" error locations back to record ids.
func invalidRecordIDs(records []domain.Record, verr *domain.ValidationError) []int64 {
	seen := make(map[int]bool)
	var out []int64
	for _, fe := range verr.Errors {
		if !strings.HasPrefix(fe.Field, "[") {
			continue
		}
		end := strings.IndexByte(fe.Field, ']')
		if end < 0 {
			continue
		}
		i, err := strconv.Atoi(fe.Field[1:end])
		if err != nil || i < 0 || i >= len(records) || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, records[i].ID)
	}
	return out
}

// Get returns the detailed view of the visualization behind token. Callers
// other than the owner only see published, importable or shared items.
func (s *VisualizationService) Get(ctx context.Context, token string, viewer *domain.Viewer) (*domain.DetailedView, error) {
	id, err := s.schemas.Codec().Decode(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidID, token)
	}

	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, id, entry, viewer); err != nil {
		return nil, err
	}

	view, err := s.schemas.NewDetailedView(entry.View)
	if err != nil {
		return nil, fmt.Errorf("build detailed view: %w", err)
	}
	return view, nil
}

func (s *VisualizationService) load(ctx context.Context, id int64) (*domain.CachedDetail, error) {
	if s.cache != nil {
		entry, err := s.cache.Get(ctx, id)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.WarnContext(ctx, "visualization cache read failed", "visualization_id", id, "error", err)
		}
	}

	detail, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	view, err := s.schemas.NewDetailedView(s.detailInput(detail))
	if err != nil {
		return nil, fmt.Errorf("build detailed view: %w", err)
	}

	entry := &domain.CachedDetail{
		OwnerID:    detail.UserID,
		Published:  detail.Published,
		Importable: detail.Importable,
		View:       view.Raw(s.schemas.Codec()),
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, id, entry); err != nil {
			s.logger.WarnContext(ctx, "visualization cache write failed", "visualization_id", id, "error", err)
		}
	}
	return entry, nil
}

func (s *VisualizationService) checkAccess(ctx context.Context, id int64, entry *domain.CachedDetail, viewer *domain.Viewer) error {
	if entry.Published || entry.Importable {
		return nil
	}
	if viewer == nil {
		return domain.ErrForbidden
	}
	if viewer.UserID == entry.OwnerID {
		return nil
	}
	shared, err := s.repo.IsSharedWith(ctx, id, viewer.UserID)
	if err != nil {
		return err
	}
	if !shared {
		return domain.ErrForbidden
	}
	return nil
}

func summaryInput(rec *domain.Record) map[string]any {
	return map[string]any{
		"id":          rec.ID,
		"annotation":  optional(rec.Annotation),
		"dbkey":       optional(rec.DBKey),
		"deleted":     rec.Deleted,
		"importable":  rec.Importable,
		"published":   rec.Published,
		"tags":        rec.Tags,
		"title":       rec.Title,
		"type":        rec.Type,
		"username":    rec.Username,
		"create_time": rec.CreateTime,
		"update_time": rec.UpdateTime,
		"slug":        optional(rec.Slug),
	}
}

func (s *VisualizationService) detailInput(d *domain.Detail) map[string]any {
	codec := s.schemas.Codec()

	latest := map[string]any{}
	if rev := d.LatestRevision; rev != nil {
		config := rev.Config
		if config == nil {
			config = map[string]any{}
		}
		latest = map[string]any{
			"id":               codec.Encode(rev.ID),
			"visualization_id": codec.Encode(rev.VisualizationID),
			"title":            rev.Title,
			"dbkey":            optional(rev.DBKey),
			"config":           config,
			"create_time":      rev.CreateTime.UTC().Format("2006-01-02T15:04:05.999999"),
		}
	}

	plugin, ok := s.plugins.Plugin(d.Type)
	if !ok {
		plugin = map[string]any{}
	}

	raw := map[string]any{
		"id":              d.ID,
		"title":           d.Title,
		"type":            d.Type,
		"user_id":         d.UserID,
		"dbkey":           optional(d.DBKey),
		"slug":            optional(d.Slug),
		"latest_revision": latest,
		"revisions":       d.RevisionIDs,
		"url":             nil,
		"username":        d.Username,
		"email_hash":      nil,
		"tags":            d.Tags,
		"annotation":      optional(d.Annotation),
		"plugin":          plugin,
	}
	if d.Slug != nil && *d.Slug != "" {
		raw["url"] = fmt.Sprintf("/u/%s/v/%s", d.Username, *d.Slug)
	}
	if d.Email != "" {
		raw["email_hash"] = EmailHash(d.Email)
	}
	return raw
}

// EmailHash is the gravatar-style digest of an address: hex md5 of the
// trimmed, lower-cased email.
func EmailHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
