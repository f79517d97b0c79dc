package service

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mashenjun/snapvault/internal/model"
	"github.com/mashenjun/snapvault/internal/observability"
	appErr "github.com/mashenjun/snapvault/internal/pkg/errors"
	"github.com/mashenjun/snapvault/internal/pkg/timeutil"
	"github.com/mashenjun/snapvault/internal/repo"
)

type DashboardService struct {
	dashboards *repo.DashboardRepo
	versions   *repo.VersionRepo
	cache      *lru.Cache[string, *model.DashboardVersion]
	metrics    *observability.Metrics
}

// NewDashboardService wires the dashboard CRUD flow. cacheSize bounds the LRU
// over version payloads; versions are immutable once written, so cached
// entries never go stale. cacheSize <= 0 disables the cache.
func NewDashboardService(dashboards *repo.DashboardRepo, versions *repo.VersionRepo, cacheSize int, metrics *observability.Metrics) (*DashboardService, error) {
	s := &DashboardService{dashboards: dashboards, versions: versions, metrics: metrics}
	if cacheSize > 0 {
		cache, err := lru.New[string, *model.DashboardVersion](cacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}
	return s, nil
}

type DashboardSaveInput struct {
	Title   string
	Data    string
	Message string
}

func (s *DashboardService) Create(ctx context.Context, input DashboardSaveInput) (*model.Dashboard, error) {
	now := timeutil.NowUnix()
	dash := &model.Dashboard{
		ID:      newID(),
		Title:   input.Title,
		Data:    input.Data,
		Version: 1,
		Ctime:   now,
		Mtime:   now,
	}
	if err := s.dashboards.Create(ctx, dash); err != nil {
		return nil, err
	}
	if err := s.recordVersion(ctx, dash, input.Message, now); err != nil {
		return nil, err
	}
	return dash, nil
}

func (s *DashboardService) Update(ctx context.Context, dashID string, input DashboardSaveInput) (*model.Dashboard, error) {
	if _, err := s.dashboards.GetByID(ctx, dashID); err != nil {
		return nil, err
	}
	next := 1
	if latest, err := s.versions.GetLatestVersion(ctx, dashID); err == nil {
		next = latest + 1
	} else if err != appErr.ErrNotFound {
		return nil, err
	}
	now := timeutil.NowUnix()
	dash := &model.Dashboard{
		ID:      dashID,
		Title:   input.Title,
		Data:    input.Data,
		Version: next,
		Mtime:   now,
	}
	if err := s.dashboards.Update(ctx, dash); err != nil {
		return nil, err
	}
	if err := s.recordVersion(ctx, dash, input.Message, now); err != nil {
		return nil, err
	}
	return dash, nil
}

func (s *DashboardService) Get(ctx context.Context, dashID string) (*model.Dashboard, error) {
	return s.dashboards.GetByID(ctx, dashID)
}

func (s *DashboardService) List(ctx context.Context, limit, offset uint) ([]model.Dashboard, error) {
	return s.dashboards.List(ctx, limit, offset)
}

func (s *DashboardService) Delete(ctx context.Context, dashID string) error {
	if err := s.dashboards.Delete(ctx, dashID); err != nil {
		return err
	}
	return s.versions.DeleteByDashboard(ctx, dashID)
}

func (s *DashboardService) ListVersions(ctx context.Context, dashID string, limit uint) ([]model.DashboardVersionSummary, error) {
	if _, err := s.dashboards.GetByID(ctx, dashID); err != nil {
		return nil, err
	}
	return s.versions.ListSummaries(ctx, dashID, limit)
}

func (s *DashboardService) GetVersion(ctx context.Context, dashID string, version int) (*model.DashboardVersion, error) {
	if _, err := s.dashboards.GetByID(ctx, dashID); err != nil {
		return nil, err
	}
	key := versionCacheKey(dashID, version)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.observeCache("hit")
			return cached, nil
		}
		s.observeCache("miss")
	}
	v, err := s.versions.GetByVersion(ctx, dashID, version)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Add(key, v)
	}
	return v, nil
}

// RestoreVersion saves the payload of an old version as a brand new version.
// The version counter never rewinds; restoring version 3 of a dashboard at
// version 7 produces version 8.
func (s *DashboardService) RestoreVersion(ctx context.Context, dashID string, version int) (*model.Dashboard, error) {
	old, err := s.GetVersion(ctx, dashID, version)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, dashID, DashboardSaveInput{
		Title:   old.Title,
		Data:    old.Data,
		Message: fmt.Sprintf("restored from version %d", version),
	})
}

func (s *DashboardService) recordVersion(ctx context.Context, dash *model.Dashboard, message string, now int64) error {
	version := &model.DashboardVersion{
		ID:          newID(),
		DashboardID: dash.ID,
		Version:     dash.Version,
		Title:       dash.Title,
		Data:        dash.Data,
		Message:     message,
		Ctime:       now,
	}
	if err := s.versions.Create(ctx, version); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.DashboardSaves.Inc()
	}
	return nil
}

func (s *DashboardService) observeCache(result string) {
	if s.metrics != nil {
		s.metrics.VersionCache.WithLabelValues(result).Inc()
	}
}

func versionCacheKey(dashID string, version int) string {
	return fmt.Sprintf("%s:%d", dashID, version)
}
