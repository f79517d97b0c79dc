package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/mashenjun/snapvault/internal/observability"
)

// VersionStore is the slice of the version repo the pruner needs: select
// excess candidate ids, then delete by explicit id list. The two steps stay
// separate so each can be tested on its own against a fake store.
type VersionStore interface {
	ListExcessIDsAll(ctx context.Context, keep, limit int) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

// RetentionPolicy bounds one prune invocation. VersionsToKeep is the minimum
// number of most-recent versions that survive per dashboard; BatchSize and
// MaxBatches cap the total deletion work at BatchSize*MaxBatches rows.
type RetentionPolicy struct {
	VersionsToKeep int
	BatchSize      int
	MaxBatches     int
}

type RetentionPruner struct {
	store    VersionStore
	defaults RetentionPolicy
	metrics  *observability.Metrics
}

func NewRetentionPruner(store VersionStore, defaults RetentionPolicy, metrics *observability.Metrics) *RetentionPruner {
	return &RetentionPruner{store: store, defaults: defaults, metrics: metrics}
}

// PruneExpiredVersions deletes excess dashboard versions in capped rounds and
// returns how many rows were removed. Each round selects at most
// policy.BatchSize candidate ids store-side (oldest first within a dashboard)
// and deletes them; after policy.MaxBatches rounds the invocation stops even
// if excess rows remain, leaving them for the next run. A store error aborts
// the remaining rounds; rows deleted by completed rounds stay deleted.
func (p *RetentionPruner) PruneExpiredVersions(ctx context.Context, policy RetentionPolicy) (int64, error) {
	if policy.VersionsToKeep <= 0 || policy.BatchSize <= 0 || policy.MaxBatches <= 0 {
		return 0, nil
	}
	logger := logutil.GetLogger(ctx).With(
		zap.Int("versions_to_keep", policy.VersionsToKeep),
		zap.Int("batch_size", policy.BatchSize),
		zap.Int("max_batches", policy.MaxBatches),
	)
	var deleted int64
	for batch := 0; batch < policy.MaxBatches; batch++ {
		ids, err := p.store.ListExcessIDsAll(ctx, policy.VersionsToKeep, policy.BatchSize)
		if err != nil {
			p.observe(deleted, err)
			return deleted, err
		}
		if len(ids) == 0 {
			break
		}
		affected, err := p.store.DeleteByIDs(ctx, ids)
		deleted += affected
		if err != nil {
			p.observe(deleted, err)
			return deleted, err
		}
		if len(ids) < policy.BatchSize {
			break
		}
	}
	if deleted > 0 {
		logger.Info("pruned expired dashboard versions", zap.Int64("deleted", deleted))
	}
	p.observe(deleted, nil)
	return deleted, nil
}

// PruneWithDefaults runs one prune invocation with the configured policy.
func (p *RetentionPruner) PruneWithDefaults(ctx context.Context) (int64, error) {
	return p.PruneExpiredVersions(ctx, p.defaults)
}

// Defaults returns the configured policy, used by callers that override only
// some of its fields.
func (p *RetentionPruner) Defaults() RetentionPolicy {
	return p.defaults
}

func (p *RetentionPruner) observe(deleted int64, err error) {
	if p.metrics != nil {
		p.metrics.ObservePruneRun(deleted, err)
	}
}
