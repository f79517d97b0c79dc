package job

import (
	"context"

	"github.com/mashenjun/snapvault/internal/service"
)

// VersionRetentionJob runs one bounded prune invocation per tick. A capped
// run that leaves excess rows behind is fine; the next tick picks them up.
type VersionRetentionJob struct {
	pruner *service.RetentionPruner
}

func NewVersionRetentionJob(pruner *service.RetentionPruner) *VersionRetentionJob {
	return &VersionRetentionJob{pruner: pruner}
}

func (j *VersionRetentionJob) Name() string {
	return "version_retention"
}

func (j *VersionRetentionJob) Run(ctx context.Context) error {
	if j.pruner == nil {
		return nil
	}
	_, err := j.pruner.PruneWithDefaults(ctx)
	return err
}
