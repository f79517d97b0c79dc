package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/mashenjun/snapvault/internal/pkg/errors"
	"github.com/mashenjun/snapvault/internal/repo"
	"github.com/mashenjun/snapvault/internal/service"
	"github.com/mashenjun/snapvault/test/testutil"
)

func newTestService(t *testing.T) (*service.DashboardService, *repo.VersionRepo, func()) {
	t.Helper()
	db, cleanup := testutil.OpenTestDB(t)
	dashRepo := repo.NewDashboardRepo(db)
	versionRepo := repo.NewVersionRepo(db)
	svc, err := service.NewDashboardService(dashRepo, versionRepo, 64, nil)
	require.NoError(t, err)
	return svc, versionRepo, cleanup
}

func TestDashboardSaveRecordsVersions(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()

	dash, err := svc.Create(context.Background(), service.DashboardSaveInput{Title: "test dash", Data: `{"rev":1}`})
	require.NoError(t, err)
	require.Equal(t, 1, dash.Version)

	for i := 2; i <= 4; i++ {
		dash, err = svc.Update(context.Background(), dash.ID, service.DashboardSaveInput{
			Title: "test dash",
			Data:  fmt.Sprintf(`{"rev":%d}`, i),
		})
		require.NoError(t, err)
		require.Equal(t, i, dash.Version)
	}

	summaries, err := svc.ListVersions(context.Background(), dash.ID, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 4)
	require.Equal(t, 4, summaries[0].Version)

	v2, err := svc.GetVersion(context.Background(), dash.ID, 2)
	require.NoError(t, err)
	require.Equal(t, `{"rev":2}`, v2.Data)

	// Second read comes from the payload cache and must match.
	again, err := svc.GetVersion(context.Background(), dash.ID, 2)
	require.NoError(t, err)
	require.Equal(t, v2.Data, again.Data)

	_, err = svc.GetVersion(context.Background(), dash.ID, 99)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	_, err = svc.GetVersion(context.Background(), "dash-missing", 1)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDashboardRestoreVersion(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()

	dash, err := svc.Create(context.Background(), service.DashboardSaveInput{Title: "test dash", Data: `{"rev":1}`})
	require.NoError(t, err)
	for i := 2; i <= 3; i++ {
		dash, err = svc.Update(context.Background(), dash.ID, service.DashboardSaveInput{
			Title: "test dash",
			Data:  fmt.Sprintf(`{"rev":%d}`, i),
		})
		require.NoError(t, err)
	}

	restored, err := svc.RestoreVersion(context.Background(), dash.ID, 1)
	require.NoError(t, err)
	require.Equal(t, 4, restored.Version)
	require.Equal(t, `{"rev":1}`, restored.Data)

	v4, err := svc.GetVersion(context.Background(), dash.ID, 4)
	require.NoError(t, err)
	require.Equal(t, `{"rev":1}`, v4.Data)
	require.Equal(t, "restored from version 1", v4.Message)
}

func TestDashboardDeleteCascadesVersions(t *testing.T) {
	svc, versions, cleanup := newTestService(t)
	defer cleanup()

	dash, err := svc.Create(context.Background(), service.DashboardSaveInput{Title: "test dash", Data: `{}`})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), dash.ID))

	_, err = svc.Get(context.Background(), dash.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	count, err := versions.CountByDashboard(context.Background(), dash.ID)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestPruneExpiredVersionsEndToEnd(t *testing.T) {
	svc, versions, cleanup := newTestService(t)
	defer cleanup()

	dash, err := svc.Create(context.Background(), service.DashboardSaveInput{Title: "test dash", Data: `{"rev":1}`})
	require.NoError(t, err)
	for i := 2; i <= 10; i++ {
		_, err = svc.Update(context.Background(), dash.ID, service.DashboardSaveInput{
			Title: "test dash",
			Data:  fmt.Sprintf(`{"rev":%d}`, i),
		})
		require.NoError(t, err)
	}

	pruner := service.NewRetentionPruner(versions, service.RetentionPolicy{
		VersionsToKeep: 5,
		BatchSize:      100,
		MaxBatches:     10,
	}, nil)

	deleted, err := pruner.PruneWithDefaults(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 5, deleted)

	summaries, err := svc.ListVersions(context.Background(), dash.ID, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 5)
	require.Equal(t, 10, summaries[0].Version)
	require.Equal(t, 6, summaries[len(summaries)-1].Version)

	// Raising the keep threshold afterwards must not delete anything more.
	deleted, err = pruner.PruneExpiredVersions(context.Background(), service.RetentionPolicy{
		VersionsToKeep: 10,
		BatchSize:      100,
		MaxBatches:     10,
	})
	require.NoError(t, err)
	require.Zero(t, deleted)
}
