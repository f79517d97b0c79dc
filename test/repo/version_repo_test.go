package repo_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mashenjun/snapvault/internal/model"
	appErr "github.com/mashenjun/snapvault/internal/pkg/errors"
	"github.com/mashenjun/snapvault/internal/repo"
	"github.com/mashenjun/snapvault/test/testutil"
)

func insertTestVersions(t *testing.T, versions *repo.VersionRepo, dashID string, count int) {
	t.Helper()
	for v := 1; v <= count; v++ {
		err := versions.Create(context.Background(), &model.DashboardVersion{
			ID:          fmt.Sprintf("%s-v%d", dashID, v),
			DashboardID: dashID,
			Version:     v,
			Title:       "test dash",
			Data:        fmt.Sprintf(`{"rev":%d}`, v),
			Ctime:       int64(1000 + v),
		})
		require.NoError(t, err)
	}
}

func TestVersionRepoRetrieval(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	versions := repo.NewVersionRepo(db)
	insertTestVersions(t, versions, "dash-1", 3)

	count, err := versions.CountByDashboard(context.Background(), "dash-1")
	require.NoError(t, err)
	require.Equal(t, 3, count)

	latest, err := versions.GetLatestVersion(context.Background(), "dash-1")
	require.NoError(t, err)
	require.Equal(t, 3, latest)

	v, err := versions.GetByVersion(context.Background(), "dash-1", 2)
	require.NoError(t, err)
	require.Equal(t, `{"rev":2}`, v.Data)

	_, err = versions.GetByVersion(context.Background(), "dash-1", 123)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	listed, err := versions.List(context.Background(), "dash-1", 0)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	require.Equal(t, 3, listed[0].Version)
	require.Equal(t, 1, listed[2].Version)

	listed, err = versions.List(context.Background(), "dash-missing", 0)
	require.ErrorIs(t, err, appErr.ErrNoVersions)
	require.Empty(t, listed)

	_, err = versions.ListSummaries(context.Background(), "dash-missing", 0)
	require.ErrorIs(t, err, appErr.ErrNoVersions)
}

func TestVersionRepoExcessSelection(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	versions := repo.NewVersionRepo(db)
	insertTestVersions(t, versions, "dash-1", 10)
	insertTestVersions(t, versions, "dash-2", 4)

	// dash-1 has 5 excess rows below keep=5, oldest first; dash-2 has none.
	ids, err := versions.ListExcessIDs(context.Background(), "dash-1", 5)
	require.NoError(t, err)
	require.Equal(t, []string{"dash-1-v1", "dash-1-v2", "dash-1-v3", "dash-1-v4", "dash-1-v5"}, ids)

	ids, err = versions.ListExcessIDs(context.Background(), "dash-2", 5)
	require.NoError(t, err)
	require.Empty(t, ids)

	all, err := versions.ListExcessIDsAll(context.Background(), 5, 100)
	require.NoError(t, err)
	require.Len(t, all, 5)

	// A capped select takes the deepest rows first, so the oldest versions of
	// dash-1 come before its newer excess rows.
	capped, err := versions.ListExcessIDsAll(context.Background(), 5, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"dash-1-v1", "dash-1-v2"}, capped)
}

func TestVersionRepoDeletion(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	versions := repo.NewVersionRepo(db)
	insertTestVersions(t, versions, "dash-1", 5)
	insertTestVersions(t, versions, "dash-2", 2)

	deleted, err := versions.DeleteByIDs(context.Background(), []string{"dash-1-v1", "dash-1-v2", "dash-1-vX"})
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	count, err := versions.CountByDashboard(context.Background(), "dash-1")
	require.NoError(t, err)
	require.Equal(t, 3, count)

	deleted, err = versions.DeleteByIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, deleted)

	require.NoError(t, versions.DeleteByDashboard(context.Background(), "dash-2"))
	count, err = versions.CountByDashboard(context.Background(), "dash-2")
	require.NoError(t, err)
	require.Zero(t, count)
}
