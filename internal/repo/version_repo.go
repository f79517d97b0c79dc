package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/mashenjun/snapvault/internal/model"
	"github.com/mashenjun/snapvault/internal/pkg/dbutil"
	appErr "github.com/mashenjun/snapvault/internal/pkg/errors"
)

type VersionRepo struct {
	db *sql.DB
}

func NewVersionRepo(db *sql.DB) *VersionRepo {
	return &VersionRepo{db: db}
}

func (r *VersionRepo) Create(ctx context.Context, version *model.DashboardVersion) error {
	data := map[string]interface{}{
		"id":           version.ID,
		"dashboard_id": version.DashboardID,
		"version":      version.Version,
		"title":        version.Title,
		"data":         version.Data,
		"message":      version.Message,
		"ctime":        version.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("dashboard_versions", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if dbutil.IsConflict(err) {
		return appErr.ErrConflict
	}
	return err
}

func (r *VersionRepo) GetLatestVersion(ctx context.Context, dashID string) (int, error) {
	where := map[string]interface{}{
		"dashboard_id": dashID,
		"_orderby":     "version desc",
		"_limit":       []uint{0, 1},
	}
	sqlStr, args, err := builder.BuildSelect("dashboard_versions", where, []string{"version"})
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return 0, appErr.ErrNotFound
	}
	var version int
	if err := rows.Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

func (r *VersionRepo) CountByDashboard(ctx context.Context, dashID string) (int, error) {
	where := map[string]interface{}{
		"dashboard_id": dashID,
	}
	sqlStr, args, err := builder.BuildSelect("dashboard_versions", where, []string{"count(1)"})
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// List returns all versions of a dashboard, newest first. A dashboard with
// zero recorded versions yields ErrNoVersions.
func (r *VersionRepo) List(ctx context.Context, dashID string, limit uint) ([]model.DashboardVersion, error) {
	where := map[string]interface{}{
		"dashboard_id": dashID,
		"_orderby":     "version desc",
	}
	if limit > 0 {
		where["_limit"] = []uint{0, limit}
	}
	sqlStr, args, err := builder.BuildSelect("dashboard_versions", where, []string{"id", "dashboard_id", "version", "title", "data", "message", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	versions := make([]model.DashboardVersion, 0)
	for rows.Next() {
		var v model.DashboardVersion
		if err := rows.Scan(&v.ID, &v.DashboardID, &v.Version, &v.Title, &v.Data, &v.Message, &v.Ctime); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return versions, appErr.ErrNoVersions
	}
	return versions, nil
}

func (r *VersionRepo) ListSummaries(ctx context.Context, dashID string, limit uint) ([]model.DashboardVersionSummary, error) {
	where := map[string]interface{}{
		"dashboard_id": dashID,
		"_orderby":     "version desc",
	}
	if limit > 0 {
		where["_limit"] = []uint{0, limit}
	}
	sqlStr, args, err := builder.BuildSelect("dashboard_versions", where, []string{"id", "dashboard_id", "version", "title", "message", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	versions := make([]model.DashboardVersionSummary, 0)
	for rows.Next() {
		var v model.DashboardVersionSummary
		if err := rows.Scan(&v.ID, &v.DashboardID, &v.Version, &v.Title, &v.Message, &v.Ctime); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return versions, appErr.ErrNoVersions
	}
	return versions, nil
}

func (r *VersionRepo) GetByVersion(ctx context.Context, dashID string, version int) (*model.DashboardVersion, error) {
	where := map[string]interface{}{
		"dashboard_id": dashID,
		"version":      version,
	}
	sqlStr, args, err := builder.BuildSelect("dashboard_versions", where, []string{"id", "dashboard_id", "version", "title", "data", "message", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var v model.DashboardVersion
	if err := rows.Scan(&v.ID, &v.DashboardID, &v.Version, &v.Title, &v.Data, &v.Message, &v.Ctime); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListExcessIDs returns, oldest first, the ids of every version of one
// dashboard except the keep most recent. Recency ranks by version desc with
// ctime and id as tie breakers.
func (r *VersionRepo) ListExcessIDs(ctx context.Context, dashID string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	sqlStr := `
		SELECT id
		FROM dashboard_versions
		WHERE dashboard_id = $1
		  AND id NOT IN (
			SELECT id
			FROM dashboard_versions
			WHERE dashboard_id = $2
			ORDER BY version DESC, ctime DESC, id DESC
			LIMIT $3
		  )
		ORDER BY version ASC, ctime ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, sqlStr, dashID, dashID, keep)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListExcessIDsAll selects up to limit excess version ids across every
// dashboard. Candidates are ordered by how deep they sit below the keep
// threshold, so within any single dashboard the oldest versions are always
// picked first even when the limit cuts the result short.
func (r *VersionRepo) ListExcessIDsAll(ctx context.Context, keep, limit int) ([]string, error) {
	if keep <= 0 || limit <= 0 {
		return nil, nil
	}
	sqlStr := `
		SELECT id
		FROM (
			SELECT id,
			       ROW_NUMBER() OVER (
			           PARTITION BY dashboard_id
			           ORDER BY version DESC, ctime DESC, id DESC
			       ) AS recency
			FROM dashboard_versions
		) ranked
		WHERE recency > $1
		ORDER BY recency DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, sqlStr, keep, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *VersionRepo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	where := map[string]interface{}{
		"id in": ids,
	}
	sqlStr, args, err := builder.BuildDelete("dashboard_versions", where)
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *VersionRepo) DeleteByDashboard(ctx context.Context, dashID string) error {
	where := map[string]interface{}{
		"dashboard_id": dashID,
	}
	sqlStr, args, err := builder.BuildDelete("dashboard_versions", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
