package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/mashenjun/snapvault/internal/model"
	"github.com/mashenjun/snapvault/internal/pkg/dbutil"
	appErr "github.com/mashenjun/snapvault/internal/pkg/errors"
)

type DashboardRepo struct {
	db *sql.DB
}

func NewDashboardRepo(db *sql.DB) *DashboardRepo {
	return &DashboardRepo{db: db}
}

func (r *DashboardRepo) Create(ctx context.Context, dash *model.Dashboard) error {
	data := map[string]interface{}{
		"id":      dash.ID,
		"title":   dash.Title,
		"data":    dash.Data,
		"version": dash.Version,
		"ctime":   dash.Ctime,
		"mtime":   dash.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("dashboards", []map[string]interface{}{data})
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

func (r *DashboardRepo) Update(ctx context.Context, dash *model.Dashboard) error {
	where := map[string]interface{}{
		"id": dash.ID,
	}
	update := map[string]interface{}{
		"title":   dash.Title,
		"data":    dash.Data,
		"version": dash.Version,
		"mtime":   dash.Mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("dashboards", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *DashboardRepo) GetByID(ctx context.Context, dashID string) (*model.Dashboard, error) {
	where := map[string]interface{}{
		"id": dashID,
	}
	sqlStr, args, err := builder.BuildSelect("dashboards", where, []string{"id", "title", "data", "version", "ctime", "mtime"})
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
	var dash model.Dashboard
	if err := rows.Scan(&dash.ID, &dash.Title, &dash.Data, &dash.Version, &dash.Ctime, &dash.Mtime); err != nil {
		return nil, err
	}
	return &dash, nil
}

func (r *DashboardRepo) List(ctx context.Context, limit, offset uint) ([]model.Dashboard, error) {
	where := map[string]interface{}{
		"_orderby": "mtime desc",
	}
	if limit > 0 {
		where["_limit"] = []uint{offset, limit}
	}
	sqlStr, args, err := builder.BuildSelect("dashboards", where, []string{"id", "title", "data", "version", "ctime", "mtime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	dashboards := make([]model.Dashboard, 0)
	for rows.Next() {
		var dash model.Dashboard
		if err := rows.Scan(&dash.ID, &dash.Title, &dash.Data, &dash.Version, &dash.Ctime, &dash.Mtime); err != nil {
			return nil, err
		}
		dashboards = append(dashboards, dash)
	}
	return dashboards, rows.Err()
}

func (r *DashboardRepo) Delete(ctx context.Context, dashID string) error {
	where := map[string]interface{}{
		"id": dashID,
	}
	sqlStr, args, err := builder.BuildDelete("dashboards", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
