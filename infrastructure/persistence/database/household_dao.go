package database

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"template-backend/application/ports"
	"template-backend/domain/core/entities"
	apperrors "template-backend/pkg/errors"
)

// HouseholdDao reads and writes the household table
type HouseholdDao struct {
	database *MainDatabase
}

// Database returns the database this DAO was derived from
func (dao *HouseholdDao) Database() *MainDatabase {
	return dao.database
}

// FindByID returns one household
func (dao *HouseholdDao) FindByID(ctx context.Context, id int64) (*entities.Household, error) {
	var household entities.Household
	err := dao.database.db.GetContext(ctx, &household,
		`SELECT id, name, last_modified FROM household WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("household " + strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("find household", err)
	}
	return &household, nil
}

// FindAll returns every household ordered by name
func (dao *HouseholdDao) FindAll(ctx context.Context) ([]*entities.Household, error) {
	households := []*entities.Household{}
	err := dao.database.db.SelectContext(ctx, &households,
		`SELECT id, name, last_modified FROM household ORDER BY name, id`)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list households", err)
	}
	return households, nil
}

// Insert stores a new household and returns its id
func (dao *HouseholdDao) Insert(ctx context.Context, h *entities.Household) (int64, error) {
	var id int64
	err := dao.database.db.QueryRowxContext(ctx,
		`INSERT INTO household (name, last_modified) VALUES ($1, $2) RETURNING id`,
		h.Name, h.LastModified,
	).Scan(&id)
	if err != nil {
		return 0, apperrors.NewDatabaseError("insert household", err)
	}
	h.ID = id
	return id, nil
}

// Update overwrites an existing household
func (dao *HouseholdDao) Update(ctx context.Context, h *entities.Household) error {
	res, err := dao.database.db.ExecContext(ctx,
		`UPDATE household SET name = $1, last_modified = $2 WHERE id = $3`,
		h.Name, h.LastModified, h.ID)
	if err != nil {
		return apperrors.NewDatabaseError("update household", err)
	}
	return expectRow(res, "household", h.ID)
}

// Delete removes a household. Members keep their rows with no household.
func (dao *HouseholdDao) Delete(ctx context.Context, id int64) error {
	res, err := dao.database.db.ExecContext(ctx, `DELETE FROM household WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewDatabaseError("delete household", err)
	}
	return expectRow(res, "household", id)
}

// Count returns the number of households
func (dao *HouseholdDao) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := dao.database.db.GetContext(ctx, &n, `SELECT count(*) FROM household`); err != nil {
		return 0, apperrors.NewDatabaseError("count households", err)
	}
	return n, nil
}

var _ ports.HouseholdDao = (*HouseholdDao)(nil)
