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

const individualColumns = `id, household_id, individual_type, first_name, last_name, birth_date,
	alarm_time, phone, email, available, last_modified`

// IndividualDao reads and writes the individual table
type IndividualDao struct {
	database *MainDatabase
}

// Database returns the database this DAO was derived from
func (dao *IndividualDao) Database() *MainDatabase {
	return dao.database
}

// FindByID returns one individual
func (dao *IndividualDao) FindByID(ctx context.Context, id int64) (*entities.Individual, error) {
	var individual entities.Individual
	err := dao.database.db.GetContext(ctx, &individual,
		`SELECT `+individualColumns+` FROM individual WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("individual " + strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("find individual", err)
	}
	return &individual, nil
}

// FindAll returns every individual ordered by name
func (dao *IndividualDao) FindAll(ctx context.Context) ([]*entities.Individual, error) {
	individuals := []*entities.Individual{}
	err := dao.database.db.SelectContext(ctx, &individuals,
		`SELECT `+individualColumns+` FROM individual ORDER BY last_name, first_name, id`)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list individuals", err)
	}
	return individuals, nil
}

// FindByHousehold returns the members of a household
func (dao *IndividualDao) FindByHousehold(ctx context.Context, householdID int64) ([]*entities.Individual, error) {
	individuals := []*entities.Individual{}
	err := dao.database.db.SelectContext(ctx, &individuals,
		`SELECT `+individualColumns+` FROM individual WHERE household_id = $1 ORDER BY id`, householdID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list household members", err)
	}
	return individuals, nil
}

// Insert stores a new individual and returns its id
func (dao *IndividualDao) Insert(ctx context.Context, i *entities.Individual) (int64, error) {
	var id int64
	err := dao.database.db.QueryRowxContext(ctx,
		`INSERT INTO individual (household_id, individual_type, first_name, last_name, birth_date,
			alarm_time, phone, email, available, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		i.HouseholdID, i.IndividualType, i.FirstName, i.LastName, i.BirthDate,
		i.AlarmTime, i.Phone, i.Email, i.Available, i.LastModified,
	).Scan(&id)
	if err != nil {
		return 0, apperrors.NewDatabaseError("insert individual", err)
	}
	i.ID = id
	return id, nil
}

// Update overwrites an existing individual
func (dao *IndividualDao) Update(ctx context.Context, i *entities.Individual) error {
	res, err := dao.database.db.NamedExecContext(ctx,
		`UPDATE individual SET household_id = :household_id, individual_type = :individual_type,
			first_name = :first_name, last_name = :last_name, birth_date = :birth_date,
			alarm_time = :alarm_time, phone = :phone, email = :email, available = :available,
			last_modified = :last_modified
		WHERE id = :id`, i)
	if err != nil {
		return apperrors.NewDatabaseError("update individual", err)
	}
	return expectRow(res, "individual", i.ID)
}

// Delete removes an individual
func (dao *IndividualDao) Delete(ctx context.Context, id int64) error {
	res, err := dao.database.db.ExecContext(ctx, `DELETE FROM individual WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewDatabaseError("delete individual", err)
	}
	return expectRow(res, "individual", id)
}

// Count returns the number of individuals
func (dao *IndividualDao) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := dao.database.db.GetContext(ctx, &n, `SELECT count(*) FROM individual`); err != nil {
		return 0, apperrors.NewDatabaseError("count individuals", err)
	}
	return n, nil
}

func expectRow(res sql.Result, resource string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewDatabaseError("rows affected", err)
	}
	if n == 0 {
		return apperrors.NewNotFoundError(resource + " " + strconv.FormatInt(id, 10))
	}
	return nil
}

var _ ports.IndividualDao = (*IndividualDao)(nil)
