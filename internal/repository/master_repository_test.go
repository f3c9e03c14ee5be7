package repository

import (
	"context"
	"database/sql"
	"errors"
	"masterdata-web/internal/models"
	"masterdata-web/internal/rules"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*MasterRepository, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return NewMasterRepository(sqlx.NewDb(raw, "mysql")), mock
}

func sparePartTable(t *testing.T) *rules.Table {
	t.Helper()
	table, ok := rules.Get(models.MasterSparePart)
	require.True(t, ok)
	return table
}

func TestMasterRepository_GetRows(t *testing.T) {
	repo, mock := newMockRepo(t)
	table := sparePartTable(t)

	columns := []string{"id", "spare_part_name", "spare_part_sub_group_name", "machine_name", "product_hsn_name",
		"unit", "rate", "minimum_stock_qty", "purchase_order_quantity", "description"}
	mock.ExpectQuery(`SELECT spare_part_id AS id, spare_part_name, .* FROM spare_part_master WHERE spare_part_group_id = \? AND is_deleted = 0`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(1), []byte("Bearing 6204"), nil, []byte("Heidelberg"), []byte("Parts 18%"),
				[]byte("NOS"), []byte("125.5000"), []byte("10.0000"), nil, nil))

	rows, err := repo.GetRows(context.Background(), table, 4)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0].ID())
	assert.Equal(t, "Bearing 6204", rows[0]["sparePartName"])
	assert.Equal(t, 125.5, rows[0]["rate"])
	assert.Equal(t, 10.0, rows[0]["minimumStockQty"])
	assert.NotContains(t, rows[0], "description")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMasterRepository_GetRowsFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection refused"))

	_, err := repo.GetRows(context.Background(), sparePartTable(t), 4)

	assert.ErrorIs(t, err, models.ErrPersistence)
}

func TestMasterRepository_InsertRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	table := sparePartTable(t)
	row := models.Row{"sparePartName": " Bearing 6204 ", "unit": "NOS", "productHSNName": "Parts 18%", "rate": 125.5}

	mock.ExpectExec(`INSERT INTO spare_part_master \(spare_part_group_id, spare_part_name, .*created_by, created_at\) SELECT .* WHERE NOT EXISTS`).
		WithArgs(int64(4), "Bearing 6204", nil, nil, "Parts 18%", "NOS", 125.5, nil, nil, nil, "admin",
			int64(4), "Bearing 6204").
		WillReturnResult(sqlmock.NewResult(42, 1))

	id, err := repo.InsertRow(context.Background(), table, 4, row, "admin")

	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMasterRepository_InsertRowDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)
	table := sparePartTable(t)
	row := models.Row{"sparePartName": "Bearing 6204"}

	mock.ExpectExec("INSERT INTO spare_part_master").WillReturnResult(sqlmock.NewResult(0, 0))
	_, err := repo.InsertRow(context.Background(), table, 4, row, "admin")
	assert.ErrorIs(t, err, models.ErrDuplicateRow)

	mock.ExpectExec("INSERT INTO spare_part_master").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'Bearing 6204'"})
	_, err = repo.InsertRow(context.Background(), table, 4, row, "admin")
	assert.ErrorIs(t, err, models.ErrDuplicateRow)

	mock.ExpectExec("INSERT INTO spare_part_master").
		WillReturnError(&mysql.MySQLError{Number: 1406, Message: "Data too long"})
	_, err = repo.InsertRow(context.Background(), table, 4, row, "admin")
	assert.ErrorIs(t, err, models.ErrPersistence)
}

func TestMasterRepository_SoftDeleteAll(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`UPDATE spare_part_master SET is_deleted = 1, deleted_by = \?, deleted_at = NOW\(\) WHERE spare_part_group_id = \?`).
		WithArgs("admin", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 17))

	count, err := repo.SoftDeleteAll(context.Background(), sparePartTable(t), 4, "admin")

	require.NoError(t, err)
	assert.Equal(t, int64(17), count)
}

func TestMasterRepository_SoftDeleteMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("UPDATE spare_part_master").WithArgs("admin", int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), sparePartTable(t), 99, "admin")

	assert.ErrorIs(t, err, models.ErrRowNotFound)
}

func TestMasterRepository_GetGroup(t *testing.T) {
	repo, mock := newMockRepo(t)
	table := sparePartTable(t)

	mock.ExpectQuery("SELECT spare_part_group_id AS id, spare_part_group_name AS name FROM spare_part_group_master").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(4, "BEARINGS"))
	group, err := repo.GetGroup(context.Background(), table, 4)
	require.NoError(t, err)
	assert.Equal(t, "BEARINGS", group.Name)
	assert.Equal(t, models.MasterSparePart, group.MasterType)

	mock.ExpectQuery("SELECT").WithArgs(int64(5)).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetGroup(context.Background(), table, 5)
	assert.ErrorIs(t, err, models.ErrGroupNotFound)
}

func TestMasterRepository_GetCountryStates(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT country, state FROM country_state_master").
		WillReturnRows(sqlmock.NewRows([]string{"country", "state"}).
			AddRow("India", "Maharashtra").
			AddRow("India", "Gujarat").
			AddRow("Nepal", "Bagmati"))

	states, err := repo.GetCountryStates(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Gujarat", "Maharashtra"}, states["India"])
	assert.Equal(t, []string{"Bagmati"}, states["Nepal"])
}

func TestMasterRepository_CreateClearAudit(t *testing.T) {
	repo, mock := newMockRepo(t)
	audit := &models.ClearAudit{
		ID: "a1", MasterType: models.MasterItem, GroupID: 2, Username: "admin",
		Reason: "re-import", DeletedCount: 3, CreatedAt: time.Now(),
	}
	mock.ExpectExec("INSERT INTO clear_audit_log").
		WithArgs("a1", models.MasterItem, int64(2), "admin", "re-import", int64(3), audit.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreateClearAudit(context.Background(), audit))
	assert.NoError(t, mock.ExpectationsWereMet())
}
