package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"masterdata-web/internal/models"
	"masterdata-web/internal/rules"
	"sort"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// MasterRepository persists the rows, groups and reference lists of every master type.
// Table and column identifiers come from the registered rule tables, never from requests.
type MasterRepository struct {
	db *sqlx.DB
}

func NewMasterRepository(db *sqlx.DB) *MasterRepository {
	return &MasterRepository{db: db}
}

// Groups

func (r *MasterRepository) GetGroups(ctx context.Context, t *rules.Table) ([]models.Group, error) {
	groups := []models.Group{}
	query := fmt.Sprintf("SELECT %s AS id, %s AS name FROM %s WHERE is_deleted = 0 ORDER BY %s",
		t.GroupIDColumn, t.GroupNameColumn, t.GroupTable, t.GroupNameColumn)
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("%w: failed to get %s groups: %v", models.ErrPersistence, t.Type, err)
	}
	for i := range groups {
		groups[i].MasterType = t.Type
	}
	return groups, nil
}

func (r *MasterRepository) GetGroup(ctx context.Context, t *rules.Table, groupID int64) (*models.Group, error) {
	var group models.Group
	query := fmt.Sprintf("SELECT %s AS id, %s AS name FROM %s WHERE %s = ? AND is_deleted = 0 LIMIT 1",
		t.GroupIDColumn, t.GroupNameColumn, t.GroupTable, t.GroupIDColumn)
	err := r.db.GetContext(ctx, &group, query, groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s group %d", models.ErrGroupNotFound, t.Type, groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get group: %v", models.ErrPersistence, err)
	}
	group.MasterType = t.Type
	return &group, nil
}

// Rows

// GetRows returns the non-deleted rows of a group in insertion order.
func (r *MasterRepository) GetRows(ctx context.Context, t *rules.Table, groupID int64) ([]models.Row, error) {
	cols := make([]string, 0, len(t.Fields)+1)
	cols = append(cols, t.IDColumn+" AS "+models.RowIDKey)
	for _, f := range t.Fields {
		cols = append(cols, f.DBColumn)
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? AND is_deleted = 0 ORDER BY %s",
		strings.Join(cols, ", "), t.TableName, t.GroupIDColumn, t.IDColumn)

	rs, err := r.db.QueryxContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get rows: %v", models.ErrPersistence, err)
	}
	defer rs.Close()

	rows := []models.Row{}
	for rs.Next() {
		record := make(map[string]interface{})
		if err := rs.MapScan(record); err != nil {
			return nil, fmt.Errorf("%w: failed to scan row: %v", models.ErrPersistence, err)
		}
		row := models.Row{models.RowIDKey: toInt64(record[models.RowIDKey])}
		for _, f := range t.Fields {
			if v := fromDB(f, record[f.DBColumn]); v != nil {
				row[f.Key] = v
			}
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read rows: %v", models.ErrPersistence, err)
	}
	return rows, nil
}

func (r *MasterRepository) CountRows(ctx context.Context, t *rules.Table, groupID int64) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ? AND is_deleted = 0", t.TableName, t.GroupIDColumn)
	if err := r.db.GetContext(ctx, &count, query, groupID); err != nil {
		return 0, fmt.Errorf("%w: failed to count rows: %v", models.ErrPersistence, err)
	}
	return count, nil
}

// InsertRow stores one row unless an active row of the group already carries its natural key.
// Returns ErrDuplicateRow when the key is taken, including unique index violations.
func (r *MasterRepository) InsertRow(ctx context.Context, t *rules.Table, groupID int64, row models.Row, actor string) (int64, error) {
	cols := []string{t.GroupIDColumn}
	args := []interface{}{groupID}
	for _, f := range t.Fields {
		cols = append(cols, f.DBColumn)
		args = append(args, toDB(f, row))
	}
	cols = append(cols, "created_by")
	args = append(args, actor)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	conds := []string{t.GroupIDColumn + " = ?", "is_deleted = 0"}
	args = append(args, groupID)
	for _, key := range t.NaturalKey {
		f, _ := t.Field(key)
		if f.Kind == rules.KindNumber {
			conds = append(conds, f.DBColumn+" = ?")
		} else {
			conds = append(conds, "LOWER(TRIM("+f.DBColumn+")) = LOWER(TRIM(?))")
		}
		args = append(args, toDB(f, row))
	}

	query := fmt.Sprintf("INSERT INTO %s (%s, created_at) SELECT %s, NOW() FROM DUAL WHERE NOT EXISTS (SELECT 1 FROM %s WHERE %s)",
		t.TableName, strings.Join(cols, ", "), placeholders, t.TableName, strings.Join(conds, " AND "))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return 0, fmt.Errorf("%w: %s", models.ErrDuplicateRow, myErr.Message)
		}
		return 0, fmt.Errorf("%w: failed to insert row: %v", models.ErrPersistence, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to insert row: %v", models.ErrPersistence, err)
	}
	if affected == 0 {
		return 0, models.ErrDuplicateRow
	}
	id, _ := result.LastInsertId()
	return id, nil
}

func (r *MasterRepository) SoftDelete(ctx context.Context, t *rules.Table, id int64, actor string) error {
	query := fmt.Sprintf("UPDATE %s SET is_deleted = 1, deleted_by = ?, deleted_at = NOW() WHERE %s = ? AND is_deleted = 0",
		t.TableName, t.IDColumn)
	result, err := r.db.ExecContext(ctx, query, actor, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete row: %v", models.ErrPersistence, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("%w: %s %d", models.ErrRowNotFound, t.Type, id)
	}
	return nil
}

// SoftDeleteAll marks every active row of the group deleted and returns how many it touched.
func (r *MasterRepository) SoftDeleteAll(ctx context.Context, t *rules.Table, groupID int64, actor string) (int64, error) {
	query := fmt.Sprintf("UPDATE %s SET is_deleted = 1, deleted_by = ?, deleted_at = NOW() WHERE %s = ? AND is_deleted = 0",
		t.TableName, t.GroupIDColumn)
	result, err := r.db.ExecContext(ctx, query, actor, groupID)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to clear group: %v", models.ErrPersistence, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to clear group: %v", models.ErrPersistence, err)
	}
	return affected, nil
}

// Reference lists

func (r *MasterRepository) GetUnits(ctx context.Context) ([]string, error) {
	units := []string{}
	query := "SELECT unit_symbol FROM unit_master WHERE is_deleted = 0 ORDER BY unit_symbol"
	if err := r.db.SelectContext(ctx, &units, query); err != nil {
		return nil, fmt.Errorf("%w: failed to get units: %v", models.ErrPersistence, err)
	}
	return units, nil
}

// GetHSNGroups returns the display names of the active HSN rows.
func (r *MasterRepository) GetHSNGroups(ctx context.Context) ([]string, error) {
	t, ok := rules.Get(models.MasterHSN)
	if !ok {
		return []string{}, nil
	}
	nameCol := t.Fields[0].DBColumn
	names := []string{}
	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE is_deleted = 0 AND %s IS NOT NULL ORDER BY %s",
		nameCol, t.TableName, nameCol, nameCol)
	if err := r.db.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("%w: failed to get HSN groups: %v", models.ErrPersistence, err)
	}
	return names, nil
}

func (r *MasterRepository) GetSubGroups(ctx context.Context, t *rules.Table, groupID int64) ([]string, error) {
	names := []string{}
	query := `SELECT sub_group_name FROM sub_group_master
	          WHERE master_type = ? AND group_id = ? AND is_deleted = 0 ORDER BY sub_group_name`
	if err := r.db.SelectContext(ctx, &names, query, string(t.Type), groupID); err != nil {
		return nil, fmt.Errorf("%w: failed to get sub groups: %v", models.ErrPersistence, err)
	}
	return names, nil
}

func (r *MasterRepository) GetCountryStates(ctx context.Context) (map[string][]string, error) {
	var pairs []struct {
		Country string `db:"country"`
		State   string `db:"state"`
	}
	query := "SELECT country, state FROM country_state_master ORDER BY country, state"
	if err := r.db.SelectContext(ctx, &pairs, query); err != nil {
		return nil, fmt.Errorf("%w: failed to get country states: %v", models.ErrPersistence, err)
	}
	out := make(map[string][]string)
	for _, p := range pairs {
		out[p.Country] = append(out[p.Country], p.State)
	}
	for c := range out {
		sort.Strings(out[c])
	}
	return out, nil
}

// Audit

func (r *MasterRepository) CreateClearAudit(ctx context.Context, audit *models.ClearAudit) error {
	query := `INSERT INTO clear_audit_log (id, master_type, group_id, username, reason, deleted_count, created_at)
	          VALUES (:id, :master_type, :group_id, :username, :reason, :deleted_count, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, audit); err != nil {
		return fmt.Errorf("%w: failed to write clear audit: %v", models.ErrPersistence, err)
	}
	return nil
}

// toDB converts a row value to the driver value of its column. Blank values are NULL.
func toDB(f rules.Field, row models.Row) interface{} {
	switch f.Kind {
	case rules.KindNumber:
		if n, ok := row.Number(f.Key); ok {
			return n
		}
		return nil
	case rules.KindBool:
		switch v := row[f.Key].(type) {
		case bool:
			return v
		case string:
			if strings.EqualFold(strings.TrimSpace(v), "TRUE") {
				return true
			}
			if strings.EqualFold(strings.TrimSpace(v), "FALSE") {
				return false
			}
		}
		return nil
	}
	s := strings.TrimSpace(row.String(f.Key))
	if s == "" {
		return nil
	}
	return s
}

// fromDB converts a scanned driver value to the row value of its field.
func fromDB(f rules.Field, v interface{}) interface{} {
	if v == nil {
		return nil
	}
	s := models.FormatValue(v)
	switch f.Kind {
	case rules.KindNumber:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return n
	case rules.KindBool:
		return s == "1" || strings.EqualFold(s, "true")
	}
	return s
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case []byte:
		id, _ := strconv.ParseInt(string(n), 10, 64)
		return id
	case string:
		id, _ := strconv.ParseInt(n, 10, 64)
		return id
	}
	return 0
}
