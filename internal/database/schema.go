package database

import (
	"fmt"
	"masterdata-web/internal/rules"
	"masterdata-web/internal/utils"
	"strings"

	"github.com/jmoiron/sqlx"
)

var sharedTables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		username VARCHAR(50) NOT NULL UNIQUE,
		email VARCHAR(100) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL DEFAULT '',
		role VARCHAR(20) NOT NULL DEFAULT 'operator',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS unit_master (
		unit_id INT AUTO_INCREMENT PRIMARY KEY,
		unit_symbol VARCHAR(20) NOT NULL,
		is_deleted TINYINT(1) NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS sub_group_master (
		sub_group_id INT AUTO_INCREMENT PRIMARY KEY,
		master_type VARCHAR(20) NOT NULL,
		group_id BIGINT NOT NULL,
		sub_group_name VARCHAR(100) NOT NULL,
		is_deleted TINYINT(1) NOT NULL DEFAULT 0,
		INDEX idx_sub_group (master_type, group_id)
	)`,
	`CREATE TABLE IF NOT EXISTS country_state_master (
		id INT AUTO_INCREMENT PRIMARY KEY,
		country VARCHAR(100) NOT NULL,
		state VARCHAR(100) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS clear_audit_log (
		id CHAR(36) PRIMARY KEY,
		master_type VARCHAR(20) NOT NULL,
		group_id BIGINT NOT NULL,
		username VARCHAR(50) NOT NULL,
		reason TEXT NOT NULL,
		deleted_count BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
}

// EnsureSchema creates missing tables. Failures are logged and skipped so the application
// still starts against a partially migrated database.
func EnsureSchema(db *sqlx.DB) int {
	logger := utils.GetLogger()
	failed := 0

	statements := append([]string{}, sharedTables...)
	for _, table := range rules.All() {
		statements = append(statements, GroupTableDDL(table), MasterTableDDL(table))
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			failed++
			logger.WithError(err).WithField("statement", firstLine(stmt)).Warn("Schema bootstrap statement failed")
		}
	}

	if failed > 0 {
		logger.WithField("failed", failed).Warn("Schema bootstrap incomplete, running degraded")
	} else {
		logger.Info("Schema bootstrap complete")
	}
	return failed
}

// GroupTableDDL returns the CREATE statement of a master type's group table.
func GroupTableDDL(t *rules.Table) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		%s BIGINT AUTO_INCREMENT PRIMARY KEY,
		%s VARCHAR(100) NOT NULL,
		is_deleted TINYINT(1) NOT NULL DEFAULT 0
	)`, t.GroupTable, t.GroupIDColumn, t.GroupNameColumn)
}

// MasterTableDDL returns the CREATE statement of a master table with its soft delete columns.
func MasterTableDDL(t *rules.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", t.TableName)
	fmt.Fprintf(&b, "\t\t%s BIGINT AUTO_INCREMENT PRIMARY KEY,\n", t.IDColumn)
	fmt.Fprintf(&b, "\t\t%s BIGINT NOT NULL,\n", t.GroupIDColumn)
	for _, f := range t.Fields {
		fmt.Fprintf(&b, "\t\t%s %s NULL,\n", f.DBColumn, columnType(f))
	}
	b.WriteString("\t\tis_deleted TINYINT(1) NOT NULL DEFAULT 0,\n")
	b.WriteString("\t\tcreated_by VARCHAR(50) NULL,\n")
	b.WriteString("\t\tcreated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,\n")
	b.WriteString("\t\tdeleted_by VARCHAR(50) NULL,\n")
	b.WriteString("\t\tdeleted_at TIMESTAMP NULL,\n")
	fmt.Fprintf(&b, "\t\tINDEX idx_%s_group (%s, is_deleted)\n", t.TableName, t.GroupIDColumn)
	b.WriteString("\t)")
	return b.String()
}

func columnType(f rules.Field) string {
	switch f.Kind {
	case rules.KindNumber:
		return fmt.Sprintf("DECIMAL(%d,%d)", rules.NumberPrecision, rules.NumberScale)
	case rules.KindBool:
		return "TINYINT(1)"
	}
	return "VARCHAR(255)"
}

func firstLine(stmt string) string {
	if i := strings.Index(stmt, "("); i > 0 {
		return strings.TrimSpace(stmt[:i])
	}
	return stmt
}
