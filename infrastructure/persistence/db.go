// Package persistence provides database storage implementations.
package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/helixml/discuss/internal/database"
	"gorm.io/gorm"
)

const legacyCommentTable = "code_comments_legacy"

// PreMigrate handles one-time schema conversions of databases created by
// earlier releases. Their code_comments table lacks AUTOINCREMENT, so SQLite
// would hand out the id of the most recently deleted range again. The table
// is rebuilt with the current schema and the rows copied across, ids kept.
// Safe to run repeatedly.
func PreMigrate(db database.Database) error {
	if !db.IsSQLite() {
		return nil
	}

	gdb := db.GORM()

	var ddl string
	err := gdb.Raw(`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, commentTable).Scan(&ddl).Error
	if err != nil {
		return err
	}
	if ddl == "" || strings.Contains(strings.ToUpper(ddl), "AUTOINCREMENT") {
		return nil
	}

	slog.Warn("one-time database migration: rebuilding code_comments with monotonic ids")
	err = database.WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
		if err := tx.Exec(fmt.Sprintf(`ALTER TABLE %s RENAME TO %s`, commentTable, legacyCommentTable)).Error; err != nil {
			return fmt.Errorf("rename legacy table: %w", err)
		}
		if err := tx.Migrator().CreateTable(&CommentModel{}); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
		copyRows := fmt.Sprintf(
			`INSERT INTO %s (id, file_name, "start", "end", comment) SELECT id, file_name, "start", "end", comment FROM %s`,
			commentTable, legacyCommentTable,
		)
		if err := tx.Exec(copyRows).Error; err != nil {
			return fmt.Errorf("copy rows: %w", err)
		}
		if err := tx.Exec(fmt.Sprintf(`DROP TABLE %s`, legacyCommentTable)).Error; err != nil {
			return fmt.Errorf("drop legacy table: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("code_comments migration: %w", err)
	}
	slog.Info("one-time database migration complete")
	return nil
}

// AutoMigrate runs GORM auto migration for all models.
func AutoMigrate(db database.Database) error {
	return db.GORM().AutoMigrate(allModels()...)
}

// Migrate runs PreMigrate, AutoMigrate and ValidateSchema in order.
func Migrate(db database.Database) error {
	if err := PreMigrate(db); err != nil {
		return fmt.Errorf("pre-migrate: %w", err)
	}
	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return ValidateSchema(db)
}

// allModels returns every GORM model that AutoMigrate manages.
func allModels() []interface{} {
	return []interface{}{
		&CommentModel{},
	}
}

// ValidateSchema verifies every GORM model field has a corresponding column
// in the database. Returns an error listing any missing columns.
func ValidateSchema(db database.Database) error {
	gdb := db.GORM()
	migrator := gdb.Migrator()

	var missing []string
	for _, model := range allModels() {
		stmt := &gorm.Statement{DB: gdb}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("parse model schema: %w", err)
		}

		columnTypes, err := migrator.ColumnTypes(model)
		if err != nil {
			return fmt.Errorf("get column types for %s: %w", stmt.Table, err)
		}

		actual := make(map[string]bool, len(columnTypes))
		for _, ct := range columnTypes {
			actual[ct.Name()] = true
		}

		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" || field.DBName == "-" {
				continue
			}
			if !actual[field.DBName] {
				missing = append(missing, stmt.Table+"."+field.DBName)
			}
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("schema validation failed, missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
