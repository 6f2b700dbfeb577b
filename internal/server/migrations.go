package server

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/nao1215/teamhub/pkg/migration"
)

//go:embed migrations/*.up.sql
var migrationsFS embed.FS

// applyMigrations はembedされたマイグレーションをデータベースに適用する。
func applyMigrations(db *sql.DB) error {
	if err := migration.Run(db, migrationsFS, "migrations"); err != nil {
		return fmt.Errorf("マイグレーションの適用に失敗: %w", err)
	}
	return nil
}
