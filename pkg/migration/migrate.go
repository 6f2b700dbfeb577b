// Package migration はSQLiteデータベースのスキーママイグレーションを管理する。
// embed.FSに同梱したSQLファイルをバージョン順に適用し、適用済みバージョンを
// schema_migrationsテーブルで追跡する。
package migration

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strconv"
	"strings"
)

// suffix はマイグレーションファイルの拡張子。
// ファイル名形式: 000001_description.up.sql
const suffix = ".up.sql"

// migrationFile は1つのマイグレーションファイルを表す。
type migrationFile struct {
	version int
	name    string
	path    string
}

// Run は未適用のマイグレーションをバージョン順に適用する。
// 適用済みのバージョンはスキップするため、起動のたびに呼んでよい。
func Run(db *sql.DB, fsys fs.FS, dir string) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("マイグレーション管理テーブルの作成に失敗: %w", err)
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return fmt.Errorf("適用済みバージョンの取得に失敗: %w", err)
	}

	pending, err := collectPending(fsys, dir, applied)
	if err != nil {
		return fmt.Errorf("マイグレーションファイルの収集に失敗: %w", err)
	}

	for _, m := range pending {
		if err := apply(db, fsys, m); err != nil {
			return fmt.Errorf("マイグレーション %06d_%s の適用に失敗: %w", m.version, m.name, err)
		}
		log.Printf("[migration] %06d_%s を適用しました", m.version, m.name)
	}

	return nil
}

// appliedVersions は適用済みのマイグレーションバージョンの集合を返す。
func appliedVersions(db *sql.DB) (map[int]struct{}, error) {
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]struct{})
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = struct{}{}
	}
	return applied, rows.Err()
}

// collectPending はディレクトリから未適用のマイグレーションを集めて
// バージョン昇順で返す。ファイル名形式に合わないエントリは無視する。
func collectPending(fsys fs.FS, dir string, applied map[int]struct{}) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var pending []migrationFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}

		prefix, name, ok := strings.Cut(entry.Name(), "_")
		if !ok {
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}
		if _, done := applied[version]; done {
			continue
		}

		pending = append(pending, migrationFile{
			version: version,
			name:    strings.TrimSuffix(name, suffix),
			path:    dir + "/" + entry.Name(),
		})
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].version < pending[j].version
	})

	return pending, nil
}

// apply は1つのマイグレーションとバージョン記録を同一トランザクションで実行する。
func apply(db *sql.DB, fsys fs.FS, m migrationFile) error {
	content, err := fs.ReadFile(fsys, m.path)
	if err != nil {
		return fmt.Errorf("ファイル読み込みに失敗: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(string(content)); err != nil {
		return fmt.Errorf("SQL実行に失敗: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
		return fmt.Errorf("バージョン記録に失敗: %w", err)
	}

	return tx.Commit()
}
