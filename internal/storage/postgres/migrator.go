package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

// Схема версионируется парами файлов NNNN_label.up.sql / NNNN_label.down.sql
// в sql/migrations. Файлы вшиты в бинарь, отдельный каталог при деплое
// не нужен.

//go:embed sql/migrations/*.sql
var revisionFiles embed.FS

const (
	revisionDir     = "sql/migrations"
	revisionLockKey = int64(0x77657031)
	revisionLedger  = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
)

// revision — пара up/down SQL с общим номером версии.
type revision struct {
	Version int64
	Label   string
	Up      string
	Down    string
}

// MigrateUp применяет недостающие ревизии по возрастанию версии.
// steps=0 применяет все.
func (s *Store) MigrateUp(ctx context.Context, steps int) error {
	return s.withRevisionLock(ctx, func(conn *sql.Conn, revs []revision) error {
		applied, err := appliedVersions(ctx, conn)
		if err != nil {
			return err
		}

		done := 0
		for _, rev := range revs {
			if applied[rev.Version] {
				continue
			}
			err := inTx(ctx, conn, fmt.Sprintf("up %d_%s", rev.Version, rev.Label), func(tx *sql.Tx) error {
				if _, err := tx.ExecContext(ctx, rev.Up); err != nil {
					return err
				}
				_, err := tx.ExecContext(ctx,
					`INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, NOW())`,
					rev.Version, rev.Label)
				return err
			})
			if err != nil {
				return err
			}
			done++
			if steps > 0 && done >= steps {
				break
			}
		}
		return nil
	})
}

// MigrateDown откатывает применённые ревизии по убыванию версии.
// steps<=0 трактуется как один шаг.
func (s *Store) MigrateDown(ctx context.Context, steps int) error {
	if steps <= 0 {
		steps = 1
	}
	return s.withRevisionLock(ctx, func(conn *sql.Conn, revs []revision) error {
		byVersion := make(map[int64]revision, len(revs))
		for _, rev := range revs {
			byVersion[rev.Version] = rev
		}

		versions, err := newestAppliedVersions(ctx, conn, steps)
		if err != nil {
			return err
		}

		for _, version := range versions {
			rev, ok := byVersion[version]
			if !ok {
				return fmt.Errorf("cannot rollback unknown schema version %d", version)
			}
			err := inTx(ctx, conn, fmt.Sprintf("down %d_%s", rev.Version, rev.Label), func(tx *sql.Tx) error {
				if _, err := tx.ExecContext(ctx, rev.Down); err != nil {
					return err
				}
				_, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = $1`, rev.Version)
				return err
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// MigrationStatus возвращает максимальную применённую версию и число
// применённых ревизий.
func (s *Store) MigrationStatus(ctx context.Context) (int64, int, error) {
	if s == nil || s.db == nil {
		return 0, 0, fmt.Errorf("postgres store is not initialized")
	}

	queryCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(queryCtx, revisionLedger); err != nil {
		return 0, 0, fmt.Errorf("ensure schema_migrations: %w", err)
	}

	var (
		version int64
		count   int
	)
	err := s.db.QueryRowContext(queryCtx,
		`SELECT COALESCE(MAX(version), 0), COUNT(*) FROM schema_migrations`,
	).Scan(&version, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("query schema version: %w", err)
	}

	return version, count, nil
}

// withRevisionLock выполняет fn на выделенном соединении под advisory
// lock: конкурентные запуски мигратора (несколько реплик на старте)
// сериализуются на стороне базы.
func (s *Store) withRevisionLock(ctx context.Context, fn func(*sql.Conn, []revision) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}

	revs, err := loadRevisions(revisionFiles)
	if err != nil {
		return err
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire db connection: %w", err)
	}
	defer conn.Close()

	lockCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if _, err := conn.ExecContext(lockCtx, "SELECT pg_advisory_lock($1)", revisionLockKey); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", revisionLockKey)
	}()

	if _, err := conn.ExecContext(ctx, revisionLedger); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	return fn(conn, revs)
}

// inTx выполняет body в транзакции; tag попадает в текст ошибки.
func inTx(ctx context.Context, conn *sql.Conn, tag string, body func(*sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx (%s): %w", tag, err)
	}
	if err := body(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply revision (%s): %w", tag, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit revision (%s): %w", tag, err)
	}
	return nil
}

func appliedVersions(ctx context.Context, conn *sql.Conn) (map[int64]bool, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query applied revisions: %w", err)
	}
	defer rows.Close()

	applied := make(map[int64]bool)
	for rows.Next() {
		var version int64
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan applied revision: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func newestAppliedVersions(ctx context.Context, conn *sql.Conn, limit int) ([]int64, error) {
	rows, err := conn.QueryContext(ctx,
		`SELECT version FROM schema_migrations ORDER BY version DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query newest revisions: %w", err)
	}
	defer rows.Close()

	versions := make([]int64, 0, limit)
	for rows.Next() {
		var version int64
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan revision version: %w", err)
		}
		versions = append(versions, version)
	}
	return versions, rows.Err()
}

// loadRevisions читает каталог ревизий и собирает пары up/down.
// Непарная или пустая ревизия — ошибка конфигурации, лучше упасть
// на старте, чем применить половину схемы.
func loadRevisions(fsys fs.FS) ([]revision, error) {
	entries, err := fs.ReadDir(fsys, revisionDir)
	if err != nil {
		return nil, fmt.Errorf("read revision dir: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("no schema revisions found")
	}

	byVersion := make(map[int64]*revision)
	for _, entry := range entries {
		name := entry.Name()
		version, label, dir, err := parseRevisionName(name)
		if err != nil {
			return nil, err
		}

		raw, err := fs.ReadFile(fsys, revisionDir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("read revision %s: %w", name, err)
		}
		body := strings.TrimSpace(string(raw))
		if body == "" {
			return nil, fmt.Errorf("revision file is empty: %s", name)
		}

		rev, ok := byVersion[version]
		if !ok {
			rev = &revision{Version: version, Label: label}
			byVersion[version] = rev
		} else if rev.Label != label {
			return nil, fmt.Errorf("revision %d has conflicting labels: %s vs %s", version, rev.Label, label)
		}

		switch dir {
		case "up":
			if rev.Up != "" {
				return nil, fmt.Errorf("duplicate up revision %d", version)
			}
			rev.Up = body
		case "down":
			if rev.Down != "" {
				return nil, fmt.Errorf("duplicate down revision %d", version)
			}
			rev.Down = body
		}
	}

	revs := make([]revision, 0, len(byVersion))
	for _, rev := range byVersion {
		if rev.Up == "" || rev.Down == "" {
			return nil, fmt.Errorf("revision %d_%s must have both up and down files", rev.Version, rev.Label)
		}
		revs = append(revs, *rev)
	}
	sort.Slice(revs, func(i, j int) bool { return revs[i].Version < revs[j].Version })

	return revs, nil
}

// parseRevisionName разбирает имя вида NNNN_label.up.sql.
func parseRevisionName(name string) (int64, string, string, error) {
	stem, ok := strings.CutSuffix(name, ".sql")
	if !ok {
		return 0, "", "", fmt.Errorf("invalid revision file name: %s", name)
	}

	dir := ""
	if s, found := strings.CutSuffix(stem, ".up"); found {
		stem, dir = s, "up"
	} else if s, found := strings.CutSuffix(stem, ".down"); found {
		stem, dir = s, "down"
	} else {
		return 0, "", "", fmt.Errorf("revision file %s must end with .up.sql or .down.sql", name)
	}

	versionStr, label, found := strings.Cut(stem, "_")
	if !found || label == "" {
		return 0, "", "", fmt.Errorf("invalid revision file name: %s", name)
	}
	version, err := strconv.ParseInt(versionStr, 10, 64)
	if err != nil {
		return 0, "", "", fmt.Errorf("parse revision version from %s: %w", name, err)
	}

	return version, label, dir, nil
}
