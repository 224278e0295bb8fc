package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const connectTimeout = 5 * time.Second

// poolLimits — настройки пула соединений. Сервис обслуживает короткие
// запросы, поэтому держим умеренный пул с активной ротацией.
var poolLimits = struct {
	maxOpen  int
	maxIdle  int
	lifetime time.Duration
	idleTime time.Duration
}{
	maxOpen:  20,
	maxIdle:  10,
	lifetime: time.Hour,
	idleTime: 10 * time.Minute,
}

// Store держит пул соединений с PostgreSQL, общий для всех репозиториев.
type Store struct {
	db *sql.DB
}

// Open создаёт пул по DSN и проверяет, что база отвечает.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	db.SetMaxOpenConns(poolLimits.maxOpen)
	db.SetMaxIdleConns(poolLimits.maxIdle)
	db.SetConnMaxLifetime(poolLimits.lifetime)
	db.SetConnMaxIdleTime(poolLimits.idleTime)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres is unreachable: %w", err)
	}

	return &Store{db: db}, nil
}

// DB отдаёт пул для низкоуровневого доступа (интеграционные тесты).
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping проверяет доступность базы; используется health-чекером.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	return s.db.PingContext(pingCtx)
}

// EnsureSchema доводит схему до последней ревизии; вызывается на старте
// при включённой авто-миграции.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.MigrateUp(ctx, 0)
}

// Close закрывает пул соединений.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
