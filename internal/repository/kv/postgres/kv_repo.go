package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"taskKeeper/internal/logger"
	"taskKeeper/internal/repository"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

const slowQuery = 100 * time.Millisecond

type Storage struct {
	pool *pgxpool.Pool
}

type PoolOptions struct {
	MaxConns    int32
	MinConns    int32
	IdleTimeout time.Duration
}

func New(ctx context.Context, connString string, opts PoolOptions) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка разбора строки подключения", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	if opts.IdleTimeout > 0 {
		config.MaxConnIdleTime = opts.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Подключение к PostgreSQL установлено")
	return &Storage{pool: pool}, nil
}

// Migrate применяет встроенные миграции. Строка подключения должна быть в виде URL.
func Migrate(connString string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("чтение миграций: %w", err)
	}

	url, err := migrateURL(connString)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("подготовка миграций: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: Ошибка применения миграций", err)
		return fmt.Errorf("применение миграций: %w", err)
	}

	logger.Info("Repository: Миграции PostgreSQL применены")
	return nil
}

func migrateURL(connString string) (string, error) {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(connString, prefix) {
			return "pgx5://" + strings.TrimPrefix(connString, prefix), nil
		}
	}
	return "", fmt.Errorf("для миграций нужна строка подключения вида postgres://")
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()

	query := `SELECT value
				FROM kv_store
				WHERE key = $1`

	var value string
	err := s.pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		logger.Error("Repository: Не удалось прочитать ключ", err, zap.String("key", key))
		return "", fmt.Errorf("чтение ключа %s: %w", key, err)
	}

	s.warnSlow(start, "get")
	return value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	start := time.Now()

	query := `INSERT INTO kv_store (key, value, updated_at)
				VALUES ($1, $2, NOW())
				ON CONFLICT (key) DO UPDATE
				SET value = EXCLUDED.value,
					updated_at = NOW()`

	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		logger.Error("Repository: Не удалось записать ключ", err,
			zap.String("key", key),
			zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("запись ключа %s: %w", key, err)
	}

	s.warnSlow(start, "set")
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_store
				WHERE key = $1`

	if _, err := s.pool.Exec(ctx, query, key); err != nil {
		logger.Error("Repository: Не удалось удалить ключ", err, zap.String("key", key))
		return fmt.Errorf("удаление ключа %s: %w", key, err)
	}
	return nil
}

func (s *Storage) warnSlow(start time.Time, op string) {
	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос",
			zap.String("operation", op),
			zap.Duration("ms", time.Since(start)))
	}
}
