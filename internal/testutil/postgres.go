// Package testutil поднимает PostgreSQL в контейнере для интеграционных тестов.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const postgresImage = "postgres:16-alpine"

// MigrationsURL возвращает источник миграций репозитория.
func MigrationsURL() string {
	_, file, _, _ := runtime.Caller(0)
	return "file://" + filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

// StartPostgres запускает контейнер, применяет миграции и возвращает пул
// соединений вместе с функцией остановки.
func StartPostgres(ctx context.Context) (*pgxpool.Pool, func(), error) {
	ctr, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("rfq"),
		postgres.WithUsername("rfq"),
		postgres.WithPassword("rfq"),
		postgres.BasicWaitStrategies(),
	)
	terminate := func() {
		if ctr != nil {
			_ = testcontainers.TerminateContainer(ctr)
		}
	}
	if err != nil {
		terminate()
		return nil, nil, fmt.Errorf("start postgres container: %w", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		terminate()
		return nil, nil, err
	}

	migration, err := migrate.New(MigrationsURL(), dsn)
	if err != nil {
		terminate()
		return nil, nil, fmt.Errorf("create migrate instance: %w", err)
	}
	if err := migration.Up(); err != nil && err != migrate.ErrNoChange {
		terminate()
		return nil, nil, fmt.Errorf("migrate up: %w", err)
	}
	_, _ = migration.Close()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		terminate()
		return nil, nil, err
	}
	return pool, func() {
		pool.Close()
		terminate()
	}, nil
}
