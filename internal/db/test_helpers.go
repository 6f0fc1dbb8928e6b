package db

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/go-pg/pg/v10"
	"github.com/jackc/pgx"
	"github.com/jackc/pgx/stdlib"
	"github.com/pressly/goose/v3"
)

const (
	// MigrationsDir is the directory containing test migrations
	MigrationsDir = "../../docs/patches/integrationtests"
)

// ResetPublicSchema drops and recreates the public schema
func ResetPublicSchema(ctx context.Context, database *pg.DB) error {
	_, err := database.ExecContext(ctx, `DROP SCHEMA IF EXISTS public CASCADE; CREATE SCHEMA public;`)
	if err != nil {
		return fmt.Errorf("reset public schema: %w", err)
	}
	return nil
}

// RunMigrations runs database migrations from the migrations directory
func RunMigrations(ctx context.Context, dbURL, migrationsDir string) error {
	config, err := pgx.ParseConnectionString(dbURL)
	if err != nil {
		return fmt.Errorf("parse connection string: %w", err)
	}

	sqldb := stdlib.OpenDB(config)
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		return fmt.Errorf("ping test db: %w", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.sql"))
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(files)
	if len(files) == 0 {
		return fmt.Errorf("no migration files found in %s", migrationsDir)
	}

	if err := goose.UpContext(ctx, sqldb, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// EnsureTablesExist verifies that the specified tables exist in the database
func EnsureTablesExist(ctx context.Context, database *pg.DB, tables []string) error {
	for _, tbl := range tables {
		var exists bool
		_, err := database.QueryOneContext(ctx, pg.Scan(&exists), `
			SELECT EXISTS (
				SELECT 1
				FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = ?
			)`, tbl)
		if err != nil {
			return fmt.Errorf("check table %s exists: %w", tbl, err)
		}
		if !exists {
			return fmt.Errorf("table %q does not exist after migrations", tbl)
		}
	}
	return nil
}

// LoadTestData loads test data into the database
func LoadTestData(ctx context.Context, database *pg.DB) error {
	_, err := database.ExecContext(ctx, `
		TRUNCATE TABLE "magazines", "articles", "settings", "users" RESTART IDENTITY CASCADE;
	`)
	if err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}

	magazines := []Magazine{
		{Title: "شماره بهار", Month: 1, Year: 1403, Description: "ویژه‌نامه نوروز", CoverImage: "spring.jpg", PDFURL: "https://files.example.com/1403-01.pdf"},
		{Title: "شماره تابستان", Month: 4, Year: 1403, Description: "", CoverImage: "summer.jpg", PDFURL: ""},
		{Title: "شماره پاییز", Month: 7, Year: 1402, Description: "گفتگوی ویژه", CoverImage: "", PDFURL: "https://files.example.com/1402-07.pdf"},
		{Title: "شماره زمستان", Month: 10, Year: 1402, Description: "", CoverImage: "winter.png", PDFURL: ""},
	}
	for i := range magazines {
		if _, err := database.ModelContext(ctx, &magazines[i]).Insert(); err != nil {
			return fmt.Errorf("insert magazine %q: %w", magazines[i].Title, err)
		}
	}

	articles := []Article{
		{Title: "هوش مصنوعی و آینده", Author: "سارا محمدی", AuthorPhoto: "sara.jpg", Category: "technology", Tags: []string{"ai"}, Content: "<p>متن مقاله</p>", Excerpt: "چکیده"},
		{Title: "سینمای مستقل", Author: "رضا کریمی", Category: "culture", Tags: []string{"cinema", "art"}, Content: "<p>متن مقاله</p>", Excerpt: ""},
	}
	for i := range articles {
		if _, err := database.ModelContext(ctx, &articles[i]).Insert(); err != nil {
			return fmt.Errorf("insert article %q: %w", articles[i].Title, err)
		}
	}

	settings := []Setting{
		{Key: "siteName", Value: "مجله"},
		{Key: "social.telegram", Value: "https://t.me/example"},
	}
	for i := range settings {
		if _, err := database.ModelContext(ctx, &settings[i]).Insert(); err != nil {
			return fmt.Errorf("insert setting %q: %w", settings[i].Key, err)
		}
	}

	// bcrypt hash of "admin-password", cost 10, fixed for test logins
	admin := User{
		Username:     "admin",
		PasswordHash: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
	}
	if _, err := database.ModelContext(ctx, &admin).Insert(); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	return nil
}

// SetupTestDB initializes the test database connection and sets up the schema
func SetupTestDB(dbURL string) (*pg.DB, error) {
	ctx := context.Background()

	opt, err := pg.ParseURL(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	database := pg.Connect(opt)

	if err := database.Ping(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	if err := ResetPublicSchema(ctx, database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to reset schema: %w", err)
	}

	if err := RunMigrations(ctx, dbURL, MigrationsDir); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := EnsureTablesExist(ctx, database, []string{"magazines", "articles", "settings", "users"}); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("schema verification failed: %w", err)
	}

	if err := LoadTestData(ctx, database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to load test data: %w", err)
	}

	return database, nil
}
