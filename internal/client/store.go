package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const storeSchema = `
CREATE TABLE IF NOT EXISTS articles (
	id   INTEGER PRIMARY KEY,
	data TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS magazines (
	id   INTEGER PRIMARY KEY,
	data TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS favorites (
	article_id INTEGER PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Store is the local persisted cache: one sqlite file holding articles,
// magazines, the favorites set and a small key-value area for settings and
// the admin flag.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma journal_mode: %w", err)
	}

	if _, err := db.Exec(storeSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ReplaceArticles(ctx context.Context, articles []Article) error {
	return s.replaceRows(ctx, "articles", len(articles), func(i int) (int, any, error) {
		data, err := json.Marshal(articles[i])
		return articles[i].ID, data, err
	})
}

func (s *Store) LoadArticles(ctx context.Context) ([]Article, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM articles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load articles: %w", err)
	}
	defer rows.Close()

	var out []Article
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		var a Article
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decode article: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) ReplaceMagazines(ctx context.Context, magazines []Magazine) error {
	return s.replaceRows(ctx, "magazines", len(magazines), func(i int) (int, any, error) {
		data, err := json.Marshal(magazines[i])
		return magazines[i].ID, data, err
	})
}

func (s *Store) LoadMagazines(ctx context.Context) ([]Magazine, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM magazines ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load magazines: %w", err)
	}
	defer rows.Close()

	var out []Magazine
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan magazine: %w", err)
		}
		var m Magazine
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode magazine: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) AddFavorite(ctx context.Context, articleID int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO favorites (article_id) VALUES (?)
		ON CONFLICT(article_id) DO NOTHING
	`, articleID)
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (s *Store) RemoveFavorite(ctx context.Context, articleID int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE article_id = ?`, articleID)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

func (s *Store) Favorites(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT article_id FROM favorites ORDER BY article_id`)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *Store) SetValue(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Value(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) replaceRows(ctx context.Context, table string, n int, row func(i int) (int, any, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	for i := 0; i < n; i++ {
		id, data, err := row(i)
		if err != nil {
			return fmt.Errorf("encode %s row: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO `+table+` (id, data) VALUES (?, ?)`, id, data); err != nil {
			return fmt.Errorf("insert %s row: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace %s: %w", table, err)
	}
	return nil
}
