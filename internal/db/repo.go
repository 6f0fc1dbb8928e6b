package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-pg/pg/v10"
)

type Repository struct {
	db pg.DBI
}

func New(db pg.DBI) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Ping(ctx context.Context) error {
	if db, ok := r.db.(*pg.DB); ok {
		if err := db.Ping(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) Close() error {
	if db, ok := r.db.(*pg.DB); ok {
		if err := db.Close(); err != nil {
			return err
		}
	}

	return nil
}

// Magazines returns every issue, newest first: year DESC, month DESC,
// id DESC as the tie-break for issues sharing the same year and month.
func (r *Repository) Magazines(ctx context.Context) ([]Magazine, error) {
	var magazines []Magazine
	err := r.db.ModelContext(ctx, &magazines).
		OrderExpr(`"t"."year" DESC`).
		OrderExpr(`"t"."month" DESC`).
		OrderExpr(`"t"."id" DESC`).
		Select()

	if err != nil {
		return nil, fmt.Errorf("failed to query magazines: %w", err)
	}

	return magazines, nil
}

func (r *Repository) MagazineByID(ctx context.Context, id int) (*Magazine, error) {
	magazine := &Magazine{}
	err := r.db.ModelContext(ctx, magazine).
		Where(`"t"."id" = ?`, id).
		Select()

	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get magazine by id: %w", err)
	}

	return magazine, nil
}

func (r *Repository) InsertMagazine(ctx context.Context, magazine *Magazine) error {
	_, err := r.db.ModelContext(ctx, magazine).Insert()
	if err != nil {
		return fmt.Errorf("failed to insert magazine: %w", err)
	}

	return nil
}

// UpdateMagazine writes only the given columns of the row identified by
// magazine.ID. Updating a missing row is not an error.
func (r *Repository) UpdateMagazine(ctx context.Context, magazine *Magazine, columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("no columns to update")
	}

	_, err := r.db.ModelContext(ctx, magazine).
		Column(columns...).
		WherePK().
		Update()
	if err != nil {
		return fmt.Errorf("failed to update magazine: %w", err)
	}

	return nil
}

// DeleteMagazine removes the row with the given id. Deleting an id that does
// not exist is a no-op, not an error.
func (r *Repository) DeleteMagazine(ctx context.Context, id int) error {
	_, err := r.db.ModelContext(ctx, (*Magazine)(nil)).
		Where(`"t"."id" = ?`, id).
		Delete()
	if err != nil {
		return fmt.Errorf("failed to delete magazine: %w", err)
	}

	return nil
}

func (r *Repository) Articles(ctx context.Context) ([]Article, error) {
	var articles []Article
	err := r.db.ModelContext(ctx, &articles).
		OrderExpr(`"t"."created_at" DESC`).
		Select()

	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}

	return articles, nil
}

func (r *Repository) Settings(ctx context.Context) ([]Setting, error) {
	var settings []Setting
	err := r.db.ModelContext(ctx, &settings).
		OrderExpr(`"t"."key" ASC`).
		Select()

	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}

	return settings, nil
}

func (r *Repository) UserByUsername(ctx context.Context, username string) (*User, error) {
	user := &User{}
	err := r.db.ModelContext(ctx, user).
		Where(`"t"."username" = ?`, username).
		Select()

	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}
