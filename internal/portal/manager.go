package portal

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/crypto/bcrypt"

	"github.com/majalleh/portal/internal/db"
)

var (
	ErrInvalidMonth   = errors.New("invalid month")
	ErrEmptyPatch     = errors.New("no fields to update")
	ErrBadCredentials = errors.New("bad credentials")
)

// Store is the persistence surface the manager needs.
type Store interface {
	Magazines(ctx context.Context) ([]db.Magazine, error)
	MagazineByID(ctx context.Context, id int) (*db.Magazine, error)
	InsertMagazine(ctx context.Context, magazine *db.Magazine) error
	UpdateMagazine(ctx context.Context, magazine *db.Magazine, columns []string) error
	DeleteMagazine(ctx context.Context, id int) error
	Articles(ctx context.Context) ([]db.Article, error)
	Settings(ctx context.Context) ([]db.Setting, error)
	UserByUsername(ctx context.Context, username string) (*db.User, error)
}

type Manager struct {
	db Store
}

func NewManager(store Store) *Manager {
	return &Manager{
		db: store,
	}
}

// Magazines returns all issues ordered year DESC, month DESC, id DESC.
// The ordering is applied here as well as in the query so the invariant
// holds no matter what the store returned.
func (m *Manager) Magazines(ctx context.Context) ([]Magazine, error) {
	rows, err := m.db.Magazines(ctx)
	if err != nil {
		return nil, fmt.Errorf("db get magazines: %w", err)
	}

	magazines := NewMagazines(rows)
	sort.SliceStable(magazines, func(i, j int) bool {
		if magazines[i].Year != magazines[j].Year {
			return magazines[i].Year > magazines[j].Year
		}
		if magazines[i].Month != magazines[j].Month {
			return magazines[i].Month > magazines[j].Month
		}
		return magazines[i].ID > magazines[j].ID
	})

	return magazines, nil
}

func (m *Manager) MagazineByID(ctx context.Context, id int) (*Magazine, error) {
	row, err := m.db.MagazineByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("db get magazine by id: %w", err)
	} else if row == nil {
		return nil, nil
	}

	magazine := NewMagazine(row)
	return &magazine, nil
}

// AddMagazine inserts a new issue and returns its id. A zero month means the
// caller omitted it; a non-zero month must be 1-12.
func (m *Manager) AddMagazine(ctx context.Context, magazine Magazine) (int, error) {
	if magazine.Month != 0 && !validMonth(magazine.Month) {
		return 0, ErrInvalidMonth
	}

	row := magazineToDB(magazine)
	if err := m.db.InsertMagazine(ctx, &row); err != nil {
		return 0, fmt.Errorf("db insert magazine: %w", err)
	}

	return row.ID, nil
}

// UpdateMagazine applies a partial update: only fields set on the patch are
// written, all other columns keep their stored values.
func (m *Manager) UpdateMagazine(ctx context.Context, id int, patch MagazinePatch) error {
	if patch.IsEmpty() {
		return ErrEmptyPatch
	}
	if patch.Month != nil && !validMonth(*patch.Month) {
		return ErrInvalidMonth
	}

	row, columns := patchToDB(id, patch)
	if err := m.db.UpdateMagazine(ctx, &row, columns); err != nil {
		return fmt.Errorf("db update magazine: %w", err)
	}

	return nil
}

func (m *Manager) DeleteMagazine(ctx context.Context, id int) error {
	if err := m.db.DeleteMagazine(ctx, id); err != nil {
		return fmt.Errorf("db delete magazine: %w", err)
	}

	return nil
}

func (m *Manager) Articles(ctx context.Context) ([]Article, error) {
	rows, err := m.db.Articles(ctx)
	if err != nil {
		return nil, fmt.Errorf("db get articles: %w", err)
	}

	return NewArticles(rows), nil
}

func (m *Manager) Settings(ctx context.Context) ([]Setting, error) {
	rows, err := m.db.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("db get settings: %w", err)
	}

	return NewSettings(rows), nil
}

// Authenticate checks admin credentials and returns the user id.
func (m *Manager) Authenticate(ctx context.Context, username, password string) (int, error) {
	user, err := m.db.UserByUsername(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("db get user: %w", err)
	}
	if user == nil {
		return 0, ErrBadCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return 0, ErrBadCredentials
	}

	return user.ID, nil
}

func validMonth(month int) bool {
	return month >= 1 && month <= 12
}
