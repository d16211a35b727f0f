package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/gesture"
)

// Binding maps a finger vector to a gesture label within one mode.
type Binding struct {
	ID        string    `json:"id"`
	Mode      string    `json:"mode"`
	Pattern   string    `json:"pattern"`
	Label     string    `json:"label"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks mode, pattern and label.
func (b *Binding) Validate() error {
	if _, err := gesture.ParseMode(b.Mode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := gesture.ParseFingers(b.Pattern); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if l := gesture.Label(b.Label); !l.Valid() || l == gesture.None {
		return fmt.Errorf("%w: unknown label %q", ErrInvalid, b.Label)
	}
	return nil
}

// BindingRepository provides CRUD operations for bindings.
type BindingRepository struct {
	db *sql.DB
}

// Bindings returns the binding repository for this store.
func (s *Store) Bindings() *BindingRepository {
	return &BindingRepository{db: s.db}
}

// Create validates and inserts b, assigning an ID if it has none.
func (r *BindingRepository) Create(b *Binding) error {
	return createBinding(r.db, b)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func createBinding(db execer, b *Binding) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	b.CreatedAt = time.Now()

	_, err := db.Exec(
		`INSERT INTO bindings (id, mode, pattern, label, priority, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.Mode, b.Pattern, b.Label, b.Priority, b.CreatedAt,
	)
	if isUnique(err) {
		return fmt.Errorf("%w: %s pattern %s is already bound", ErrConflict, b.Mode, b.Pattern)
	}
	if err != nil {
		return fmt.Errorf("create binding: %w", err)
	}
	return nil
}

// GetByID retrieves a binding by its ID.
func (r *BindingRepository) GetByID(id string) (*Binding, error) {
	b := &Binding{}
	err := r.db.QueryRow(
		`SELECT id, mode, pattern, label, priority, created_at FROM bindings WHERE id = ?`, id,
	).Scan(&b.ID, &b.Mode, &b.Pattern, &b.Label, &b.Priority, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// List returns the bindings of mode in priority order. An empty mode lists
// every binding.
func (r *BindingRepository) List(mode string) ([]*Binding, error) {
	query := `SELECT id, mode, pattern, label, priority, created_at FROM bindings`
	var args []any
	if mode != "" {
		query += ` WHERE mode = ?`
		args = append(args, mode)
	}
	query += ` ORDER BY mode, priority, created_at`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bindings := []*Binding{}
	for rows.Next() {
		b := &Binding{}
		if err := rows.Scan(&b.ID, &b.Mode, &b.Pattern, &b.Label, &b.Priority, &b.CreatedAt); err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}
	return bindings, rows.Err()
}

// Delete removes a binding by its ID.
func (r *BindingRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM bindings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

// Count returns the number of stored bindings.
func (r *BindingRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM bindings`).Scan(&n)
	return n, err
}

// Seed inserts bindings in one transaction.
func (r *BindingRepository) Seed(bindings []*Binding) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, b := range bindings {
		if err := createBinding(tx, b); err != nil {
			return err
		}
	}
	return tx.Commit()
}
