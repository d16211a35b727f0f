package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// PinchRule is a stored landmark-distance rule.
type PinchRule struct {
	ID          string    `json:"id"`
	Mode        string    `json:"mode"`
	PointA      int       `json:"point_a"`
	PointB      int       `json:"point_b"`
	MaxDistance float64   `json:"max_distance"`
	Label       string    `json:"label"`
	RequireUp   string    `json:"require_up"`
	Priority    int       `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks mode, landmarks, distance, finger mask and label.
func (p *PinchRule) Validate() error {
	if _, err := gesture.ParseMode(p.Mode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if p.PointA < 0 || p.PointB < 0 || p.PointA >= detector.NumLandmarks ||
		p.PointB >= detector.NumLandmarks || p.PointA == p.PointB {
		return fmt.Errorf("%w: pinch points %d/%d", ErrInvalid, p.PointA, p.PointB)
	}
	if p.MaxDistance <= 0 {
		return fmt.Errorf("%w: max distance %f", ErrInvalid, p.MaxDistance)
	}
	if p.RequireUp == "" {
		p.RequireUp = "00000"
	}
	if _, err := gesture.ParseFingers(p.RequireUp); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if l := gesture.Label(p.Label); !l.Valid() || l == gesture.None {
		return fmt.Errorf("%w: unknown label %q", ErrInvalid, p.Label)
	}
	return nil
}

// PinchRepository provides CRUD operations for pinch rules.
type PinchRepository struct {
	db *sql.DB
}

// Pinches returns the pinch rule repository for this store.
func (s *Store) Pinches() *PinchRepository {
	return &PinchRepository{db: s.db}
}

// Create validates and inserts p.
func (r *PinchRepository) Create(p *PinchRule) error {
	return createPinch(r.db, p)
}

func createPinch(db execer, p *PinchRule) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now()

	_, err := db.Exec(
		`INSERT INTO pinch_rules (id, mode, point_a, point_b, max_distance, label, require_up, priority, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Mode, p.PointA, p.PointB, p.MaxDistance, p.Label, p.RequireUp, p.Priority, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create pinch rule: %w", err)
	}
	return nil
}

// List returns the rules of mode in priority order; empty mode lists all.
func (r *PinchRepository) List(mode string) ([]*PinchRule, error) {
	query := `SELECT id, mode, point_a, point_b, max_distance, label, require_up, priority, created_at
		FROM pinch_rules`
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

	rules := []*PinchRule{}
	for rows.Next() {
		p := &PinchRule{}
		err := rows.Scan(&p.ID, &p.Mode, &p.PointA, &p.PointB, &p.MaxDistance, &p.Label, &p.RequireUp, &p.Priority, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		rules = append(rules, p)
	}
	return rules, rows.Err()
}

// Delete removes a rule by its ID.
func (r *PinchRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM pinch_rules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

// Seed inserts rules in one transaction.
func (r *PinchRepository) Seed(rules []*PinchRule) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range rules {
		if err := createPinch(tx, p); err != nil {
			return err
		}
	}
	return tx.Commit()
}
