// Package projects groups uploaded files into chat projects. Each
// project owns a conversation session and a slice of the document
// index.
package projects

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ragchat/internal/db"
)

// Status tracks how far project initialization got.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ErrProjectNotFound is returned when a project id does not exist or
// is owned by another user.
var ErrProjectNotFound = errors.New("project not found or unauthorized")

// Project is one named document collection with its session.
type Project struct {
	ID        string    `json:"project_id"`
	UserID    string    `json:"-"`
	Name      string    `json:"project_name"`
	FileIDs   []string  `json:"-"`
	SessionID string    `json:"session_id"`
	IsActive  bool      `json:"is_active"`
	Status    Status    `json:"initialization_status"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists project rows.
type Store struct {
	db *db.DB
}

// NewStore creates a project store over the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a pending project row.
func (s *Store) Create(ctx context.Context, userID, name string, fileIDs []string, sessionID string) (*Project, error) {
	ids, err := json.Marshal(fileIDs)
	if err != nil {
		return nil, fmt.Errorf("encoding file ids: %w", err)
	}

	p := &Project{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		FileIDs:   fileIDs,
		SessionID: sessionID,
		IsActive:  true,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO projects (id, user_id, project_name, file_ids, session_id, is_active, initialization_status)
		 VALUES (?, ?, ?, ?, ?, 1, 'pending')`,
		p.ID, p.UserID, p.Name, string(ids), p.SessionID)
	if err != nil {
		return nil, fmt.Errorf("inserting project: %w", err)
	}
	return p, nil
}

// ByID returns one project owned by the user.
func (s *Store) ByID(ctx context.Context, userID, projectID string) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, project_name, file_ids, session_id, is_active, initialization_status, created_at
		 FROM projects WHERE id = ? AND user_id = ?`, projectID, userID)
	return scanProject(row)
}

// List returns the user's projects, newest first.
func (s *Store) List(ctx context.Context, userID string, activeOnly bool) ([]*Project, error) {
	query := `SELECT id, user_id, project_name, file_ids, session_id, is_active, initialization_status, created_at
	          FROM projects WHERE user_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var out []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetStatus records the initialization outcome.
func (s *Store) SetStatus(ctx context.Context, projectID string, status Status) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE projects SET initialization_status = ? WHERE id = ?`, string(status), projectID)
	if err != nil {
		return fmt.Errorf("updating project status: %w", err)
	}
	return nil
}

// SetActive flips the active flag.
func (s *Store) SetActive(ctx context.Context, projectID string, active bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE projects SET is_active = ? WHERE id = ?`, boolToInt(active), projectID)
	if err != nil {
		return fmt.Errorf("updating project active flag: %w", err)
	}
	return nil
}

// Delete removes the project row and returns the deleted project.
func (s *Store) Delete(ctx context.Context, userID, projectID string) (*Project, error) {
	p, err := s.ByID(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM projects WHERE id = ? AND user_id = ?`, projectID, userID); err != nil {
		return nil, fmt.Errorf("deleting project: %w", err)
	}
	return p, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanProject(row scannable) (*Project, error) {
	var (
		p      Project
		ids    string
		active int
		status string
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &ids, &p.SessionID, &active, &status, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	if err := json.Unmarshal([]byte(ids), &p.FileIDs); err != nil {
		p.FileIDs = nil
	}
	p.IsActive = active != 0
	p.Status = Status(status)
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
