// Package files handles document upload, listing and deletion. Stored
// files feed project initialization and the document index.
package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"ragchat/internal/db"
)

// ErrFileNotFound is returned when a file id does not exist or is
// owned by another user.
var ErrFileNotFound = errors.New("file not found or unauthorized")

// File is one uploaded document.
type File struct {
	ID         string    `json:"file_id"`
	UserID     string    `json:"-"`
	Name       string    `json:"file_name"`
	Path       string    `json:"file_path"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Store persists uploaded files on disk and their metadata in the
// database.
type Store struct {
	db  *db.DB
	dir string
}

// NewStore creates a file store writing uploads under dir.
func NewStore(database *db.DB, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &Store{db: database, dir: dir}, nil
}

// Save writes one upload to disk and records it for the user. The
// stored path is namespaced by file id so same-named uploads cannot
// clobber each other.
func (s *Store) Save(ctx context.Context, userID, name string, r io.Reader) (*File, error) {
	id := uuid.NewString()
	// Uploads land in a per-file directory under their original name.
	name = filepath.Base(name)
	dir := filepath.Join(s.dir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating file directory: %w", err)
	}
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	file := &File{
		ID:         id,
		UserID:     userID,
		Name:       name,
		Path:       path,
		SizeBytes:  size,
		UploadedAt: time.Now(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO files (id, user_id, file_name, file_path, size_bytes) VALUES (?, ?, ?, ?, ?)`,
		file.ID, file.UserID, file.Name, file.Path, file.SizeBytes)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("recording file: %w", err)
	}
	return file, nil
}

// List returns the user's files, newest first.
func (s *Store) List(ctx context.Context, userID string) ([]File, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, file_name, file_path, size_bytes, uploaded_at
		 FROM files WHERE user_id = ? ORDER BY uploaded_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	defer rows.Close()

	var out []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Path, &f.SizeBytes, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Get returns one file owned by the user.
func (s *Store) Get(ctx context.Context, userID, fileID string) (*File, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, file_name, file_path, size_bytes, uploaded_at
		 FROM files WHERE id = ? AND user_id = ?`, fileID, userID)

	var f File
	err := row.Scan(&f.ID, &f.UserID, &f.Name, &f.Path, &f.SizeBytes, &f.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying file: %w", err)
	}
	return &f, nil
}

// Delete removes the file from disk and from the database. Ownership
// is enforced.
func (s *Store) Delete(ctx context.Context, userID, fileID string) error {
	file, err := s.Get(ctx, userID, fileID)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(filepath.Dir(file.Path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing file: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM files WHERE id = ? AND user_id = ?`, fileID, userID); err != nil {
		return fmt.Errorf("deleting file record: %w", err)
	}
	return nil
}
