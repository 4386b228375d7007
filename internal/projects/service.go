package projects

import (
	"context"
	"errors"
	"fmt"

	"ragchat/internal/chat"
	"ragchat/internal/files"
	"ragchat/internal/ingest"
	"ragchat/internal/logging"
	"ragchat/internal/vectordb"
)

var (
	// ErrFilesUnavailable is returned when a referenced file does not
	// exist or belongs to another user.
	ErrFilesUnavailable = errors.New("one or more files do not exist or you don't have permission to access them")
	// ErrSessionExpired is returned when a project's session was
	// evicted; the project is deactivated.
	ErrSessionExpired = errors.New("project session has expired. Please create a new project")
)

// Service ties project rows to their session and indexed documents.
type Service struct {
	store    *Store
	files    *files.Store
	sessions *chat.Store
	ingestor *ingest.Ingestor
	vector   vectordb.Store
}

// NewService wires a project service.
func NewService(store *Store, fileStore *files.Store, sessions *chat.Store, ingestor *ingest.Ingestor, vector vectordb.Store) *Service {
	return &Service{
		store:    store,
		files:    fileStore,
		sessions: sessions,
		ingestor: ingestor,
		vector:   vector,
	}
}

// Create validates file ownership, mints a session and indexes the
// files. The project row exists from the start; its status records
// whether indexing succeeded.
func (s *Service) Create(ctx context.Context, userID, name string, fileIDs []string) (*Project, error) {
	sources, err := s.resolveSources(ctx, userID, fileIDs)
	if err != nil {
		return nil, err
	}

	sessionID := chat.NewSessionID()
	s.sessions.Create(sessionID)

	project, err := s.store.Create(ctx, userID, name, fileIDs, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.index(ctx, project, sources); err != nil {
		return nil, err
	}
	project.Status = StatusCompleted
	return project, nil
}

// Start re-initializes an existing project: if its session was
// evicted the project is deactivated, otherwise its files are indexed
// again.
func (s *Service) Start(ctx context.Context, userID, projectID string) (*Project, error) {
	project, err := s.store.ByID(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsActive {
		return nil, ErrProjectNotFound
	}

	if !s.sessions.Exists(project.SessionID) {
		if err := s.store.SetActive(ctx, project.ID, false); err != nil {
			return nil, err
		}
		return nil, ErrSessionExpired
	}

	sources, err := s.resolveSources(ctx, userID, project.FileIDs)
	if err != nil {
		return nil, err
	}
	if err := s.index(ctx, project, sources); err != nil {
		return nil, err
	}
	project.Status = StatusCompleted
	return project, nil
}

// Delete removes the project, its session and its indexed chunks.
func (s *Service) Delete(ctx context.Context, userID, projectID string) error {
	project, err := s.store.Delete(ctx, userID, projectID)
	if err != nil {
		return err
	}

	s.sessions.Clear(project.SessionID)
	if err := s.vector.DeleteByProject(ctx, project.ID); err != nil {
		logging.Warnf("removing indexed chunks for project %s: %v", project.ID, err)
	}
	return nil
}

// Get returns one project with its file names resolved.
func (s *Service) Get(ctx context.Context, userID, projectID string) (*Project, []string, error) {
	project, err := s.store.ByID(ctx, userID, projectID)
	if err != nil {
		return nil, nil, err
	}
	names, err := s.fileNames(ctx, userID, project.FileIDs)
	if err != nil {
		return nil, nil, err
	}
	return project, names, nil
}

// List returns the user's projects with their file names resolved.
func (s *Service) List(ctx context.Context, userID string, activeOnly bool) ([]*Project, [][]string, error) {
	list, err := s.store.List(ctx, userID, activeOnly)
	if err != nil {
		return nil, nil, err
	}
	names := make([][]string, len(list))
	for i, p := range list {
		n, err := s.fileNames(ctx, userID, p.FileIDs)
		if err != nil {
			return nil, nil, err
		}
		names[i] = n
	}
	return list, names, nil
}

func (s *Service) resolveSources(ctx context.Context, userID string, fileIDs []string) ([]ingest.Source, error) {
	if len(fileIDs) == 0 {
		return nil, ErrFilesUnavailable
	}
	sources := make([]ingest.Source, 0, len(fileIDs))
	for _, id := range fileIDs {
		f, err := s.files.Get(ctx, userID, id)
		if err != nil {
			if errors.Is(err, files.ErrFileNotFound) {
				return nil, ErrFilesUnavailable
			}
			return nil, err
		}
		sources = append(sources, ingest.Source{ID: f.ID, Name: f.Name, Path: f.Path})
	}
	return sources, nil
}

func (s *Service) index(ctx context.Context, project *Project, sources []ingest.Source) error {
	n, err := s.ingestor.IngestFiles(ctx, project.ID, sources)
	if err != nil {
		if serr := s.store.SetStatus(ctx, project.ID, StatusFailed); serr != nil {
			logging.Errorf("marking project %s failed: %v", project.ID, serr)
		}
		project.Status = StatusFailed
		return fmt.Errorf("initializing project index: %w", err)
	}

	logging.Infow("project indexed", "project_id", project.ID, "chunks", n)
	return s.store.SetStatus(ctx, project.ID, StatusCompleted)
}

func (s *Service) fileNames(ctx context.Context, userID string, fileIDs []string) ([]string, error) {
	names := make([]string, 0, len(fileIDs))
	for _, id := range fileIDs {
		f, err := s.files.Get(ctx, userID, id)
		if err != nil {
			if errors.Is(err, files.ErrFileNotFound) {
				continue
			}
			return nil, err
		}
		names = append(names, f.Name)
	}
	return names, nil
}
