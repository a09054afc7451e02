package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/lottery/model/pstat"
	"github.com/viant/lottery/service/dao"
	"github.com/viant/lottery/service/dao/archive"
)

// Service implements a snapshot archive on top of any afs backed location
// (file://, mem://, s3://...). Each record is stored as <id>.json.
type Service struct {
	baseURL string
	fs      afs.Service
	logger  logrus.FieldLogger
	mu      sync.RWMutex
}

var _ dao.Service[string, pstat.Record] = (*Service)(nil)

// Save persists a record
func (s *Service) Save(ctx context.Context, record *pstat.Record) error {
	if record == nil {
		return dao.ErrNilEntity
	}
	if record.ID == "" {
		return dao.ErrInvalidID
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	URL := s.recordURL(record.ID)
	if err = s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save record to %s: %w", URL, err)
	}
	return nil
}

// Load retrieves a record by id
func (s *Service) Load(ctx context.Context, id string) (*pstat.Record, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	URL := s.recordURL(id)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check if record exists: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("record %s: %w", id, dao.ErrNotFound)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", URL, err)
	}
	record := &pstat.Record{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record %s: %w", URL, err)
	}
	return record, nil
}

// Delete removes a record
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	URL := s.recordURL(id)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return fmt.Errorf("failed to check if record exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("record %s: %w", id, dao.ErrNotFound)
	}
	if err := s.fs.Delete(ctx, URL); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", URL, err)
	}
	return nil
}

// List returns matching records ordered by the time they were taken.
// Unreadable files are logged and skipped.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*pstat.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.baseURL, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	var records []*pstat.Record
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			s.logger.WithError(err).WithField("url", object.URL()).Warn("failed to read record")
			continue
		}
		record := &pstat.Record{}
		if err := json.Unmarshal(data, record); err != nil {
			s.logger.WithError(err).WithField("url", object.URL()).Warn("failed to unmarshal record")
			continue
		}
		if !archive.Matches(record, parameters) {
			continue
		}
		records = append(records, record)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].TakenAt.Equal(records[j].TakenAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].TakenAt.Before(records[j].TakenAt)
	})
	return records, nil
}

func (s *Service) recordURL(id string) string {
	return url.Join(s.baseURL, id+".json")
}

// New creates an archive rooted at baseURL, creating the location when needed.
// A plain path is treated as a local file location.
func New(ctx context.Context, baseURL string, logger logrus.FieldLogger) (*Service, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("archive: base URL cannot be empty")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	fs := afs.New()
	if !strings.Contains(baseURL, "://") {
		baseURL = url.Normalize(path.Clean(baseURL), file.Scheme)
	}
	exists, _ := fs.Exists(ctx, baseURL)
	if !exists {
		if err := fs.Create(ctx, baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create archive location %s: %w", baseURL, err)
		}
	}
	return &Service{
		baseURL: baseURL,
		fs:      fs,
		logger:  logger,
	}, nil
}
