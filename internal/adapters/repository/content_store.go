package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/biofert/core/internal/domain/entities"
	"github.com/biofert/core/internal/infrastructure/logger"
)

// errNoChange lets a mutation skip the disk write.
var errNoChange = errors.New("no change")

// ContentStore owns the site content document and its backing file.
// Reads are served from memory; event mutations are serialized and
// persisted before they become visible.
type ContentStore struct {
	path     string
	logger   *logger.Logger
	validate *validator.Validate

	mu      sync.RWMutex
	raw     map[string]json.RawMessage
	content entities.SiteContent
	loaded  bool

	writeFile func(path string, data []byte) error
}

// NewContentStore creates a store backed by the file at path. Call Load
// before serving.
func NewContentStore(path string, logger *logger.Logger) *ContentStore {
	return &ContentStore{
		path:      path,
		logger:    logger.WithComponent("content_store"),
		validate:  validator.New(),
		raw:       map[string]json.RawMessage{},
		content:   entities.EmptySiteContent(),
		writeFile: writeFileAtomic,
	}
}

// Path returns the backing file location
func (s *ContentStore) Path() string {
	return s.path
}

// Load reads and parses the backing file. A missing or malformed file
// leaves the store empty and returns the error; the store stays usable.
func (s *ContentStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, content, err := s.read()
	if err != nil {
		s.raw = map[string]json.RawMessage{}
		s.content = entities.EmptySiteContent()
		s.loaded = false
		s.logger.Errorw("Failed to load site content, serving empty content",
			"path", s.path,
			"error", err,
		)
		return err
	}

	s.raw = raw
	s.content = content
	s.loaded = true

	if issues := s.issues(content); len(issues) > 0 {
		s.logger.Warnw("Site content has validation issues", "path", s.path, "issues", issues)
	}

	s.logger.Infow("Site content loaded",
		"path", s.path,
		"products", len(content.Products),
		"events", len(content.Events),
	)

	return nil
}

func (s *ContentStore) read() (map[string]json.RawMessage, entities.SiteContent, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, entities.SiteContent{}, fmt.Errorf("read content file: %w", err)
	}

	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, entities.SiteContent{}, fmt.Errorf("parse content file: %w", err)
	}
	if raw == nil {
		// the file held a JSON null
		raw = map[string]json.RawMessage{}
	}

	content := entities.SiteContent{}
	sections := []struct {
		name string
		dst  interface{}
	}{
		{entities.SectionCompany, &content.Company},
		{entities.SectionProducts, &content.Products},
		{entities.SectionClientele, &content.Clientele},
		{entities.SectionTimeline, &content.Timeline},
		{entities.SectionProcessSteps, &content.ProcessSteps},
		{entities.SectionBenefitsPage, &content.BenefitsPage},
		{entities.SectionCertificationsPage, &content.CertificationsPage},
		{entities.SectionEvents, &content.Events},
	}
	for _, sec := range sections {
		msg, ok := raw[sec.name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(msg, sec.dst); err != nil {
			s.logger.Errorw("Ignoring malformed content section",
				"section", sec.name,
				"error", err,
			)
		}
	}
	content.Normalize()

	return raw, content, nil
}

// Validate checks every section against its schema and returns one
// message per problem.
func (s *ContentStore) Validate() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.issues(s.content)
}

func (s *ContentStore) issues(content entities.SiteContent) []string {
	var out []string

	if err := s.validate.Struct(content); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				out = append(out, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			out = append(out, err.Error())
		}
	}

	ids := make(map[int64]struct{}, len(content.Events))
	for i, e := range content.Events {
		if _, dup := ids[e.ID]; dup {
			out = append(out, fmt.Sprintf("SiteContent.Events[%d].ID: duplicate id %d", i, e.ID))
		}
		ids[e.ID] = struct{}{}
	}

	return out
}

// Loaded reports whether the last Load succeeded
func (s *ContentStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *ContentStore) Company() entities.Company {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content.Company
}

func (s *ContentStore) Products() []entities.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Product{}, s.content.Products...)
}

func (s *ContentStore) Clientele() []entities.Testimonial {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Testimonial{}, s.content.Clientele...)
}

func (s *ContentStore) Timeline() []entities.TimelineEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.TimelineEntry{}, s.content.Timeline...)
}

func (s *ContentStore) ProcessSteps() []entities.ProcessStep {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.ProcessStep{}, s.content.ProcessSteps...)
}

func (s *ContentStore) BenefitsPage() entities.BenefitsPage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content.BenefitsPage
}

func (s *ContentStore) CertificationsPage() entities.CertificationsPage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content.CertificationsPage
}

// Events returns a copy of the stored events in display order
func (s *ContentStore) Events() []entities.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entities.CloneEvents(s.content.Events)
}

// MutateEvents applies fn to a copy of the events and persists the
// result. The in-memory events change only after the file was written.
// Until the document is loaded, only a missing file may be created;
// an unreadable one is never overwritten.
func (s *ContentStore) MutateEvents(fn func([]entities.Event) ([]entities.Event, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		if _, err := os.Stat(s.path); !errors.Is(err, fs.ErrNotExist) {
			s.logger.Errorw("Refusing to write events over unloaded content file", "path", s.path, "stat_error", err)
			return entities.ErrContentUnavailable
		}
	}

	next, err := fn(entities.CloneEvents(s.content.Events))
	if err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	if next == nil {
		next = []entities.Event{}
	}

	encodedEvents, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("serialize events: %w", err)
	}

	doc := make(map[string]json.RawMessage, len(s.raw)+1)
	for k, v := range s.raw {
		doc[k] = v
	}
	doc[entities.SectionEvents] = encodedEvents

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize content: %w", err)
	}

	if err := s.writeFile(s.path, append(data, '\n')); err != nil {
		return fmt.Errorf("write content file: %w", err)
	}

	s.raw = doc
	s.content.Events = next
	s.loaded = true
	return nil
}

// writeFileAtomic writes data to a temp file next to path and renames it
// over path, so readers never see a partially written document.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
