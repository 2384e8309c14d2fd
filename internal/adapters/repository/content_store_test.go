package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/biofert/core/internal/domain/entities"
	"github.com/biofert/core/internal/infrastructure/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const fixture = `{
  "company": {"name": "Biofert Kenya", "tagline": "Living soils"},
  "products": [{"id": 1, "name": "Rhizobium", "npk": "N", "description": "d", "benefits": ["a"], "shelfLife": "12 months"}],
  "events": [
    {"id": 2, "title": "Show", "date": "March 2025", "location": "Nairobi", "image": "b.jpg", "description": "two"},
    {"id": 1, "title": "Workshop", "date": "Jan 2025", "location": "Thika", "image": "c.jpg", "description": "three"}
  ],
  "gallery": [{"src": "x.jpg"}]
}`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "content.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newLoadedStore(t *testing.T, content string) *ContentStore {
	t.Helper()
	store := NewContentStore(writeFixture(t, content), logger.NewNop())
	require.NoError(t, store.Load())
	return store
}

func readDocument(t *testing.T, path string) map[string]json.RawMessage {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestContentStoreLoad(t *testing.T) {
	store := newLoadedStore(t, fixture)

	assert.True(t, store.Loaded())
	assert.Equal(t, "Biofert Kenya", store.Company().Name)
	require.Len(t, store.Products(), 1)
	assert.Equal(t, "Rhizobium", store.Products()[0].Name)
	assert.Len(t, store.Events(), 2)

	// absent sections are empty, never nil
	assert.NotNil(t, store.Clientele())
	assert.Empty(t, store.Clientele())
	assert.NotNil(t, store.BenefitsPage().Benefits)
	assert.Empty(t, store.Validate())
}

func TestContentStoreMissingFile(t *testing.T) {
	store := NewContentStore(filepath.Join(t.TempDir(), "missing.json"), logger.NewNop())

	err := store.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.False(t, store.Loaded())
	assert.Empty(t, store.Events())
	assert.Empty(t, store.Products())
}

func TestContentStoreMalformedFile(t *testing.T) {
	store := NewContentStore(writeFixture(t, `{"events": [`), logger.NewNop())

	require.Error(t, store.Load())
	assert.False(t, store.Loaded())
	assert.NotNil(t, store.Events())
	assert.Empty(t, store.Events())
}

func TestContentStoreMalformedSectionIsSkipped(t *testing.T) {
	store := newLoadedStore(t, `{"company": {"name": "Biofert"}, "products": "not a list"}`)

	assert.True(t, store.Loaded())
	assert.Equal(t, "Biofert", store.Company().Name)
	assert.Empty(t, store.Products())
}

func TestContentStoreValidateReportsIssues(t *testing.T) {
	store := newLoadedStore(t, `{
  "products": [{"id": 1}],
  "events": [
    {"id": 5, "title": "a", "date": "b", "location": "c", "image": "d", "description": "e"},
    {"id": 5, "title": "a", "date": "b", "location": "c", "image": "d", "description": "e"}
  ]
}`)

	issues := store.Validate()
	assert.Contains(t, issues, `SiteContent.Products[0].Name: failed "required"`)
	assert.Contains(t, issues, "SiteContent.Events[1].ID: duplicate id 5")
}

func TestMutateEventsPreservesOtherKeys(t *testing.T) {
	store := newLoadedStore(t, fixture)

	err := store.MutateEvents(func(events []entities.Event) ([]entities.Event, error) {
		return events[:1], nil
	})
	require.NoError(t, err)

	doc := readDocument(t, store.Path())
	assert.JSONEq(t, `[{"src": "x.jpg"}]`, string(doc["gallery"]))
	assert.Contains(t, string(doc["products"]), `"shelfLife"`)

	var events []entities.Event
	require.NoError(t, json.Unmarshal(doc["events"], &events))
	require.Len(t, events, 1)
	assert.Equal(t, int64(2), events[0].ID)
}

func TestMutateEventsPrettyPrints(t *testing.T) {
	store := newLoadedStore(t, fixture)
	require.NoError(t, store.MutateEvents(func(events []entities.Event) ([]entities.Event, error) {
		return events, nil
	}))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"events\": [\n")
}

func TestMutateEventsRoundTrip(t *testing.T) {
	store := newLoadedStore(t, fixture)
	require.NoError(t, store.MutateEvents(func(events []entities.Event) ([]entities.Event, error) {
		return append([]entities.Event{{ID: 9, Title: "New", Date: "d", Location: "l", Image: "i", Description: "x"}}, events...), nil
	}))

	reloaded := NewContentStore(store.Path(), logger.NewNop())
	require.NoError(t, reloaded.Load())
	assert.Equal(t, store.Events(), reloaded.Events())
	assert.Equal(t, store.Company(), reloaded.Company())
}

func TestMutateEventsWriteFailureKeepsState(t *testing.T) {
	store := newLoadedStore(t, fixture)
	before := store.Events()
	onDisk, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	store.writeFile = func(string, []byte) error { return errors.New("disk full") }

	err = store.MutateEvents(func(events []entities.Event) ([]entities.Event, error) {
		return nil, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, before, store.Events())

	after, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, onDisk, after)
}

func TestMutateEventsFnErrorSkipsWrite(t *testing.T) {
	store := newLoadedStore(t, fixture)
	writes := 0
	store.writeFile = func(path string, data []byte) error {
		writes++
		return writeFileAtomic(path, data)
	}

	err := store.MutateEvents(func([]entities.Event) ([]entities.Event, error) {
		return nil, entities.ErrEventNotFound
	})
	assert.ErrorIs(t, err, entities.ErrEventNotFound)

	require.NoError(t, store.MutateEvents(func([]entities.Event) ([]entities.Event, error) {
		return nil, errNoChange
	}))
	assert.Equal(t, 0, writes)
}

func TestMutateEventsOnMissingFileCreatesIt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "content.json")
	store := NewContentStore(path, logger.NewNop())
	require.Error(t, store.Load())

	require.NoError(t, store.MutateEvents(func(events []entities.Event) ([]entities.Event, error) {
		return append(events, entities.Event{ID: 1, Title: "t"}), nil
	}))

	doc := readDocument(t, path)
	assert.Contains(t, doc, "events")
	assert.True(t, store.Loaded())
}

func TestMutateEventsRefusesUnloadedFile(t *testing.T) {
	broken := `{"company":{"name":"Biofert"},"products":[{"id":1,"name":"Rhizobium"}],"events":[],}`
	path := writeFixture(t, broken)
	store := NewContentStore(path, logger.NewNop())
	require.Error(t, store.Load())

	err := NewFileEventRepository(store).Create(context.Background(), entities.Event{ID: 1, Title: "Field Day"})
	assert.ErrorIs(t, err, entities.ErrContentUnavailable)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, broken, string(onDisk))
	assert.Empty(t, store.Events())
}

func TestMutateEventsWithoutLoadRefusesExistingFile(t *testing.T) {
	path := writeFixture(t, fixture)
	store := NewContentStore(path, logger.NewNop())

	err := store.MutateEvents(func(events []entities.Event) ([]entities.Event, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, entities.ErrContentUnavailable)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fixture, string(onDisk))
}

func TestContentStoreAccessorsReturnCopies(t *testing.T) {
	store := newLoadedStore(t, fixture)

	events := store.Events()
	events[0].Title = "changed"
	products := store.Products()
	products[0].Name = "changed"

	assert.Equal(t, "Show", store.Events()[0].Title)
	assert.Equal(t, "Rhizobium", store.Products()[0].Name)
}

func TestContentStoreConcurrentMutations(t *testing.T) {
	store := newLoadedStore(t, `{"events": []}`)
	repo := NewFileEventRepository(store)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			assert.NoError(t, repo.Create(context.Background(), entities.Event{ID: id, Title: "t"}))
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Len(t, store.Events(), n)

	reloaded := NewContentStore(store.Path(), logger.NewNop())
	require.NoError(t, reloaded.Load())
	assert.Len(t, reloaded.Events(), n)
}
