package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/biofert/core/internal/domain/entities"
	"github.com/biofert/core/internal/ports"
)

// eventRepositorySuite runs the same contract against every EventRepository
type eventRepositorySuite struct {
	suite.Suite
	newRepo func() ports.EventRepository
	repo    ports.EventRepository
	ctx     context.Context
}

func (s *eventRepositorySuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = s.newRepo()
	require.NoError(s.T(), s.repo.ReplaceAll(s.ctx, []entities.Event{
		{ID: 2, Title: "Show", Date: "March 2025", Location: "Nairobi", Image: "b.jpg", Description: "two"},
		{ID: 1, Title: "Workshop", Date: "Jan 2025", Location: "Thika", Image: "c.jpg", Description: "three"},
	}))
}

func (s *eventRepositorySuite) ids() []int64 {
	events, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	ids := make([]int64, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}

func (s *eventRepositorySuite) TestListKeepsOrder() {
	s.Equal([]int64{2, 1}, s.ids())
}

func (s *eventRepositorySuite) TestCreateInsertsFirst() {
	event := entities.Event{ID: 10, Title: "Field Day", Date: "May 2025", Location: "Meru", Image: "x.jpg", Description: "desc"}
	s.Require().NoError(s.repo.Create(s.ctx, event))

	events, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal(event, events[0])
}

func (s *eventRepositorySuite) TestCreateRejectsDuplicateID() {
	err := s.repo.Create(s.ctx, entities.Event{ID: 1, Title: "dup"})
	s.ErrorIs(err, entities.ErrDuplicateEvent)
	s.Len(s.ids(), 2)
}

func (s *eventRepositorySuite) TestUpdateMergesFields() {
	title := "Renamed"
	updated, err := s.repo.Update(s.ctx, 1, entities.EventPatch{Title: &title})
	s.Require().NoError(err)
	s.Equal("Renamed", updated.Title)
	s.Equal("Thika", updated.Location)

	events, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Equal(*updated, events[1])
}

func (s *eventRepositorySuite) TestUpdateMissing() {
	title := "x"
	_, err := s.repo.Update(s.ctx, 404, entities.EventPatch{Title: &title})
	s.ErrorIs(err, entities.ErrEventNotFound)
}

func (s *eventRepositorySuite) TestUpdateEmptyPatchReturnsStored() {
	updated, err := s.repo.Update(s.ctx, 2, entities.EventPatch{})
	s.Require().NoError(err)
	s.Equal("Show", updated.Title)

	_, err = s.repo.Update(s.ctx, 404, entities.EventPatch{})
	s.ErrorIs(err, entities.ErrEventNotFound)
}

func (s *eventRepositorySuite) TestConcurrentPatchesOfDifferentFieldsBothSurvive() {
	title, location := "Renamed", "Embu"

	var wg sync.WaitGroup
	for _, patch := range []entities.EventPatch{{Title: &title}, {Location: &location}} {
		wg.Add(1)
		go func(p entities.EventPatch) {
			defer wg.Done()
			_, err := s.repo.Update(s.ctx, 1, p)
			s.NoError(err)
		}(patch)
	}
	wg.Wait()

	events, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Equal("Renamed", events[1].Title)
	s.Equal("Embu", events[1].Location)
	s.Equal("Jan 2025", events[1].Date)
}

func (s *eventRepositorySuite) TestDeleteIsIdempotent() {
	existed, err := s.repo.Delete(s.ctx, 2)
	s.Require().NoError(err)
	s.True(existed)

	existed, err = s.repo.Delete(s.ctx, 2)
	s.Require().NoError(err)
	s.False(existed)

	s.Equal([]int64{1}, s.ids())
}

func (s *eventRepositorySuite) TestReorder() {
	ordered, err := s.repo.Reorder(s.ctx, []int64{1, 2})
	s.Require().NoError(err)
	s.Len(ordered, 2)
	s.Equal([]int64{1, 2}, s.ids())

	// new events still go first after a reorder
	s.Require().NoError(s.repo.Create(s.ctx, entities.Event{ID: 3, Title: "t", Date: "d", Location: "l", Image: "i", Description: "x"}))
	s.Equal([]int64{3, 1, 2}, s.ids())
}

func (s *eventRepositorySuite) TestReorderRejectsMismatch() {
	_, err := s.repo.Reorder(s.ctx, []int64{1, 99})
	s.ErrorIs(err, entities.ErrInvalidReorder)
	s.Equal([]int64{2, 1}, s.ids())
}

func TestFileEventRepository(t *testing.T) {
	suite.Run(t, &eventRepositorySuite{
		newRepo: func() ports.EventRepository {
			return NewFileEventRepository(newLoadedStore(t, `{"events": []}`))
		},
	})
}

func TestFileEventRepositoryStoredValuesWinOnReorder(t *testing.T) {
	store := newLoadedStore(t, fixture)
	repo := NewFileEventRepository(store)

	ordered, err := repo.Reorder(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "Workshop", ordered[0].Title)
	assert.Equal(t, "Show", ordered[1].Title)
}
