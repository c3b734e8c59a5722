package store_test

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelab/vacancyload/internal/model"
	"github.com/hirelab/vacancyload/internal/store"
)

func TestCreateAssignsFreshRecord(t *testing.T) {
	s := store.New()

	v, err := s.Create("Engineer", "builds things", model.DivisionDevelopment, "NL")
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "Engineer", v.Title)
	assert.Zero(t, v.Views)
	assert.False(t, v.CreatedAt.IsZero())
	assert.Equal(t, v.CreatedAt, v.UpdatedAt)
	assert.Equal(t, 1, s.Len())
}

func TestCreateDuplicateTitle(t *testing.T) {
	s := store.New()

	_, err := s.Create("Engineer", "", model.DivisionDevelopment, "NL")
	require.NoError(t, err)

	_, err = s.Create("Engineer", "other", model.DivisionSales, "DE")
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
	assert.Equal(t, 1, s.Len())
}

func TestGetUnknownID(t *testing.T) {
	s := store.New()

	_, err := s.Get("no-such-id")
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "no-such-id")
}

func TestUpdateOverwritesAllMutableFields(t *testing.T) {
	s := store.New()
	v, err := s.Create("Engineer", "old", model.DivisionDevelopment, "NL")
	require.NoError(t, err)

	updated, err := s.Update(v.ID, "Senior Engineer", "new", model.DivisionSecurity, "DE", 42)
	require.NoError(t, err)
	assert.Equal(t, v.ID, updated.ID)
	assert.Equal(t, "Senior Engineer", updated.Title)
	assert.Equal(t, "new", updated.Description)
	assert.Equal(t, model.DivisionSecurity, updated.Division)
	assert.Equal(t, "DE", updated.Country)
	assert.Equal(t, 42, updated.Views)
	assert.Equal(t, v.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(v.UpdatedAt))
}

func TestUpdateDoesNotRecheckTitleUniqueness(t *testing.T) {
	// Observed behavior of the mock: only creation enforces title uniqueness.
	s := store.New()
	_, err := s.Create("First", "", model.DivisionOther, "NL")
	require.NoError(t, err)
	second, err := s.Create("Second", "", model.DivisionOther, "NL")
	require.NoError(t, err)

	updated, err := s.Update(second.ID, "First", "", model.DivisionOther, "NL", 0)
	require.NoError(t, err)
	assert.Equal(t, "First", updated.Title)
}

func TestUpdateUnknownID(t *testing.T) {
	s := store.New()
	_, err := s.Update("missing", "T", "", model.DivisionOther, "NL", 0)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteThenGet(t *testing.T) {
	s := store.New()
	v, err := s.Create("Engineer", "", model.DivisionDevelopment, "NL")
	require.NoError(t, err)

	ok, err := s.Delete(v.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.Get(v.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Delete(v.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeletedIDNeverReused(t *testing.T) {
	s := store.New()
	v, err := s.Create("Engineer", "", model.DivisionDevelopment, "NL")
	require.NoError(t, err)
	_, err = s.Delete(v.ID)
	require.NoError(t, err)

	for i := range 50 {
		created, err := s.Create("Engineer"+string(rune('A'+i)), "", model.DivisionOther, "NL")
		require.NoError(t, err)
		assert.NotEqual(t, v.ID, created.ID)
	}
}

func collect(s *store.Store, page, limit int) []model.Vacancy {
	var out []model.Vacancy
	for v := range s.List(page, limit) {
		out = append(out, v)
	}
	return out
}

func TestListPagination(t *testing.T) {
	s := store.New()
	s.Seed(25)

	page1 := collect(s, 1, 10)
	page2 := collect(s, 2, 10)
	page3 := collect(s, 3, 10)

	require.Len(t, page1, 10)
	require.Len(t, page2, 10)
	require.Len(t, page3, 5)

	// Concatenated pages reconstruct the collection exactly once per record,
	// in insertion order.
	all := append(append(page1, page2...), page3...)
	seen := make(map[string]bool, 25)
	for i, v := range all {
		assert.Equal(t, "Title"+strconv.Itoa(i), v.Title)
		assert.False(t, seen[v.ID], "record %s returned twice", v.ID)
		seen[v.ID] = true
	}
	assert.Len(t, seen, 25)
}

func TestListOutOfRange(t *testing.T) {
	s := store.New()
	s.Seed(5)

	assert.Empty(t, collect(s, 2, 10))
	assert.Empty(t, collect(s, 100, 10))
	assert.Empty(t, collect(s, 0, 10))
	assert.Empty(t, collect(s, 1, 0))
}

func TestListEarlyBreak(t *testing.T) {
	s := store.New()
	s.Seed(10)

	var got int
	for range s.List(1, 10) {
		got++
		if got == 3 {
			break
		}
	}
	assert.Equal(t, 3, got)
}

func TestListSnapshotIsolatedFromMutation(t *testing.T) {
	s := store.New()
	s.Seed(10)

	seq := s.List(1, 10)

	// Mutate after the snapshot: the in-flight listing still sees 10 records.
	first := collect(s, 1, 1)[0]
	_, err := s.Delete(first.ID)
	require.NoError(t, err)

	var n int
	for range seq {
		n++
	}
	assert.Equal(t, 10, n)
}

func TestConcurrentCreates(t *testing.T) {
	s := store.New()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Create("Title"+strconv.Itoa(i), "", model.DivisionOther, "NL")
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, s.Len())
}

func TestConcurrentCreatesSameTitle(t *testing.T) {
	// The uniqueness check and the append run under one lock, so exactly one
	// of the racing creates wins.
	s := store.New()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create("Contested", "", model.DivisionOther, "NL")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded int
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, store.ErrAlreadyExists)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, s.Len())
}
