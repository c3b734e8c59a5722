// Package store implements the in-memory vacancy collection.
//
// Every mutation runs under a single mutex held only for the in-memory
// change, never across I/O. Listing snapshots the requested page under the
// lock and yields from the snapshot, so a slow consumer never blocks
// writers. Collection order is insertion order.
package store

import (
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hirelab/vacancyload/internal/model"
)

var (
	// ErrNotFound is returned when no live vacancy has the requested ID.
	ErrNotFound = errors.New("vacancy not found")

	// ErrAlreadyExists is returned when a create collides with a live title.
	ErrAlreadyExists = errors.New("vacancy already exists")
)

// Store holds the live vacancy collection.
type Store struct {
	mu        sync.Mutex
	vacancies []model.Vacancy

	// now is swappable for tests.
	now func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{now: time.Now}
}

// Seed populates the store with n synthetic vacancies, mirroring the data
// shape the real service would return. Intended for startup only.
func (s *Store) Seed(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range n {
		ts := s.now().UTC()
		s.vacancies = append(s.vacancies, model.Vacancy{
			ID:          uuid.New().String(),
			Title:       fmt.Sprintf("Title%d", i),
			Description: fmt.Sprintf("Description%d", i),
			Views:       i,
			Division:    model.Divisions[i%len(model.Divisions)],
			Country:     fmt.Sprintf("Country%d", i),
			CreatedAt:   ts,
			UpdatedAt:   ts,
		})
	}
}

// Create appends a new vacancy. It fails with ErrAlreadyExists when a live
// vacancy with the same title exists. The ID is freshly assigned and never
// reused; views start at zero and both timestamps are set to now.
func (s *Store) Create(title, description string, division model.Division, country string) (model.Vacancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.vacancies {
		if s.vacancies[i].Title == title {
			return model.Vacancy{}, fmt.Errorf("%w: title %q", ErrAlreadyExists, title)
		}
	}

	ts := s.now().UTC()
	v := model.Vacancy{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Views:       0,
		Division:    division,
		Country:     country,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	s.vacancies = append(s.vacancies, v)
	return v, nil
}

// Get returns the live vacancy with the given ID.
func (s *Store) Get(id string) (model.Vacancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.vacancies {
		if s.vacancies[i].ID == id {
			return s.vacancies[i], nil
		}
	}
	return model.Vacancy{}, fmt.Errorf("%w: id %s", ErrNotFound, id)
}

// List yields the requested page one vacancy at a time. Pages are 1-indexed
// against the collection in insertion order; out-of-range pages yield
// nothing. The page is snapshotted under the lock before the first yield,
// so concurrent mutations do not affect an in-flight listing.
func (s *Store) List(page, limit int) iter.Seq[model.Vacancy] {
	snapshot := s.page(page, limit)
	return func(yield func(model.Vacancy) bool) {
		for _, v := range snapshot {
			if !yield(v) {
				return
			}
		}
	}
}

func (s *Store) page(page, limit int) []model.Vacancy {
	if page < 1 || limit <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := (page - 1) * limit
	if start >= len(s.vacancies) {
		return nil
	}
	end := min(start+limit, len(s.vacancies))

	out := make([]model.Vacancy, end-start)
	copy(out, s.vacancies[start:end])
	return out
}

// Update overwrites all mutable fields of the vacancy with the given ID and
// refreshes updated_at. Title uniqueness is not re-checked on update; only
// creation enforces it.
func (s *Store) Update(id, title, description string, division model.Division, country string, views int) (model.Vacancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.vacancies {
		if s.vacancies[i].ID != id {
			continue
		}
		v := &s.vacancies[i]
		v.Title = title
		v.Description = description
		v.Division = division
		v.Country = country
		v.Views = views
		v.UpdatedAt = s.now().UTC()
		return *v, nil
	}
	return model.Vacancy{}, fmt.Errorf("%w: id %s", ErrNotFound, id)
}

// Delete removes the vacancy with the given ID permanently. Subsequent reads
// of the ID fail with ErrNotFound.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.vacancies {
		if s.vacancies[i].ID == id {
			s.vacancies = append(s.vacancies[:i], s.vacancies[i+1:]...)
			return true, nil
		}
	}
	return false, fmt.Errorf("%w: id %s", ErrNotFound, id)
}

// Len returns the number of live vacancies.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.vacancies)
}
