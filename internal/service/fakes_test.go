package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/school-records-api/internal/models"
	"github.com/noah-isme/school-records-api/internal/repository"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

// fakeSchool is an in-memory stand-in for the record repositories.
type fakeSchool struct {
	mu         sync.Mutex
	students   map[int64]models.Student
	attendance []models.Attendance
	grades     []models.Grade
	behavior   []models.Behavior
	nextID     int64
	failWith   error
}

func newFakeSchool(students ...models.Student) *fakeSchool {
	f := &fakeSchool{students: make(map[int64]models.Student), nextID: 100}
	for _, s := range students {
		f.students[s.ID] = s
	}
	return f
}

func seededSchool() *fakeSchool {
	return newFakeSchool(
		models.Student{ID: 1, Name: "Ahmad", Class: "10-A"},
		models.Student{ID: 2, Name: "Siti", Class: "10-A"},
	)
}

func (f *fakeSchool) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeSchool) List(ctx context.Context) ([]models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]models.Student, 0, len(f.students))
	for _, s := range f.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSchool) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	s, ok := f.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (f *fakeSchool) Exists(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return false, f.failWith
	}
	_, ok := f.students[id]
	return ok, nil
}

func (f *fakeSchool) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.students), nil
}

func (f *fakeSchool) Create(ctx context.Context, s *models.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = f.id()
	s.CreatedAt = time.Now()
	f.students[s.ID] = *s
	return nil
}

type fakeAttendance struct{ *fakeSchool }

func (f fakeAttendance) Create(ctx context.Context, r *models.Attendance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.students[r.StudentID]; !ok {
		return fmt.Errorf("create attendance: %w", repository.ErrReferenceMissing)
	}
	for _, existing := range f.attendance {
		if existing.StudentID == r.StudentID && existing.Date.Equal(r.Date.Time) {
			return fmt.Errorf("create attendance: %w", repository.ErrDuplicate)
		}
	}
	r.ID = f.id()
	f.attendance = append(f.attendance, *r)
	return nil
}

func (f fakeAttendance) ListByStudent(ctx context.Context, studentID int64) ([]models.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Attendance, 0)
	for _, r := range f.attendance {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[j].Date.Before(out[i].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f fakeAttendance) CountByStatusOn(ctx context.Context, day models.Date) ([]models.StatusCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[models.AttendanceStatus]int{}
	for _, r := range f.attendance {
		if r.Date.Equal(day.Time) {
			counts[r.Status]++
		}
	}
	out := make([]models.StatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, models.StatusCount{Status: status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

type fakeGrades struct{ *fakeSchool }

func (f fakeGrades) Create(ctx context.Context, g *models.Grade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g.ID = f.id()
	f.grades = append(f.grades, *g)
	return nil
}

func (f fakeGrades) ListByStudent(ctx context.Context, studentID int64) ([]models.Grade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Grade
	for _, g := range f.grades {
		if g.StudentID == studentID {
			out = append(out, g)
		}
	}
	return out, nil
}

type fakeBehavior struct{ *fakeSchool }

func (f fakeBehavior) Create(ctx context.Context, b *models.Behavior) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = f.id()
	f.behavior = append(f.behavior, *b)
	return nil
}

func (f fakeBehavior) ListByStudent(ctx context.Context, studentID int64) ([]models.Behavior, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Behavior
	for _, b := range f.behavior {
		if b.StudentID == studentID {
			out = append(out, b)
		}
	}
	return out, nil
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(ctx context.Context) { c.calls++ }

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	m.deletes++
	return nil
}
