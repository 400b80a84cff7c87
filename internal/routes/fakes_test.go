package routes

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/school-records-api/internal/models"
	"github.com/noah-isme/school-records-api/internal/repository"
)

// memoryStore backs every repository interface the services need.
type memoryStore struct {
	mu         sync.Mutex
	nextID     int64
	users      []*models.User
	students   map[int64]models.Student
	attendance []models.Attendance
	grades     []models.Grade
	behavior   []models.Behavior
	audit      []*models.AuditLog
}

func newMemoryStore() *memoryStore {
	return &memoryStore{nextID: 100, students: make(map[int64]models.Student)}
}

func (m *memoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memoryStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryStore) FindUser(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryStore) UpdateLastLogin(_ context.Context, id int64, ts time.Time) error {
	return nil
}

func (m *memoryStore) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, log)
	return nil
}

// userRepo exposes FindUser as FindByID for the auth service.
type userRepo struct{ *memoryStore }

func (u userRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return u.FindUser(ctx, id)
}

type studentRepo struct{ *memoryStore }

func (s studentRepo) List(_ context.Context) ([]models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Student, 0, len(s.students))
	for _, st := range s.students {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s studentRepo) FindByID(_ context.Context, id int64) (*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &st, nil
}

func (s studentRepo) Exists(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.students[id]
	return ok, nil
}

func (s studentRepo) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.students), nil
}

func (s studentRepo) Create(_ context.Context, st *models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.ID = s.id()
	s.students[st.ID] = *st
	return nil
}

type attendanceRepo struct{ *memoryStore }

func (a attendanceRepo) Create(_ context.Context, r *models.Attendance) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, existing := range a.attendance {
		if existing.StudentID == r.StudentID && existing.Date.Equal(r.Date.Time) {
			return fmt.Errorf("create attendance: %w", repository.ErrDuplicate)
		}
	}
	r.ID = a.id()
	a.attendance = append(a.attendance, *r)
	return nil
}

func (a attendanceRepo) ListByStudent(_ context.Context, studentID int64) ([]models.Attendance, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Attendance, 0)
	for _, r := range a.attendance {
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

func (a attendanceRepo) CountByStatusOn(_ context.Context, day models.Date) ([]models.StatusCount, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	counts := map[models.AttendanceStatus]int{}
	for _, r := range a.attendance {
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

type gradeRepo struct{ *memoryStore }

func (g gradeRepo) Create(_ context.Context, grade *models.Grade) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	grade.ID = g.id()
	g.grades = append(g.grades, *grade)
	return nil
}

func (g gradeRepo) ListByStudent(_ context.Context, studentID int64) ([]models.Grade, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]models.Grade, 0)
	for _, grade := range g.grades {
		if grade.StudentID == studentID {
			out = append(out, grade)
		}
	}
	return out, nil
}

type behaviorRepo struct{ *memoryStore }

func (b behaviorRepo) Create(_ context.Context, note *models.Behavior) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	note.ID = b.id()
	b.behavior = append(b.behavior, *note)
	return nil
}

func (b behaviorRepo) ListByStudent(_ context.Context, studentID int64) ([]models.Behavior, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Behavior, 0)
	for _, note := range b.behavior {
		if note.StudentID == studentID {
			out = append(out, note)
		}
	}
	return out, nil
}
