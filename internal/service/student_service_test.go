package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records-api/internal/dto"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

func newStudentServiceForTest(school *fakeSchool, stats statsInvalidator) *StudentService {
	return NewStudentService(school, fakeAttendance{school}, fakeGrades{school}, fakeBehavior{school}, stats, nil, zap.NewNop())
}

func TestStudentServiceList(t *testing.T) {
	svc := newStudentServiceForTest(seededSchool(), nil)

	students, err := svc.List(context.Background(), teacherUser())
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Ahmad", students[0].Name)

	_, err = svc.List(context.Background(), studentUser(1))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.List(context.Background(), nil)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceListStoreFailure(t *testing.T) {
	school := seededSchool()
	school.failWith = errors.New("pq: relation does not exist")
	svc := newStudentServiceForTest(school, nil)

	_, err := svc.List(context.Background(), teacherUser())
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
	assert.Equal(t, "failed to list students", appErr.Message)
}

func TestStudentServiceDetailFreshStudentHasEmptySequences(t *testing.T) {
	svc := newStudentServiceForTest(seededSchool(), nil)

	detail, err := svc.Detail(context.Background(), teacherUser(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Siti", detail.Name)
	assert.NotNil(t, detail.Attendance)
	assert.NotNil(t, detail.Grades)
	assert.NotNil(t, detail.Behavior)
	assert.Empty(t, detail.Grades)
}

func TestStudentServiceDetailOwnership(t *testing.T) {
	svc := newStudentServiceForTest(seededSchool(), nil)
	ahmad := studentUser(1)

	detail, err := svc.Detail(context.Background(), ahmad, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ahmad", detail.Name)

	detail, err = svc.Detail(context.Background(), ahmad, 2)
	assert.Nil(t, detail)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceDetailNotFound(t *testing.T) {
	svc := newStudentServiceForTest(seededSchool(), nil)

	_, err := svc.Detail(context.Background(), teacherUser(), 404)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Detail(context.Background(), studentUser(1), 404)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code, "authorization runs before lookup")
}

func TestStudentServiceDetailOrdersAttendanceNewestFirst(t *testing.T) {
	school := seededSchool()
	svc := newStudentServiceForTest(school, nil)
	attendance := NewAttendanceService(school, fakeAttendance{school}, nil, nil, nil)
	ctx := context.Background()

	for _, day := range []string{"2024-01-15", "2024-01-17", "2024-01-16"} {
		_, err := attendance.Add(ctx, teacherUser(), dto.CreateAttendanceRequest{StudentID: 1, Date: day, Status: "present"})
		require.NoError(t, err)
	}

	detail, err := svc.Detail(ctx, teacherUser(), 1)
	require.NoError(t, err)
	require.Len(t, detail.Attendance, 3)
	assert.Equal(t, "2024-01-17", detail.Attendance[0].Date.String())
	assert.Equal(t, "2024-01-16", detail.Attendance[1].Date.String())
	assert.Equal(t, "2024-01-15", detail.Attendance[2].Date.String())
}

func TestStudentServiceCreate(t *testing.T) {
	school := seededSchool()
	stats := &countingInvalidator{}
	svc := newStudentServiceForTest(school, stats)
	ctx := context.Background()

	student, err := svc.Create(ctx, teacherUser(), dto.CreateStudentRequest{Name: "Dewi", Class: "11-B"})
	require.NoError(t, err)
	assert.NotZero(t, student.ID)
	assert.Equal(t, 1, stats.calls)

	exists, err := school.Exists(ctx, student.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = svc.Create(ctx, teacherUser(), dto.CreateStudentRequest{Name: "", Class: "11-B"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(ctx, studentUser(1), dto.CreateStudentRequest{Name: "Eko", Class: "11-B"})
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

