package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-records-api/internal/models"
	"github.com/noah-isme/school-records-api/internal/service"
	"github.com/noah-isme/school-records-api/pkg/logger"
)

type stubResolver struct {
	users map[string]*models.User
	err   error
}

func (s stubResolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.users[token], nil
}

type headerTokenReader struct{}

func (headerTokenReader) Read(r *http.Request) string {
	return r.Header.Get("X-Test-Token")
}

type recordingAudit struct {
	logs []*models.AuditLog
	err  error
}

func (r *recordingAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, log)
	return r.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newSessionRouter(resolver stubResolver) *gin.Engine {
	r := gin.New()
	r.Use(Session(resolver, headerTokenReader{}))
	r.GET("/public", func(c *gin.Context) {
		if user := CurrentUser(c); user != nil {
			c.String(http.StatusOK, user.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/private", RequireSession(), func(c *gin.Context) {
		c.String(http.StatusOK, "%d:%s:%d", CurrentUser(c).ID, SessionToken(c), c.GetInt64(logger.UserIDKey))
	})
	return r
}

func TestSessionResolvesUser(t *testing.T) {
	router := newSessionRouter(stubResolver{users: map[string]*models.User{"tok": {ID: 7, Username: "guru", Role: models.RoleTeacher}}})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("X-Test-Token", "tok")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7:tok:7", rec.Body.String())
}

func TestSessionAnonymous(t *testing.T) {
	router := newSessionRouter(stubResolver{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/public", nil))
	assert.Equal(t, "anonymous", rec.Body.String())

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("X-Test-Token", "unknown")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.Contains(t, rec.Body.String(), `"UNAUTHORIZED"`)
}

func TestSessionStoreFailure(t *testing.T) {
	router := newSessionRouter(stubResolver{err: errors.New("db down")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/public", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestAuditRecordsSuccessfulRequests(t *testing.T) {
	audit := &recordingAudit{err: errors.New("audit table missing")}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.User{ID: 3, Role: models.RoleTeacher})
		c.Next()
	})
	r.POST("/ok", Audit(audit, nil, models.AuditActionGradeCreate, "grade"), func(c *gin.Context) {
		SetAuditResource(c, "12")
		c.Status(http.StatusOK)
	})
	r.POST("/fail", Audit(audit, nil, models.AuditActionGradeCreate, "grade"), func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "audit failure must not change the response")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/fail", nil))

	require.Len(t, audit.logs, 1)
	log := audit.logs[0]
	require.NotNil(t, log.UserID)
	assert.Equal(t, int64(3), *log.UserID)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, "12", *log.ResourceID)
	require.NotNil(t, log.NewValues)
	assert.True(t, strings.Contains(*log.NewValues, `"/ok"`))
}

func TestMetricsMiddlewareLabelsRoutes(t *testing.T) {
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/students/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/students/1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",path="/students/:id",status="200"} 1`)
	assert.Contains(t, body, `path="unmatched"`)
}

func TestSetCacheHit(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	SetCacheHit(c, true)
	assert.Equal(t, "HIT", rec.Header().Get(CacheHeader))
	SetCacheHit(c, false)
	assert.Equal(t, "MISS", rec.Header().Get(CacheHeader))
}
