package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records-api/internal/dto"
	"github.com/noah-isme/school-records-api/internal/middleware"
	"github.com/noah-isme/school-records-api/internal/models"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
	"github.com/noah-isme/school-records-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResult, error)
	Logout(ctx context.Context, actor *models.User, token, ip, userAgent string) error
	Me(actor *models.User) (*models.UserInfo, error)
}

type sessionCookie interface {
	Write(w http.ResponseWriter, token string) error
	Clear(w http.ResponseWriter)
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
	cookies sessionCookie
	logger  *zap.Logger
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, cookies sessionCookie, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{service: svc, cookies: cookies, logger: logger}
}

// Login godoc
// @Summary Log in
// @Description Verify username and password and open a cookie session
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.cookies.Write(c.Writer, res.Token); err != nil {
		h.logger.Error("failed to encode session cookie", zap.Error(err))
		response.Error(c, appErrors.Internal(err, "failed to start session"))
		return
	}
	response.JSON(c, http.StatusOK, dto.UserResponse{Success: true, User: res.User})
}

// Logout godoc
// @Summary Log out
// @Description End the current session. Succeeds without a session.
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.SuccessBody
// @Router /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.service.Logout(c.Request.Context(), currentUser(c), middleware.SessionToken(c), c.ClientIP(), c.GetHeader("User-Agent"))
	h.cookies.Clear(c.Writer)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c)
}

// Me godoc
// @Summary Current user
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} response.ErrorBody
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	info, err := h.service.Me(currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.UserResponse{Success: true, User: *info})
}
