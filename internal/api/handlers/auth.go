package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/quill/internal/auth"
	"github.com/nebari-dev/quill/internal/service"
)

type AuthHandler struct {
	accounts *service.AccountService
	authn    *auth.Authenticator
}

func NewAuthHandler(accounts *service.AccountService, authn *auth.Authenticator) *AuthHandler {
	return &AuthHandler{accounts: accounts, authn: authn}
}

// Register godoc
// @Summary Create an account
// @Description Creates a VIEWER account and starts a session. The token is only set as an HttpOnly cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param account body service.RegisterRequest true "Account details"
// @Success 201 {object} Response{data=UserData}
// @Failure 400 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.authn.SetSessionCookie(c, token)
	respondOK(c, http.StatusCreated, "", UserData{User: user})
}

// Login godoc
// @Summary User login
// @Description Authenticate user and set the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body service.LoginRequest true "Login credentials"
// @Success 200 {object} Response{data=UserData}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.accounts.Login(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.authn.SetSessionCookie(c, token)
	respondOK(c, http.StatusOK, "", UserData{User: user})
}

// Logout godoc
// @Summary Log out
// @Description Expires the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.authn.ClearSessionCookie(c)
	respondOK(c, http.StatusOK, "Logged out successfully", nil)
}

// Me godoc
// @Summary Get the current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} Response{data=UserData}
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		respondFail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	respondOK(c, http.StatusOK, "", UserData{User: user})
}
