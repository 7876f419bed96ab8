package handler

import (
	"errors"

	"github.com/deul428/QA-checklist/internal/qa/repository"
	"github.com/deul428/QA-checklist/internal/qa/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler 인증 핸들러
type AuthHandler struct {
	svc *service.AuthService
}

// NewAuthHandler 인증 핸들러 생성
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login POST /api/auth/login (form-encoded: username, password)
func (h *AuthHandler) Login(c *gin.Context) {
	employeeID := c.PostForm("username")
	password := c.PostForm("password")
	if employeeID == "" || password == "" {
		BadRequest(c, "사번과 비밀번호를 입력해 주세요")
		return
	}

	user, tokenPair, err := h.svc.Login(c.Request.Context(), employeeID, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			Unauthorized(c, "사번 또는 비밀번호가 올바르지 않습니다")
			return
		}
		InternalError(c, "로그인에 실패했습니다: "+err.Error())
		return
	}

	Success(c, gin.H{
		"access_token":  tokenPair.AccessToken,
		"refresh_token": tokenPair.RefreshToken,
		"token_type":    tokenPair.TokenType,
		"expires_in":    tokenPair.ExpiresIn,
		"user":          user,
	})
}

// Refresh POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "refresh_token이 필요합니다")
		return
	}

	tokenPair, err := h.svc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		Unauthorized(c, "토큰 갱신에 실패했습니다")
		return
	}
	Success(c, tokenPair)
}

// ChangePassword POST /api/user/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "현재 비밀번호와 8자 이상의 새 비밀번호가 필요합니다")
		return
	}

	err := h.svc.ChangePassword(c.Request.Context(), GetUserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			BadRequest(c, "현재 비밀번호가 올바르지 않습니다")
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "사용자를 찾을 수 없습니다")
			return
		}
		InternalError(c, "비밀번호 변경에 실패했습니다: "+err.Error())
		return
	}
	Success(c, gin.H{"message": "비밀번호가 변경되었습니다"})
}
