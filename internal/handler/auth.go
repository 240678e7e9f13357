package handler

import (
	"net/http"

	"kos-manager/internal/middleware"
	"kos-manager/internal/service"
	"kos-manager/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler 负责登录/注册相关接口
type AuthHandler struct {
	Auth *service.AuthService
	// SecureCookie sets the Secure flag on the session cookie.
	SecureCookie bool
}

func NewAuthHandler(auth *service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{Auth: auth, SecureCookie: secureCookie}
}

// ---------- 注册 ----------

type registerReq struct {
	Username        string `form:"username" json:"username" binding:"required"`
	Email           string `form:"email" json:"email" binding:"required"`
	Password        string `form:"password" json:"password" binding:"required"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.Auth.Register(c.Request.Context(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	util.Created(c, util.Response{
		"message": "Registration successful! Please log in.",
		"user":    toUserResp(user),
	})
}

// ---------- 登录 ----------

type loginReq struct {
	Email      string `form:"email" json:"email" binding:"required"`
	Password   string `form:"password" json:"password" binding:"required"`
	RememberMe bool   `form:"remember_me" json:"remember_me"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), service.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	maxAge := int(res.TTL.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, res.Token, maxAge, "/", "", h.SecureCookie, true)

	util.Success(c, util.Response{
		"message":    "Login successful!",
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
		"user":       toUserResp(res.User),
	})
}

// ---------- 退出 ----------

func (h *AuthHandler) Logout(c *gin.Context) {
	if s := middleware.CurrentSession(c); s != nil {
		if err := h.Auth.Logout(c.Request.Context(), s.ID); err != nil {
			respondError(c, err)
			return
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.SecureCookie, true)

	util.Success(c, util.Response{
		"message": "You have been logged out.",
	})
}
