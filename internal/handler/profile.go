package handler

import (
	"kos-manager/internal/middleware"
	"kos-manager/internal/service"
	"kos-manager/internal/util"

	"github.com/gin-gonic/gin"
)

// ChangePasswordReq 修改密码请求
type ChangePasswordReq struct {
	OldPassword string `form:"old_password" json:"old_password" binding:"required"`
	NewPassword string `form:"new_password" json:"new_password" binding:"required,min=6,max=64"`
}

// ChangePassword 修改当前用户密码，并注销其他会话
func ChangePassword(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req ChangePasswordReq
		if err := c.ShouldBind(&req); err != nil {
			bindError(c, err)
			return
		}

		keep := ""
		if s := middleware.CurrentSession(c); s != nil {
			keep = s.ID
		}
		if err := auth.ChangePassword(c.Request.Context(), user, keep, req.OldPassword, req.NewPassword); err != nil {
			respondError(c, err)
			return
		}

		util.Success(c, util.Response{
			"message": "Password updated. Other sessions have been signed out.",
		})
	}
}
