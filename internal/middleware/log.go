package middleware

import (
	"net/http"

	"kos-manager/internal/models"
	"kos-manager/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditMiddleware stores one AuditLog row per mutating request of a signed-in
// user. It must run after AuthMiddleware.
func AuditMiddleware(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取用户 ID
		var userID uint
		if u := CurrentUser(c); u != nil {
			userID = u.ID
		}

		c.Next()

		if userID == 0 {
			return
		}
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			return
		}

		entry := models.AuditLog{
			UserID:    &userID,
			Method:    c.Request.Method,
			Path:      util.Truncate(c.Request.URL.Path, 255),
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: util.Truncate(c.Request.UserAgent(), 255),
		}
		if err := db.WithContext(c.Request.Context()).Create(&entry).Error; err != nil {
			log.Warn("write audit log", zap.Error(err), zap.String("path", entry.Path))
		}
	}
}
