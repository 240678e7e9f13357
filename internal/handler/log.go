package handler

import (
	"net/http"
	"strings"
	"time"

	"kos-manager/internal/models"
	"kos-manager/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler 负责操作日志查询接口
type LogHandler struct {
	DB *gorm.DB
}

func NewLogHandler(db *gorm.DB) *LogHandler {
	return &LogHandler{DB: db}
}

type logResp struct {
	ID        uint      `json:"id"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Status    int       `json:"status"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// ListLogs 列出当前用户的操作日志（分页 + 时间 + 关键字）
func (h *LogHandler) ListLogs(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	// 分页参数
	page := queryInt(c, "page", 1)
	if page <= 0 {
		page = 1
	}
	size := queryInt(c, "page_size", 20)
	if size <= 0 || size > 100 {
		size = 20
	}

	base := h.DB.WithContext(c.Request.Context()).Model(&models.AuditLog{}).Where("user_id = ?", user.ID)

	// 时间筛选：start / end（格式 YYYY-MM-DD）
	if s := c.Query("start"); s != "" {
		start, err := util.ParseDate(s)
		if err != nil {
			util.FieldError(c, "start", err.Error())
			return
		}
		base = base.Where("created_at >= ?", start)
	}
	if s := c.Query("end"); s != "" {
		end, err := util.ParseDate(s)
		if err != nil {
			util.FieldError(c, "end", err.Error())
			return
		}
		base = base.Where("created_at < ?", end.AddDate(0, 0, 1))
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		base = base.Where("path LIKE ?", "%"+q+"%")
	}
	if m := strings.ToUpper(c.Query("method")); m != "" {
		base = base.Where("method = ?", m)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load activity")
		return
	}

	var logs []models.AuditLog
	if err := base.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&logs).Error; err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load activity")
		return
	}

	items := make([]logResp, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		items = append(items, logResp{
			ID:        l.ID,
			Method:    l.Method,
			Path:      l.Path,
			Status:    l.Status,
			IP:        l.IP,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	})
}
