package handler

import (
	"fmt"

	"kos-manager/internal/service"
	"kos-manager/internal/util"

	"github.com/gin-gonic/gin"
)

// BackupHandler 负责备份相关接口
type BackupHandler struct {
	Backups *service.BackupService
}

// NewBackupHandler 构造函数
func NewBackupHandler(backups *service.BackupService) *BackupHandler {
	return &BackupHandler{Backups: backups}
}

// CreateBackup 生成当前用户的加密备份文件
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	b, err := h.Backups.Create(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Created(c, util.Response{
		"message": "Backup created.",
		"backup":  toBackupResp(b),
	})
}

// ListBackups 列出当前用户已有的备份
func (h *BackupHandler) ListBackups(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.Backups.List(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	items := make([]backupResp, 0, len(list))
	for i := range list {
		items = append(items, toBackupResp(&list[i]))
	}
	util.Success(c, util.Response{"items": items})
}

// DownloadBackup 下载指定备份文件
func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	b, err := h.Backups.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", b.FileName))
	c.File(b.FilePath)
}

// RestoreBackup 用备份替换当前用户的房间、租客、账单和支出
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := h.Backups.Restore(c.Request.Context(), user.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{
		"message":  "Backup restored.",
		"restored": res,
	})
}

// DeleteBackup 删除备份记录及对应文件
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Backups.Delete(c.Request.Context(), user.ID, id); err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{"message": "Backup deleted."})
}
