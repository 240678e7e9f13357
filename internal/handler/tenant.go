package handler

import (
	"strconv"

	"kos-manager/internal/service"
	"kos-manager/internal/util"

	"github.com/gin-gonic/gin"
)

// TenantHandler serves /api/tenants.
type TenantHandler struct {
	Tenants *service.TenantService
	Money   Money
}

func NewTenantHandler(tenants *service.TenantService, money Money) *TenantHandler {
	return &TenantHandler{Tenants: tenants, Money: money}
}

type tenantReq struct {
	Name      string `form:"name" json:"name" binding:"required,max=100"`
	Phone     string `form:"phone" json:"phone" binding:"max=20"`
	Email     string `form:"email" json:"email" binding:"omitempty,email,max=120"`
	StartDate string `form:"start_date" json:"start_date" binding:"required"`
	RoomID    uint   `form:"room_id" json:"room_id" binding:"required"`
}

func (r *tenantReq) input(c *gin.Context) (service.TenantInput, bool) {
	start, err := util.ParseDate(r.StartDate)
	if err != nil {
		util.FieldError(c, "start_date", err.Error())
		return service.TenantInput{}, false
	}
	return service.TenantInput{
		Name:      r.Name,
		Phone:     r.Phone,
		Email:     r.Email,
		StartDate: start,
		RoomID:    r.RoomID,
	}, true
}

// List GET /api/tenants?page=&active_only=
func (h *TenantHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	activeOnly, err := strconv.ParseBool(c.DefaultQuery("active_only", "true"))
	if err != nil {
		util.FieldError(c, "active_only", "active_only must be true or false")
		return
	}

	page, err := h.Tenants.List(c.Request.Context(), user.ID, service.TenantFilter{
		ActiveOnly: activeOnly,
		Page:       queryInt(c, "page", 1),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, pageResponse(page, toTenantResp))
}

// Active GET /api/tenants/active
// All active tenants, unpaged, for choosing who a payment belongs to.
func (h *TenantHandler) Active(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	tenants, err := h.Tenants.Active(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	items := make([]tenantResp, 0, len(tenants))
	for i := range tenants {
		items = append(items, toTenantResp(&tenants[i]))
	}
	util.Success(c, util.Response{"items": items})
}

// Show GET /api/tenants/:id
func (h *TenantHandler) Show(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	d, err := h.Tenants.Detail(c.Request.Context(), user.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{
		"tenant":           toTenantResp(&d.Tenant),
		"total_paid_cent":  d.TotalPaidCent,
		"total_paid":       h.Money.format(d.TotalPaidCent),
		"outstanding_cent": d.OutstandingCent,
		"outstanding":      h.Money.format(d.OutstandingCent),
	})
}

// Create POST /api/tenants
func (h *TenantHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req tenantReq
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}

	t, err := h.Tenants.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Created(c, util.Response{
		"message": "Tenant added successfully!",
		"tenant":  toTenantResp(t),
	})
}

// Update PUT /api/tenants/:id
func (h *TenantHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req tenantReq
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}

	t, err := h.Tenants.Update(c.Request.Context(), user.ID, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{
		"message": "Tenant updated successfully!",
		"tenant":  toTenantResp(t),
	})
}

// Deactivate POST /api/tenants/:id/deactivate
func (h *TenantHandler) Deactivate(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	t, err := h.Tenants.Deactivate(c.Request.Context(), user.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{
		"message": "Tenant deactivated successfully!",
		"tenant":  toTenantResp(t),
	})
}

// Delete DELETE /api/tenants/:id
func (h *TenantHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Tenants.Delete(c.Request.Context(), user.ID, id); err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{"message": "Tenant deleted successfully!"})
}
