package handler

import (
	"encoding/json"

	"kos-manager/internal/models"
	"kos-manager/internal/service"
	"kos-manager/internal/util"

	"github.com/gin-gonic/gin"
)

// RoomHandler serves /api/rooms.
type RoomHandler struct {
	Rooms *service.RoomService
	Money Money
}

func NewRoomHandler(rooms *service.RoomService, money Money) *RoomHandler {
	return &RoomHandler{Rooms: rooms, Money: money}
}

type roomReq struct {
	Number      string      `form:"number" json:"number" binding:"required,max=20"`
	Description string      `form:"description" json:"description"`
	MonthlyRent json.Number `form:"monthly_rent" json:"monthly_rent" binding:"required"`
}

func (r *roomReq) input(c *gin.Context) (service.RoomInput, bool) {
	cents, err := util.ParseAmount(string(r.MonthlyRent))
	if err != nil {
		util.FieldError(c, "monthly_rent", err.Error())
		return service.RoomInput{}, false
	}
	return service.RoomInput{Number: r.Number, Description: r.Description, MonthlyRentCent: cents}, true
}

// List GET /api/rooms?page=&status=&min_price=&max_price=
func (h *RoomHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	f := service.RoomFilter{
		Status: c.Query("status"),
		Page:   queryInt(c, "page", 1),
	}
	if f.Status != "" && f.Status != models.RoomAvailable && f.Status != models.RoomOccupied {
		util.FieldError(c, "status", "status must be available or occupied")
		return
	}
	var err error
	if f.MinPriceCent, err = queryCents(c, "min_price"); err != nil {
		util.FieldError(c, "min_price", "min_price "+err.Error())
		return
	}
	if f.MaxPriceCent, err = queryCents(c, "max_price"); err != nil {
		util.FieldError(c, "max_price", "max_price "+err.Error())
		return
	}

	page, err := h.Rooms.List(c.Request.Context(), user.ID, f)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, pageResponse(page, h.Money.room))
}

// Show GET /api/rooms/:id
func (h *RoomHandler) Show(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	d, err := h.Rooms.Detail(c.Request.Context(), user.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := util.Response{
		"room":               h.Money.room(&d.Room),
		"total_revenue_cent": d.TotalRevenueCent,
		"total_revenue":      h.Money.format(d.TotalRevenueCent),
		"current_tenant":     nil,
	}
	if d.CurrentTenant != nil {
		resp["current_tenant"] = toTenantResp(d.CurrentTenant)
	}
	util.Success(c, resp)
}

// Create POST /api/rooms
func (h *RoomHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req roomReq
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}

	room, err := h.Rooms.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Created(c, util.Response{
		"message": "Room added successfully!",
		"room":    h.Money.room(room),
	})
}

// Update PUT /api/rooms/:id
func (h *RoomHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req roomReq
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}

	room, err := h.Rooms.Update(c.Request.Context(), user.ID, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{
		"message": "Room updated successfully!",
		"room":    h.Money.room(room),
	})
}

// Delete DELETE /api/rooms/:id
func (h *RoomHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Rooms.Delete(c.Request.Context(), user.ID, id); err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{"message": "Room deleted successfully!"})
}
