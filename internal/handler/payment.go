package handler

import (
	"encoding/json"

	"kos-manager/internal/models"
	"kos-manager/internal/service"
	"kos-manager/internal/util"

	"github.com/gin-gonic/gin"
)

// PaymentHandler serves /api/payments.
type PaymentHandler struct {
	Payments  *service.PaymentService
	Reminders *service.ReminderService
	Clock     service.Clock
	Money     Money
}

func NewPaymentHandler(payments *service.PaymentService, reminders *service.ReminderService, clock service.Clock, money Money) *PaymentHandler {
	return &PaymentHandler{Payments: payments, Reminders: reminders, Clock: clock, Money: money}
}

type paymentReq struct {
	TenantID uint        `form:"tenant_id" json:"tenant_id" binding:"required"`
	Amount   json.Number `form:"amount" json:"amount" binding:"required"`
	DueDate  string      `form:"due_date" json:"due_date" binding:"required"`
	PaidDate string      `form:"paid_date" json:"paid_date"`
	Status   string      `form:"status" json:"status" binding:"omitempty,oneof=pending paid"`
	Notes    string      `form:"notes" json:"notes"`
}

func (r *paymentReq) input(c *gin.Context) (service.PaymentInput, bool) {
	cents, err := util.ParseAmount(string(r.Amount))
	if err != nil {
		util.FieldError(c, "amount", err.Error())
		return service.PaymentInput{}, false
	}
	due, err := util.ParseDate(r.DueDate)
	if err != nil {
		util.FieldError(c, "due_date", err.Error())
		return service.PaymentInput{}, false
	}
	paid, err := util.ParseOptionalDate(r.PaidDate)
	if err != nil {
		util.FieldError(c, "paid_date", err.Error())
		return service.PaymentInput{}, false
	}
	return service.PaymentInput{
		TenantID:   r.TenantID,
		AmountCent: cents,
		DueDate:    due,
		PaidDate:   paid,
		Status:     r.Status,
		Notes:      r.Notes,
	}, true
}

func (h *PaymentHandler) resp(p *models.Payment) paymentResp {
	return h.Money.payment(p, h.Clock.Today())
}

// List GET /api/payments?page=&status=
// Overdue statuses are reconciled before listing.
func (h *PaymentHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	status := c.Query("status")
	switch status {
	case "", models.PaymentPending, models.PaymentPaid, models.PaymentOverdue:
	default:
		util.FieldError(c, "status", "status must be pending, paid or overdue")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Payments.Reconcile(ctx, h.Clock.Today()); err != nil {
		respondError(c, err)
		return
	}

	page, err := h.Payments.List(ctx, user.ID, service.PaymentFilter{
		Status: status,
		Page:   queryInt(c, "page", 1),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, pageResponse(page, h.resp))
}

// Show GET /api/payments/:id
func (h *PaymentHandler) Show(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	p, err := h.Payments.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{"payment": h.resp(p)})
}

// Create POST /api/payments
func (h *PaymentHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req paymentReq
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}

	p, err := h.Payments.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Created(c, util.Response{
		"message": "Payment recorded successfully!",
		"payment": h.resp(p),
	})
}

// Update PUT /api/payments/:id
func (h *PaymentHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req paymentReq
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}

	p, err := h.Payments.Update(c.Request.Context(), user.ID, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{
		"message": "Payment updated successfully!",
		"payment": h.resp(p),
	})
}

// MarkPaid POST /api/payments/:id/mark-paid
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	p, err := h.Payments.MarkPaid(c.Request.Context(), user.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{
		"message": "Payment marked as paid!",
		"payment": h.resp(p),
	})
}

// Remind POST /api/payments/:id/remind
func (h *PaymentHandler) Remind(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	r, err := h.Reminders.SendForPayment(c.Request.Context(), user.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{
		"message":  "Reminder sent to " + r.TenantName + ".",
		"reminder": r.Message(),
	})
}

// Delete DELETE /api/payments/:id
func (h *PaymentHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Payments.Delete(c.Request.Context(), user.ID, id); err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{"message": "Payment deleted successfully!"})
}
