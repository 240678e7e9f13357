package handler

import (
	"encoding/json"
	"strings"

	"kos-manager/internal/models"
	"kos-manager/internal/service"
	"kos-manager/internal/util"

	"github.com/gin-gonic/gin"
)

// ExpenseHandler serves /api/expenses.
type ExpenseHandler struct {
	Expenses *service.ExpenseService
	Money    Money
}

func NewExpenseHandler(expenses *service.ExpenseService, money Money) *ExpenseHandler {
	return &ExpenseHandler{Expenses: expenses, Money: money}
}

type expenseReq struct {
	Description string      `form:"description" json:"description" binding:"required,max=200"`
	Amount      json.Number `form:"amount" json:"amount" binding:"required"`
	Category    string      `form:"category" json:"category" binding:"required"`
	Date        string      `form:"date" json:"date" binding:"required"`
	Notes       string      `form:"notes" json:"notes"`
}

func (r *expenseReq) input(c *gin.Context) (service.ExpenseInput, bool) {
	cents, err := util.ParseAmount(string(r.Amount))
	if err != nil {
		util.FieldError(c, "amount", err.Error())
		return service.ExpenseInput{}, false
	}
	if err := util.ValidateCategory(strings.ToLower(strings.TrimSpace(r.Category))); err != nil {
		util.FieldError(c, "category", err.Error())
		return service.ExpenseInput{}, false
	}
	date, err := util.ParseDate(r.Date)
	if err != nil {
		util.FieldError(c, "date", err.Error())
		return service.ExpenseInput{}, false
	}
	return service.ExpenseInput{
		Description: r.Description,
		AmountCent:  cents,
		Category:    r.Category,
		Date:        date,
		Notes:       r.Notes,
	}, true
}

// List GET /api/expenses?page=&category=
func (h *ExpenseHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	category := c.Query("category")
	if category != "" && !models.IsExpenseCategory(category) {
		util.FieldError(c, "category", "unknown category")
		return
	}

	page, err := h.Expenses.List(c.Request.Context(), user.ID, service.ExpenseFilter{
		Category: category,
		Page:     queryInt(c, "page", 1),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	resp := pageResponse(page, h.Money.expense)
	resp["categories"] = models.ExpenseCategories
	util.Success(c, resp)
}

// Create POST /api/expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req expenseReq
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}

	e, err := h.Expenses.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Created(c, util.Response{
		"message": "Expense recorded successfully!",
		"expense": h.Money.expense(e),
	})
}

// Update PUT /api/expenses/:id
func (h *ExpenseHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req expenseReq
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}

	e, err := h.Expenses.Update(c.Request.Context(), user.ID, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{
		"message": "Expense updated successfully!",
		"expense": h.Money.expense(e),
	})
}

// Delete DELETE /api/expenses/:id
func (h *ExpenseHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Expenses.Delete(c.Request.Context(), user.ID, id); err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{"message": "Expense deleted successfully!"})
}
