package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kos-manager/internal/models"

	"gorm.io/gorm"
)

// ExpenseService manages a user's operating expenses.
type ExpenseService struct {
	DB *gorm.DB
}

type ExpenseInput struct {
	Description string
	AmountCent  int64
	Category    string
	Date        time.Time
	Notes       string
}

type ExpenseFilter struct {
	Category string
	Page     int
	PerPage  int
}

const expensesPerPage = 15

func (in *ExpenseInput) validate() error {
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if in.Description == "" || len(in.Description) > 200 {
		return invalid("description", "description is required (max 200 characters)")
	}
	if in.AmountCent <= 0 {
		return invalid("amount", "amount must be positive")
	}
	if !models.IsExpenseCategory(in.Category) {
		return invalid("category", "category must be one of %s", strings.Join(models.ExpenseCategories, ", "))
	}
	if in.Date.IsZero() {
		return invalid("date", "date is required")
	}
	return nil
}

// List returns expenses newest first, optionally by category.
func (s *ExpenseService) List(ctx context.Context, userID uint, f ExpenseFilter) (Page[models.Expense], error) {
	page, perPage := normalizePage(f.Page, f.PerPage, expensesPerPage)

	base := s.DB.WithContext(ctx).Model(&models.Expense{}).Where("user_id = ?", userID)
	if f.Category != "" {
		base = base.Where("category = ?", f.Category)
	}

	out, err := paginate[models.Expense](base, page, perPage, "date DESC, id DESC")
	if err != nil {
		return out, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

func (s *ExpenseService) Get(ctx context.Context, userID, id uint) (*models.Expense, error) {
	var e models.Expense
	if err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&e).Error; err != nil {
		return nil, notFound(err, "expense")
	}
	return &e, nil
}

func (s *ExpenseService) Create(ctx context.Context, userID uint, in ExpenseInput) (*models.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	e := models.Expense{
		UserID:      userID,
		Description: in.Description,
		AmountCent:  in.AmountCent,
		Category:    in.Category,
		Date:        DateOf(in.Date),
		Notes:       strings.TrimSpace(in.Notes),
	}
	if err := s.DB.WithContext(ctx).Create(&e).Error; err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	return &e, nil
}

func (s *ExpenseService) Update(ctx context.Context, userID, id uint, in ExpenseInput) (*models.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	e, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	e.Description = in.Description
	e.AmountCent = in.AmountCent
	e.Category = in.Category
	e.Date = DateOf(in.Date)
	e.Notes = strings.TrimSpace(in.Notes)
	if err := s.DB.WithContext(ctx).Model(&models.Expense{}).Where("id = ?", e.ID).Updates(map[string]interface{}{
		"description": e.Description,
		"amount_cent": e.AmountCent,
		"category":    e.Category,
		"date":        e.Date,
		"notes":       e.Notes,
	}).Error; err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id uint) error {
	res := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Expense{})
	if res.Error != nil {
		return fmt.Errorf("delete expense: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("expense: %w", ErrNotFound)
	}
	return nil
}
