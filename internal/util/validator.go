package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"kos-manager/internal/models"
)

// DateLayout is the wire format of every date field.
const DateLayout = "2006-01-02"

// maxAmountCent 限制最大金额为1千万
const maxAmountCent = 10_000_000 * 100

// ValidateAmount 验证金额（必须为正数且不超过上限）
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %.2f", amount)
	}
	if amount >= 10000000 {
		return fmt.Errorf("amount too large, got %.2f", amount)
	}
	return nil
}

// ParseAmount converts a decimal string such as "500", "1,250.50" or "$75.5"
// into cents, rounding half away from zero on the third decimal.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if err := ValidateAmount(f); err != nil {
		return 0, err
	}
	cents := int64(math.Round(f * 100))
	if cents <= 0 || cents >= maxAmountCent {
		return 0, fmt.Errorf("amount out of range, got %q", s)
	}
	return cents, nil
}

// ValidateDate 验证日期格式（必须为 YYYY-MM-DD）
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ParseDate parses YYYY-MM-DD into UTC midnight.
func ParseDate(dateStr string) (time.Time, error) {
	if err := ValidateDate(dateStr); err != nil {
		return time.Time{}, err
	}
	t, _ := time.Parse(DateLayout, dateStr)
	return t.UTC(), nil
}

// ParseOptionalDate returns nil for an empty string.
func ParseOptionalDate(dateStr string) (*time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return nil, nil
	}
	t, err := ParseDate(dateStr)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ValidateCategory 验证支出分类（必须是预设分类之一）
func ValidateCategory(category string) error {
	if category == "" {
		return fmt.Errorf("category is empty")
	}
	if !models.IsExpenseCategory(category) {
		return fmt.Errorf("unknown category %q", category)
	}
	return nil
}
