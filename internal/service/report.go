package service

import (
	"context"
	"fmt"
	"time"

	"kos-manager/internal/models"

	"gorm.io/gorm"
)

// ReportService computes dashboard and financial aggregates. Nothing is
// cached; every call reads the current rows.
type ReportService struct {
	DB *gorm.DB
}

// MonthSummary is one month of the financial report.
type MonthSummary struct {
	Month        time.Month
	RevenueCent  int64
	ExpensesCent int64
	ProfitCent   int64
}

// FinancialReport is the yearly report.
type FinancialReport struct {
	Year               int
	Months             []MonthSummary // always 12, January first
	YearRevenueCent    int64
	YearExpensesCent   int64
	ExpensesByCategory map[string]int64
	RecentExpenses     []models.Expense
	TotalRevenueCent   int64 // all time
	TotalExpensesCent  int64 // all time
}

// NetProfitCent is all-time revenue minus all-time expenses.
func (r *FinancialReport) NetProfitCent() int64 {
	return r.TotalRevenueCent - r.TotalExpensesCent
}

// RevenuePoint is one bar of the revenue chart.
type RevenuePoint struct {
	Month       string  `json:"month"`
	RevenueCent int64   `json:"-"`
	Revenue     float64 `json:"revenue"`
}

type RoomRevenue struct {
	Room        models.Room
	RevenueCent int64
}

// Dashboard is the landing page summary.
type Dashboard struct {
	TotalRooms         int64
	OccupiedRooms      int64
	OccupancyRate      float64
	ActiveTenants      int64
	MonthlyRevenueCent int64
	PendingPayments    int64
	OverduePayments    int64
	RecentPayments     []models.Payment
	TopRooms           []RoomRevenue
}

const (
	recentPaymentsLimit = 5
	topRoomsLimit       = 3
	recentExpensesLimit = 10
)

// MonthlyRevenue sums paid payments whose paid date falls in the month.
func (s *ReportService) MonthlyRevenue(ctx context.Context, userID uint, year int, month time.Month) (int64, error) {
	start, next := MonthRange(year, month)
	return s.revenueBetween(s.DB.WithContext(ctx), userID, start, next)
}

// MonthlyExpenses sums expenses dated in the month.
func (s *ReportService) MonthlyExpenses(ctx context.Context, userID uint, year int, month time.Month) (int64, error) {
	start, next := MonthRange(year, month)
	var sum int64
	if err := s.DB.WithContext(ctx).Model(&models.Expense{}).
		Select("COALESCE(SUM(amount_cent), 0)").
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, next).
		Scan(&sum).Error; err != nil {
		return 0, fmt.Errorf("sum expenses: %w", err)
	}
	return sum, nil
}

func (s *ReportService) revenueBetween(db *gorm.DB, userID uint, start, end time.Time) (int64, error) {
	var sum int64
	if err := db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount_cent), 0)").
		Where("room_id IN (?) AND status = ? AND paid_date >= ? AND paid_date < ?",
			ownedRoomIDs(db, userID), models.PaymentPaid, start, end).
		Scan(&sum).Error; err != nil {
		return 0, fmt.Errorf("sum revenue: %w", err)
	}
	return sum, nil
}

func (s *ReportService) paidBetween(db *gorm.DB, userID uint, start, end time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	if err := db.Where("room_id IN (?) AND status = ? AND paid_date >= ? AND paid_date < ?",
		ownedRoomIDs(db, userID), models.PaymentPaid, start, end).
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("query paid payments: %w", err)
	}
	return payments, nil
}

// FinancialReport builds the monthly breakdown of year plus all-time totals.
func (s *ReportService) FinancialReport(ctx context.Context, userID uint, year int) (*FinancialReport, error) {
	db := s.DB.WithContext(ctx)
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	out := &FinancialReport{
		Year:               year,
		Months:             make([]MonthSummary, 12),
		ExpensesByCategory: make(map[string]int64),
	}
	for i := range out.Months {
		out.Months[i].Month = time.Month(i + 1)
	}

	payments, err := s.paidBetween(db, userID, start, end)
	if err != nil {
		return nil, err
	}
	for i := range payments {
		p := &payments[i]
		if p.PaidDate == nil {
			continue
		}
		out.Months[p.PaidDate.Month()-1].RevenueCent += p.AmountCent
		out.YearRevenueCent += p.AmountCent
	}

	var expenses []models.Expense
	if err := db.Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	for i := range expenses {
		e := &expenses[i]
		out.Months[e.Date.Month()-1].ExpensesCent += e.AmountCent
		out.YearExpensesCent += e.AmountCent
		out.ExpensesByCategory[e.Category] += e.AmountCent
	}

	for i := range out.Months {
		m := &out.Months[i]
		m.ProfitCent = m.RevenueCent - m.ExpensesCent
	}

	if err := db.Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Limit(recentExpensesLimit).
		Find(&out.RecentExpenses).Error; err != nil {
		return nil, fmt.Errorf("query recent expenses: %w", err)
	}

	if err := db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount_cent), 0)").
		Where("room_id IN (?) AND status = ?", ownedRoomIDs(db, userID), models.PaymentPaid).
		Scan(&out.TotalRevenueCent).Error; err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	if err := db.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount_cent), 0)").
		Where("user_id = ?", userID).
		Scan(&out.TotalExpensesCent).Error; err != nil {
		return nil, fmt.Errorf("sum expenses: %w", err)
	}
	return out, nil
}

// RevenueSeries returns paid revenue for the last n calendar months ending
// with the month of now, oldest first.
func (s *ReportService) RevenueSeries(ctx context.Context, userID uint, n int, now time.Time) ([]RevenuePoint, error) {
	if n <= 0 {
		return []RevenuePoint{}, nil
	}
	current, _ := MonthRange(now.Year(), now.Month())
	first := current.AddDate(0, -(n - 1), 0)
	end := current.AddDate(0, 1, 0)

	payments, err := s.paidBetween(s.DB.WithContext(ctx), userID, first, end)
	if err != nil {
		return nil, err
	}

	// 按年月分桶
	type ym struct {
		y int
		m time.Month
	}
	buckets := make(map[ym]int64, n)
	for i := range payments {
		p := &payments[i]
		if p.PaidDate == nil {
			continue
		}
		buckets[ym{p.PaidDate.Year(), p.PaidDate.Month()}] += p.AmountCent
	}

	out := make([]RevenuePoint, 0, n)
	for i := 0; i < n; i++ {
		m := first.AddDate(0, i, 0)
		cents := buckets[ym{m.Year(), m.Month()}]
		out = append(out, RevenuePoint{
			Month:       m.Month().String(),
			RevenueCent: cents,
			Revenue:     CentsToFloat(cents),
		})
	}
	return out, nil
}

// Dashboard gathers the summary numbers. Callers reconcile overdue payments
// first so OverduePayments is current.
func (s *ReportService) Dashboard(ctx context.Context, userID uint, today time.Time) (*Dashboard, error) {
	db := s.DB.WithContext(ctx)
	out := &Dashboard{}

	if err := db.Model(&models.Room{}).Where("user_id = ?", userID).Count(&out.TotalRooms).Error; err != nil {
		return nil, fmt.Errorf("count rooms: %w", err)
	}
	if err := db.Model(&models.Room{}).
		Where("user_id = ? AND status = ?", userID, models.RoomOccupied).
		Count(&out.OccupiedRooms).Error; err != nil {
		return nil, fmt.Errorf("count occupied rooms: %w", err)
	}
	out.OccupancyRate = OccupancyRate(out.TotalRooms, out.OccupiedRooms)

	if err := db.Model(&models.Tenant{}).
		Where("room_id IN (?) AND is_active = ?", ownedRoomIDs(db, userID), true).
		Count(&out.ActiveTenants).Error; err != nil {
		return nil, fmt.Errorf("count tenants: %w", err)
	}

	start, next := MonthRange(today.Year(), today.Month())
	rev, err := s.revenueBetween(db, userID, start, next)
	if err != nil {
		return nil, err
	}
	out.MonthlyRevenueCent = rev

	if err := db.Model(&models.Payment{}).
		Where("room_id IN (?) AND status = ?", ownedRoomIDs(db, userID), models.PaymentPending).
		Count(&out.PendingPayments).Error; err != nil {
		return nil, fmt.Errorf("count pending: %w", err)
	}
	if err := db.Model(&models.Payment{}).
		Where("room_id IN (?) AND status = ?", ownedRoomIDs(db, userID), models.PaymentOverdue).
		Count(&out.OverduePayments).Error; err != nil {
		return nil, fmt.Errorf("count overdue: %w", err)
	}

	if err := db.Preload("Tenant").Preload("Room").
		Where("room_id IN (?)", ownedRoomIDs(db, userID)).
		Order("created_at DESC, id DESC").
		Limit(recentPaymentsLimit).
		Find(&out.RecentPayments).Error; err != nil {
		return nil, fmt.Errorf("query recent payments: %w", err)
	}

	top, err := s.topRooms(db, userID)
	if err != nil {
		return nil, err
	}
	out.TopRooms = top
	return out, nil
}

func (s *ReportService) topRooms(db *gorm.DB, userID uint) ([]RoomRevenue, error) {
	var rows []struct {
		RoomID      uint
		RevenueCent int64
	}
	if err := db.Model(&models.Payment{}).
		Select("room_id, SUM(amount_cent) AS revenue_cent").
		Where("room_id IN (?) AND status = ?", ownedRoomIDs(db, userID), models.PaymentPaid).
		Group("room_id").
		Order("revenue_cent DESC, room_id ASC").
		Limit(topRoomsLimit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query top rooms: %w", err)
	}
	if len(rows) == 0 {
		return []RoomRevenue{}, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.RoomID)
	}
	var rooms []models.Room
	if err := db.Where("id IN ?", ids).Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	byID := make(map[uint]models.Room, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
	}

	out := make([]RoomRevenue, 0, len(rows))
	for _, r := range rows {
		out = append(out, RoomRevenue{Room: byID[r.RoomID], RevenueCent: r.RevenueCent})
	}
	return out, nil
}
