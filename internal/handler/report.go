package handler

import (
	"fmt"
	"strconv"
	"time"

	"kos-manager/internal/models"
	"kos-manager/internal/service"
	"kos-manager/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ReportHandler serves the yearly financial report.
type ReportHandler struct {
	Reports *service.ReportService
	Clock   service.Clock
	Money   Money
}

func NewReportHandler(reports *service.ReportService, clock service.Clock, money Money) *ReportHandler {
	return &ReportHandler{Reports: reports, Clock: clock, Money: money}
}

// yearParam reads ?year=, defaulting to the current year.
func yearParam(c *gin.Context, today time.Time) (int, bool) {
	s := c.Query("year")
	if s == "" {
		return today.Year(), true
	}
	year, err := strconv.Atoi(s)
	if err != nil || year < 1900 || year > 9999 {
		util.FieldError(c, "year", "year must be between 1900 and 9999")
		return 0, false
	}
	return year, true
}

type monthResp struct {
	Month        string `json:"month"`
	RevenueCent  int64  `json:"revenue_cent"`
	Revenue      string `json:"revenue"`
	ExpensesCent int64  `json:"expenses_cent"`
	Expenses     string `json:"expenses"`
	ProfitCent   int64  `json:"profit_cent"`
	Profit       string `json:"profit"`
}

func (h *ReportHandler) load(c *gin.Context) (*service.FinancialReport, bool) {
	user, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	year, ok := yearParam(c, h.Clock.Today())
	if !ok {
		return nil, false
	}
	rep, err := h.Reports.FinancialReport(c.Request.Context(), user.ID, year)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return rep, true
}

// Financial GET /api/reports/financial?year=
func (h *ReportHandler) Financial(c *gin.Context) {
	rep, ok := h.load(c)
	if !ok {
		return
	}

	months := make([]monthResp, 0, len(rep.Months))
	for _, m := range rep.Months {
		months = append(months, monthResp{
			Month:        m.Month.String(),
			RevenueCent:  m.RevenueCent,
			Revenue:      h.Money.format(m.RevenueCent),
			ExpensesCent: m.ExpensesCent,
			Expenses:     h.Money.format(m.ExpensesCent),
			ProfitCent:   m.ProfitCent,
			Profit:       h.Money.format(m.ProfitCent),
		})
	}
	recent := make([]expenseResp, 0, len(rep.RecentExpenses))
	for i := range rep.RecentExpenses {
		recent = append(recent, h.Money.expense(&rep.RecentExpenses[i]))
	}

	util.Success(c, util.Response{
		"year":                 rep.Year,
		"months":               months,
		"year_revenue_cent":    rep.YearRevenueCent,
		"year_expenses_cent":   rep.YearExpensesCent,
		"expenses_by_category": rep.ExpensesByCategory,
		"recent_expenses":      recent,
		"total_revenue_cent":   rep.TotalRevenueCent,
		"total_revenue":        h.Money.format(rep.TotalRevenueCent),
		"total_expenses_cent":  rep.TotalExpensesCent,
		"total_expenses":       h.Money.format(rep.TotalExpensesCent),
		"net_profit_cent":      rep.NetProfitCent(),
		"net_profit":           h.Money.format(rep.NetProfitCent()),
	})
}

// FinancialXLSX GET /api/reports/financial.xlsx?year=
func (h *ReportHandler) FinancialXLSX(c *gin.Context) {
	rep, ok := h.load(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("Report %d", rep.Year)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		respondError(c, err)
		return
	}

	headers := []string{"Month", "Revenue", "Expenses", "Profit"}
	for i, hd := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, hd)
	}
	for i, m := range rep.Months {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), m.Month.String())
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), service.CentsToFloat(m.RevenueCent))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), service.CentsToFloat(m.ExpensesCent))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), service.CentsToFloat(m.ProfitCent))
	}
	total := len(rep.Months) + 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", total), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", total), service.CentsToFloat(rep.YearRevenueCent))
	f.SetCellValue(sheet, fmt.Sprintf("C%d", total), service.CentsToFloat(rep.YearExpensesCent))
	f.SetCellValue(sheet, fmt.Sprintf("D%d", total), service.CentsToFloat(rep.YearRevenueCent-rep.YearExpensesCent))

	// 支出分类汇总
	f.SetCellValue(sheet, "F1", "Category")
	f.SetCellValue(sheet, "G1", "Expenses")
	for i, cat := range models.ExpenseCategories {
		f.SetCellValue(sheet, fmt.Sprintf("F%d", i+2), cat)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", i+2), service.CentsToFloat(rep.ExpensesByCategory[cat]))
	}

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "D", 14)
	f.SetColWidth(sheet, "F", "G", 14)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"financial_report_%d.xlsx\"", rep.Year))
	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
