package handler

import (
	"net/http"

	"kos-manager/internal/service"
	"kos-manager/internal/util"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the landing summary and the revenue chart data.
type DashboardHandler struct {
	Payments *service.PaymentService
	Reports  *service.ReportService
	Clock    service.Clock
	Money    Money
}

func NewDashboardHandler(payments *service.PaymentService, reports *service.ReportService, clock service.Clock, money Money) *DashboardHandler {
	return &DashboardHandler{Payments: payments, Reports: reports, Clock: clock, Money: money}
}

type topRoomResp struct {
	Room        roomResp `json:"room"`
	RevenueCent int64    `json:"revenue_cent"`
	Revenue     string   `json:"revenue"`
}

// Show GET /api/dashboard
func (h *DashboardHandler) Show(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	today := h.Clock.Today()

	// 先把过期未付的账单标记为 overdue
	if _, err := h.Payments.Reconcile(ctx, today); err != nil {
		respondError(c, err)
		return
	}

	d, err := h.Reports.Dashboard(ctx, user.ID, today)
	if err != nil {
		respondError(c, err)
		return
	}

	recent := make([]paymentResp, 0, len(d.RecentPayments))
	for i := range d.RecentPayments {
		recent = append(recent, h.Money.payment(&d.RecentPayments[i], today))
	}
	top := make([]topRoomResp, 0, len(d.TopRooms))
	for i := range d.TopRooms {
		r := &d.TopRooms[i]
		top = append(top, topRoomResp{
			Room:        h.Money.room(&r.Room),
			RevenueCent: r.RevenueCent,
			Revenue:     h.Money.format(r.RevenueCent),
		})
	}

	util.Success(c, util.Response{
		"total_rooms":          d.TotalRooms,
		"occupied_rooms":       d.OccupiedRooms,
		"occupancy_rate":       d.OccupancyRate,
		"active_tenants":       d.ActiveTenants,
		"monthly_revenue_cent": d.MonthlyRevenueCent,
		"monthly_revenue":      h.Money.format(d.MonthlyRevenueCent),
		"pending_payments":     d.PendingPayments,
		"overdue_payments":     d.OverduePayments,
		"recent_payments":      recent,
		"top_rooms":            top,
		"today":                dateStr(today),
	})
}

// RevenueData GET /api/dashboard/revenue-data
// Answers a bare JSON array of the last six months for the chart.
func (h *DashboardHandler) RevenueData(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	series, err := h.Reports.RevenueSeries(c.Request.Context(), user.ID, 6, h.Clock.Today())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}
