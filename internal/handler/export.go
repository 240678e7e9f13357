package handler

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"kos-manager/internal/models"
	"kos-manager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler exports payments as CSV or XLSX.
type ExportHandler struct {
	Payments *service.PaymentService
	Clock    service.Clock
}

func NewExportHandler(payments *service.PaymentService, clock service.Clock) *ExportHandler {
	return &ExportHandler{Payments: payments, Clock: clock}
}

var paymentHeaders = []string{"ID", "Due Date", "Paid Date", "Room", "Tenant", "Amount", "Status", "Notes"}

func paymentRow(p *models.Payment) []string {
	paid := ""
	if p.PaidDate != nil {
		paid = dateStr(*p.PaidDate)
	}
	room, tenant := "", ""
	if p.Room != nil {
		room = p.Room.Number
	}
	if p.Tenant != nil {
		tenant = p.Tenant.Name
	}
	return []string{
		strconv.FormatUint(uint64(p.ID), 10),
		dateStr(p.DueDate),
		paid,
		room,
		tenant,
		strconv.FormatFloat(service.CentsToFloat(p.AmountCent), 'f', 2, 64),
		p.Status,
		p.Notes,
	}
}

func (h *ExportHandler) load(c *gin.Context) ([]models.Payment, bool) {
	user, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	ctx := c.Request.Context()
	if _, err := h.Payments.Reconcile(ctx, h.Clock.Today()); err != nil {
		respondError(c, err)
		return nil, false
	}
	payments, err := h.Payments.All(ctx, user.ID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return payments, true
}

// PaymentsCSV GET /api/export/payments.csv
func (h *ExportHandler) PaymentsCSV(c *gin.Context) {
	payments, ok := h.load(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"payments_%s.csv\"",
		h.Clock.Today().Format("20060102")))

	// UTF-8 BOM，让 Excel 正确识别编码
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(c.Writer)
	_ = w.Write(paymentHeaders)
	for i := range payments {
		_ = w.Write(paymentRow(&payments[i]))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = c.Error(err)
	}
}

// PaymentsXLSX GET /api/export/payments.xlsx
func (h *ExportHandler) PaymentsXLSX(c *gin.Context) {
	payments, ok := h.load(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Payments"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		respondError(c, err)
		return
	}

	for i, hd := range paymentHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, hd)
	}
	for idx := range payments {
		p := &payments[idx]
		row := paymentRow(p)
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, idx+2)
			if col == 5 {
				// 金额写成数字，方便在表格里求和
				f.SetCellValue(sheet, cell, service.CentsToFloat(p.AmountCent))
				continue
			}
			f.SetCellValue(sheet, cell, v)
		}
	}

	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "C", 12)
	f.SetColWidth(sheet, "D", "D", 10)
	f.SetColWidth(sheet, "E", "E", 20)
	f.SetColWidth(sheet, "F", "G", 12)
	f.SetColWidth(sheet, "H", "H", 30)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"payments_%s.xlsx\"",
		h.Clock.Today().Format("20060102")))
	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
