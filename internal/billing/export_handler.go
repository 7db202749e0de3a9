package billing

import (
	"fmt"
	"strconv"
	"time"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/invoices/export?year=2026&month=1
// Exporta as faturas do mês em XLSX.
func ExportInvoicesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		year, err := strconv.Atoi(c.Query("year"))
		if err != nil || year < 2000 {
			return fiber.NewError(fiber.StatusBadRequest, "year é obrigatório e deve ser válido")
		}
		month, err := strconv.Atoi(c.Query("month"))
		if err != nil || month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "month é obrigatório e deve estar entre 1 e 12")
		}

		firstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		lastDay := firstDay.AddDate(0, 1, 0)

		var invoices []models.Invoice
		if err := database.DB.Preload("Contract.Customer").Preload("Contract.Plan").
			Where("due_date >= ? AND due_date < ?", firstDay, lastDay).
			Order("due_date asc").
			Find(&invoices).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível consultar as faturas")
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Faturas"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"Número", "Cliente", "Plano", "Valor", "Vencimento", "Status", "Pago em"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		for row, inv := range invoices {
			paidAt := ""
			if inv.PaidAt != nil {
				paidAt = inv.PaidAt.Format("2006-01-02")
			}
			values := []interface{}{
				inv.Number,
				inv.Contract.Customer.Name,
				inv.Contract.Plan.Name,
				inv.Amount,
				inv.DueDate.Format("2006-01-02"),
				string(inv.Status),
				paidAt,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(sheet, cell, v)
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível gerar a planilha")
		}

		filename := fmt.Sprintf("faturas-%04d-%02d.xlsx", year, month)
		c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.Send(buf.Bytes())
	}
}
