// Package export renders audit sessions as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"flowerShopCRM/internal/display"
	"flowerShopCRM/internal/reconcile"
	"flowerShopCRM/models"
)

// Sheet is the worksheet the report is written to.
const Sheet = "Sheet1"

// AuditXLSX writes one row per line followed by the session totals.
// Pending lines are listed with an empty actual quantity.
func AuditXLSX(w io.Writer, s *models.AuditSession, labels *display.Catalog) error {
	if s == nil {
		return fmt.Errorf("audit session is nil")
	}
	if labels == nil {
		labels = display.Default()
	}
	f := excelize.NewFile()
	defer f.Close()

	header := []any{"Product", "Unit", "System", "Actual", "Difference", "Status"}
	if err := f.SetSheetRow(Sheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(Sheet, "A1", "F1", bold); err != nil {
		return err
	}

	for i, it := range s.Items {
		it = reconcile.Recompute(it)
		var actual, diff any = "", ""
		if it.Status != models.AuditStatusPending {
			actual = it.ActualQuantity
			diff = display.Difference(it.Difference)
		}
		row := []any{it.Name, it.Unit, it.SystemQuantity, actual, diff, labels.Audit(it.Status).Label}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(Sheet, cell, &row); err != nil {
			return err
		}
	}

	st := reconcile.SessionStats(s.Items)
	summary := [][]any{
		{"Total", st.Total},
		{"Checked", st.Checked},
		{"Matches", st.Matches},
		{"Discrepancies", st.Discrepancies},
	}
	start := len(s.Items) + 3
	for i, row := range summary {
		cell, err := excelize.CoordinatesToCellName(1, start+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(Sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}
