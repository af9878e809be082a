package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"torchlight-intake/internal/store"
)

const sheetName = "Submissions"

// SubmissionsHeader is the column order of the export.
var SubmissionsHeader = []string{
	"ID",
	"Submitted At",
	"Email",
	"Searcher Name",
	"Home Base",
	"Target Close Window",
	"Primary Thesis",
	"Functional Strengths",
	"Deal Exposure",
	"Scorecard Factors",
	"Scorecard Total (%)",
}

var columnWidths = []float64{38, 20, 30, 20, 18, 20, 45, 40, 40, 18, 18}

// SubmissionsWorkbook builds an xlsx with one row per record, in the order
// given.
func SubmissionsWorkbook(records []store.SubmissionRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(SubmissionsHeader))
	for i, h := range SubmissionsHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(SubmissionsHeader), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := recordRow(rec)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func recordRow(rec store.SubmissionRecord) []interface{} {
	scorecard := rec.ScorecardFactors()
	searcher, home, window := rec.SearcherName, rec.HomeBase, rec.TargetCloseWindow
	// the summary columns can be NULL on rows whose form_data has the values
	if searcher == "" && home == "" && window == "" && len(rec.FormData) > 0 {
		if sub, err := rec.Submission(); err == nil {
			searcher = sub.QuickSummary.SearcherName
			home = sub.QuickSummary.HomeBase
			window = sub.QuickSummary.TargetCloseWindow
		}
	}
	return []interface{}{
		rec.ID,
		rec.SubmittedAt,
		rec.Email,
		searcher,
		home,
		window,
		rec.Interests,
		rec.Background,
		rec.Experience,
		len(scorecard),
		scorecard.TotalWeight(),
	}
}
