// Package export renders packing lists for label printing and invoicing.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/xuri/excelize/v2"
)

// Format is a packing-list file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const sheetName = "Packing List"

// ErrUnsupportedFormat is returned for formats other than csv and xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Header is the column header row of a packing list.
var Header = []string{"Box", "Unit ID", "Catalog Number", "Quantity", "Box Weight (kg)"}

// Row is one packed unit of a box.
type Row struct {
	BoxNumber     int
	UnitID        string
	CatalogNumber string
	Quantity      int
	BoxWeight     float64
}

// ParseFormat maps a query value to a Format. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Filename returns the attachment name for an order's packing list.
func (f Format) Filename(orderID string) string {
	return fmt.Sprintf("packing-list-%s.%s", orderID, f)
}

// Rows flattens boxes into one row per packed item. Empty boxes produce no rows.
func Rows(boxes []model.Box) []Row {
	rows := make([]Row, 0, len(boxes))
	for _, box := range boxes {
		for _, item := range box.Items {
			rows = append(rows, Row{
				BoxNumber:     box.BoxNumber,
				UnitID:        item.UnitID,
				CatalogNumber: item.CatalogNumber,
				Quantity:      item.Quantity,
				BoxWeight:     box.TotalWeight,
			})
		}
	}
	return rows
}

// Write renders the boxes in the given format.
func Write(w io.Writer, format Format, boxes []model.Box) error {
	rows := Rows(boxes)
	switch format {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatXLSX:
		return WriteXLSX(w, rows)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteCSV writes the header and rows as CSV.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.BoxNumber),
			row.UnitID,
			row.CatalogNumber,
			strconv.Itoa(row.Quantity),
			strconv.FormatFloat(row.BoxWeight, 'f', 3, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes the header and rows as a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, title := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{row.BoxNumber, row.UnitID, row.CatalogNumber, row.Quantity, row.BoxWeight}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "E", 18); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
