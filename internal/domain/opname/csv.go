package opname

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/types"
)

// CountRow is one parsed row of a count sheet.
type CountRow struct {
	Line    int
	SKU     string
	Counted types.Quantity
	Notes   string

	// Invalid rows are carried through so the import can report them instead
	// of silently dropping them.
	Invalid bool
	Reason  string
}

// ParseCountSheet reads a CSV count sheet. The header row must contain the
// columns "sku" and "counted_quantity" (case-insensitive, any order); an
// optional "notes" column is honored. Malformed data rows are returned marked
// Invalid rather than aborting the whole sheet.
func ParseCountSheet(r io.Reader) ([]CountRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperror.NewValidation("empty or unreadable CSV").WithCause(err)
	}

	skuCol, countedCol, notesCol := -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "sku":
			skuCol = i
		case "counted_quantity":
			countedCol = i
		case "notes":
			notesCol = i
		}
	}
	if skuCol < 0 || countedCol < 0 {
		return nil, apperror.NewValidation("CSV header must contain sku and counted_quantity columns")
	}

	var rows []CountRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rows = append(rows, CountRow{Line: line, Invalid: true, Reason: "unreadable row"})
			continue
		}

		row := CountRow{Line: line}
		if skuCol < len(record) {
			row.SKU = strings.TrimSpace(record[skuCol])
		}
		if notesCol >= 0 && notesCol < len(record) {
			row.Notes = strings.TrimSpace(record[notesCol])
		}

		if row.SKU == "" {
			row.Invalid = true
			row.Reason = "missing sku"
			rows = append(rows, row)
			continue
		}
		if countedCol >= len(record) || strings.TrimSpace(record[countedCol]) == "" {
			row.Invalid = true
			row.Reason = "missing counted_quantity"
			rows = append(rows, row)
			continue
		}

		counted, err := strconv.ParseInt(strings.TrimSpace(record[countedCol]), 10, 64)
		if err != nil {
			row.Invalid = true
			row.Reason = "counted_quantity is not an integer"
			rows = append(rows, row)
			continue
		}
		if counted < 0 {
			row.Invalid = true
			row.Reason = "counted_quantity is negative"
			rows = append(rows, row)
			continue
		}

		row.Counted = counted
		rows = append(rows, row)
	}

	return rows, nil
}

// WriteCountSheet writes session items as CSV:
// product_id,product_name,system_quantity,counted_quantity,difference,notes
func WriteCountSheet(w io.Writer, items []Item) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{
		"product_id", "product_name", "system_quantity",
		"counted_quantity", "difference", "notes",
	}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range items {
		it := &items[i]
		record := []string{
			it.ProductID.String(),
			it.ProductName,
			strconv.FormatInt(it.SystemQuantity, 10),
			strconv.FormatInt(it.CountedQuantity, 10),
			strconv.FormatInt(it.Difference, 10),
			it.Notes,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
