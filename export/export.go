// backend/export/export.go
package export

import (
	"encoding/json"
	"fmt"

	"github.com/jszwec/csvutil"
	"github.com/xuri/excelize/v2"

	"github.com/dir-tecno/capacita/backend/models"
)

// Content types for the download endpoints.
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeJSON = "application/json; charset=utf-8"
)

// SheetName is the single worksheet written into XLSX downloads.
const SheetName = "Datos"

// StudentsCSV renders student records as a CSV payload, headers from the
// struct's csv tags.
func StudentsCSV(students []models.StudentRecord) ([]byte, error) {
	data, err := csvutil.Marshal(students)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal students CSV: %w", err)
	}
	return data, nil
}

// StudentsJSON renders student records as a JSON payload.
func StudentsJSON(students []models.StudentRecord) ([]byte, error) {
	data, err := json.Marshal(students)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal students JSON: %w", err)
	}
	return data, nil
}

// StudentsXLSX renders student records as a spreadsheet payload.
func StudentsXLSX(students []models.StudentRecord) ([]byte, error) {
	headers := []interface{}{"NRO_DOCUMENTO", "N_CURSO", "N_SECTOR", "N_INSTITUCION", "N_LOCALIDAD"}
	rows := make([][]interface{}, 0, len(students))
	for _, st := range students {
		rows = append(rows, []interface{}{st.Documento, st.Curso, st.Sector, st.Institucion, st.Localidad})
	}
	return writeXLSX(headers, rows)
}

// OfferingsCSV renders course offerings as a CSV payload.
func OfferingsCSV(offerings []models.CourseOffering) ([]byte, error) {
	data, err := csvutil.Marshal(offerings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal course offerings CSV: %w", err)
	}
	return data, nil
}

// OfferingsJSON renders course offerings as a JSON payload.
func OfferingsJSON(offerings []models.CourseOffering) ([]byte, error) {
	data, err := json.Marshal(offerings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal course offerings JSON: %w", err)
	}
	return data, nil
}

// EquivalencesCSV renders equivalences as a CSV payload. Internal ids carry
// a csv:"-" tag and stay out of the download.
func EquivalencesCSV(equivalences []models.Equivalence) ([]byte, error) {
	data, err := csvutil.Marshal(equivalences)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal equivalences CSV: %w", err)
	}
	return data, nil
}

// writeXLSX builds a one-sheet workbook with a header row followed by the
// data rows.
func writeXLSX(headers []interface{}, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to rename worksheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write XLSX header row: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to compute XLSX cell name: %w", err)
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write XLSX row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize XLSX workbook: %w", err)
	}
	return buf.Bytes(), nil
}
