// backend/storage/dataset_parser.go
package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"

	"github.com/jszwec/csvutil"

	"github.com/dir-tecno/capacita/backend/models"
)

// ParseOfferingsCsv takes an io.Reader containing VT_CURSOS_X_LOCALIDAD CSV
// data and returns the course offerings.
func ParseOfferingsCsv(reader io.Reader) ([]models.CourseOffering, error) {
	var offerings []models.CourseOffering

	// csvutil assumes the first line is a header and maps columns to struct
	// fields through the `csv:"..."` tags on models.CourseOffering.
	decoder, err := csvutil.NewDecoder(csv.NewReader(reader))
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder for course offerings: %w", err)
	}

	if err := decoder.Decode(&offerings); err != nil {
		return nil, fmt.Errorf("failed to decode course offerings CSV data: %w", err)
	}

	log.Printf("Storage: Parsed %d course offerings from CSV.\n", len(offerings))
	return offerings, nil
}

// ParseTeacherAssignmentsCsv takes an io.Reader containing VT_DOCENTES_X_CURSO
// CSV data and returns the teacher assignments.
func ParseTeacherAssignmentsCsv(reader io.Reader) ([]models.TeacherAssignment, error) {
	var assignments []models.TeacherAssignment

	decoder, err := csvutil.NewDecoder(csv.NewReader(reader))
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder for teacher assignments: %w", err)
	}

	if err := decoder.Decode(&assignments); err != nil {
		return nil, fmt.Errorf("failed to decode teacher assignments CSV data: %w", err)
	}

	log.Printf("Storage: Parsed %d teacher assignments from CSV.\n", len(assignments))
	return assignments, nil
}
