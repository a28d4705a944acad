// backend/storage/parquet_reader.go
package storage

import (
	"bytes"
	"fmt"
	"log"

	"github.com/parquet-go/parquet-go"

	"github.com/dir-tecno/capacita/backend/models"
)

// ReadStudentRecords decodes the ALUMNOS_X_LOCALIDAD parquet payload into
// student records. Column names must EXACTLY match the parquet tags on
// models.StudentRecord.
func ReadStudentRecords(data []byte) ([]models.StudentRecord, error) {
	students, err := parquet.Read[models.StudentRecord](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode student parquet payload: %w", err)
	}

	log.Printf("Storage: Decoded %d student records from parquet.\n", len(students))
	return students, nil
}

// WriteStudentRecords encodes student records as a parquet payload. Used by
// tooling and tests; the production path only reads.
func WriteStudentRecords(students []models.StudentRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := parquet.Write(&buf, students); err != nil {
		return nil, fmt.Errorf("failed to encode student parquet payload: %w", err)
	}
	return buf.Bytes(), nil
}
