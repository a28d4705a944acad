// backend/handlers/dataset_handler_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dir-tecno/capacita/backend/config"
	"github.com/dir-tecno/capacita/backend/export"
	"github.com/dir-tecno/capacita/backend/models"
	"github.com/dir-tecno/capacita/backend/services"
	"github.com/dir-tecno/capacita/backend/storage"
)

type stubBucket struct {
	data []byte
}

func (s *stubBucket) Download(bucket, key string) ([]byte, error) {
	if s.data == nil {
		return nil, errors.New("bucket unreachable")
	}
	return s.data, nil
}

type stubHub struct {
	files map[string]string
}

func (s *stubHub) Download(repoID, filename string) (string, error) {
	path, ok := s.files[filename]
	if !ok {
		return "", errors.New("file not published: " + filename)
	}
	return path, nil
}

func loadedDatasetHandler(t *testing.T) *DatasetHandler {
	t.Helper()

	prev := config.AppConfig
	t.Cleanup(func() { config.AppConfig = prev })
	config.AppConfig.Storage.Bucket = "CBAMECAPACITA"
	config.AppConfig.Storage.StudentsFile = "ALUMNOS_X_LOCALIDAD.parquet"
	config.AppConfig.DatasetHub.OfferingsFile = "VT_CURSOS_X_LOCALIDAD.csv"
	config.AppConfig.DatasetHub.TeachersFile = "VT_DOCENTES_X_CURSO.csv"

	students := []models.StudentRecord{
		{Documento: "40111222", Curso: "Soldadura Básica", Sector: "Industria", Institucion: "IPET 123", Localidad: "Córdoba Capital"},
		{Documento: "41222333", Curso: "Programación Inicial", Sector: "Software", Institucion: "UTN FRC", Localidad: "Río Cuarto"},
		{Documento: "42333444", Curso: "Carpintería", Sector: "Industria", Institucion: "IPET 123", Localidad: "Villa María"},
	}
	parquetBytes, err := storage.WriteStudentRecords(students)
	require.NoError(t, err)

	dir := t.TempDir()
	offerings := filepath.Join(dir, "offerings.csv")
	teachers := filepath.Join(dir, "teachers.csv")
	require.NoError(t, os.WriteFile(offerings, []byte(
		"N_CURSO,N_CERTIFICACION,N_TRAYECTO_FORMATIVO,N_SECTOR_PRODUCTIVO,CUPO,FEC_INICIO,FEC_FIN,N_LOCALIDAD,N_BARRIO\n"+
			"Soldadura Básica,Certificación en Oficios,Oficios,Industria,30,01/03/2025 09:00,,Córdoba Capital,Centro\n"), 0o644))
	require.NoError(t, os.WriteFile(teachers, []byte(
		"NRO_DOCUMENTO,ID_DOCENTE,N_CURSO,HS_ASIGNADAS\n20111222,D-01,Soldadura Básica,120\n"), 0o644))

	svc := services.NewDatasetService(&stubBucket{data: parquetBytes}, &stubHub{files: map[string]string{
		"VT_CURSOS_X_LOCALIDAD.csv": offerings,
		"VT_DOCENTES_X_CURSO.csv":   teachers,
	}})
	require.NoError(t, svc.Refresh())

	return &DatasetHandler{Service: svc}
}

func TestStudentsEndpointBeforeLoad(t *testing.T) {
	handler := &DatasetHandler{Service: services.NewDatasetService(&stubBucket{}, &stubHub{})}

	rec := httptest.NewRecorder()
	handler.Students(rec, httptest.NewRequest(http.MethodGet, "/api/students", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "try again later")
}

func TestStudentsEndpointFilterAndPaginate(t *testing.T) {
	handler := loadedDatasetHandler(t)

	rec := httptest.NewRecorder()
	handler.Students(rec, httptest.NewRequest(http.MethodGet, "/api/students?sector=industria&page=1&per_page=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var page models.StudentPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 5, page.PerPage)
	assert.Len(t, page.Students, 2)
}

func TestStudentsEndpointPageBeyondEnd(t *testing.T) {
	handler := loadedDatasetHandler(t)

	rec := httptest.NewRecorder()
	handler.Students(rec, httptest.NewRequest(http.MethodGet, "/api/students?page=50", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var page models.StudentPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Empty(t, page.Students)
	assert.Equal(t, 3, page.Total)
}

func TestStudentsExportXLSX(t *testing.T) {
	handler := loadedDatasetHandler(t)

	rec := httptest.NewRecorder()
	handler.StudentsExport(rec, httptest.NewRequest(http.MethodGet, "/api/students/export?format=xlsx&sector=Software", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "datos_filtrados.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2) // header plus the one Software student
	assert.Equal(t, "Programación Inicial", rows[1][1])
}

func TestStudentsExportBadFormat(t *testing.T) {
	handler := loadedDatasetHandler(t)

	rec := httptest.NewRecorder()
	handler.StudentsExport(rec, httptest.NewRequest(http.MethodGet, "/api/students/export?format=pdf", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOfferingsEndpointCSV(t *testing.T) {
	handler := loadedDatasetHandler(t)

	rec := httptest.NewRecorder()
	handler.Offerings(rec, httptest.NewRequest(http.MethodGet, "/api/offerings?format=csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "cursos.csv")
	assert.Contains(t, rec.Body.String(), "Soldadura Básica")
}

func TestTeachersEndpoint(t *testing.T) {
	handler := loadedDatasetHandler(t)

	rec := httptest.NewRecorder()
	handler.Teachers(rec, httptest.NewRequest(http.MethodGet, "/api/teachers", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var teachers []models.TeacherAssignment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &teachers))
	require.Len(t, teachers, 1)
	assert.Equal(t, "D-01", teachers[0].DocenteID)
}
