// backend/models/dataset.go
package models

import "time"

// StudentRecord is one row of ALUMNOS_X_LOCALIDAD.parquet, the enrolled
// student extract published to the object-storage bucket.
// Parquet column names EXACTLY match the tags.
type StudentRecord struct {
	Documento   string `parquet:"NRO_DOCUMENTO" csv:"NRO_DOCUMENTO" json:"nro_documento"`
	Curso       string `parquet:"N_CURSO" csv:"N_CURSO" json:"n_curso"`
	Sector      string `parquet:"N_SECTOR" csv:"N_SECTOR" json:"n_sector"`
	Institucion string `parquet:"N_INSTITUCION" csv:"N_INSTITUCION" json:"n_institucion"`
	Localidad   string `parquet:"N_LOCALIDAD" csv:"N_LOCALIDAD" json:"n_localidad"`
}

// CourseOffering is one row of VT_CURSOS_X_LOCALIDAD.csv from the dataset hub.
// Date columns arrive as "DD/MM/YYYY HH:MM" strings and FEC_FIN is frequently
// empty, so both stay raw here; use FechaInicioTime/FechaFinTime when a real
// time.Time is needed.
type CourseOffering struct {
	Curso         string `csv:"N_CURSO" json:"n_curso"`
	Certificacion string `csv:"N_CERTIFICACION" json:"n_certificacion"`
	Trayecto      string `csv:"N_TRAYECTO_FORMATIVO" json:"n_trayecto_formativo"`
	Sector        string `csv:"N_SECTOR_PRODUCTIVO" json:"n_sector_productivo"`
	Cupo          int    `csv:"CUPO" json:"cupo"`
	FechaInicio   string `csv:"FEC_INICIO" json:"fec_inicio"`
	FechaFin      string `csv:"FEC_FIN" json:"fec_fin"`
	Localidad     string `csv:"N_LOCALIDAD" json:"n_localidad"`
	Barrio        string `csv:"N_BARRIO" json:"n_barrio"`
}

const fechaLayout = "02/01/2006 15:04"

// ParseFecha parses the hub's "DD/MM/YYYY HH:MM" date format.
// Blank or malformed values yield nil, matching the upstream data where
// FEC_FIN is often missing.
func ParseFecha(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(fechaLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// FechaInicioTime returns the parsed start date, or nil.
func (c CourseOffering) FechaInicioTime() *time.Time { return ParseFecha(c.FechaInicio) }

// FechaFinTime returns the parsed end date, or nil.
func (c CourseOffering) FechaFinTime() *time.Time { return ParseFecha(c.FechaFin) }

// TeacherAssignment is one row of VT_DOCENTES_X_CURSO.csv.
type TeacherAssignment struct {
	Documento string `csv:"NRO_DOCUMENTO" json:"nro_documento"`
	DocenteID string `csv:"ID_DOCENTE" json:"id_docente"`
	Curso     string `csv:"N_CURSO" json:"n_curso"`
	Horas     string `csv:"HS_ASIGNADAS" json:"hs_asignadas"`
}

// StudentFilter narrows the student snapshot. Each field is a
// case-insensitive substring match; empty means no restriction.
type StudentFilter struct {
	Curso       string
	Sector      string
	Institucion string
	Localidad   string
}

// OfferingFilter narrows the course offering snapshot with exact matches.
type OfferingFilter struct {
	Sector    string
	Localidad string
}
