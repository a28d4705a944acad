// backend/models/equivalence.go
package models

import "time"

// EstadoEquivalencia is the lifecycle state of an equivalence.
// The database stores it through the T_ESTADOS_EQUIVALENCIAS lookup table;
// the store translates to and from this type at its boundary.
type EstadoEquivalencia string

const (
	EstadoActivo   EstadoEquivalencia = "ACTIVO"
	EstadoInactivo EstadoEquivalencia = "INACTIVO"
)

// Valid reports whether e is one of the two known states.
func (e EstadoEquivalencia) Valid() bool {
	return e == EstadoActivo || e == EstadoInactivo
}

// HistoricalCourse is a row from T_CURSOS_X_SECTOR. Reference data owned by
// the batch import process; this backend only reads it.
type HistoricalCourse struct {
	ID     int64  `db:"ID_CURSO" json:"id_curso"`
	Name   string `db:"N_CURSO" json:"n_curso"`
	Sector string `db:"N_SECTOR" json:"n_sector"`
}

// Certification is a row from T_CERTIF_X_LOCALIDAD. Reference data, read-only.
type Certification struct {
	ID    int64  `db:"ID_CERTIFICACION" json:"id_certificacion"`
	Name  string `db:"N_CERTIFICACION" json:"n_certificacion"`
	Place string `db:"LUGAR_CURSADO" json:"lugar_cursado"`
}

// Equivalence is a row from T_EQUIVALENCIAS_CURSOS. Course and certification
// names are snapshots taken at creation time; they are not live-joined and may
// drift if the catalog rows are later renamed.
type Equivalence struct {
	ID                int64              `db:"ID_EQUIVALENCIA" csv:"ID_EQUIVALENCIA" json:"id"`
	CourseID          int64              `db:"ID_CURSO_HISTORICO" csv:"-" json:"id_curso_historico"`
	CourseName        string             `db:"N_CURSO_HISTORICO" csv:"CURSO_HISTORICO" json:"n_curso_historico"`
	CourseSector      string             `db:"N_SECTOR" csv:"SECTOR" json:"n_sector,omitempty"`
	CertificationID   int64              `db:"ID_CERTIF_ACTUAL" csv:"-" json:"id_certif_actual"`
	CertificationName string             `db:"N_CERTIF_ACTUAL" csv:"CERTIFICACION_ACTUAL" json:"n_certif_actual"`
	Observation       string             `db:"OBSERVACIONES" csv:"OBSERVACIONES" json:"observaciones"`
	Estado            EstadoEquivalencia `db:"N_ESTADO" csv:"ESTADO" json:"estado"`
	CreatedAt         time.Time          `db:"FECH_EQUIVALENCIA" csv:"FECH_EQUIVALENCIA" json:"fech_equivalencia"`
	CreatedBy         string             `db:"CREADO_POR" csv:"CREADO_POR" json:"creado_por,omitempty"`
}

// EquivalenceFilter narrows ListActiveEquivalences. Zero values mean
// "no restriction" for each field.
type EquivalenceFilter struct {
	CourseContains        string
	CertificationContains string
	Sector                string
	CreatedFrom           *time.Time
	CreatedUntil          *time.Time
}

// CourseCatalogFilter narrows the historical course catalog listing.
type CourseCatalogFilter struct {
	NameContains string
	Sector       string
}

// CertificationCatalogFilter narrows the certification catalog listing.
type CertificationCatalogFilter struct {
	NameContains string
	Place        string
}
