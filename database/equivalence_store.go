// backend/database/equivalence_store.go
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/dir-tecno/capacita/backend/models"
)

// Sentinel errors returned by the stores. Callers distinguish them with
// errors.Is; anything wrapping ErrStorageUnavailable is retriable.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateActive    = errors.New("active equivalence already exists")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// storageUnavailable wraps an unexpected database error so the handlers can
// render "try again later" instead of a generic failure.
func storageUnavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}

// EquivalenceStore owns all reads and writes against T_EQUIVALENCIAS_CURSOS
// and its audit trail. Every mutating method runs inside its own transaction
// and records the action through the audit stored procedures.
type EquivalenceStore struct {
	db *sql.DB
}

func NewEquivalenceStore(db *sql.DB) *EquivalenceStore {
	return &EquivalenceStore{db: db}
}

// NewEquivalence carries the fields for one equivalence insert. Course and
// certification names are persisted as snapshots alongside the ids.
type NewEquivalence struct {
	CourseID          int64
	CourseName        string
	CertificationID   int64
	CertificationName string
	Observation       string
	CreatedBy         string
}

// FindCourseID resolves a historical course name to its id with an exact
// match against T_CURSOS_X_SECTOR. Returns ErrNotFound when no row matches;
// callers treat that as skip-this-item, not as a fatal condition.
func (s *EquivalenceStore) FindCourseID(name string) (int64, error) {
	var id int64
	err := s.db.QueryRow(`
		SELECT ID_CURSO
		FROM T_CURSOS_X_SECTOR
		WHERE N_CURSO = ?
		LIMIT 1
	`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("course %q: %w", name, ErrNotFound)
		}
		return 0, storageUnavailable("find course id", err)
	}
	return id, nil
}

// FindCertificationID resolves a certification name to its id, same contract
// as FindCourseID.
func (s *EquivalenceStore) FindCertificationID(name string) (int64, error) {
	var id int64
	err := s.db.QueryRow(`
		SELECT ID_CERTIFICACION
		FROM T_CERTIF_X_LOCALIDAD
		WHERE N_CERTIFICACION = ?
		LIMIT 1
	`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("certification %q: %w", name, ErrNotFound)
		}
		return 0, storageUnavailable("find certification id", err)
	}
	return id, nil
}

// HasActiveEquivalence reports whether an ACTIVO equivalence already links
// the (course, certification) pair.
func (s *EquivalenceStore) HasActiveEquivalence(courseID, certID int64) (bool, error) {
	var id int64
	err := s.db.QueryRow(`
		SELECT eq.ID_EQUIVALENCIA
		FROM T_EQUIVALENCIAS_CURSOS eq
		JOIN T_ESTADOS_EQUIVALENCIAS ee ON eq.ID_ESTADO = ee.ID_ESTADO
		WHERE eq.ID_CURSO_HISTORICO = ?
		  AND eq.ID_CERTIF_ACTUAL = ?
		  AND ee.N_ESTADO = ?
		LIMIT 1
	`, courseID, certID, string(models.EstadoActivo)).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, storageUnavailable("check active equivalence", err)
	}
	return true, nil
}

// CreateEquivalence inserts one ACTIVO equivalence row and its audit record.
// The duplicate check and the insert run in the same transaction, with the
// check locking the matching rows, so two racing submissions for the same
// pair cannot both insert. Returns ErrDuplicateActive when the pair is
// already actively linked.
func (s *EquivalenceStore) CreateEquivalence(eq NewEquivalence) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, storageUnavailable("begin create equivalence", err)
	}
	defer tx.Rollback()

	var existingID int64
	err = tx.QueryRow(`
		SELECT eq.ID_EQUIVALENCIA
		FROM T_EQUIVALENCIAS_CURSOS eq
		JOIN T_ESTADOS_EQUIVALENCIAS ee ON eq.ID_ESTADO = ee.ID_ESTADO
		WHERE eq.ID_CURSO_HISTORICO = ?
		  AND eq.ID_CERTIF_ACTUAL = ?
		  AND ee.N_ESTADO = ?
		LIMIT 1
		FOR UPDATE
	`, eq.CourseID, eq.CertificationID, string(models.EstadoActivo)).Scan(&existingID)
	if err == nil {
		return 0, fmt.Errorf("course %d / certification %d: %w", eq.CourseID, eq.CertificationID, ErrDuplicateActive)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, storageUnavailable("check active equivalence", err)
	}

	res, err := tx.Exec(`
		INSERT INTO T_EQUIVALENCIAS_CURSOS (
			ID_CURSO_HISTORICO, N_CURSO_HISTORICO,
			ID_CERTIF_ACTUAL, N_CERTIF_ACTUAL,
			OBSERVACIONES, ID_ESTADO, FECH_EQUIVALENCIA, CREADO_POR
		) VALUES (?, ?, ?, ?, ?,
			(SELECT ID_ESTADO FROM T_ESTADOS_EQUIVALENCIAS WHERE N_ESTADO = ?),
			NOW(), ?)
	`, eq.CourseID, eq.CourseName, eq.CertificationID, eq.CertificationName,
		eq.Observation, string(models.EstadoActivo), eq.CreatedBy)
	if err != nil {
		return 0, storageUnavailable("insert equivalence", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageUnavailable("read inserted equivalence id", err)
	}

	// Audit record, required for every mutation.
	_, err = tx.Exec(`CALL sp_auditar_alta_equivalencia(?, ?, ?, ?, ?, ?)`,
		eq.CourseID, eq.CourseName, eq.CertificationID, eq.CertificationName,
		eq.Observation, eq.CreatedBy)
	if err != nil {
		return 0, storageUnavailable("audit equivalence insert", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, storageUnavailable("commit create equivalence", err)
	}

	log.Printf("Database: Created equivalence %d (course %d -> certification %d).\n",
		id, eq.CourseID, eq.CertificationID)
	return id, nil
}

const listEquivalencesSelect = `
	SELECT eq.ID_EQUIVALENCIA, eq.ID_CURSO_HISTORICO, eq.N_CURSO_HISTORICO,
	       cs.N_SECTOR, eq.ID_CERTIF_ACTUAL, eq.N_CERTIF_ACTUAL,
	       eq.OBSERVACIONES, ee.N_ESTADO, eq.FECH_EQUIVALENCIA, eq.CREADO_POR
	FROM T_EQUIVALENCIAS_CURSOS eq
	JOIN T_ESTADOS_EQUIVALENCIAS ee ON eq.ID_ESTADO = ee.ID_ESTADO
	LEFT JOIN T_CURSOS_X_SECTOR cs ON eq.ID_CURSO_HISTORICO = cs.ID_CURSO`

// ListActiveEquivalences returns all ACTIVO equivalences matching the filter,
// newest first. Newest-first ordering is part of the contract.
func (s *EquivalenceStore) ListActiveEquivalences(filter models.EquivalenceFilter) ([]models.Equivalence, error) {
	query := listEquivalencesSelect + `
	WHERE ee.N_ESTADO = ?`
	args := []interface{}{string(models.EstadoActivo)}

	if filter.CourseContains != "" {
		query += " AND eq.N_CURSO_HISTORICO LIKE ?"
		args = append(args, "%"+filter.CourseContains+"%")
	}
	if filter.CertificationContains != "" {
		query += " AND eq.N_CERTIF_ACTUAL LIKE ?"
		args = append(args, "%"+filter.CertificationContains+"%")
	}
	if filter.Sector != "" {
		query += " AND cs.N_SECTOR = ?"
		args = append(args, filter.Sector)
	}
	if filter.CreatedFrom != nil {
		query += " AND eq.FECH_EQUIVALENCIA >= ?"
		args = append(args, *filter.CreatedFrom)
	}
	if filter.CreatedUntil != nil {
		query += " AND eq.FECH_EQUIVALENCIA <= ?"
		args = append(args, *filter.CreatedUntil)
	}
	query += " ORDER BY eq.FECH_EQUIVALENCIA DESC, eq.ID_EQUIVALENCIA DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storageUnavailable("list active equivalences", err)
	}
	defer rows.Close()

	var equivalences []models.Equivalence
	for rows.Next() {
		eq, err := scanEquivalence(rows)
		if err != nil {
			log.Printf("ERROR: Failed to scan equivalence row: %v", err)
			continue
		}
		equivalences = append(equivalences, eq)
	}
	if err = rows.Err(); err != nil {
		return nil, storageUnavailable("iterate equivalence rows", err)
	}

	log.Printf("Database: Retrieved %d active equivalences.\n", len(equivalences))
	return equivalences, nil
}

// GetEquivalence retrieves one equivalence by id regardless of its estado,
// so deactivated rows stay inspectable. Returns ErrNotFound for unknown ids.
func (s *EquivalenceStore) GetEquivalence(id int64) (*models.Equivalence, error) {
	row := s.db.QueryRow(listEquivalencesSelect+`
	WHERE eq.ID_EQUIVALENCIA = ?`, id)

	eq, err := scanEquivalence(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("equivalence %d: %w", id, ErrNotFound)
		}
		return nil, storageUnavailable("get equivalence", err)
	}
	return &eq, nil
}

// DeactivateEquivalence transitions an ACTIVO equivalence to INACTIVO and
// records the acting user in the audit trail. The row itself is never
// deleted. Returns ErrNotFound when the id does not match an ACTIVO row,
// which includes ids that were already deactivated; INACTIVO is terminal.
func (s *EquivalenceStore) DeactivateEquivalence(id int64, actingUser string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return storageUnavailable("begin deactivate equivalence", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE T_EQUIVALENCIAS_CURSOS
		SET ID_ESTADO = (SELECT ID_ESTADO FROM T_ESTADOS_EQUIVALENCIAS WHERE N_ESTADO = ?)
		WHERE ID_EQUIVALENCIA = ?
		  AND ID_ESTADO = (SELECT ID_ESTADO FROM T_ESTADOS_EQUIVALENCIAS WHERE N_ESTADO = ?)
	`, string(models.EstadoInactivo), id, string(models.EstadoActivo))
	if err != nil {
		return storageUnavailable("deactivate equivalence", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return storageUnavailable("read deactivation result", err)
	}
	if affected == 0 {
		return fmt.Errorf("active equivalence %d: %w", id, ErrNotFound)
	}

	_, err = tx.Exec(`CALL sp_auditar_baja_equivalencia(?, ?)`, id, actingUser)
	if err != nil {
		return storageUnavailable("audit equivalence deactivation", err)
	}

	if err := tx.Commit(); err != nil {
		return storageUnavailable("commit deactivate equivalence", err)
	}

	log.Printf("Database: Deactivated equivalence %d (by %s).\n", id, actingUser)
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEquivalence(row rowScanner) (models.Equivalence, error) {
	var eq models.Equivalence
	var sector, createdBy sql.NullString
	var estado string

	err := row.Scan(
		&eq.ID, &eq.CourseID, &eq.CourseName,
		&sector, &eq.CertificationID, &eq.CertificationName,
		&eq.Observation, &estado, &eq.CreatedAt, &createdBy,
	)
	if err != nil {
		return models.Equivalence{}, err
	}
	if sector.Valid {
		eq.CourseSector = sector.String
	}
	if createdBy.Valid {
		eq.CreatedBy = createdBy.String
	}
	eq.Estado = models.EstadoEquivalencia(estado)
	return eq, nil
}
