// backend/database/catalog_store.go
package database

import (
	"database/sql"
	"log"

	"github.com/dir-tecno/capacita/backend/models"
)

// CatalogStore serves the read-only reference catalogs: historical courses
// (T_CURSOS_X_SECTOR) and current certifications (T_CERTIF_X_LOCALIDAD).
// Both tables are owned by the batch import process.
type CatalogStore struct {
	db *sql.DB
}

func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// ListHistoricalCourses returns the distinct historical courses matching the
// filter, ordered by course name.
func (s *CatalogStore) ListHistoricalCourses(filter models.CourseCatalogFilter) ([]models.HistoricalCourse, error) {
	query := `
		SELECT DISTINCT cs.ID_CURSO, cs.N_CURSO, cs.N_SECTOR
		FROM T_CURSOS_X_SECTOR cs`
	var args []interface{}
	var conditions []string

	if filter.NameContains != "" {
		conditions = append(conditions, "cs.N_CURSO LIKE ?")
		args = append(args, "%"+filter.NameContains+"%")
	}
	if filter.Sector != "" {
		conditions = append(conditions, "cs.N_SECTOR = ?")
		args = append(args, filter.Sector)
	}
	query += whereClause(conditions)
	query += " ORDER BY cs.N_CURSO"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storageUnavailable("list historical courses", err)
	}
	defer rows.Close()

	var courses []models.HistoricalCourse
	for rows.Next() {
		var c models.HistoricalCourse
		if err := rows.Scan(&c.ID, &c.Name, &c.Sector); err != nil {
			log.Printf("ERROR: Failed to scan historical course row: %v", err)
			continue
		}
		courses = append(courses, c)
	}
	if err = rows.Err(); err != nil {
		return nil, storageUnavailable("iterate historical course rows", err)
	}

	log.Printf("Database: Retrieved %d historical courses.\n", len(courses))
	return courses, nil
}

// ListCertifications returns the distinct certifications matching the filter,
// ordered by certification name.
func (s *CatalogStore) ListCertifications(filter models.CertificationCatalogFilter) ([]models.Certification, error) {
	query := `
		SELECT DISTINCT cl.ID_CERTIFICACION, cl.N_CERTIFICACION, cl.LUGAR_CURSADO
		FROM T_CERTIF_X_LOCALIDAD cl`
	var args []interface{}
	var conditions []string

	if filter.NameContains != "" {
		conditions = append(conditions, "cl.N_CERTIFICACION LIKE ?")
		args = append(args, "%"+filter.NameContains+"%")
	}
	if filter.Place != "" {
		conditions = append(conditions, "cl.LUGAR_CURSADO = ?")
		args = append(args, filter.Place)
	}
	query += whereClause(conditions)
	query += " ORDER BY cl.N_CERTIFICACION"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storageUnavailable("list certifications", err)
	}
	defer rows.Close()

	var certifications []models.Certification
	for rows.Next() {
		var c models.Certification
		if err := rows.Scan(&c.ID, &c.Name, &c.Place); err != nil {
			log.Printf("ERROR: Failed to scan certification row: %v", err)
			continue
		}
		certifications = append(certifications, c)
	}
	if err = rows.Err(); err != nil {
		return nil, storageUnavailable("iterate certification rows", err)
	}

	log.Printf("Database: Retrieved %d certifications.\n", len(certifications))
	return certifications, nil
}

func whereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	clause := " WHERE " + conditions[0]
	for _, c := range conditions[1:] {
		clause += " AND " + c
	}
	return clause
}
