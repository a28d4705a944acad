// backend/database/connection.go
package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/dir-tecno/capacita/backend/config"
	_ "github.com/go-sql-driver/mysql" // MySQL/MariaDB driver
)

// DB is the shared connection pool. The equivalence and catalog stores are
// constructed over it in main.
var DB *sql.DB

// InitDB opens the pool against the CBA ME CAPACITA database and verifies it
// with a ping. parseTime is required: FECH_EQUIVALENCIA scans into time.Time.
func InitDB(cfg config.DatabaseConfig) error {
	var err error
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
	)

	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	// The dashboard is low-traffic staff tooling; a small pool is plenty.
	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database %s: %w", cfg.DBName, err)
	}

	log.Printf("Database: Connected to %s at %s:%s.\n", cfg.DBName, cfg.Host, cfg.Port)
	return nil
}

// CloseDB closes the pool. Called on shutdown from main.
func CloseDB() {
	if DB != nil {
		DB.Close()
		log.Println("Database: Connection pool closed.")
	}
}
