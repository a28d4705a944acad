// backend/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// StorageConfig points at the object-storage bucket that holds the student
// extract (ALUMNOS_X_LOCALIDAD.parquet).
type StorageConfig struct {
	BaseURL      string `yaml:"base_url"` // e.g. https://<project>.supabase.co/storage/v1
	ServiceKey   string `yaml:"service_key"`
	Bucket       string `yaml:"bucket"`        // e.g. CBAMECAPACITA
	StudentsFile string `yaml:"students_file"` // e.g. ALUMNOS_X_LOCALIDAD.parquet
}

// DatasetHubConfig points at the dataset-hub repository that publishes the
// course offering and teacher assignment CSVs.
type DatasetHubConfig struct {
	BaseURL       string `yaml:"base_url"` // e.g. https://huggingface.co
	RepoID        string `yaml:"repo_id"`  // e.g. Dir-Tecno/CBAMECAPACITA
	Token         string `yaml:"token"`
	OfferingsFile string `yaml:"offerings_file"` // e.g. VT_CURSOS_X_LOCALIDAD.csv
	TeachersFile  string `yaml:"teachers_file"`  // e.g. VT_DOCENTES_X_CURSO.csv
	CacheDir      string `yaml:"cache_dir"`      // local download directory
}

type DataFreshnessConfig struct {
	DatasetRefreshIntervalStr string `yaml:"dataset_refresh_interval"`
	DatasetRefreshInterval    time.Duration // Parsed duration
}

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Storage       StorageConfig       `yaml:"storage"`
	DatasetHub    DatasetHubConfig    `yaml:"dataset_hub"`
	DataFreshness DataFreshnessConfig `yaml:"data_freshness"`
}

var AppConfig Config

// LoadConfig reads configuration from the YAML file at configPath, then
// applies secret overrides from the environment (a .env file is honored when
// present). Credentials never need to live in the YAML file.
func LoadConfig(configPath string) error {
	// Missing .env is fine; real deployments set the variables directly.
	_ = godotenv.Load()

	if configPath == "" {
		potentialPaths := []string{
			"config/config.yaml",
			"backend/config/config.yaml",
			"config.yaml",
		}
		for _, p := range potentialPaths {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
		if configPath == "" {
			return fmt.Errorf("config.yaml not found in standard locations")
		}
	}

	file, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(file, &AppConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&AppConfig)

	// Parse durations
	if AppConfig.DataFreshness.DatasetRefreshIntervalStr != "" {
		var err error
		AppConfig.DataFreshness.DatasetRefreshInterval, err = time.ParseDuration(AppConfig.DataFreshness.DatasetRefreshIntervalStr)
		if err != nil {
			return fmt.Errorf("failed to parse dataset_refresh_interval: %w", err)
		}
	} else {
		AppConfig.DataFreshness.DatasetRefreshInterval = 24 * time.Hour // Default
	}

	if AppConfig.DatasetHub.CacheDir == "" {
		AppConfig.DatasetHub.CacheDir = filepath.Join("temp_data", "datasets")
	}
	if err := os.MkdirAll(AppConfig.DatasetHub.CacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create dataset cache directory: %w", err)
	}

	return nil
}

// applyEnvOverrides lets environment variables win over file values for
// anything credential-like.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		cfg.Database.Port = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.DBName = v
	}
	if v := os.Getenv("STORAGE_SERVICE_KEY"); v != "" {
		cfg.Storage.ServiceKey = v
	}
	if v := os.Getenv("HUB_TOKEN"); v != "" {
		cfg.DatasetHub.Token = v
	}
}
