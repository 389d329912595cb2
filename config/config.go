// config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// SourcesConfig points at the public artifact locations the push pipeline
// reads from. The URL templates take the fund number as their single
// format argument (e.g. ".../f%d/challenges.json").
type SourcesConfig struct {
	ChallengesURLTemplate string `yaml:"challenges_url_template"`
	ProposalsURLTemplate  string `yaml:"proposals_url_template"`
	AssessmentsCSV        string `yaml:"assessments_csv"`
	AssessmentsCSVURL     string `yaml:"assessments_csv_url"` // optional; downloaded to AssessmentsCSV when set
	DataIndexPage         string `yaml:"data_index_page"`     // optional; voter-tool data folder listing
	FolderLinkSelector    string `yaml:"folder_link_selector"`
}

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Sources  SourcesConfig  `yaml:"sources"`
}

const (
	defaultChallengesURLTemplate = "https://raw.githubusercontent.com/Project-Catalyst/voter-tool/master/public/data/f%d/challenges.json"
	defaultProposalsURLTemplate  = "https://raw.githubusercontent.com/Project-Catalyst/voter-tool/master/public/data/f%d/proposals.json"
	defaultDataIndexPage         = "https://github.com/Project-Catalyst/voter-tool/tree/master/public/data"
	defaultFolderLinkSelector    = "a"
)

var AppConfig Config

// LoadConfig reads configuration from a YAML file and applies .env /
// environment overrides for the database credentials.
func LoadConfig(configPath string) error {
	if configPath == "" {
		// Probe the usual locations relative to where the binary is run.
		potentialPaths := []string{
			"config.yaml",
			"config/config.yaml",
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
		fmt.Printf("Loading configuration from: %s\n", configPath)
	}

	file, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(file, &AppConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Credentials usually live in a .env next to the binary rather than in
	// the YAML file. A missing .env is fine; plain environment variables
	// still apply.
	_ = godotenv.Load()
	applyEnvOverrides(&AppConfig.Database)

	applySourceDefaults(&AppConfig.Sources)

	// Make sure the directory for the local assessments CSV exists before
	// any download tries to write into it.
	if AppConfig.Sources.AssessmentsCSV != "" {
		if err := os.MkdirAll(filepath.Dir(AppConfig.Sources.AssessmentsCSV), 0755); err != nil {
			return fmt.Errorf("failed to create directory for assessments CSV: %w", err)
		}
	}

	return nil
}

func applyEnvOverrides(db *DatabaseConfig) {
	if v := os.Getenv("CATALYST_DB_HOST"); v != "" {
		db.Host = v
	}
	if v := os.Getenv("CATALYST_DB_PORT"); v != "" {
		db.Port = v
	}
	if v := os.Getenv("CATALYST_DB_USER"); v != "" {
		db.User = v
	}
	if v := os.Getenv("CATALYST_DB_PASSWORD"); v != "" {
		db.Password = v
	}
	if v := os.Getenv("CATALYST_DB_NAME"); v != "" {
		db.DBName = v
	}
}

func applySourceDefaults(src *SourcesConfig) {
	if src.ChallengesURLTemplate == "" {
		src.ChallengesURLTemplate = defaultChallengesURLTemplate
	}
	if src.ProposalsURLTemplate == "" {
		src.ProposalsURLTemplate = defaultProposalsURLTemplate
	}
	if src.DataIndexPage == "" {
		src.DataIndexPage = defaultDataIndexPage
	}
	if src.FolderLinkSelector == "" {
		src.FolderLinkSelector = defaultFolderLinkSelector
	}
}
