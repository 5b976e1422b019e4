package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

type HeaderConfig struct {
	Name  string `toml:"name"`
	Value string `toml:"value"`
}

type GSheetConfig struct {
	SheetID         string `toml:"sheet_id"`
	SheetName       string `toml:"sheet_name"`
	BoardRange      string `toml:"board_range"`
	TimestampRange  string `toml:"timestamp_range"`
	Schedule        string `toml:"schedule"`
	CredentialsPath string `toml:"credentials_path"`
}

type Config struct {
	Server struct {
		Port       string `toml:"port"`
		EnableAuth bool   `toml:"enable_auth"`
	} `toml:"server"`

	Auth struct {
		RedisURL         string `toml:"redis_url"`
		TokenHeader      string `toml:"token_header"`
		TokenKeyTemplate string `toml:"token_key_template"`
	} `toml:"auth"`

	API struct {
		UserIDHeader    string         `toml:"user_id_header"`
		UserRoleHeader  string         `toml:"user_role_header"`
		RequiredHeaders []HeaderConfig `toml:"required_headers"`
	} `toml:"api"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Review struct {
		RequiredApprovals int                 `toml:"required_approvals"`
		Roles             []string            `toml:"roles"`
		Routing           map[string][]string `toml:"routing"`
	} `toml:"review"`

	Scoring struct {
		ProofBonus  int `toml:"proof_bonus"`
		VerifyBonus int `toml:"verify_bonus"`
	} `toml:"scoring"`

	GSheet        []GSheetConfig `toml:"gsheet"`
	EmojiVariants []string       `toml:"emoji_variants"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}

	if config.Review.RequiredApprovals == 0 {
		config.Review.RequiredApprovals = 2
	}
	if len(config.Review.Roles) == 0 {
		config.Review.Roles = []string{"CEO", "COO", "MARKETING"}
	}
	if config.Review.Routing == nil {
		config.Review.Routing = map[string][]string{
			"CEO": {"COO", "MARKETING"},
		}
	}
	if config.Scoring.ProofBonus == 0 {
		config.Scoring.ProofBonus = 2
	}
	if config.Scoring.VerifyBonus == 0 {
		config.Scoring.VerifyBonus = 1
	}

	logger.Debug.Printf("Loaded review config: %+v", config.Review)

	return &config, nil
}
