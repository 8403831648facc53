// Package config handles configuration for the ChronoChat client:
// struct-tag defaults, an optional JSON overlay and command-line flags,
// applied in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
)

const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
	StoreRedis  = "redis"

	HashSchemeIterated = "sha256-iter"
	HashSchemeArgon2   = "argon2id"

	BackupTargetDir = "dir"
	BackupTargetS3  = "s3"
	BackupTargetURL = "url"
)

// Config holds runtime settings.
//
// DataDir is the app-private storage root: the SQLite database and the
// images/attachments/imported_images directories live under it.
// DevMode mirrors a development build: device drift is tolerated and the
// runtime is classified as a simulator.
type Config struct {
	DataDir        string `default:"chronochat-data"`
	StoreType      string `default:"sqlite"`
	RedisAddr      string `default:"127.0.0.1:6379"`
	RedisDB        int    `default:"0"`
	LogLevel       string `default:"info"`
	DevMode        bool   `default:"false"`
	ForceSimulator bool   `default:"false"`
	ApplicationID  string `default:"io.chronochat.app"`

	HashScheme        string        `default:"sha256-iter"`
	LockoutAttempts   int           `default:"5"`
	LockoutWindow     time.Duration `default:"5m"`
	MinPasscodeLength int           `default:"4"`
	MaxPasscodeLength int           `default:"6"`

	BackupTarget   string `default:"dir"`
	BackupDir      string `default:""`
	S3Bucket       string `default:"chronochat-backups"`
	S3Region       string `default:"us-east-1"`
	S3BaseEndpoint string `default:""`
	S3AccessKey    string `default:""`
	S3SecretKey    string `default:""`
	BackupURL      string `default:""`
}

// LoadDefaults populates zero-valued fields from the struct tags.
func (c *Config) LoadDefaults() {
	if err := defaults.Set(c); err != nil {
		panic(fmt.Errorf("config defaults: %w", err))
	}
}

// DatabasePath is the SQLite file inside DataDir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "chronochat.db")
}

// ResolvedBackupDir is BackupDir or, when empty, DataDir/backups.
func (c *Config) ResolvedBackupDir() string {
	if c.BackupDir != "" {
		return c.BackupDir
	}
	return filepath.Join(c.DataDir, "backups")
}

// Validate rejects settings the services cannot work with.
func (c *Config) Validate() error {
	switch c.StoreType {
	case StoreSQLite, StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("unknown store type %q", c.StoreType)
	}
	switch c.HashScheme {
	case HashSchemeIterated, HashSchemeArgon2:
	default:
		return fmt.Errorf("unknown hash scheme %q", c.HashScheme)
	}
	switch c.BackupTarget {
	case BackupTargetDir, BackupTargetS3:
	case BackupTargetURL:
		if c.BackupURL == "" {
			return fmt.Errorf("backup target %q needs a backup URL", c.BackupTarget)
		}
	default:
		return fmt.Errorf("unknown backup target %q", c.BackupTarget)
	}
	if c.MinPasscodeLength < 1 || c.MaxPasscodeLength < c.MinPasscodeLength {
		return fmt.Errorf("invalid passcode length bounds %d..%d", c.MinPasscodeLength, c.MaxPasscodeLength)
	}
	if c.LockoutAttempts < 1 {
		return fmt.Errorf("lockout attempts must be positive, got %d", c.LockoutAttempts)
	}
	return nil
}

// Load builds a Config from defaults, the JSON file named by -c/-config
// and the remaining flags in args (usually os.Args[1:]).
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
