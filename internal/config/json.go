package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/chronochat/internal/flagx"
	"github.com/dmitrijs2005/chronochat/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields keep
// "absent" apart from "explicitly zero" so a file can turn DevMode off.
type JsonConfig struct {
	DataDir        *string `json:"data_dir"`
	StoreType      *string `json:"store_type"`
	RedisAddr      *string `json:"redis_addr"`
	RedisDB        *int    `json:"redis_db"`
	LogLevel       *string `json:"log_level"`
	DevMode        *bool   `json:"dev_mode"`
	ForceSimulator *bool   `json:"force_simulator"`
	ApplicationID  *string `json:"application_id"`

	HashScheme        *string         `json:"hash_scheme"`
	LockoutAttempts   *int            `json:"lockout_attempts"`
	LockoutWindow     *timex.Duration `json:"lockout_window"`
	MinPasscodeLength *int            `json:"min_passcode_length"`
	MaxPasscodeLength *int            `json:"max_passcode_length"`

	BackupTarget   *string `json:"backup_target"`
	BackupDir      *string `json:"backup_dir"`
	S3Bucket       *string `json:"s3_bucket"`
	S3Region       *string `json:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint"`
	S3AccessKey    *string `json:"s3_access_key"`
	S3SecretKey    *string `json:"s3_secret_key"`
	BackupURL      *string `json:"backup_url"`
}

func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	jc.apply(cfg)
	return nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (jc *JsonConfig) apply(cfg *Config) {
	set(&cfg.DataDir, jc.DataDir)
	set(&cfg.StoreType, jc.StoreType)
	set(&cfg.RedisAddr, jc.RedisAddr)
	set(&cfg.RedisDB, jc.RedisDB)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.DevMode, jc.DevMode)
	set(&cfg.ForceSimulator, jc.ForceSimulator)
	set(&cfg.ApplicationID, jc.ApplicationID)
	set(&cfg.HashScheme, jc.HashScheme)
	set(&cfg.LockoutAttempts, jc.LockoutAttempts)
	if jc.LockoutWindow != nil {
		cfg.LockoutWindow = jc.LockoutWindow.Duration
	}
	set(&cfg.MinPasscodeLength, jc.MinPasscodeLength)
	set(&cfg.MaxPasscodeLength, jc.MaxPasscodeLength)
	set(&cfg.BackupTarget, jc.BackupTarget)
	set(&cfg.BackupDir, jc.BackupDir)
	set(&cfg.S3Bucket, jc.S3Bucket)
	set(&cfg.S3Region, jc.S3Region)
	set(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	set(&cfg.S3AccessKey, jc.S3AccessKey)
	set(&cfg.S3SecretKey, jc.S3SecretKey)
	set(&cfg.BackupURL, jc.BackupURL)
}
