package config

import (
	"flag"
	"fmt"

	"github.com/dmitrijs2005/chronochat/internal/flagx"
)

var (
	valuedFlags = []string{"-d", "-s", "-r", "-l", "-b"}
	switchFlags = []string{"-dev", "-sim"}
)

func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("chronochat", flag.ContinueOnError)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory (database, images, attachments)")
	fs.StringVar(&cfg.StoreType, "s", cfg.StoreType, "key-value store: sqlite, memory or redis")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address for -s redis")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.BackupTarget, "b", cfg.BackupTarget, "backup target: dir, s3 or url")
	fs.BoolVar(&cfg.DevMode, "dev", cfg.DevMode, "development build: tolerate device drift")
	fs.BoolVar(&cfg.ForceSimulator, "sim", cfg.ForceSimulator, "classify the runtime as a simulator")

	if err := fs.Parse(flagx.FilterArgs(args, valuedFlags, switchFlags...)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
