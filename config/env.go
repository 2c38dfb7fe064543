package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/viper"
)

// Environment keys holding the sink credentials.
const (
	EnvHost     = "DB_HOST"
	EnvPort     = "DB_PORT"
	EnvUser     = "DB_USER"
	EnvPassword = "DB_PASSWORD"
	EnvName     = "DB_NAME"
)

// ApplyEnv overrides db with the DB_* variables found in envFile and in the
// process environment. The process environment wins over the file. A missing
// envFile is not an error.
func ApplyEnv(db *Database, envFile string) error {
	v := viper.New()
	v.AutomaticEnv()

	if envFile != "" {
		if _, err := os.Stat(envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to stat env file: %w", err)
			}
		} else {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read env file %s: %w", envFile, err)
			}
		}
	}

	if v.IsSet(EnvHost) {
		db.Host = v.GetString(EnvHost)
	}
	if v.IsSet(EnvPort) {
		port := v.GetInt(EnvPort)
		if port <= 0 {
			return fmt.Errorf("invalid %s %q", EnvPort, v.GetString(EnvPort))
		}
		db.Port = port
	}
	if v.IsSet(EnvUser) {
		db.User = v.GetString(EnvUser)
	}
	if v.IsSet(EnvPassword) {
		db.Password = v.GetString(EnvPassword)
	}
	if v.IsSet(EnvName) {
		db.Name = v.GetString(EnvName)
	}
	return nil
}
