package config

import (
	"fmt"

	"github.com/nspcc-dev/patricia/pkg/core/storage"
	"github.com/nspcc-dev/patricia/pkg/core/storage/dbconfig"
	"go.uber.org/zap/zapcore"
)

// ApplicationConfiguration contains settings of the storage and logging.
type ApplicationConfiguration struct {
	DBConfiguration dbconfig.DBConfiguration `yaml:"DBConfiguration"`

	LogLevel string `yaml:"LogLevel"`
	LogPath  string `yaml:"LogPath"`
}

// Validate checks ApplicationConfiguration for internal consistency and returns
// an error if any invalid settings are found.
func (a *ApplicationConfiguration) Validate() error {
	switch a.DBConfiguration.Type {
	case storage.LevelDB:
		if a.DBConfiguration.LevelDBOptions.DataDirectoryPath == "" {
			return fmt.Errorf("empty LevelDB data directory path")
		}
	case storage.BoltDB:
		if a.DBConfiguration.BoltDBOptions.FilePath == "" {
			return fmt.Errorf("empty BoltDB file path")
		}
	case storage.InMemoryDB:
	default:
		return fmt.Errorf("unknown DB type: %q", a.DBConfiguration.Type)
	}
	if len(a.LogLevel) > 0 {
		if _, err := zapcore.ParseLevel(a.LogLevel); err != nil {
			return fmt.Errorf("log setting: %w", err)
		}
	}
	return nil
}
