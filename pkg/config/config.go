package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nspcc-dev/patricia/pkg/core/mpt"
	"github.com/nspcc-dev/patricia/pkg/core/storage"
	"github.com/nspcc-dev/patricia/pkg/core/storage/dbconfig"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the config file used when nothing else is specified.
const DefaultConfigPath = "./config/mptool.yml"

// Version is the version of the tool, overridden at build time via
// -ldflags "-X github.com/nspcc-dev/patricia/pkg/config.Version=...".
var Version = "dev"

// Config is the top level struct representing the configuration file.
type Config struct {
	Trie                     TrieConfiguration `yaml:"Trie"`
	ApplicationConfiguration `yaml:",inline"`
}

// Default returns configuration used for settings missing from the file.
func Default() Config {
	return Config{
		Trie: TrieConfiguration{
			Spec:            mpt.DefaultTrieSpec,
			Hasher:          DefaultHasher,
			InlineThreshold: mpt.DefaultInlineThreshold,
			NodeCacheSize:   DefaultNodeCacheSize,
		},
		ApplicationConfiguration: ApplicationConfiguration{
			DBConfiguration: dbconfig.DBConfiguration{
				Type: storage.LevelDB,
				LevelDBOptions: dbconfig.LevelDBOptions{
					DataDirectoryPath: "./chains/mpt",
				},
				BoltDBOptions: dbconfig.BoltDBOptions{
					FilePath: "./chains/mpt.bolt",
				},
			},
			LogLevel: "info",
		},
	}
}

// LoadFile loads config from the provided path. Defaults are applied to
// everything the file doesn't mention.
func LoadFile(configPath string) (Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config '%s' doesn't exist", configPath)
	}

	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}
	return Unmarshal(configData)
}

// Unmarshal decodes YAML configuration on top of the defaults and validates
// the result.
func Unmarshal(data []byte) (Config, error) {
	config := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	err := decoder.Decode(&config)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if err := c.Trie.Validate(); err != nil {
		return fmt.Errorf("invalid Trie configuration: %w", err)
	}
	if err := c.ApplicationConfiguration.Validate(); err != nil {
		return fmt.Errorf("invalid application configuration: %w", err)
	}
	return nil
}
