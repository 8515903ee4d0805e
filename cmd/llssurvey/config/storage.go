package config

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Durai69/LLS-Survey/storage"
	"github.com/Durai69/LLS-Survey/storage/model"
)

type storageConf struct {
	storage.DSNConf `yaml:",inline"`

	Driver  storage.DriverType `yaml:"driver"`
	DataDir string             `yaml:"data_dir"`
	DSN     string             `yaml:"dsn"`
	Debug   bool               `yaml:"debug"`
}

func (c *storageConf) validate() error {
	switch c.Driver {
	case storage.DriverSQLite:
		if c.DataDir == "" && c.DSN == "" {
			return errors.New("error in storage conf: data_dir must be specified")
		}
		return nil
	case storage.DriverMySQL, storage.DriverPostgres:
	default:
		return errors.Errorf("error in storage conf: unsupported driver '%s'", c.Driver)
	}
	var err error
	if c.DSN == "" {
		c.DSN, err = storage.DSN(c.Driver, c.DSNConf)
	}
	return err
}

var defaultStorageConf = storageConf{
	Driver:  storage.DriverSQLite,
	DataDir: ".",
	DSNConf: storage.DSNConf{
		User: "llssurvey",
		Host: "localhost",
		DB:   "llssurvey",
	},
	Debug: false,
}

// StorageConfig returns the storage.Config for the passed Config
func StorageConfig(c *Config) storage.Config {
	return storage.Config{
		Driver:    c.Storage.Driver,
		DSN:       c.Storage.DSN,
		DataDir:   c.Storage.DataDir,
		Debug:     c.Storage.Debug,
		UsersHash: c.API.Admin.Argon2idParams,
	}
}

// LoadStorageBackends loads and returns the storage backends for the passed Config
func LoadStorageBackends(c *Config) (model.Backends, error) {
	backs, err := storage.LoadStorageBackends(StorageConfig(c))
	if err != nil {
		return model.Backends{}, err
	}
	log.Info("Loaded storage backend")
	return backs, nil
}
