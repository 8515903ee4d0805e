// Package config loads the configuration of the survey server
package config

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/zachmann/go-utils/fileutils"
	"gopkg.in/yaml.v3"

	llssurvey "github.com/Durai69/LLS-Survey"
)

// Config holds the complete server configuration
type Config struct {
	Server        llssurvey.ServerConf `yaml:"server"`
	API           apiConf              `yaml:"api"`
	Storage       storageConf          `yaml:"storage"`
	Logging       loggingConf          `yaml:"logging"`
	Notifications notificationsConf    `yaml:"notifications"`
	Metrics       metricsConf          `yaml:"metrics"`
}

var c *Config

var possibleConfigLocations = []string{
	".",
	"config",
	"/config",
	"/llssurvey/config",
	"/llssurvey",
	"/data/config",
	"/data",
	"/etc/llssurvey",
}

const configFileName = "config.yaml"

// Get returns the loaded Config
func Get() *Config {
	return c
}

func defaultConfig() *Config {
	return &Config{
		Server:        defaultServerConf,
		API:           defaultAPIConf,
		Storage:       defaultStorageConf,
		Logging:       defaultLoggingConf,
		Notifications: defaultNotificationsConf,
		Metrics:       defaultMetricsConf,
	}
}

var defaultServerConf = llssurvey.ServerConf{
	Port: 7672,
}

// Parse parses a yaml config on top of the defaults and validates it
func Parse(data []byte) (*Config, error) {
	conf := defaultConfig()
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, errors.Wrap(err, "could not parse config")
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (conf *Config) validate() error {
	if conf.Server.Port == 0 {
		conf.Server.Port = defaultServerConf.Port
	}
	if conf.API.Admin.Port > 0 {
		conf.Server.AdminAPIPort = conf.API.Admin.Port
	}
	if conf.Server.TLS.Enabled && (conf.Server.TLS.Cert == "" || conf.Server.TLS.Key == "") {
		return errors.New("error in server conf: tls enabled but cert or key missing")
	}
	if err := conf.API.validate(); err != nil {
		return err
	}
	if err := conf.Storage.validate(); err != nil {
		return err
	}
	if err := conf.Logging.validate(); err != nil {
		return err
	}
	if err := conf.Notifications.validate(); err != nil {
		return err
	}
	return conf.Metrics.validate()
}

func findConfigFile() string {
	for _, dir := range possibleConfigLocations {
		p := dir + "/" + configFileName
		if fileutils.FileExists(p) {
			return p
		}
	}
	return ""
}

// Load reads and validates the config file and makes it available through
// Get. If filename is empty the default locations are searched.
func Load(filename string) {
	if filename == "" {
		filename = findConfigFile()
	}
	var data []byte
	if filename != "" {
		var err error
		data, err = os.ReadFile(filename)
		if err != nil {
			log.WithError(err).Fatal("could not read config file")
		}
	} else {
		log.Warn("no config file found, using defaults")
	}
	conf, err := Parse(data)
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	c = conf
}
