package config

import (
	"strings"

	"github.com/pkg/errors"
)

type metricsConf struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

func (c *metricsConf) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Path == "" {
		c.Path = defaultMetricsConf.Path
	}
	if !strings.HasPrefix(c.Path, "/") {
		return errors.Errorf("error in metrics conf: path '%s' must start with /", c.Path)
	}
	return nil
}

var defaultMetricsConf = metricsConf{
	Enabled: true,
	Path:    "/metrics",
}
