package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	llssurvey "github.com/Durai69/LLS-Survey"
	"github.com/Durai69/LLS-Survey/api/adminapi"
	"github.com/Durai69/LLS-Survey/api/userapi"
	"github.com/Durai69/LLS-Survey/cmd/llssurvey/config"
	"github.com/Durai69/LLS-Survey/internal/logger"
	"github.com/Durai69/LLS-Survey/internal/version"
)

func main() {
	var configFile string
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}
	config.Load(configFile)
	logger.Init()
	log.WithField("version", version.VERSION).Info("Loaded Config")
	c := config.Get()

	backs, err := config.LoadStorageBackends(c)
	if err != nil {
		log.WithError(err).Fatal("could not load storage")
	}

	opts := llssurvey.Options{
		AccessLog: logger.AccessLogWriter(),
	}
	if c.Metrics.Enabled {
		opts.MetricsPath = c.Metrics.Path
	}
	if c.API.Admin.Enabled {
		opts.AdminAPI = &adminapi.Options{
			UsersEnabled: c.API.Admin.UsersEnabled,
			Notifier:     config.Notifier(c),
			NotifyOnSave: c.Notifications.NotifyOnSave,
		}
		log.WithField("driver", c.Notifications.Driver).Info("Loaded notifier")
	}
	if c.API.User.Enabled {
		opts.UserAPI = &userapi.Options{
			Tokens: userapi.NewTokens(
				[]byte(c.API.User.JWTSecret), c.API.User.Issuer, c.API.User.TokenLifetime.Duration(),
			),
		}
	}

	server, err := llssurvey.NewServer(c.Server, backs, opts)
	if err != nil {
		log.WithError(err).Fatal("could not create server")
	}
	log.Info("Added Endpoints")

	server.Start()
}
