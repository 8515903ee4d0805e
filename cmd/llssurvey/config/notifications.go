package config

import (
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/zachmann/go-utils/duration"

	"github.com/Durai69/LLS-Survey/notify"
)

// Supported notification drivers
const (
	NotificationDriverLog   = "log"
	NotificationDriverRedis = "redis"
)

type notificationsConf struct {
	Driver       string    `yaml:"driver"`
	NotifyOnSave bool      `yaml:"notify_on_save"`
	Redis        redisConf `yaml:"redis"`
}

type redisConf struct {
	Addr        string                  `yaml:"addr"`
	Username    string                  `yaml:"username"`
	Password    string                  `yaml:"password"`
	DB          int                     `yaml:"db"`
	Key         string                  `yaml:"key"`
	DialTimeout duration.DurationOption `yaml:"dial_timeout"`
}

func (c *notificationsConf) validate() error {
	switch c.Driver {
	case "":
		c.Driver = NotificationDriverLog
	case NotificationDriverLog:
	case NotificationDriverRedis:
		if c.Redis.Addr == "" {
			return errors.New("error in notifications conf: redis driver needs redis.addr")
		}
	default:
		return errors.Errorf("error in notifications conf: unknown driver '%s'", c.Driver)
	}
	if c.Redis.Key == "" {
		c.Redis.Key = notify.DefaultRedisKey
	}
	return nil
}

var defaultNotificationsConf = notificationsConf{
	Driver: NotificationDriverLog,
}

// Notifier creates the notify.Notifier for the configured driver
func Notifier(c *Config) notify.Notifier {
	conf := c.Notifications
	if conf.Driver != NotificationDriverRedis {
		return notify.LogNotifier{}
	}
	client := redis.NewClient(
		&redis.Options{
			Addr:        conf.Redis.Addr,
			Username:    conf.Redis.Username,
			Password:    conf.Redis.Password,
			DB:          conf.Redis.DB,
			DialTimeout: conf.Redis.DialTimeout.Duration(),
		},
	)
	return notify.NewRedisNotifier(client, conf.Redis.Key)
}
