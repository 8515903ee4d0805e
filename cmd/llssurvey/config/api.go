package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/zachmann/go-utils/duration"

	"github.com/Durai69/LLS-Survey/storage"
)

// EnvJWTSecret may hold the session token secret instead of the config file
const EnvJWTSecret = "LLSSURVEY_JWT_SECRET"

// apiConf holds API-related configuration
type apiConf struct {
	Admin adminAPIConf `yaml:"admin"`
	User  userAPIConf  `yaml:"user"`
}

type adminAPIConf struct {
	Enabled        bool                   `yaml:"enabled"`
	UsersEnabled   bool                   `yaml:"users_enabled"`
	Port           int                    `yaml:"port"`
	Argon2idParams storage.Argon2idParams `yaml:"password_hashing"`
}

// userAPIConf configures the API used by department members. Session tokens
// are HS256 JWTs issued by the login service with the shared secret.
type userAPIConf struct {
	Enabled       bool                    `yaml:"enabled"`
	JWTSecret     string                  `yaml:"jwt_secret"`
	Issuer        string                  `yaml:"issuer"`
	TokenLifetime duration.DurationOption `yaml:"token_lifetime"`
}

func (c *apiConf) validate() error {
	if !c.User.Enabled {
		return nil
	}
	if c.User.JWTSecret == "" {
		c.User.JWTSecret = os.Getenv(EnvJWTSecret)
	}
	if c.User.JWTSecret == "" {
		return errors.Errorf("error in api conf: user api needs a jwt_secret or %s", EnvJWTSecret)
	}
	if len(c.User.JWTSecret) < 16 {
		return errors.New("error in api conf: jwt_secret must be at least 16 characters")
	}
	if c.User.TokenLifetime.Duration() < 0 {
		return errors.New("error in api conf: token_lifetime must not be negative")
	}
	return nil
}

var defaultAPIConf = apiConf{
	Admin: adminAPIConf{
		Enabled:      true,
		UsersEnabled: true,
		Port:         0, // 0 means use main server
		Argon2idParams: storage.Argon2idParams{
			Time:        1,
			MemoryKiB:   64 * 1024,
			Parallelism: 4,
			KeyLen:      64,
			SaltLen:     32,
		},
	},
	User: userAPIConf{
		Enabled:       true,
		TokenLifetime: duration.DurationOption(12 * time.Hour),
	},
}
