// Package llssurvey assembles the department survey server: the admin API
// managing the permission matrix and the user API gating survey submissions.
package llssurvey

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"

	"github.com/Durai69/LLS-Survey/api"
	"github.com/Durai69/LLS-Survey/api/adminapi"
	"github.com/Durai69/LLS-Survey/api/userapi"
	"github.com/Durai69/LLS-Survey/internal/metrics"
	"github.com/Durai69/LLS-Survey/internal/version"
	"github.com/Durai69/LLS-Survey/storage/model"
)

// FiberServerConfig is the fiber.Config that is used to init the http fiber.App
var FiberServerConfig = fiber.Config{
	ReadTimeout:    3 * time.Second,
	WriteTimeout:   20 * time.Second,
	IdleTimeout:    150 * time.Second,
	ReadBufferSize: 8192,
	ErrorHandler:   handleError,
	Network:        "tcp",
}

// handleError is the fiber.ErrorHandler for errors not handled by a handler
func handleError(c *fiber.Ctx, err error) error {
	return api.SendError(c, err)
}

// Options configures which parts of the server are mounted
type Options struct {
	// AdminAPI mounts the admin API under /api/v1/admin if not nil
	AdminAPI *adminapi.Options
	// UserAPI mounts the user API under /api/v1 if not nil
	UserAPI *userapi.Options
	// MetricsPath serves the prometheus metrics if not empty
	MetricsPath string
	// AccessLog receives the access log; stderr if nil
	AccessLog io.Writer
}

// Server is the survey server
type Server struct {
	server      *fiber.App
	adminServer *fiber.App
	serverConf  ServerConf
	backends    model.Backends
}

func newApp(accessLog io.Writer) *fiber.App {
	app := fiber.New(FiberServerConfig)
	app.Use(recover.New())
	app.Use(compress.New())
	loggerConf := logger.ConfigDefault
	if accessLog != nil {
		loggerConf.Output = accessLog
	}
	app.Use(logger.New(loggerConf))
	app.Use(requestid.New())
	return app
}

// NewServer creates a new Server
func NewServer(serverConf ServerConf, backends model.Backends, opts Options) (*Server, error) {
	if tps := serverConf.TrustedProxies; len(tps) > 0 {
		FiberServerConfig.TrustedProxies = serverConf.TrustedProxies
		FiberServerConfig.EnableTrustedProxyCheck = true
	}
	FiberServerConfig.ProxyHeader = serverConf.ForwardedIPHeader
	s := &Server{
		server:     newApp(opts.AccessLog),
		serverConf: serverConf,
		backends:   backends,
	}

	s.server.Get(
		"/health", func(c *fiber.Ctx) error {
			return c.JSON(
				fiber.Map{
					"status":  "ok",
					"version": version.VERSION,
				},
			)
		},
	)
	if opts.MetricsPath != "" {
		s.server.Get(opts.MetricsPath, adaptor.HTTPHandler(metrics.Handler()))
	}
	if opts.AdminAPI != nil {
		adminApp := s.server
		if serverConf.AdminAPIPort > 0 {
			s.adminServer = newApp(opts.AccessLog)
			adminApp = s.adminServer
			opts.AdminAPI.Port = serverConf.AdminAPIPort
		}
		if err := adminapi.Register(
			adminApp.Group("/api/v1/admin"), s.externalURL("/api/v1/admin"), backends, opts.AdminAPI,
		); err != nil {
			return nil, err
		}
	}
	// mounted after the admin API; its authentication covers all of /api/v1
	if opts.UserAPI != nil {
		if err := userapi.Register(s.server.Group("/api/v1"), backends, *opts.UserAPI); err != nil {
			return nil, err
		}
	}
	if err := s.initAllowedEdgesGauge(); err != nil {
		log.WithError(err).Warn("could not initialize allowed edges gauge")
	}
	return s, nil
}

func (s *Server) externalURL(path string) string {
	base := s.serverConf.ExternalURL
	if base == "" {
		host := s.serverConf.IPListen
		if host == "" {
			host = "localhost"
		}
		base = "http://" + net.JoinHostPort(host, strconv.Itoa(s.serverConf.Port))
	}
	return strings.TrimSuffix(base, "/") + path
}

func (s *Server) initAllowedEdgesGauge() error {
	if s.backends.Permissions == nil {
		return nil
	}
	snap, err := s.backends.Permissions.Load()
	if err != nil {
		return err
	}
	allowed := 0
	for _, e := range snap.Edges {
		if !e.IsSelf() {
			allowed++
		}
	}
	metrics.AllowedEdges.Set(float64(allowed))
	return nil
}

// HttpHandlerFunc returns an http.HandlerFunc for serving all the necessary endpoints
func (s *Server) HttpHandlerFunc() http.HandlerFunc {
	return adaptor.FiberApp(s.server)
}

// App returns the main fiber.App
func (s *Server) App() *fiber.App {
	return s.server
}

// Listen starts an http server at the specific address for serving all the
// necessary endpoints
func (s *Server) Listen(addr string) error {
	return s.server.Listen(addr)
}

// Start starts the server and blocks
func (s *Server) Start() {
	conf := s.serverConf
	if s.adminServer != nil {
		go func() {
			log.WithField("port", conf.AdminAPIPort).Info("starting admin api server")
			log.WithError(s.adminServer.Listen(fmt.Sprintf("%s:%d", conf.IPListen, conf.AdminAPIPort))).Fatal()
		}()
	}
	if !conf.TLS.Enabled {
		log.WithField("port", conf.Port).Info("TLS is disabled starting http server")
		log.WithError(s.server.Listen(fmt.Sprintf("%s:%d", conf.IPListen, conf.Port))).Fatal()
	}
	// TLS enabled
	if conf.TLS.RedirectHTTP {
		httpServer := fiber.New(FiberServerConfig)
		httpServer.All(
			"*", func(ctx *fiber.Ctx) error {
				//goland:noinspection HttpUrlsUsage
				return ctx.Redirect(
					strings.Replace(ctx.Request().URI().String(), "http://", "https://", 1),
					fiber.StatusPermanentRedirect,
				)
			},
		)
		log.Info("TLS and http redirect enabled, starting redirect server on port 80")
		go func() {
			log.WithError(httpServer.Listen(":80")).Fatal()
		}()
	}
	time.Sleep(time.Millisecond) // This is just for a more pretty output with the tls header printed after the http one
	log.Info("TLS enabled, starting https server on port 443")
	log.WithError(s.server.ListenTLS(":443", conf.TLS.Cert, conf.TLS.Key)).Fatal()
}
