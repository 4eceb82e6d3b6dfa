package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/samber/do/v2"

	"github.com/tourwise/cms-client/internal/config"
	"github.com/tourwise/cms-client/internal/gateway"
	"github.com/tourwise/cms-client/internal/ratelimit"
	"github.com/tourwise/cms-client/pkg/cache"
	"github.com/tourwise/cms-client/pkg/client"
	"github.com/tourwise/cms-client/pkg/logging"
	"github.com/tourwise/cms-client/pkg/relay"
	"github.com/tourwise/cms-client/pkg/resources"
	"github.com/tourwise/cms-client/pkg/session"
)

const shutdownTimeout = 10 * time.Second

// AppLogger is the configured root logger.
type AppLogger struct {
	zerolog.Logger
}

// ProvideConfig loads and validates the gateway configuration.
func ProvideConfig(do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger configures the global logger from the loaded configuration.
func ProvideLogger(i do.Injector) (AppLogger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Logger.Level),
		Pretty: cfg.Logger.Pretty,
	})
	logger.Info().
		Str("environment", cfg.App.Environment).
		Str("log_level", cfg.Logger.Level).
		Str("backend", cfg.Backend.BaseURL).
		Msg("Starting CMS gateway")

	return AppLogger{Logger: logger}, nil
}

// RedisHandle wraps the session cache connection with Shutdownable.
type RedisHandle struct {
	*redis.Client
}

// Shutdown implements do.Shutdownable.
func (h *RedisHandle) Shutdown() error {
	return h.Client.Close()
}

// ProvideRedis connects to Redis and fails fast when it is unreachable.
func ProvideRedis(i do.Injector) (*RedisHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis unreachable at %s: %w", cfg.Redis.Addr, err)
	}

	return &RedisHandle{Client: rdb}, nil
}

// ProvideResolver builds the session resolver: auth service verification with
// a short-lived Redis cache in front.
func ProvideResolver(i do.Injector) (session.Resolver, error) {
	cfg := do.MustInvoke[*config.Config](i)
	redisHandle := do.MustInvoke[*RedisHandle](i)

	verifyURL, err := url.Parse(cfg.Auth.VerifyURL)
	if err != nil {
		return nil, fmt.Errorf("parse auth verify URL: %w", err)
	}

	authCfg := session.DefaultAuthConfig(verifyURL.Scheme + "://" + verifyURL.Host)
	if verifyURL.Path != "" {
		authCfg.VerifyPath = verifyURL.Path
	}
	authCfg.UserAgent = cfg.Backend.UserAgent

	auth, err := session.NewAuthResolver(authCfg)
	if err != nil {
		return nil, err
	}

	sessionCache := session.NewCache(redisHandle.Client, cfg.Auth.SessionTTL)
	return session.NewCachedResolver(auth, sessionCache), nil
}

// ProvideClient builds the backend HTTP client.
func ProvideClient(i do.Injector) (*client.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)

	clientCfg := client.DefaultConfig(cfg.Backend.BaseURL)
	clientCfg.UserAgent = cfg.Backend.UserAgent
	clientCfg.Timeout = cfg.Backend.Timeout

	return client.New(clientCfg)
}

// StoreHandle wraps the resource cache with Shutdownable.
type StoreHandle struct {
	*cache.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	h.Store.Close()
	return nil
}

// ProvideStore builds the tag-indexed resource cache.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	store := cache.NewStore(cache.Config{
		KeepUnusedFor:   cfg.Cache.KeepUnusedFor,
		JanitorInterval: cfg.Cache.JanitorInterval,
	})

	return &StoreHandle{Store: store}, nil
}

// ProvideAPI binds the client and the store into the resource services.
func ProvideAPI(i do.Injector) (*resources.API, error) {
	c := do.MustInvoke[*client.Client](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return resources.New(c, storeHandle.Store), nil
}

// ProvideRelay builds the notification stream relay. Pushed events invalidate
// the cached notification reads, so an open admin tab refreshes its badge
// without polling.
func ProvideRelay(i do.Injector) (*relay.Relay, error) {
	cfg := do.MustInvoke[*config.Config](i)
	api := do.MustInvoke[*resources.API](i)
	resolver := do.MustInvoke[session.Resolver](i)

	return relay.New(relay.Config{
		UpstreamURL: cfg.Events.UpstreamURL,
		UserAgent:   cfg.Backend.UserAgent,
		OnEvent: func(event string) {
			switch event {
			case relay.EventNotification:
				api.Notifications.Invalidate(
					cache.ListTag(resources.TypeNotification),
					cache.UnreadCountTag(resources.TypeNotification),
				)
			case relay.EventUnreadCount:
				api.Notifications.Invalidate(cache.UnreadCountTag(resources.TypeNotification))
			}
		},
	}, resolver)
}

// LimiterHandle wraps the mutation rate limiter with Shutdownable.
type LimiterHandle struct {
	*ratelimit.KeyedLimiter
}

// Shutdown implements do.Shutdownable.
func (h *LimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideLimiter builds the per-caller mutation rate limiter.
func ProvideLimiter(i do.Injector) (*LimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	limiter := ratelimit.New(float64(cfg.RateLimit.PerSecond), cfg.RateLimit.Burst)
	return &LimiterHandle{KeyedLimiter: limiter}, nil
}

// ProvideGateway assembles the HTTP API server.
func ProvideGateway(i do.Injector) (*gateway.Server, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return gateway.NewServer(gateway.Config{
		API:            do.MustInvoke[*resources.API](i),
		Client:         do.MustInvoke[*client.Client](i),
		Relay:          do.MustInvoke[*relay.Relay](i),
		Resolver:       do.MustInvoke[session.Resolver](i),
		Limiter:        do.MustInvoke[*LimiterHandle](i).KeyedLimiter,
		AllowedOrigins: cfg.Gateway.AllowedOrigins,
	})
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer builds the HTTP server and starts listening in the
// background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	logger := do.MustInvoke[AppLogger](i)
	handler := do.MustInvoke[*gateway.Server](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Gateway.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Gateway.ReadTimeout,
		WriteTimeout: cfg.Gateway.WriteTimeout,
		IdleTimeout:  cfg.Gateway.IdleTimeout,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("Gateway listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Gateway server error")
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
