// Package di wires the gateway's dependency graph.
package di

import (
	"github.com/samber/do/v2"

	"github.com/tourwise/cms-client/internal/config"
	"github.com/tourwise/cms-client/internal/gateway"
	"github.com/tourwise/cms-client/pkg/client"
	"github.com/tourwise/cms-client/pkg/relay"
	"github.com/tourwise/cms-client/pkg/resources"
	"github.com/tourwise/cms-client/pkg/session"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, ProvideConfig)
	do.Provide(injector, ProvideLogger)
	do.Provide(injector, ProvideRedis)

	// Session verification
	do.Provide(injector, ProvideResolver)

	// Backend access and resource cache
	do.Provide(injector, ProvideClient)
	do.Provide(injector, ProvideStore)
	do.Provide(injector, ProvideAPI)

	// Event relay and rate limiting
	do.Provide(injector, ProvideRelay)
	do.Provide(injector, ProvideLimiter)

	// HTTP server
	do.Provide(injector, ProvideGateway)
	do.Provide(injector, ProvideHTTPServer)

	return injector
}

// Bootstrap initializes the full graph in dependency order. The last invoke
// starts the HTTP listener.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[AppLogger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*RedisHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[session.Resolver](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*client.Client](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*resources.API](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*relay.Relay](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*LimiterHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*gateway.Server](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
