// Package registry maps provider names to record factories. Applications
// resolve the configured provider once at startup and pass the resulting
// record.Factory to the components that need it.
package registry

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/logger"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/record"
)

const (
	// Default names the provider of plain in-memory records and tables.
	Default = "default"
	// Synchronized names the provider of mutex-guarded records and tables.
	Synchronized = "synchronized"
)

// Options carries the settings a provider applies to the tables it creates.
type Options struct {
	// Name names every table the factory creates
	Name     string
	Logger   *zap.Logger
	Observer record.Observer
}

func (o Options) tableOptions() []record.TableOption {
	var opts []record.TableOption
	if o.Name != "" {
		opts = append(opts, record.WithName(o.Name))
	}
	if o.Logger != nil {
		opts = append(opts, record.WithLogger(o.Logger))
	}
	if o.Observer != nil {
		opts = append(opts, record.WithObserver(o.Observer))
	}
	return opts
}

// ProviderFunc creates a factory configured by opts.
type ProviderFunc func(opts Options) (record.Factory, error)

// Registry manages factory providers.
type Registry struct {
	providers map[string]ProviderFunc
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewRegistry returns a registry holding the default and synchronized providers.
func NewRegistry(log *zap.Logger) *Registry {
	r := &Registry{
		providers: make(map[string]ProviderFunc),
		logger:    logger.OrNop(log).With(zap.String("component", "factory_registry")),
	}
	r.providers[Default] = func(opts Options) (record.Factory, error) {
		return record.NewDefaultFactory(opts.tableOptions()...), nil
	}
	r.providers[Synchronized] = func(opts Options) (record.Factory, error) {
		return record.NewSynchronizedFactory(record.NewDefaultFactory(opts.tableOptions()...)), nil
	}
	return r
}

// Register adds a provider under name.
func (r *Registry) Register(name string, provider ProviderFunc) error {
	if name == "" || provider == nil {
		return commonerrors.New(commonerrors.ErrorTypeConfig, "provider name and function are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return commonerrors.Newf(commonerrors.ErrorTypeConfig, "provider %s already registered", name)
	}

	r.providers[name] = provider
	r.logger.Debug("factory provider registered", zap.String("name", name))
	return nil
}

// Resolve creates the factory of the named provider.
func (r *Registry) Resolve(name string, opts Options) (record.Factory, error) {
	r.mu.RLock()
	provider, exists := r.providers[name]
	r.mu.RUnlock()

	if !exists {
		return nil, commonerrors.Newf(commonerrors.ErrorTypeConfig, "provider %s not found", name).
			WithDetail("available", r.Names())
	}

	factory, err := provider(opts)
	if err != nil {
		return nil, commonerrors.Wrapf(err, commonerrors.ErrorTypeConfig, "failed to create factory from provider %s", name)
	}
	if factory == nil {
		return nil, commonerrors.Newf(commonerrors.ErrorTypeConfig, "provider %s returned no factory", name)
	}

	r.logger.Debug("factory provider resolved", zap.String("name", name))
	return factory, nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a provider is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.providers[name]
	return exists
}
