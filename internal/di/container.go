// Package di provides a minimal service container with typed tokens.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry provides read access to registered services.
type ServiceRegistry interface {
	// Get returns the service registered under name, building it lazily
	// if it was registered as a factory. Panics if name is unknown.
	Get(name string) any
}

// Container extends ServiceRegistry with registration.
type Container interface {
	ServiceRegistry

	// Register stores an already-built service instance.
	Register(name string, svc any)

	// RegisterFactory stores a lazy constructor. The factory runs at most
	// once; the result is memoized.
	RegisterFactory(name string, fn func(ServiceRegistry) any)
}

type container struct {
	mu        sync.Mutex
	services  map[string]any
	factories map[string]func(ServiceRegistry) any
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{
		services:  make(map[string]any),
		factories: make(map[string]func(ServiceRegistry) any),
	}
}

func (c *container) Register(name string, svc any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = svc
}

func (c *container) RegisterFactory(name string, fn func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[name] = fn
}

func (c *container) Get(name string) any {
	c.mu.Lock()
	if svc, ok := c.services[name]; ok {
		c.mu.Unlock()
		return svc
	}
	factory, ok := c.factories[name]
	c.mu.Unlock()

	if !ok {
		panic(fmt.Sprintf("di: service %q not registered", name))
	}

	// Build outside the lock so factories can resolve their own dependencies.
	svc := factory(c)

	c.mu.Lock()
	// Another goroutine may have built it concurrently; first one wins.
	if existing, ok := c.services[name]; ok {
		c.mu.Unlock()
		return existing
	}
	c.services[name] = svc
	c.mu.Unlock()

	return svc
}
