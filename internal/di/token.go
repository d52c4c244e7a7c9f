package di

import "fmt"

// Token is a typed handle for a service registered in a Container.
// The type parameter carries the service type so lookups need no assertions
// at call sites.
type Token[T any] struct {
	name string
}

// NewToken creates a token with a unique name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the token's registration name.
func (t Token[T]) Name() string {
	return t.name
}

// RegisterToken registers a typed factory for the token.
func RegisterToken[T any](c Container, token Token[T], fn func(ServiceRegistry) T) {
	c.RegisterFactory(token.name, func(sr ServiceRegistry) any {
		return fn(sr)
	})
}

// GetToken resolves the token to its service instance. A factory may
// return a typed nil for an optional dependency; that resolves to the
// zero value of T.
func GetToken[T any](sr ServiceRegistry, token Token[T]) T {
	raw := sr.Get(token.name)
	if raw == nil {
		var zero T
		return zero
	}
	svc, ok := raw.(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type", token.name))
	}
	return svc
}
