package di

import "fmt"

// Token is a typed handle for a service registered in a Container.
type Token[T any] struct {
	name string
}

// NewToken creates a typed token with a unique name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the token's registry key.
func (t Token[T]) Name() string { return t.name }

// RegisterToken registers a lazily-built service under a typed token.
func RegisterToken[T any](c Container, token Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(token.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves a typed token, panicking on type mismatch.
func GetToken[T any](c ServiceRegistry, token Token[T]) T {
	svc := c.Get(token.name)
	typed, ok := svc.(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has wrong type %T", token.name, svc))
	}
	return typed
}
