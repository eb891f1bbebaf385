package services

import (
	"fmt"

	"github.com/boxincode/sitekit/internal/core/domain"
	"github.com/boxincode/sitekit/internal/core/ports/driven"
)

// ConnectorRegistry holds the fixed set of connectors, validated once at
// construction. Lookup failures after startup can only mean an unknown
// key, never a misconfigured connector.
type ConnectorRegistry struct {
	connectors map[string]driven.Connector
	order      []string
}

// NewConnectorRegistry builds a registry from the given connectors.
// Empty or duplicate keys are a construction error.
func NewConnectorRegistry(connectors ...driven.Connector) (*ConnectorRegistry, error) {
	r := &ConnectorRegistry{
		connectors: make(map[string]driven.Connector, len(connectors)),
	}
	for _, c := range connectors {
		key := c.Key()
		if key == "" {
			return nil, fmt.Errorf("register connector: empty key: %w", domain.ErrInvalidInput)
		}
		if _, exists := r.connectors[key]; exists {
			return nil, fmt.Errorf("register connector %q: %w", key, domain.ErrAlreadyExists)
		}
		r.connectors[key] = c
		r.order = append(r.order, key)
	}
	return r, nil
}

// List returns all connectors in registration order.
func (r *ConnectorRegistry) List() []driven.Connector {
	result := make([]driven.Connector, 0, len(r.order))
	for _, key := range r.order {
		result = append(result, r.connectors[key])
	}
	return result
}

// Enabled returns the connectors enabled in configuration, in
// registration order.
func (r *ConnectorRegistry) Enabled() []driven.Connector {
	result := make([]driven.Connector, 0, len(r.order))
	for _, key := range r.order {
		if c := r.connectors[key]; c.Enabled() {
			result = append(result, c)
		}
	}
	return result
}

// Get returns the connector for a key, or domain.ErrNotFound.
func (r *ConnectorRegistry) Get(key string) (driven.Connector, error) {
	c, ok := r.connectors[key]
	if !ok {
		return nil, fmt.Errorf("connector %q: %w", key, domain.ErrNotFound)
	}
	return c, nil
}

// Keys returns the registered connector keys in registration order.
func (r *ConnectorRegistry) Keys() []string {
	keys := make([]string, len(r.order))
	copy(keys, r.order)
	return keys
}
