// Package driving defines the interfaces through which the outside world
// drives the core: the CLI, a host web application, or the scheduler.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// Core services implement them; adapters call them.
package driving
