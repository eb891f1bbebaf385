// Package memory provides an in-process TTL cache implementing the
// driven.Cache port. Entries expire passively; nothing invalidates them
// before their TTL elapses.
package memory
