// Package driving defines the interfaces through which the outside world
// drives the core: indexing, search and similarity operations.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// Core services implement them; the CLI adapter calls them.
package driving
