// Package redis provides Redis backed implementations of ports.DocumentStore and
// ports.DistributedLocker.
package redis
