// Package memory provides in-process implementations of the formflow ports,
// suitable for tests and single replica deployments.
package memory
