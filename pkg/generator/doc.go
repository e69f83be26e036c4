// Package generator creates the initial metadata of a new service.
//
// A generated service is immediately valid: it passes the service.base schema, each
// page passes the schema named by its `_type`, and its flow graph has no integrity
// violations.
package generator
