// Package document defines the serialized shape of a service definition and its codecs.
//
// A document is read as generic JSON-like data first (so that it can be checked against
// the schemas in package schema) and then decoded into typed structs with mapstructure.
// Both JSON and YAML encodings are supported.
package document
