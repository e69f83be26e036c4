// Package schema validates the structure of service documents.
//
// Each page kind has exactly one named schema (page.start, page.question,
// page.checkanswers, page.confirmation, page.standalone), branches have their own
// (branch) and the service envelope is described by service.base. The schemas ship as
// an embedded OpenAPI 3 components document and are evaluated with kin-openapi.
//
// Basic usage:
//
//	v, err := schema.Default()
//	if err != nil {
//	    return err
//	}
//
//	result := v.Validate(page, "page.start")
//	for _, violation := range result.Violations {
//	    fmt.Println(violation.Path, violation.Message)
//	}
//
// Validation is structural only (required fields, types, enum membership). A document
// can satisfy every schema and still describe a broken flow; see package flow for the
// graph checks.
package schema
