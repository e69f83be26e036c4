/*
Package flow builds the navigation graph of a service and resolves the next page.

A Graph is constructed eagerly from a fully materialised document and never refers
back to storage. Build it once per request; graphs are not meant to be shared or
mutated.

	g, err := flow.Build(doc)
	if err != nil {
		return err
	}
	if result := g.Validate(); !result.Valid() {
		return result.Err()
	}
	next, err := g.ResolveNext(pageID, answers)

Validate collects every integrity violation (duplicate ids or urls, missing or
multiple start pages, dangling destinations, unreachable pages, empty branches,
terminal pages with outgoing edges, conditions on components that are not answered
earlier in the flow) instead of stopping at the first one.
*/
package flow
