package domain

// Field constants shared by the document codec and the schemas.
const (
	// FlowTypePage is the `_type` of every entry in the flow map.
	FlowTypePage = "flow.page"

	// EndOfFlow is the fallback value that marks a terminal page.
	EndOfFlow = ""

	// KeyUUID is the document key holding a stable identifier.
	KeyUUID = "_uuid"
	// KeyType is the document key holding the object type.
	KeyType = "_type"
)
