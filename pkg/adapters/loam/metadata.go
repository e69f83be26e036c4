package loam

import "github.com/aretw0/formflow/pkg/document"

// ServiceMetadata is the frontmatter of a stored service file.
// The full document is kept as JSON in the file body.
type ServiceMetadata struct {
	ServiceID   string `json:"service_id" mapstructure:"service_id"`
	ServiceName string `json:"service_name" mapstructure:"service_name"`
	CreatedBy   string `json:"created_by" mapstructure:"created_by"`
	VersionID   string `json:"version_id,omitempty" mapstructure:"version_id"`
	// Deleted marks a tombstone left behind by Store.Delete.
	Deleted bool `json:"deleted,omitempty" mapstructure:"deleted"`
}

func metadataOf(doc *document.Document) ServiceMetadata {
	return ServiceMetadata{
		ServiceID:   doc.ServiceID,
		ServiceName: doc.ServiceName,
		CreatedBy:   doc.CreatedBy,
		VersionID:   doc.VersionID,
	}
}
