// Package loam stores service documents as files through the Loam content repository.
//
// Each service lives in one file named after its service id: the frontmatter holds
// a small metadata header and the body holds the document as JSON.
package loam
