// Package documents retrieves case order documents from blob storage and
// reports their metadata, including page counts for PDFs.
package documents

import "github.com/JaimeStill/courtfetch/pkg/storage"

// Document is a stored order document's metadata.
type Document struct {
	storage.Properties
	Filename  string `json:"filename"`
	PageCount *int   `json:"page_count"`
}

// StoreCommand carries an uploaded document.
type StoreCommand struct {
	Key         string
	Data        []byte
	ContentType string
}
