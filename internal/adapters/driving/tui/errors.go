package tui

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("tui: query service is required")

// ErrMissingDocumentService is returned when the document list is needed
// but no document service was provided.
var ErrMissingDocumentService = errors.New("tui: document service is required to pick a document")
