package interfaces

import (
	"context"
)

// Row is a single record returned by a list query
type Row map[string]any

// LabKeyClient defines operations against the LabKey Server content API
type LabKeyClient interface {
	// SelectRows returns all rows of schema.query in the container
	SelectRows(ctx context.Context, container, schema, query string) ([]Row, error)

	// Exists probes a browser URL; false only on 404
	Exists(ctx context.Context, url string) (bool, error)

	// UpdateWiki replaces the body of a wiki page and returns the HTTP status of the save
	UpdateWiki(ctx context.Context, container, name, body string) (int, error)

	// PostMessage posts an HTML message to the container's message board
	PostMessage(ctx context.Context, container, title, body string) (bool, error)
}
