package domain

import "errors"

var (
	// ErrNetworkUnavailable reports a connection failure or a non-2xx response.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrExportNotFound reports that the page links no CSV or TXT export.
	ErrExportNotFound = errors.New("export link not found")

	// ErrTableNotRendered reports that a region's table did not appear in time.
	ErrTableNotRendered = errors.New("table not rendered")

	// ErrNoDataProduced reports a run that produced neither an export nor rows.
	ErrNoDataProduced = errors.New("no data produced")
)
