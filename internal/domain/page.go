package domain

import "context"

// Page is a rendered bulletin page in a browser. Lookups block until the
// selector matches or ctx is done.
type Page interface {
	// Has reports whether selector currently matches an element, without waiting.
	Has(ctx context.Context, selector string) (bool, error)

	// Click clicks the first element matching selector.
	Click(ctx context.Context, selector string) error

	// WaitFor blocks until selector matches an element.
	WaitFor(ctx context.Context, selector string) error

	// HTML returns the outer HTML of the first element matching selector.
	HTML(ctx context.Context, selector string) (string, error)

	// Content returns the outer HTML of the whole rendered document.
	Content(ctx context.Context) (string, error)

	Close() error
}
