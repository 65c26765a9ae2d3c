// Package page defines the narrow automation surface the acquisition engine
// drives: navigate, locate, read, click. Implementations carry their own
// bounded waits; callers only see errors.
package page

import (
	"context"
	"errors"
)

var (
	// ErrNoElement means the selector matched nothing within the
	// implementation's wait budget.
	ErrNoElement = errors.New("page: no element matched selector")

	// ErrNotInteractable means the element exists but the implementation
	// cannot act on it (e.g. a non-link click on a static document).
	ErrNotInteractable = errors.New("page: element is not interactable")
)

// Element is a handle to one located element. Handles are only valid until
// the page navigates or reloads.
type Element interface {
	Text(ctx context.Context) (string, error)
	Attr(ctx context.Context, name string) (string, bool, error)
	Click(ctx context.Context) error
	Find(ctx context.Context, selector string) (Element, error)
}

type Page interface {
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error

	// Find returns the first match or ErrNoElement.
	Find(ctx context.Context, selector string) (Element, error)
	// FindAll returns all matches; an empty slice is not an error.
	FindAll(ctx context.Context, selector string) ([]Element, error)
	// IsPresent reports matches without waiting out the full element budget.
	IsPresent(ctx context.Context, selector string) (bool, error)

	// Fill types a value into the input matched by selector.
	Fill(ctx context.Context, selector, value string) error
}
