package models

// Page is one slice of a cursor-paginated query. LastKey is empty on the last page.
type Page[T any] struct {
	Count   int    `json:"count"`
	LastKey string `json:"lastKey,omitempty"`
	Data    []T    `json:"data"`
}
