package dto

// Page wraps a collection payload with its pagination meta.
type Page[T any] struct {
	Items       []T   `json:"items"`
	Total       int64 `json:"total"`
	TotalPages  int64 `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
}

func NewPage[T any](items []T, total int64, page, limit int) Page[T] {
	if limit <= 0 {
		limit = 1
	}
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return Page[T]{
		Items:       items,
		Total:       total,
		TotalPages:  pages,
		CurrentPage: page,
	}
}
