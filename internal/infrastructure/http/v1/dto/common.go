// Package dto defines request and response shapes for the HTTP API.
package dto

// ListQuery carries common pagination parameters.
type ListQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// Clamp applies defaults and caps to pagination values.
func (q *ListQuery) Clamp() {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 500 {
		q.Limit = 500
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}
