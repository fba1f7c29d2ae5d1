package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Mutation is the outcome of a create, update or delete. Endpoints return
// either the record or a status/message envelope, so Record may be nil.
type Mutation[T any] struct {
	Record  *T
	Message string
}

// Resource is the list/get/create/update/delete family of one entity.
type Resource[T any] struct {
	client   *Client
	path     string
	envelope Envelope
	name     string
}

// NewResource binds an entity endpoint. path is relative to the client base
// URL, e.g. "/products".
func NewResource[T any](c *Client, name, path string, env Envelope) *Resource[T] {
	return &Resource[T]{
		client:   c,
		path:     "/" + strings.Trim(path, "/"),
		envelope: env,
		name:     name,
	}
}

// List fetches one page. page is 1-based.
func (r *Resource[T]) List(ctx context.Context, page, limit int) (Page[T], error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	body, err := r.client.do(ctx, http.MethodGet, r.path, q, nil)
	if err != nil {
		return Page[T]{}, fmt.Errorf("list %s: %w", r.name, err)
	}
	p, err := decodePage[T](r.envelope, body)
	if err != nil {
		return Page[T]{}, fmt.Errorf("list %s: %w", r.name, err)
	}
	return p, nil
}

// ErrIncomplete reports that All stopped at its row cap before reaching the
// total the API announced. The rows fetched so far are still returned.
var ErrIncomplete = errors.New("dataset exceeds the row limit")

// All fetches the complete dataset for client-paginated screens, at most
// limit rows. The API may serve fewer rows per page than asked for, so pages
// are requested until the announced total is reached.
func (r *Resource[T]) All(ctx context.Context, limit int) ([]T, error) {
	var rows []T
	for page := 1; ; page++ {
		p, err := r.List(ctx, page, limit)
		if err != nil {
			return nil, err
		}
		rows = append(rows, p.Items...)

		switch {
		case len(p.Items) == 0 || len(rows) >= p.Total:
			return rows, nil
		case limit > 0 && len(rows) >= limit:
			return rows[:limit], fmt.Errorf("list %s: %d of %d rows: %w", r.name, limit, p.Total, ErrIncomplete)
		}
	}
}

// Get fetches one record by id.
func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	body, err := r.client.do(ctx, http.MethodGet, r.itemPath(id), nil, nil)
	if err != nil {
		return zero, fmt.Errorf("get %s %s: %w", r.name, id, err)
	}
	rec, ok, err := decodeRecord[T](body)
	if err != nil {
		return zero, fmt.Errorf("get %s %s: %w", r.name, id, err)
	}
	if !ok {
		return zero, fmt.Errorf("get %s %s: %w", r.name, id,
			&Error{Kind: KindStatus, Status: http.StatusNotFound, Message: "Record not found"})
	}
	return rec, nil
}

// Create posts input as JSON.
func (r *Resource[T]) Create(ctx context.Context, input any) (Mutation[T], error) {
	body, err := r.client.do(ctx, http.MethodPost, r.path, nil, input)
	if err != nil {
		return Mutation[T]{}, fmt.Errorf("create %s: %w", r.name, err)
	}
	return mutation[T](body)
}

// Update replaces the record with id.
func (r *Resource[T]) Update(ctx context.Context, id string, input any) (Mutation[T], error) {
	body, err := r.client.do(ctx, http.MethodPut, r.itemPath(id), nil, input)
	if err != nil {
		return Mutation[T]{}, fmt.Errorf("update %s %s: %w", r.name, id, err)
	}
	return mutation[T](body)
}

// Delete removes the record with id.
func (r *Resource[T]) Delete(ctx context.Context, id string) (Mutation[T], error) {
	body, err := r.client.do(ctx, http.MethodDelete, r.itemPath(id), nil, nil)
	if err != nil {
		return Mutation[T]{}, fmt.Errorf("delete %s %s: %w", r.name, id, err)
	}
	return mutation[T](body)
}

func (r *Resource[T]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

func mutation[T any](body []byte) (Mutation[T], error) {
	rec, ok, err := decodeRecord[T](body)
	if err != nil {
		return Mutation[T]{}, err
	}
	m := Mutation[T]{}
	if ok {
		m.Record = &rec
	}
	if len(body) > 0 {
		m.Message = gjson.GetBytes(body, "message").String()
	}
	return m, nil
}
