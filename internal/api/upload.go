package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
)

// Uploads posts files to the API's dedicated upload endpoints.
type Uploads struct {
	client *Client
	field  string
}

// NewUploads creates an upload client. field is the multipart form field the
// API reads the file from.
func NewUploads(c *Client, field string) *Uploads {
	if field == "" {
		field = "file"
	}
	return &Uploads{client: c, field: field}
}

// Upload sends r as multipart/form-data to endpoint and returns the link the
// API stored the file under.
func (u *Uploads) Upload(ctx context.Context, endpoint, filename string, r io.Reader) (string, error) {
	req := u.client.http.R().
		SetContext(ctx).
		SetFileReader(u.field, filename, r)

	body, err := u.client.send(ctx, req, http.MethodPost, endpoint)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}

	link := firstString(gjson.ParseBytes(body), "data.url", "data.link", "data.location", "url", "link", "data")
	if link == "" {
		return "", fmt.Errorf("upload %s: %w", filename, decodeError(http.StatusOK, errors.New("no link in response")))
	}
	return link, nil
}
