package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
)

// maxDownloadSize caps an export body held in memory.
var maxDownloadSize int64 = 32 << 20

// Attachment is a downloaded file.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Get decodes GET path into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

// Post sends in as JSON and decodes the response into out (if non-nil).
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, in, out)
}

// Patch sends a partial update.
func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, nil, in, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Download fetches a binary response. The file name comes from the
// Content-Disposition header, falling back to fallbackName.
func (c *Client) Download(ctx context.Context, path string, query url.Values, fallbackName string) (*Attachment, error) {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > maxDownloadSize {
		return nil, fmt.Errorf("read %s: %w (limit %d bytes)", path, ErrTooLarge, maxDownloadSize)
	}

	name := fallbackName
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}

	return &Attachment{Name: name, ContentType: resp.Header.Get("Content-Type"), Data: data}, nil
}
