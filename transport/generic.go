package transport

import (
	"context"
	"net/http"
)

// Get issues a GET and returns the decoded body as T
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: path}, &out)
	return out, err
}

// Post issues a JSON POST and returns the decoded body as T
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, &out)
	return out, err
}

// Delete issues a DELETE and returns the decoded body as T
func Delete[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, &out)
	return out, err
}

// PostMultipart issues a multipart POST and returns the decoded body as T
func PostMultipart[T any](ctx context.Context, c *Client, path string, form *Form) (T, error) {
	var out T
	err := c.PostMultipart(ctx, path, form, &out)
	return out, err
}

// Send runs an arbitrary request and returns the decoded body as T
func Send[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var out T
	err := c.Do(ctx, req, &out)
	return out, err
}
