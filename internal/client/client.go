// Package client is a Go client for the equipment dataset HTTP API.
package client

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds a single API call.
const DefaultTimeout = 2 * time.Minute

// Client calls the dataset API. It is safe for concurrent use once configured.
type Client struct {
	http *resty.Client
}

// New returns a client for the API rooted at baseURL, e.g. http://localhost:8000.
func New(baseURL string) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(DefaultTimeout).
		SetHeader("Accept", "application/json").
		SetAuthScheme("Token")
	return &Client{http: rc}
}

// SetToken sets the API token sent with every request. An empty token sends none.
func (c *Client) SetToken(token string) *Client {
	c.http.SetAuthToken(token)
	return c
}

// SetTimeout overrides DefaultTimeout.
func (c *Client) SetTimeout(d time.Duration) *Client {
	c.http.SetTimeout(d)
	return c
}

// Login exchanges credentials for a token and stores it on the client.
func (c *Client) Login(ctx context.Context, username, password string) (*Token, error) {
	var tok Token
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&tok).
		SetError(&APIError{}).
		Post("/api/api-token-auth/")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	c.SetToken(tok.Token)
	return &tok, nil
}

// Upload sends a CSV file and returns the created dataset.
func (c *Client) Upload(ctx context.Context, fileName string, data []byte) (*Dataset, error) {
	var ds Dataset
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", fileName, bytes.NewReader(data)).
		SetResult(&ds).
		SetError(&APIError{}).
		Post("/api/datasets/")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return &ds, nil
}

// List returns datasets newest first. A non-positive limit returns all.
func (c *Client) List(ctx context.Context, limit int) ([]Dataset, error) {
	req := c.http.R().SetContext(ctx)
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}

	var list []Dataset
	resp, err := req.SetResult(&list).SetError(&APIError{}).Get("/api/datasets/")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return list, nil
}

// Get returns one dataset.
func (c *Client) Get(ctx context.Context, id string) (*Dataset, error) {
	var ds Dataset
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&ds).
		SetError(&APIError{}).
		Get(datasetPath(id, ""))
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return &ds, nil
}

// RawData returns up to limit rows of the stored file. A non-positive limit
// uses the server default.
func (c *Client) RawData(ctx context.Context, id string, limit int) ([]Row, error) {
	req := c.http.R().SetContext(ctx)
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}

	var rows []Row
	resp, err := req.SetResult(&rows).SetError(&APIError{}).Get(datasetPath(id, "raw_data/"))
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return rows, nil
}

// DownloadReport fetches the PDF report. The returned name is taken from
// Content-Disposition.
func (c *Client) DownloadReport(ctx context.Context, id string) (name string, data []byte, err error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/pdf, application/json").
		SetError(&APIError{}).
		Get(datasetPath(id, "generate_pdf/"))
	if err := checkResponse(resp, err); err != nil {
		return "", nil, err
	}

	name = "report_" + id + ".pdf"
	if _, params, perr := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); perr == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return name, resp.Body(), nil
}

func datasetPath(id, suffix string) string {
	return "/api/datasets/" + url.PathEscape(id) + "/" + suffix
}

// checkResponse turns transport failures and non-2xx responses into errors.
func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if !resp.IsError() {
		return nil
	}

	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr == nil || apiErr.Message == "" {
		apiErr = &APIError{Message: http.StatusText(resp.StatusCode())}
	}
	apiErr.Status = resp.StatusCode()
	return apiErr
}
