package remote

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/antonholmquist/jason"
)

// httpClient is the shared request/response plumbing every adapter
// embeds. It mirrors bclientapi/bendoapi.go's Connection: a base URL, a
// bearer token applied per request, and a timeout so a stalled remote
// can't hang a command forever.
type httpClient struct {
	baseURL string
	token   string
	client  *http.Client

	// authHeader, when set, names the header the token is sent in
	// (e.g. "Authorization" for FigShare's "token <tok>" scheme). When
	// empty, the token is instead appended as an "access_token" query
	// parameter (Zenodo's scheme).
	authHeader string
}

func newHTTPClient(baseURL string) *httpClient {
	return &httpClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Minute, // arbitrary, matches bclientapi/bendoapi.go
		},
	}
}

func (c *httpClient) authenticate(token string) error {
	c.token = token
	return nil
}

// do issues req, injecting the token the way this adapter's API expects
// it, and returns the raw response for the caller to interpret.
func (c *httpClient) do(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		if c.authHeader != "" {
			req.Header.Set(c.authHeader, c.token)
		} else {
			q := req.URL.Query()
			q.Set("access_token", c.token)
			req.URL.RawQuery = q.Encode()
		}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, ErrNetwork
	}
	return resp, nil
}

// getJSON performs a GET and parses the body as a loose JSON object,
// matching bclientapi/bendoapi.go's doJasonGet — third-party API
// responses are walked field-by-field with jason rather than unmarshaled
// into static structs that would have to track each vendor's schema.
func (c *httpClient) getJSON(path string) (*jason.Object, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case 200:
		return jason.NewObjectFromReader(resp.Body)
	case 401, 403:
		return nil, ErrAuth
	case 404:
		return nil, ErrNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
}

// getJSONArray performs a GET expecting a top-level JSON array (used by
// search-style list endpoints on both FigShare and Zenodo).
func (c *httpClient) getJSONArray(path string) ([]*jason.Object, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case 200:
		v, err := jason.NewValueFromReader(resp.Body)
		if err != nil {
			return nil, err
		}
		items, err := v.Array()
		if err != nil {
			return nil, err
		}
		objs := make([]*jason.Object, 0, len(items))
		for _, item := range items {
			obj, err := item.Object()
			if err != nil {
				continue
			}
			objs = append(objs, obj)
		}
		return objs, nil
	case 401, 403:
		return nil, ErrAuth
	case 404:
		return nil, ErrNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
}

// postJSON POSTs a JSON-encoded body and parses the response the same
// way getJSON does.
func (c *httpClient) postJSON(path string, body interface{}) (*jason.Object, int, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case 200, 201, 202:
		obj, err := jason.NewObjectFromReader(resp.Body)
		return obj, resp.StatusCode, err
	case 401, 403:
		return nil, resp.StatusCode, ErrAuth
	case 404:
		return nil, resp.StatusCode, ErrNotFound
	case 409:
		return nil, resp.StatusCode, ErrAlreadyExists
	default:
		b, _ := io.ReadAll(resp.Body)
		return nil, resp.StatusCode, &APIError{Status: resp.StatusCode, Body: string(b)}
	}
}

// putJSON PUTs a JSON-encoded body and parses the response like postJSON.
func (c *httpClient) putJSON(path string, body interface{}) (*jason.Object, int, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequest(http.MethodPut, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case 200, 201, 202:
		obj, err := jason.NewObjectFromReader(resp.Body)
		return obj, resp.StatusCode, err
	case 401, 403:
		return nil, resp.StatusCode, ErrAuth
	case 404:
		return nil, resp.StatusCode, ErrNotFound
	default:
		b, _ := io.ReadAll(resp.Body)
		return nil, resp.StatusCode, &APIError{Status: resp.StatusCode, Body: string(b)}
	}
}

// putBytes PUTs the given content to an arbitrary (possibly pre-signed)
// URL, used for upload part transfers.
func (c *httpClient) putBytes(url string, body io.Reader) error {
	req, err := http.NewRequest(http.MethodPut, url, body)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	b, _ := io.ReadAll(resp.Body)
	return &APIError{Status: resp.StatusCode, Body: string(b)}
}
