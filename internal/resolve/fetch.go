// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/authorscan/internal/httputil"
)

// maxBodyBytes bounds how much of a response body a lookup will read.
const maxBodyBytes = 8 << 20

// errNotFound is returned for HTTP 404, which every source uses for "no
// record for this identifier".
var errNotFound = errors.New("record not found")

// get waits on throttle, performs a GET with 429 retry, and returns the
// body of a 200 response. The caller closes the returned body.
func get(ctx context.Context, client *http.Client, throttle *httputil.Throttle, rawURL, userAgent, accept string) (io.ReadCloser, error) {
	if err := throttle.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return struct {
			io.Reader
			io.Closer
		}{io.LimitReader(resp.Body, maxBodyBytes), resp.Body}, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, errNotFound
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL.Host)
	}
}

// escapeDOI escapes a DOI for use in a URL path. The prefix/suffix slashes
// stay literal; '#', '?' and other reserved characters are encoded.
func escapeDOI(doi string) string {
	return strings.ReplaceAll(url.PathEscape(doi), "%2F", "/")
}
