// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed fetches article records from the NCBI E-utilities API:
// ESearch for the ids matching a query, then EFetch for the records.
package pubmed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/authorscan/internal/httputil"
	"github.com/pdiddy/authorscan/pkg/types"
)

// E-utilities endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	esearchURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	efetchURL  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

const (
	DefaultRequestDelay        = 340 * time.Millisecond
	DefaultRequestDelayWithKey = 100 * time.Millisecond
	defaultPageSize            = 100
	defaultBatchSize           = 100
	defaultTool                = "authorscan"

	// maxSearchWindow is the ESearch limit on retstart+retmax for PubMed.
	maxSearchWindow = 10000
)

var (
	// ErrQueryRejected means ESearch refused the query itself.
	ErrQueryRejected = errors.New("query rejected by PubMed")

	// ErrSearchUnavailable means ESearch could not be reached or failed
	// on the server side.
	ErrSearchUnavailable = errors.New("PubMed search unavailable")
)

// Client queries PubMed. Every request waits on Throttle first.
type Client struct {
	HTTP     *http.Client
	Config   types.PubMedConfig
	Throttle *httputil.Throttle
	Logger   *slog.Logger
}

// NewClient fills configuration defaults and creates the request throttle.
func NewClient(httpClient *http.Client, cfg types.PubMedConfig, clock httputil.Clock) *Client {
	if cfg.RequestDelay <= 0 {
		cfg.RequestDelay = DefaultRequestDelay
		if cfg.APIKey != "" {
			cfg.RequestDelay = DefaultRequestDelayWithKey
		}
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Tool == "" {
		cfg.Tool = defaultTool
	}
	return &Client{
		HTTP:     httpClient,
		Config:   cfg,
		Throttle: httputil.NewThrottle(cfg.RequestDelay, clock),
	}
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// CleanQuery trims the query and replaces newlines and tabs with spaces.
// The query is otherwise passed to PubMed verbatim.
func CleanQuery(query string) string {
	return strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ", "\t", " ").Replace(query))
}

// Search returns the PMIDs matching query, paging through ESearch until
// all ids (or MaxResults of them) are collected. A failure on the first
// page is fatal; a failure on a later page ends paging with a warning and
// the ids collected so far.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	query = CleanQuery(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", ErrQueryRejected)
	}

	var ids []string
	total := -1
	for retstart := 0; total < 0 || retstart < total; {
		retmax := c.Config.PageSize
		if c.Config.MaxResults > 0 {
			if remaining := c.Config.MaxResults - len(ids); remaining < retmax {
				retmax = remaining
			}
		}
		if retstart+retmax > maxSearchWindow {
			retmax = maxSearchWindow - retstart
		}
		if retmax <= 0 {
			break
		}

		page, err := c.searchPage(ctx, query, retstart, retmax)
		if err != nil {
			if retstart == 0 || ctx.Err() != nil {
				return nil, err
			}
			c.logger().Warn("ESearch paging stopped early", "retstart", retstart, "error", err)
			break
		}
		if total < 0 {
			total = page.Count
			c.logger().Info("search matched", "count", total)
			if total > maxSearchWindow && c.Config.MaxResults == 0 {
				c.logger().Warn("PubMed returns at most the first results of a search; narrow the query to see all",
					"count", total, "limit", maxSearchWindow)
			}
		}
		if len(page.IDs) == 0 {
			break
		}
		ids = append(ids, page.IDs...)
		retstart += len(page.IDs)

		if retstart >= maxSearchWindow {
			break
		}
	}
	return ids, nil
}

type searchPage struct {
	Count int
	IDs   []string
}

func (c *Client) searchPage(ctx context.Context, query string, retstart, retmax int) (searchPage, error) {
	params := c.baseParams()
	params.Set("term", query)
	params.Set("retmode", "json")
	params.Set("retstart", strconv.Itoa(retstart))
	params.Set("retmax", strconv.Itoa(retmax))

	body, status, err := c.get(ctx, esearchURL, params)
	if err != nil {
		return searchPage{}, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}
	switch {
	case status >= 500:
		return searchPage{}, fmt.Errorf("%w: ESearch returned HTTP %d", ErrSearchUnavailable, status)
	case status != http.StatusOK:
		return searchPage{}, fmt.Errorf("%w: ESearch returned HTTP %d", ErrQueryRejected, status)
	}

	var er esearchResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return searchPage{}, fmt.Errorf("%w: parsing ESearch response: %v", ErrSearchUnavailable, err)
	}
	if msg := strings.TrimSpace(er.Result.Error); msg != "" {
		return searchPage{}, fmt.Errorf("%w: %s", ErrQueryRejected, msg)
	}

	count := 0
	if er.Result.Count != "" {
		count, err = strconv.Atoi(er.Result.Count)
		if err != nil {
			return searchPage{}, fmt.Errorf("%w: invalid ESearch count %q", ErrSearchUnavailable, er.Result.Count)
		}
	}
	return searchPage{Count: count, IDs: er.Result.IDList}, nil
}

// FetchDetails retrieves the records for ids in batches of BatchSize. A
// batch whose request fails is skipped with a warning; malformed records
// inside a batch are skipped individually. Only context cancellation is
// returned as an error.
func (c *Client) FetchDetails(ctx context.Context, ids []string) ([]types.Article, error) {
	var articles []types.Article
	for start := 0; start < len(ids); start += c.Config.BatchSize {
		end := start + c.Config.BatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		got, err := c.fetchBatch(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				return articles, ctx.Err()
			}
			c.logger().Warn("EFetch batch skipped", "first", batch[0], "size", len(batch), "error", err)
			continue
		}
		articles = append(articles, got...)
	}
	return articles, nil
}

func (c *Client) fetchBatch(ctx context.Context, ids []string) ([]types.Article, error) {
	params := c.baseParams()
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "xml")

	body, status, err := c.get(ctx, efetchURL, params)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("EFetch returned HTTP %d", status)
	}

	articles, errs := ParseArticleSet(body)
	for _, e := range errs {
		c.logger().Warn("skipping malformed PubMed record", "error", e)
	}
	c.logger().Debug("EFetch batch parsed", "requested", len(ids), "parsed", len(articles), "skipped", len(errs))
	return articles, nil
}

func (c *Client) baseParams() url.Values {
	params := url.Values{"db": {"pubmed"}}
	if c.Config.APIKey != "" {
		params.Set("api_key", c.Config.APIKey)
	}
	if c.Config.Tool != "" {
		params.Set("tool", c.Config.Tool)
	}
	if c.Config.Email != "" {
		params.Set("email", c.Config.Email)
	}
	return params
}

// get waits on the throttle, performs the request with 429 retry, and
// returns the body and status code.
func (c *Client) get(ctx context.Context, base string, params url.Values) ([]byte, int, error) {
	if err := c.Throttle.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	if c.Config.UserAgent != "" {
		req.Header.Set("User-Agent", c.Config.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("E-utilities request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading E-utilities response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// ESearch JSON structures.
type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count  string   `json:"count"`
	IDList []string `json:"idlist"`
	Error  string   `json:"ERROR"`
}
