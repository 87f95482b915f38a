// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/authorscan/internal/affiliation"
	"github.com/pdiddy/authorscan/internal/httputil"
	"github.com/pdiddy/authorscan/pkg/types"
)

// openAlexAPIBase is the OpenAlex works endpoint. Declared as a var so tests
// can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works/"

// openAlexResponse captures the fields we need from an OpenAlex work record.
type openAlexResponse struct {
	BestOALocation  *openAlexLocation `json:"best_oa_location"`
	PrimaryLocation *openAlexLocation `json:"primary_location"`
}

// openAlexLocation represents a hosting location in the OpenAlex response.
type openAlexLocation struct {
	PDFURL     string `json:"pdf_url"`
	LandingURL string `json:"landing_page_url"`
}

// OpenAlexLandingPage resolves a DOI to its open-access landing page via
// OpenAlex and reads the page's author email metadata. Publisher pages are
// fetched under the same throttle as the API.
type OpenAlexLandingPage struct {
	HTTP     *http.Client
	Config   types.ResolverConfig
	Throttle *httputil.Throttle
}

func (o *OpenAlexLandingPage) Name() string { return "openalex" }

func (o *OpenAlexLandingPage) Lookup(ctx context.Context, article types.Article) (string, error) {
	if article.DOI == "" {
		return "", nil
	}
	page, err := o.landingPage(ctx, article.DOI)
	if err != nil || page == "" {
		return "", err
	}

	body, err := get(ctx, o.HTTP, o.Throttle, page, o.Config.UserAgent, "text/html")
	if errors.Is(err, errNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("fetching landing page: %w", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("parsing landing page: %w", err)
	}
	return landingPageEmail(doc), nil
}

// landingPage returns the open-access landing page URL for doi, or the
// primary location when no open-access copy is known.
func (o *OpenAlexLandingPage) landingPage(ctx context.Context, doi string) (string, error) {
	apiURL := openAlexAPIBase + "https://doi.org/" + escapeDOI(doi)
	if o.Config.Mailto != "" {
		apiURL += "?mailto=" + url.QueryEscape(o.Config.Mailto)
	}

	body, err := get(ctx, o.HTTP, o.Throttle, apiURL, o.Config.UserAgent, "application/json")
	if errors.Is(err, errNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer body.Close()

	var oa openAlexResponse
	if err := json.NewDecoder(body).Decode(&oa); err != nil {
		return "", fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	for _, loc := range []*openAlexLocation{oa.BestOALocation, oa.PrimaryLocation} {
		if loc != nil && strings.HasPrefix(loc.LandingURL, "http") {
			return loc.LandingURL, nil
		}
	}
	return "", nil
}

// landingPageEmail prefers the Highwire citation_author_email meta tag,
// then the first mailto link on the page.
func landingPageEmail(doc *goquery.Document) string {
	var found string
	doc.Find(`meta[name="citation_author_email"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found = affiliation.ExtractEmail(s.AttrOr("content", ""))
		return found == ""
	})
	if found != "" {
		return found
	}
	doc.Find(`a[href^="mailto:"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href := strings.TrimPrefix(s.AttrOr("href", ""), "mailto:")
		if i := strings.IndexByte(href, '?'); i >= 0 {
			href = href[:i]
		}
		if unescaped, err := url.PathUnescape(href); err == nil {
			href = unescaped
		}
		found = affiliation.ExtractEmail(href)
		return found == ""
	})
	return found
}
