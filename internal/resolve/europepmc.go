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

// europePMCAPIBase is the Europe PMC REST root. Declared as a var so tests
// can substitute an httptest server.
var europePMCAPIBase = "https://www.ebi.ac.uk/europepmc/webservices/rest/"

// europePMCPageSize is how many search results are inspected per query.
const europePMCPageSize = 5

// JATS selectors for corresponding-author addresses, most specific first.
var jatsEmailSelectors = []string{
	"corresp email",
	"contrib[corresp='yes'] email",
	"author-notes email",
	"email",
}

// EuropePMC looks up emails through the Europe PMC open-access aggregator:
// the core search record, the JATS full text for open-access articles, and
// the per-article emails endpoint.
type EuropePMC struct {
	HTTP     *http.Client
	Config   types.ResolverConfig
	Throttle *httputil.Throttle
}

func (e *EuropePMC) Name() string { return "europepmc" }

// Lookup searches by DOI, falling back to an exact title search when the
// DOI is unknown to Europe PMC. Errors from individual requests are
// returned joined only when no request produced an email.
func (e *EuropePMC) Lookup(ctx context.Context, article types.Article) (string, error) {
	var errs []error

	results, err := e.searchArticle(ctx, article)
	if err != nil {
		errs = append(errs, err)
	}
	for _, r := range results {
		if addr := r.email(); addr != "" {
			return addr, nil
		}
	}

	for _, pmcid := range openAccessIDs(article, results) {
		addr, err := e.fullTextEmail(ctx, pmcid)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if addr != "" {
			return addr, nil
		}
	}

	if article.ID != "" {
		addr, err := e.emailsEndpoint(ctx, article.ID)
		if err != nil {
			errs = append(errs, err)
		} else if addr != "" {
			return addr, nil
		}
	}
	return "", errors.Join(errs...)
}

func (e *EuropePMC) searchArticle(ctx context.Context, article types.Article) ([]europePMCResult, error) {
	if article.DOI != "" {
		results, err := e.search(ctx, fmt.Sprintf("DOI:%q", article.DOI))
		if err != nil || len(results) > 0 {
			return results, err
		}
	}
	title := strings.TrimSpace(strings.ReplaceAll(article.Title, `"`, ""))
	if title == "" {
		return nil, nil
	}
	return e.search(ctx, `TITLE:"`+title+`"`)
}

func (e *EuropePMC) search(ctx context.Context, query string) ([]europePMCResult, error) {
	params := url.Values{
		"query":      {query},
		"format":     {"json"},
		"resultType": {"core"},
		"pageSize":   {fmt.Sprint(europePMCPageSize)},
	}
	if e.Config.Mailto != "" {
		params.Set("email", e.Config.Mailto)
	}

	body, err := get(ctx, e.HTTP, e.Throttle, europePMCAPIBase+"search?"+params.Encode(), e.Config.UserAgent, "application/json")
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Europe PMC search: %w", err)
	}
	defer body.Close()

	var sr europePMCSearchResponse
	if err := json.NewDecoder(body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Europe PMC search response: %w", err)
	}
	return sr.ResultList.Result, nil
}

// fullTextEmail scans the JATS full text of an open-access article for a
// corresponding-author address.
func (e *EuropePMC) fullTextEmail(ctx context.Context, pmcid string) (string, error) {
	body, err := get(ctx, e.HTTP, e.Throttle, europePMCAPIBase+url.PathEscape(pmcid)+"/fullTextXML", e.Config.UserAgent, "application/xml")
	if errors.Is(err, errNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("Europe PMC full text %s: %w", pmcid, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("parsing full text %s: %w", pmcid, err)
	}
	return jatsEmail(doc), nil
}

func jatsEmail(doc *goquery.Document) string {
	for _, sel := range jatsEmailSelectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			found = affiliation.ExtractEmail(s.Text())
			if found == "" {
				if href, ok := s.Attr("xlink:href"); ok {
					found = affiliation.ExtractEmail(href)
				}
			}
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func (e *EuropePMC) emailsEndpoint(ctx context.Context, pmid string) (string, error) {
	body, err := get(ctx, e.HTTP, e.Throttle, europePMCAPIBase+"MED/"+url.PathEscape(pmid)+"/emails/json", e.Config.UserAgent, "application/json")
	if errors.Is(err, errNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("Europe PMC emails %s: %w", pmid, err)
	}
	defer body.Close()

	var er europePMCEmailsResponse
	if err := json.NewDecoder(body).Decode(&er); err != nil {
		return "", fmt.Errorf("parsing Europe PMC emails response: %w", err)
	}
	for _, addr := range er.EmailList.Email {
		if found := affiliation.ExtractEmail(addr); found != "" {
			return found, nil
		}
	}
	return "", nil
}

// openAccessIDs lists the PMCIDs whose full text may be fetched: the
// article's own PMCID, then any open-access search hits, without repeats.
func openAccessIDs(article types.Article, results []europePMCResult) []string {
	var ids []string
	seen := make(map[string]bool)
	add := func(id string) {
		id = strings.ToUpper(strings.TrimSpace(id))
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	add(article.PMCID)
	for _, r := range results {
		if r.IsOpenAccess == "Y" {
			add(r.PMCID)
		}
	}
	return ids
}

// Europe PMC JSON structures.
type europePMCSearchResponse struct {
	HitCount   int `json:"hitCount"`
	ResultList struct {
		Result []europePMCResult `json:"result"`
	} `json:"resultList"`
}

type europePMCResult struct {
	ID           string `json:"id"`
	PMID         string `json:"pmid"`
	PMCID        string `json:"pmcid"`
	DOI          string `json:"doi"`
	IsOpenAccess string `json:"isOpenAccess"`
	Affiliation  string `json:"affiliation"`
	AuthorList   struct {
		Author []europePMCAuthor `json:"author"`
	} `json:"authorList"`
}

type europePMCAuthor struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Affiliation string `json:"affiliation"`
	Details     struct {
		Affiliation []struct {
			Affiliation string `json:"affiliation"`
		} `json:"authorAffiliation"`
	} `json:"authorAffiliationDetailsList"`
}

type europePMCEmailsResponse struct {
	EmailList struct {
		Email []string `json:"email"`
	} `json:"emailList"`
}

// email checks author email fields, then author affiliations, then the
// record-level affiliation string.
func (r europePMCResult) email() string {
	for _, a := range r.AuthorList.Author {
		if addr := affiliation.ExtractEmail(a.Email); addr != "" {
			return addr
		}
	}
	for _, a := range r.AuthorList.Author {
		if addr := affiliation.ExtractEmail(a.Affiliation); addr != "" {
			return addr
		}
		for _, d := range a.Details.Affiliation {
			if addr := affiliation.ExtractEmail(d.Affiliation); addr != "" {
				return addr
			}
		}
	}
	return affiliation.ExtractEmail(r.Affiliation)
}
