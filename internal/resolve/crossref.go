// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/authorscan/internal/affiliation"
	"github.com/pdiddy/authorscan/internal/httputil"
	"github.com/pdiddy/authorscan/pkg/types"
)

// crossrefAPIBase is the CrossRef works endpoint. Declared as a var so tests
// can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works/"

// CrossRef looks up author emails in the Crossref work record for a DOI.
type CrossRef struct {
	HTTP     *http.Client
	Config   types.ResolverConfig
	Throttle *httputil.Throttle
}

func (c *CrossRef) Name() string { return "crossref" }

// Lookup returns the first author email in the Crossref record, or the
// first address embedded in an author affiliation. A DOI Crossref does not
// know is not an error.
func (c *CrossRef) Lookup(ctx context.Context, article types.Article) (string, error) {
	if article.DOI == "" {
		return "", nil
	}
	apiURL := crossrefAPIBase + escapeDOI(article.DOI)
	if c.Config.Mailto != "" {
		apiURL += "?mailto=" + url.QueryEscape(c.Config.Mailto)
	}

	body, err := get(ctx, c.HTTP, c.Throttle, apiURL, c.Config.UserAgent, "application/json")
	if errors.Is(err, errNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("CrossRef API request: %w", err)
	}
	defer body.Close()

	var cr crossrefResponse
	if err := json.NewDecoder(body).Decode(&cr); err != nil {
		return "", fmt.Errorf("parsing CrossRef response: %w", err)
	}
	return cr.Message.email(), nil
}

// CrossRef API JSON structures.
type crossrefResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefWork struct {
	Author []crossrefAuthor `json:"author"`
}

type crossrefAuthor struct {
	Given       string                `json:"given"`
	Family      string                `json:"family"`
	Sequence    string                `json:"sequence"`
	Email       stringList            `json:"email"`
	Affiliation []crossrefAffiliation `json:"affiliation"`
}

type crossrefAffiliation struct {
	Name string `json:"name"`
}

func (w crossrefWork) email() string {
	for _, a := range w.Author {
		for _, e := range a.Email {
			if addr := affiliation.ExtractEmail(e); addr != "" {
				return addr
			}
		}
	}
	for _, a := range w.Author {
		for _, aff := range a.Affiliation {
			if addr := affiliation.ExtractEmail(aff.Name); addr != "" {
				return addr
			}
		}
	}
	return ""
}

// stringList decodes a JSON value that is either a string or an array of
// strings. Crossref deposits use both shapes for author email.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one != "" {
			*s = stringList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}
