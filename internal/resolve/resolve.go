// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve finds a corresponding-author email for an article by
// trying, in order, the article's own metadata, a citation index
// (Crossref), and open-access aggregators (Europe PMC, OpenAlex). The
// first address found wins; finding none is a normal outcome.
package resolve

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/pdiddy/authorscan/internal/affiliation"
	"github.com/pdiddy/authorscan/internal/httputil"
	"github.com/pdiddy/authorscan/pkg/types"
)

const (
	defaultCitationDelay   = time.Second
	defaultAggregatorDelay = time.Second
)

// Lookup is one network source of the chain. Lookup returns "" with a nil
// error when the source has no email for the article.
type Lookup interface {
	Name() string
	Lookup(ctx context.Context, article types.Article) (string, error)
}

// Resolver runs the email fallback chain for one article at a time.
type Resolver struct {
	// CitationIndex is queried when the article metadata has no email.
	// Nil disables the tier.
	CitationIndex Lookup

	// Aggregators are tried in order after the citation index. Empty
	// disables the tier.
	Aggregators []Lookup

	Logger *slog.Logger
}

// New builds the standard chain from configuration: Crossref as citation
// index, Europe PMC and (optionally) OpenAlex landing pages as
// aggregators. Each service gets its own throttle.
func New(client *http.Client, cfg types.ResolverConfig, clock httputil.Clock) *Resolver {
	if cfg.CitationDelay <= 0 {
		cfg.CitationDelay = defaultCitationDelay
	}
	if cfg.AggregatorDelay <= 0 {
		cfg.AggregatorDelay = defaultAggregatorDelay
	}

	r := &Resolver{}
	if cfg.EnableCitationIndex {
		r.CitationIndex = &CrossRef{
			HTTP:     client,
			Config:   cfg,
			Throttle: httputil.NewThrottle(cfg.CitationDelay, clock),
		}
	}
	if cfg.EnableAggregator {
		r.Aggregators = append(r.Aggregators, &EuropePMC{
			HTTP:     client,
			Config:   cfg,
			Throttle: httputil.NewThrottle(cfg.AggregatorDelay, clock),
		})
		if cfg.ScrapeLandingPages {
			r.Aggregators = append(r.Aggregators, &OpenAlexLandingPage{
				HTTP:     client,
				Config:   cfg,
				Throttle: httputil.NewThrottle(cfg.AggregatorDelay, clock),
			})
		}
	}
	return r
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Resolve returns the first email found for article and the tier that
// produced it. Network failures are logged at debug level and treated as
// "no email from this source".
func (r *Resolver) Resolve(ctx context.Context, article types.Article) (types.ResolvedEmail, bool) {
	if addr := MetadataEmail(article); addr != "" {
		return types.ResolvedEmail{Address: addr, Tier: types.TierArticleMetadata, Source: "pubmed"}, true
	}
	if !article.HasDOI() {
		return types.ResolvedEmail{}, false
	}

	if r.CitationIndex != nil {
		if addr := r.try(ctx, r.CitationIndex, article); addr != "" {
			return types.ResolvedEmail{Address: addr, Tier: types.TierCitationIndex, Source: r.CitationIndex.Name()}, true
		}
	}
	for _, agg := range r.Aggregators {
		if addr := r.try(ctx, agg, article); addr != "" {
			return types.ResolvedEmail{Address: addr, Tier: types.TierOpenAccessAggregator, Source: agg.Name()}, true
		}
	}
	return types.ResolvedEmail{}, false
}

func (r *Resolver) try(ctx context.Context, l Lookup, article types.Article) string {
	if ctx.Err() != nil {
		return ""
	}
	raw, err := l.Lookup(ctx, article)
	if err != nil {
		r.logger().Debug("email lookup failed", "source", l.Name(), "pmid", article.ID, "doi", article.DOI, "error", err)
		return ""
	}
	addr := affiliation.ExtractEmail(raw)
	if addr == "" && raw != "" {
		r.logger().Debug("discarding malformed email", "source", l.Name(), "pmid", article.ID, "value", raw)
	}
	return addr
}

// MetadataEmail scans the article's own author records for an email: an
// address inside an affiliation that mentions correspondence comes first,
// then author email fields and affiliation addresses in author order.
func MetadataEmail(article types.Article) string {
	var first string
	for _, au := range article.Authors {
		if first == "" && au.Email != "" {
			first = affiliation.ExtractEmail(au.Email)
		}
		for _, aff := range au.Affiliations {
			addr := affiliation.ExtractEmail(aff)
			if addr == "" {
				continue
			}
			if affiliation.MentionsCorrespondence(aff) {
				return addr
			}
			if first == "" {
				first = addr
			}
		}
	}
	return first
}
