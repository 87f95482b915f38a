// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scan runs one query end to end: search PubMed, fetch the
// matching records, and assemble report rows for articles with a
// commercial author. Articles are processed one at a time in fetch order.
package scan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pdiddy/authorscan/internal/report"
	"github.com/pdiddy/authorscan/pkg/types"
)

// Fetcher retrieves article ids and records. *pubmed.Client implements it.
type Fetcher interface {
	Search(ctx context.Context, query string) ([]string, error)
	FetchDetails(ctx context.Context, ids []string) ([]types.Article, error)
}

// Result holds the outcome of a scan.
type Result struct {
	Query     string
	Matched   int // ids returned by the search
	Fetched   int // records parsed
	WithEmail int
	Rows      []types.ReportRow
}

// Excluded returns the number of fetched articles with no commercial author.
func (r Result) Excluded() int {
	return r.Fetched - len(r.Rows)
}

// Scanner wires a fetcher to an email resolver.
type Scanner struct {
	Fetcher  Fetcher
	Resolver report.EmailResolver
	Logger   *slog.Logger
}

func (s *Scanner) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Run scans query. Zero matches yield an empty result and no error; only
// search failures and context cancellation are returned.
func (s *Scanner) Run(ctx context.Context, query string) (Result, error) {
	result := Result{Query: query, Rows: []types.ReportRow{}}
	log := s.logger()

	ids, err := s.Fetcher.Search(ctx, query)
	if err != nil {
		return result, fmt.Errorf("searching PubMed: %w", err)
	}
	result.Matched = len(ids)
	if len(ids) == 0 {
		log.Info("no articles matched the query")
		return result, nil
	}

	articles, err := s.Fetcher.FetchDetails(ctx, ids)
	result.Fetched = len(articles)
	if err != nil {
		return result, fmt.Errorf("fetching article details: %w", err)
	}
	log.Info("fetched article details", "requested", len(ids), "parsed", len(articles))

	for i, a := range articles {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		row, ok := report.Assemble(ctx, a, s.Resolver)
		if !ok {
			log.Debug("no commercial author", "pmid", a.ID)
			continue
		}
		if row.CorrespondingEmail != "" {
			result.WithEmail++
		}
		result.Rows = append(result.Rows, row)
		log.Debug("article included", "pmid", a.ID, "progress", fmt.Sprintf("%d/%d", i+1, len(articles)),
			"authors", len(row.NonAcademicAuthors), "email_tier", row.EmailTier.String())
	}

	log.Info("scan summary", "matched", result.Matched, "fetched", result.Fetched,
		"included", len(result.Rows), "excluded", result.Excluded(), "with_email", result.WithEmail)
	return result, nil
}
