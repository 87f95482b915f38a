// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report joins fetched articles with affiliation verdicts and
// resolved emails into report rows, and renders those rows as CSV, a
// console table, JSON, or YAML.
package report

import (
	"context"
	"strings"

	"github.com/pdiddy/authorscan/internal/affiliation"
	"github.com/pdiddy/authorscan/pkg/types"
)

// EmailResolver finds a corresponding-author email for an article.
type EmailResolver interface {
	Resolve(ctx context.Context, article types.Article) (types.ResolvedEmail, bool)
}

// Assemble builds the report row for article. Every author record with a
// commercial affiliation contributes its name, even when names repeat;
// affiliations are deduplicated. It returns false when no
// author has a commercial affiliation; the resolver is called only for
// included articles, at most once. A nil resolver leaves the email empty.
func Assemble(ctx context.Context, article types.Article, resolver EmailResolver) (types.ReportRow, bool) {
	var (
		authors      []string
		affiliations []string
		seenAff      = make(map[string]bool)
	)
	for _, au := range article.Authors {
		nonAcademic := false
		for _, aff := range au.Affiliations {
			if !affiliation.IsNonAcademic(aff) {
				continue
			}
			nonAcademic = true
			aff = strings.TrimSpace(aff)
			if !seenAff[aff] {
				seenAff[aff] = true
				affiliations = append(affiliations, aff)
			}
		}
		if nonAcademic {
			authors = append(authors, au.Name)
		}
	}
	if len(authors) == 0 {
		return types.ReportRow{}, false
	}

	row := types.ReportRow{
		PubmedID:            article.ID,
		Title:               article.Title,
		PublicationDate:     article.PublicationDate,
		NonAcademicAuthors:  authors,
		CompanyAffiliations: affiliations,
	}
	if resolver != nil {
		if email, ok := resolver.Resolve(ctx, article); ok {
			row.CorrespondingEmail = email.Address
			row.EmailTier = email.Tier
		}
	}
	return row, true
}

// AssembleAll assembles every article in order, dropping excluded ones.
// It stops early and returns ctx.Err() with the rows built so far when the
// context ends.
func AssembleAll(ctx context.Context, articles []types.Article, resolver EmailResolver) ([]types.ReportRow, error) {
	rows := make([]types.ReportRow, 0, len(articles))
	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		if row, ok := Assemble(ctx, a, resolver); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
