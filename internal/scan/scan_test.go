// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/authorscan/internal/pubmed"
	"github.com/pdiddy/authorscan/pkg/types"
)

type fakeFetcher struct {
	ids        []string
	searchErr  error
	articles   []types.Article
	fetchErr   error
	fetchCalls int
}

func (f *fakeFetcher) Search(_ context.Context, _ string) ([]string, error) {
	return f.ids, f.searchErr
}

func (f *fakeFetcher) FetchDetails(_ context.Context, _ []string) ([]types.Article, error) {
	f.fetchCalls++
	return f.articles, f.fetchErr
}

type fakeResolver struct {
	calls []string
}

func (f *fakeResolver) Resolve(_ context.Context, a types.Article) (types.ResolvedEmail, bool) {
	f.calls = append(f.calls, a.ID)
	if a.ID == "1" {
		return types.ResolvedEmail{Address: "lead@acme.com", Tier: types.TierCitationIndex}, true
	}
	return types.ResolvedEmail{}, false
}

func article(id, aff string) types.Article {
	return types.Article{
		ID:      id,
		Title:   "Article " + id,
		Authors: []types.Author{{Name: "Author " + id, Affiliations: []string{aff}}},
	}
}

func TestRunZeroResults(t *testing.T) {
	f := &fakeFetcher{}
	s := &Scanner{Fetcher: f, Resolver: &fakeResolver{}}

	res, err := s.Run(context.Background(), "nothing matches this")
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.NotNil(t, res.Rows)
	assert.Zero(t, res.Matched)
	assert.Zero(t, f.fetchCalls)
}

func TestRunKeepsFetchOrder(t *testing.T) {
	f := &fakeFetcher{
		ids: []string{"3", "2", "1"},
		articles: []types.Article{
			article("3", "Beta Biotech GmbH"),
			article("2", "University of Example"),
			article("1", "Acme Pharma Inc."),
		},
	}
	r := &fakeResolver{}
	s := &Scanner{Fetcher: f, Resolver: r}

	res, err := s.Run(context.Background(), "kinase")
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "3", res.Rows[0].PubmedID)
	assert.Equal(t, "1", res.Rows[1].PubmedID)
	assert.Equal(t, "lead@acme.com", res.Rows[1].CorrespondingEmail)
	assert.Equal(t, []string{"3", "1"}, r.calls)
	assert.Equal(t, 3, res.Matched)
	assert.Equal(t, 3, res.Fetched)
	assert.Equal(t, 1, res.Excluded())
	assert.Equal(t, 1, res.WithEmail)
}

func TestRunSearchFailure(t *testing.T) {
	f := &fakeFetcher{searchErr: pubmed.ErrSearchUnavailable}
	s := &Scanner{Fetcher: f}

	_, err := s.Run(context.Background(), "kinase")
	assert.ErrorIs(t, err, pubmed.ErrSearchUnavailable)
	assert.ErrorContains(t, err, "searching PubMed")
}

func TestRunFetchCancelled(t *testing.T) {
	f := &fakeFetcher{ids: []string{"1"}, fetchErr: context.Canceled}
	s := &Scanner{Fetcher: f}

	_, err := s.Run(context.Background(), "kinase")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunCancelledDuringAssembly(t *testing.T) {
	f := &fakeFetcher{ids: []string{"1"}, articles: []types.Article{article("1", "Acme Pharma Inc.")}}
	r := &fakeResolver{}
	s := &Scanner{Fetcher: f, Resolver: r}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Run(ctx, "kinase")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.calls)
}
