// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/authorscan/pkg/types"
)

// fakeResolver returns a fixed email and counts calls.
type fakeResolver struct {
	email types.ResolvedEmail
	found bool
	calls int
}

func (f *fakeResolver) Resolve(_ context.Context, _ types.Article) (types.ResolvedEmail, bool) {
	f.calls++
	return f.email, f.found
}

func smithLeeArticle() types.Article {
	return types.Article{
		ID:              "38000001",
		Title:           "Kinase inhibitors in practice",
		PublicationDate: "2023-Oct-05",
		Authors: []types.Author{
			{Name: "A. Smith", Affiliations: []string{"Dept. of Chemistry, Acme Pharma Inc."}},
			{Name: "B. Lee", Affiliations: []string{"University of Example, Dept. of Biology"}},
		},
	}
}

func TestAssembleSmithLee(t *testing.T) {
	res := &fakeResolver{
		email: types.ResolvedEmail{Address: "a.smith@acme.com", Tier: types.TierCitationIndex},
		found: true,
	}
	row, ok := Assemble(context.Background(), smithLeeArticle(), res)
	require.True(t, ok)
	assert.Equal(t, []string{"A. Smith"}, row.NonAcademicAuthors)
	assert.Equal(t, []string{"Dept. of Chemistry, Acme Pharma Inc."}, row.CompanyAffiliations)
	assert.Equal(t, "38000001", row.PubmedID)
	assert.Equal(t, "Kinase inhibitors in practice", row.Title)
	assert.Equal(t, "2023-Oct-05", row.PublicationDate)
	assert.Equal(t, "a.smith@acme.com", row.CorrespondingEmail)
	assert.Equal(t, types.TierCitationIndex, row.EmailTier)
	assert.Equal(t, 1, res.calls)
}

func TestAssembleExcludesAcademicOnly(t *testing.T) {
	res := &fakeResolver{found: true, email: types.ResolvedEmail{Address: "x@uni.edu"}}
	a := types.Article{
		ID: "1",
		Authors: []types.Author{
			{Name: "Lee, B", Affiliations: []string{"University of Example, Dept. of Biology"}},
			{Name: "Kim, C", Affiliations: []string{"Harvard Medical School, Boston"}},
			{Name: "Unknown"},
		},
	}
	_, ok := Assemble(context.Background(), a, res)
	assert.False(t, ok)
	assert.Zero(t, res.calls, "resolver must not run for excluded articles")
}

func TestAssembleCommercialDominates(t *testing.T) {
	a := types.Article{
		ID: "2",
		Authors: []types.Author{
			{Name: "Park, D", Affiliations: []string{"Department of Oncology, Genentech Inc., South San Francisco"}},
		},
	}
	row, ok := Assemble(context.Background(), a, nil)
	require.True(t, ok)
	assert.Equal(t, []string{"Park, D"}, row.NonAcademicAuthors)
	assert.Empty(t, row.CorrespondingEmail)
	assert.Equal(t, types.TierNone, row.EmailTier)
}

func TestAssembleDeduplicatesAffiliations(t *testing.T) {
	acme := "Acme Pharma Inc., Boston, MA"
	a := types.Article{
		ID: "3",
		Authors: []types.Author{
			{Name: "Smith, A", Affiliations: []string{acme, "Harvard University"}},
			{Name: "Jones, E", Affiliations: []string{"Beta Biotech GmbH", acme + " "}},
		},
	}
	row, ok := Assemble(context.Background(), a, &fakeResolver{})
	require.True(t, ok)
	assert.Equal(t, []string{"Smith, A", "Jones, E"}, row.NonAcademicAuthors)
	assert.Equal(t, []string{acme, "Beta Biotech GmbH"}, row.CompanyAffiliations)
	assert.Empty(t, row.CorrespondingEmail)
}

func TestAssembleKeepsAuthorsSharingAName(t *testing.T) {
	a := types.Article{
		ID: "4",
		Authors: []types.Author{
			{Name: "Wang, Y", Affiliations: []string{"Acme Pharma Inc."}},
			{Name: "Wang, Y", Affiliations: []string{"Beta Biotech GmbH"}},
			{Name: "Unknown", Affiliations: []string{"Gamma Therapeutics"}},
			{Name: "Unknown", Affiliations: []string{"Delta Laboratories"}},
			{Name: "Lee, B", Affiliations: []string{"University of Example"}},
		},
	}
	row, ok := Assemble(context.Background(), a, nil)
	require.True(t, ok)
	assert.Equal(t, []string{"Wang, Y", "Wang, Y", "Unknown", "Unknown"}, row.NonAcademicAuthors)
	assert.Len(t, row.CompanyAffiliations, 4)
}

func TestAssembleAllKeepsOrder(t *testing.T) {
	commercial := func(id string) types.Article {
		return types.Article{ID: id, Authors: []types.Author{{Name: "X", Affiliations: []string{"Acme Therapeutics"}}}}
	}
	academic := types.Article{ID: "20", Authors: []types.Author{{Name: "Y", Affiliations: []string{"Stanford University"}}}}

	res := &fakeResolver{}
	rows, err := AssembleAll(context.Background(), []types.Article{commercial("30"), academic, commercial("10")}, res)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "30", rows[0].PubmedID)
	assert.Equal(t, "10", rows[1].PubmedID)
	assert.Equal(t, 2, res.calls)
}

func TestAssembleAllEmptyAndCancelled(t *testing.T) {
	rows, err := AssembleAll(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rows, err = AssembleAll(ctx, []types.Article{smithLeeArticle()}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rows)
}
