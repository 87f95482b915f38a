// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/authorscan/pkg/types"
)

func sampleRows() []types.ReportRow {
	return []types.ReportRow{
		{
			PubmedID:            "38000001",
			Title:               "Kinase inhibitors, a review",
			PublicationDate:     "2023-Oct-05",
			NonAcademicAuthors:  []string{"Smith, A", "Jones, E"},
			CompanyAffiliations: []string{"Acme Pharma Inc., Boston", "Beta Biotech GmbH"},
			CorrespondingEmail:  "a.smith@acme.com",
			EmailTier:           types.TierArticleMetadata,
		},
		{
			PubmedID:            "38000002",
			Title:               "Assay development",
			PublicationDate:     "2022",
			NonAcademicAuthors:  []string{"Park, D"},
			CompanyAffiliations: []string{"Genentech Inc."},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(sampleRows(), &buf, DefaultSeparator))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, "PubmedID,Title,Publication Date,Non-academic Author(s),Company Affiliation(s),Corresponding Author Email", lines[0])

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{
		"38000001",
		"Kinase inhibitors, a review",
		"2023-Oct-05",
		"Smith, A; Jones, E",
		"Acme Pharma Inc., Boston; Beta Biotech GmbH",
		"a.smith@acme.com",
	}, records[1])
	assert.Equal(t, "", records[2][5])
}

func TestWriteCSVHeaderOnlyWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(nil, &buf, DefaultSeparator))
	assert.Equal(t, strings.Join(CSVHeader, ",")+"\n", buf.String())
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(sampleRows(), &buf, DefaultSeparator)
	out := buf.String()
	assert.Contains(t, out, "PMID")
	assert.Contains(t, out, "38000001")
	assert.Contains(t, out, "a.smith@acme.com (article_metadata)")
	assert.Contains(t, out, "2 articles, 1 with email")
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(nil, &buf, DefaultSeparator)
	assert.Equal(t, "No matching articles found.\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(sampleRows(), &buf))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "38000001", got[0]["pubmed_id"])
	assert.Equal(t, "article_metadata", got[0]["email_tier"])
	assert.Equal(t, "none", got[1]["email_tier"])

	buf.Reset()
	require.NoError(t, FormatJSON(nil, &buf))
	assert.Equal(t, "[]\n", buf.String())
}

func TestFormatYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatYAML(sampleRows(), &buf))

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Kinase inhibitors, a review", got[0]["title"])
	assert.Equal(t, "article_metadata", got[0]["email_tier"])
	assert.Equal(t, []any{"Park, D"}, got[1]["non_academic_authors"])
}

func TestWriteDispatch(t *testing.T) {
	tests := []struct {
		format types.OutputFormat
		prefix string
	}{
		{types.FormatCSV, "PubmedID,"},
		{types.FormatTable, "PMID"},
		{"", "PMID"},
		{types.FormatJSON, "["},
		{types.FormatYAML, "- pubmed_id:"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(sampleRows(), &buf, types.ReportConfig{Format: tt.format}))
			assert.True(t, strings.HasPrefix(buf.String(), tt.prefix), buf.String())
		})
	}

	err := Write(nil, &bytes.Buffer{}, types.ReportConfig{Format: "xml"})
	assert.ErrorContains(t, err, `unknown output format "xml"`)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "Université...", truncate("Université de Lyon", 13))
}
