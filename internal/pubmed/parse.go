// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/authorscan/pkg/types"
)

// ErrMissingPMID marks a record that decoded but carries no PMID.
var ErrMissingPMID = errors.New("record has no PMID")

// RecordError describes one <PubmedArticle> that could not be used.
type RecordError struct {
	// Index is the zero-based position of the record in the response.
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

var (
	recordOpen  = []byte("<PubmedArticle")
	recordClose = []byte("</PubmedArticle>")
)

// ParseArticleSet decodes an EFetch PubmedArticleSet document. Each
// <PubmedArticle> is decoded on its own, so a malformed record is
// reported in errs and skipped while the others are returned in order.
func ParseArticleSet(data []byte) (articles []types.Article, errs []error) {
	for i, chunk := range splitRecords(data) {
		var rec pubmedArticle
		if err := xml.Unmarshal(chunk, &rec); err != nil {
			errs = append(errs, &RecordError{Index: i, Err: err})
			continue
		}
		a, err := rec.toArticle()
		if err != nil {
			errs = append(errs, &RecordError{Index: i, Err: err})
			continue
		}
		articles = append(articles, a)
	}
	return articles, errs
}

// splitRecords cuts data into one byte slice per <PubmedArticle> element.
// A record runs until the next record starts, trimmed to its last closing
// tag, so an unterminated record cannot swallow the one after it.
func splitRecords(data []byte) [][]byte {
	var starts []int
	for off := 0; off < len(data); {
		i := bytes.Index(data[off:], recordOpen)
		if i < 0 {
			break
		}
		pos := off + i
		next := pos + len(recordOpen)
		// Skip <PubmedArticleSet> and other longer names.
		if next < len(data) && (data[next] == '>' || isXMLSpace(data[next])) {
			starts = append(starts, pos)
		}
		off = next
	}

	records := make([][]byte, 0, len(starts))
	for i, start := range starts {
		end := len(data)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		chunk := data[start:end]
		if j := bytes.LastIndex(chunk, recordClose); j >= 0 {
			chunk = chunk[:j+len(recordClose)]
		}
		records = append(records, chunk)
	}
	return records
}

func isXMLSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// PubMed EFetch XML structures.
type pubmedArticle struct {
	XMLName  xml.Name        `xml:"PubmedArticle"`
	Citation medlineCitation `xml:"MedlineCitation"`
	Data     pubmedData      `xml:"PubmedData"`
}

type medlineCitation struct {
	PMID    string      `xml:"PMID"`
	Article articleInfo `xml:"Article"`
}

type articleInfo struct {
	Title       mixedText     `xml:"ArticleTitle"`
	PubDate     pubDate       `xml:"Journal>JournalIssue>PubDate"`
	Authors     []authorEntry `xml:"AuthorList>Author"`
	ELocationID []eLocationID `xml:"ELocationID"`
}

type pubDate struct {
	Year        string `xml:"Year"`
	Month       string `xml:"Month"`
	Day         string `xml:"Day"`
	MedlineDate string `xml:"MedlineDate"`
}

type authorEntry struct {
	LastName          string      `xml:"LastName"`
	ForeName          string      `xml:"ForeName"`
	Initials          string      `xml:"Initials"`
	CollectiveName    mixedText   `xml:"CollectiveName"`
	Affiliations      []mixedText `xml:"AffiliationInfo>Affiliation"`
	Identifiers       []attrValue `xml:"Identifier"`
	ElectronicAddress []string    `xml:"ElectronicAddress"`
}

type eLocationID struct {
	Type  string `xml:"EIdType,attr"`
	Valid string `xml:"ValidYN,attr"`
	Value string `xml:",chardata"`
}

type attrValue struct {
	Source string `xml:"Source,attr"`
	Value  string `xml:",chardata"`
}

type pubmedData struct {
	ArticleIDs []articleID `xml:"ArticleIdList>ArticleId"`
}

type articleID struct {
	Type  string `xml:"IdType,attr"`
	Value string `xml:",chardata"`
}

// mixedText collects all character data of an element, including text
// inside inline markup such as <i> or <sup>, with whitespace collapsed.
type mixedText string

func (m *mixedText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				*m = mixedText(strings.Join(strings.Fields(b.String()), " "))
				return nil
			}
			depth--
		}
	}
}

func (r pubmedArticle) toArticle() (types.Article, error) {
	pmid := strings.TrimSpace(r.Citation.PMID)
	if pmid == "" {
		return types.Article{}, ErrMissingPMID
	}
	info := r.Citation.Article

	a := types.Article{
		ID:              pmid,
		Title:           string(info.Title),
		PublicationDate: info.PubDate.String(),
	}
	for _, entry := range info.Authors {
		a.Authors = append(a.Authors, entry.toAuthor())
	}

	for _, id := range r.Data.ArticleIDs {
		v := strings.TrimSpace(id.Value)
		switch strings.ToLower(id.Type) {
		case "doi":
			if a.DOI == "" {
				a.DOI = NormalizeDOI(v)
			}
		case "pmc":
			if a.PMCID == "" {
				a.PMCID = v
			}
		}
	}
	if a.DOI == "" {
		for _, loc := range info.ELocationID {
			if strings.EqualFold(loc.Type, "doi") && loc.Valid != "N" {
				a.DOI = NormalizeDOI(loc.Value)
				break
			}
		}
	}
	return a, nil
}

// String joins the date parts present as "Year-Month-Day", falling back
// to the free-form MedlineDate.
func (p pubDate) String() string {
	var parts []string
	for _, s := range []string{p.Year, p.Month, p.Day} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return strings.TrimSpace(p.MedlineDate)
	}
	return strings.Join(parts, "-")
}

func (e authorEntry) toAuthor() types.Author {
	au := types.Author{Name: e.name()}
	for _, aff := range e.Affiliations {
		if s := string(aff); s != "" {
			au.Affiliations = append(au.Affiliations, s)
		}
	}
	for _, id := range e.Identifiers {
		if strings.EqualFold(id.Source, "email") && strings.TrimSpace(id.Value) != "" {
			au.Email = strings.TrimSpace(id.Value)
		}
	}
	for _, addr := range e.ElectronicAddress {
		if addr = strings.TrimSpace(addr); addr != "" {
			au.Email = addr
		}
	}
	return au
}

// name returns "LastName, Initials", then LastName, then the collective
// name, then "Unknown".
func (e authorEntry) name() string {
	last := strings.TrimSpace(e.LastName)
	initials := strings.TrimSpace(e.Initials)
	switch {
	case last != "" && initials != "":
		return last + ", " + initials
	case last != "":
		return last
	case e.CollectiveName != "":
		return string(e.CollectiveName)
	default:
		return "Unknown"
	}
}

// NormalizeDOI strips resolver prefixes from a DOI and trims whitespace.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	lower := strings.ToLower(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimSpace(doi[len(prefix):])
		}
	}
	return doi
}
