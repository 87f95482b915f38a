// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package affiliation decides whether a free-text author affiliation names
// an academic institution, a commercial organization, or both.
//
// Terms are matched against a normalized copy of the text: case-folded,
// stripped of diacritics, with whitespace collapsed. A term ending in "*"
// matches any word starting with the term ("biotech*" matches
// "Biotechnology"); other terms match whole words or phrases only, so
// "inc" does not match "Princeton" and "s.a." does not match "U.S.A.".
package affiliation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/authorscan/pkg/types"
)

var academicTerms = []string{
	"universit*",
	"universidad",
	"college",
	"institut*",
	"school of medicine",
	"school*",
	"hospital*",
	"faculty",
	"department*",
	"center*",
	"centre*",
	"academ*",
	"clinic*",
	"national institutes",
}

// companyTerms is ordered: MatchedCompanyTerm reports the first entry that
// matches. The industry stems match anywhere inside a word ("Sunpharma",
// "Pharmaron"); legal forms match whole words only.
var companyTerms = []string{
	"*pharma*",
	"*biotech*",
	"therapeutics",
	"laboratories",
	"inc",
	"incorporated",
	"ltd",
	"limited",
	"llc",
	"gmbh",
	"corp",
	"corporation",
	"plc",
	"s.a.",
	"s.r.l.",
}

// AcademicTerms returns the academic term list in match order.
func AcademicTerms() []string { return termTexts(academicTerms) }

// CompanyTerms returns the company term list in match order.
func CompanyTerms() []string { return termTexts(companyTerms) }

func termTexts(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = strings.Trim(t, "*")
	}
	return out
}

// Classify returns the verdict for one affiliation string. Empty text
// yields the zero verdict. Classify is pure and safe on any input.
func Classify(text string) types.AffiliationVerdict {
	s := Normalize(text)
	if s == "" {
		return types.AffiliationVerdict{}
	}

	var v types.AffiliationVerdict
	for _, t := range academicTerms {
		if matchTerm(s, t) {
			v.IsAcademic = true
			break
		}
	}
	for _, t := range companyTerms {
		if matchTerm(s, t) {
			v.IsCommercial = true
			v.MatchedCompanyTerm = strings.Trim(t, "*")
			break
		}
	}
	return v
}

// IsNonAcademic reports whether the affiliation counts as non-academic for
// report inclusion. A company term wins even when an academic term is
// also present.
func IsNonAcademic(text string) bool {
	return Classify(text).IsCommercial
}

// Normalize folds case, removes diacritics, and collapses whitespace.
func Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, " ")
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, text)
	if err != nil {
		s = text
	}
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// matchTerm matches term as a whole word or phrase. A trailing '*' allows
// any word ending; a leading '*' as well matches anywhere in the text.
func matchTerm(s, term string) bool {
	if strings.HasPrefix(term, "*") {
		return strings.Contains(s, strings.Trim(term, "*"))
	}
	prefix := strings.HasSuffix(term, "*")
	term = strings.TrimSuffix(term, "*")

	for off := 0; off < len(s); {
		i := strings.Index(s[off:], term)
		if i < 0 {
			return false
		}
		start := off + i
		end := start + len(term)
		if wordStart(s, start) && (prefix || wordEnd(s, end)) {
			return true
		}
		off = start + 1
	}
	return false
}

// wordStart treats a preceding '.' as part of the word so dotted
// abbreviations ("u.s.a.") do not yield inner matches.
func wordStart(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r) && r != '.'
}

func wordEnd(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// emailPattern matches a plain email address.
var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// ExtractEmail returns the first email address embedded in text, or ""
// when there is none.
func ExtractEmail(text string) string {
	return emailPattern.FindString(text)
}

// MentionsCorrespondence reports whether the affiliation text marks its
// author as the corresponding author.
func MentionsCorrespondence(text string) bool {
	return strings.Contains(strings.ToLower(text), "correspond")
}
