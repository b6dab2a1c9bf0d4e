// Package dictionary maps free-text requirement phrasing onto the closed
// vocabulary used by the evaluation engine.  Tender documents mix Hebrew and
// English terminology; the normalizer resolves both to canonical terms so
// downstream classification never matches on raw text.
package dictionary

import "strings"

// Term is a canonical vocabulary entry the engine understands.
type Term string

const (
	TermExperience  Term = "experience"
	TermRevenue     Term = "revenue"
	TermCertificate Term = "certificate"
	TermStaff       Term = "staff"
	TermFinancial   Term = "financial"
	TermEquipment   Term = "equipment"
	TermLegal       Term = "legal"
	TermOther       Term = "other"
)

// Normalizer resolves raw requirement text to canonical terms.
type Normalizer interface {
	// Normalize returns the first canonical term whose synonyms appear in
	// text, scanning terms in priority order.  Returns TermOther when no
	// synonym matches.
	Normalize(text string) Term

	// Matches reports whether text contains any synonym of term.
	Matches(text string, term Term) bool
}

// entry pairs a term with its synonyms.  Order inside the registry is the
// match priority: experience before revenue before certificate and so on,
// so mixed-topic requirements resolve deterministically.
type entry struct {
	term     Term
	synonyms []string
}

type registry struct {
	entries []entry
	// index speeds up Matches lookups by term.
	index map[Term][]string
}

// NewNormalizer returns the built-in bilingual normalizer.  The synonym sets
// cover the phrasing observed in Israeli government tender documents.
func NewNormalizer() Normalizer {
	entries := []entry{
		{term: TermExperience, synonyms: []string{
			"ניסיון", "נסיון", "experience", "track record", "past performance",
			"ביצוע עבודות", "פרויקטים קודמים", "previous projects",
		}},
		{term: TermRevenue, synonyms: []string{
			"מחזור", "מחזור כספי", "הכנסות", "revenue", "turnover", "annual income",
		}},
		{term: TermCertificate, synonyms: []string{
			"הסמכה", "תעודה", "רישיון", "רשיון", "תקן", "iso", "certificate",
			"certification", "license", "accreditation", "סיווג קבלני",
		}},
		{term: TermStaff, synonyms: []string{
			"כוח אדם", "כח אדם", "עובדים", "צוות", "מהנדס", "staff", "personnel",
			"engineers", "employees", "team",
		}},
		{term: TermFinancial, synonyms: []string{
			"ערבות", "ערבות בנקאית", "איתנות פיננסית", "הון עצמי", "guarantee",
			"bank guarantee", "financial strength", "equity", "solvency",
		}},
		{term: TermEquipment, synonyms: []string{
			"ציוד", "כלים", "מכונות", "equipment", "machinery", "fleet",
		}},
		{term: TermLegal, synonyms: []string{
			"ניהול ספרים", "רישום תאגיד", "עוסק מורשה", "tax compliance",
			"registered company", "corporate registration", "bookkeeping",
		}},
	}

	index := make(map[Term][]string, len(entries))
	for _, e := range entries {
		index[e.term] = e.synonyms
	}
	return &registry{entries: entries, index: index}
}

func (r *registry) Normalize(text string) Term {
	lowered := strings.ToLower(text)
	for _, e := range r.entries {
		if containsAny(lowered, e.synonyms) {
			return e.term
		}
	}
	return TermOther
}

func (r *registry) Matches(text string, term Term) bool {
	synonyms, ok := r.index[term]
	if !ok {
		return false
	}
	return containsAny(strings.ToLower(text), synonyms)
}

func containsAny(lowered string, synonyms []string) bool {
	for _, s := range synonyms {
		if strings.Contains(lowered, s) {
			return true
		}
	}
	return false
}
