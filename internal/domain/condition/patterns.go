package condition

import (
	"regexp"
	"strings"
)

// VATTreatment records how a condition's monetary amount relates to VAT.
type VATTreatment string

const (
	// VATNotMentioned means the text does not reference VAT at all.
	VATNotMentioned VATTreatment = "not_mentioned"
	// VATIncluded means the stated amount includes VAT.
	VATIncluded VATTreatment = "included"
	// VATExcluded means the stated amount excludes VAT.
	VATExcluded VATTreatment = "excluded"
	// VATMentioned means VAT appears but its treatment is not determinable.
	VATMentioned VATTreatment = "mentioned"
)

// QuantQualifier marks whether a stated quantity is a floor or a ceiling.
type QuantQualifier string

const (
	QualifierNone    QuantQualifier = "none"
	QualifierMinimum QuantQualifier = "minimum"
	QualifierMaximum QuantQualifier = "maximum"
)

// PatternFlags is the side channel produced by quantitative pattern
// extraction.  The flags inform downstream scoring and reporting; they never
// decide classification status on their own.
type PatternFlags struct {
	VAT       VATTreatment
	Qualifier QuantQualifier
	// PeriodYears is a recognized requirement period (1, 3 or 5 years), or
	// 0 when no known period keyword appears.
	PeriodYears int
}

var (
	// VAT phrasing in tender documents, Hebrew and English.  Inclusion and
	// exclusion markers are checked before the bare mention.
	vatIncludedRe = regexp.MustCompile(`כולל\s+מע"?מ|including\s+vat|incl\.?\s+vat`)
	vatExcludedRe = regexp.MustCompile(`לא\s+כולל\s+מע"?מ|בתוספת\s+מע"?מ|ללא\s+מע"?מ|excluding\s+vat|excl\.?\s+vat|plus\s+vat|\+\s*מע"?מ`)
	vatMentionRe  = regexp.MustCompile(`מע"?מ|\bvat\b`)

	minQualifierRe = regexp.MustCompile(`לפחות|לא\s+פחות|מינימום|מינימאלי|מינימלי|at\s+least|minimum|no\s+less\s+than`)
	maxQualifierRe = regexp.MustCompile(`לכל\s+היותר|לא\s+יותר|מקסימום|מקסימאלי|מקסימלי|עד\s+ל|at\s+most|maximum|no\s+more\s+than|not\s+exceed`)

	// The recognized period set is closed: requirement periods in the
	// source corpus are always one, three or five years.
	fiveYearsRe  = regexp.MustCompile(`חמש\s+שנים|5\s*שנים|5\s*years?|five\s+years?`)
	threeYearsRe = regexp.MustCompile(`שלוש\s+שנים|3\s*שנים|3\s*years?|three\s+years?`)
	oneYearRe    = regexp.MustCompile(`שנה\s+אחת|שנה\s+האחרונה|1\s*שנה|one\s+year|1\s*years?|past\s+year|last\s+year`)
)

// ExtractPatterns scans a condition's text for quantitative phrasing and
// returns the extracted flags.  Matching is case-insensitive.
func ExtractPatterns(text string) PatternFlags {
	lowered := strings.ToLower(text)

	flags := PatternFlags{
		VAT:       VATNotMentioned,
		Qualifier: QualifierNone,
	}

	switch {
	case vatExcludedRe.MatchString(lowered):
		flags.VAT = VATExcluded
	case vatIncludedRe.MatchString(lowered):
		flags.VAT = VATIncluded
	case vatMentionRe.MatchString(lowered):
		flags.VAT = VATMentioned
	}

	// Minimum qualifiers dominate: "לפחות 3 שנים ועד 5" is a floor
	// requirement with an upper bound, and the floor is what gates.
	switch {
	case minQualifierRe.MatchString(lowered):
		flags.Qualifier = QualifierMinimum
	case maxQualifierRe.MatchString(lowered):
		flags.Qualifier = QualifierMaximum
	}

	// Longer periods are checked first so "5 years" never misreads as the
	// digit-free one-year patterns.
	switch {
	case fiveYearsRe.MatchString(lowered):
		flags.PeriodYears = 5
	case threeYearsRe.MatchString(lowered):
		flags.PeriodYears = 3
	case oneYearRe.MatchString(lowered):
		flags.PeriodYears = 1
	}

	return flags
}
