package shiftscan

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"shiftcal/pkg/contracts/domain"
)

var (
	isoDatePattern  = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})(?:[ T]\d{2}:\d{2}(?::\d{2})?(?:Z|[+-]\d{2}:?\d{2})?)?$`)
	bareTimePattern = regexp.MustCompile(`^\d{1,2}:\d{2}(?::\d{2})?$`)
)

// monthNames is case-sensitive: roster headers use title case
var monthNames = map[string]time.Month{
	"Jan": time.January, "January": time.January,
	"Feb": time.February, "February": time.February,
	"Mar": time.March, "March": time.March,
	"Apr": time.April, "April": time.April,
	"May": time.May,
	"Jun": time.June, "June": time.June,
	"Jul": time.July, "July": time.July,
	"Aug": time.August, "August": time.August,
	"Sep": time.September, "Sept": time.September, "September": time.September,
	"Oct": time.October, "October": time.October,
	"Nov": time.November, "November": time.November,
	"Dec": time.December, "December": time.December,
}

// DateNormalizer turns header tokens into calendar dates
type DateNormalizer struct {
	special map[string]MonthDay
}

// NewDateNormalizer creates a normalizer with the given special labels
func NewDateNormalizer(special map[string]MonthDay) DateNormalizer {
	return DateNormalizer{special: special}
}

var defaultNormalizer = NewDateNormalizer(DefaultParams().SpecialDates)

// NormalizeDate converts token to a date using the default special labels.
// Tokens without a year get one inferred from ref.
func NormalizeDate(token string, ref time.Time) (domain.Date, error) {
	return defaultNormalizer.Normalize(token, ref)
}

// IsDateLike reports whether value is a date token, using the default special labels
func IsDateLike(value string, ref time.Time) (domain.Date, bool) {
	return defaultNormalizer.IsDateLike(value, ref)
}

// Normalize converts token to a date. Accepted forms are a special label,
// an ISO date (optionally followed by a time) and "<day><suffix> <Month>".
func (n DateNormalizer) Normalize(token string, ref time.Time) (domain.Date, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Date{}, dateFormatError(token, "empty")
	}

	if md, ok := n.special[token]; ok {
		d, err := domain.NewDate(ref.Year(), md.Month, md.Day)
		if err != nil {
			return domain.Date{}, dateFormatError(token, err.Error())
		}
		return d, nil
	}

	if m := isoDatePattern.FindStringSubmatch(token); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		d, err := domain.NewDate(year, time.Month(month), day)
		if err != nil {
			return domain.Date{}, dateFormatError(token, err.Error())
		}
		return d, nil
	}

	parts := strings.Fields(token)
	if len(parts) != 2 {
		return domain.Date{}, dateFormatError(token, "expected day and month")
	}

	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, parts[0])
	if digits == "" {
		return domain.Date{}, dateFormatError(token, "no day digits")
	}
	day, err := strconv.Atoi(digits)
	if err != nil {
		return domain.Date{}, dateFormatError(token, "day out of range")
	}

	month, ok := monthNames[parts[1]]
	if !ok {
		return domain.Date{}, dateFormatError(token, "unknown month "+strconv.Quote(parts[1]))
	}

	d, err := domain.NewDate(inferYear(month, ref), month, day)
	if err != nil {
		return domain.Date{}, dateFormatError(token, err.Error())
	}
	return d, nil
}

// IsDateLike is Normalize without the error. Bare times are never dates.
func (n DateNormalizer) IsDateLike(value string, ref time.Time) (domain.Date, bool) {
	value = strings.TrimSpace(value)
	if bareTimePattern.MatchString(value) {
		return domain.Date{}, false
	}
	d, err := n.Normalize(value, ref)
	if err != nil {
		return domain.Date{}, false
	}
	return d, true
}

// inferYear places a yearless month relative to ref. A roster read early in
// the year may still show December; one read late in the year may already
// show January.
func inferYear(month time.Month, ref time.Time) int {
	year := ref.Year()
	switch current := ref.Month(); {
	case current <= time.March && month == time.December:
		return year - 1
	case current >= time.October && month == time.January:
		return year + 1
	default:
		return year
	}
}

// IsPast reports whether date is already over at ref under policy
func IsPast(date domain.Date, ref time.Time, policy PastPolicy) bool {
	today := domain.DateOf(ref)
	if policy == PastInclusive {
		return date.Compare(today) <= 0
	}
	return date.Before(today)
}
