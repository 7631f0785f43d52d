// Package format renders amounts and timestamps for display.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	// DateUnavailable is shown when the backend sent no timestamp.
	DateUnavailable = "Date not available"
	// DateInvalid is shown when the timestamp could not be parsed.
	DateInvalid = "Invalid date"
)

var symbols = map[string]string{
	"IDR": "Rp",
	"USD": "$",
	"EUR": "€",
	"SGD": "S$",
	"JPY": "¥",
}

var monthNames = map[string][12]string{
	"id": {"Januari", "Februari", "Maret", "April", "Mei", "Juni", "Juli", "Agustus", "September", "Oktober", "November", "Desember"},
	"en": {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
}

var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Formatter is safe for concurrent use.
type Formatter struct {
	lang       string
	symbol     string
	scale      int
	groupSep   string
	decimalSep string
	loc        *time.Location
}

// New builds a Formatter for a BCP 47 locale, an ISO 4217 currency code and
// an IANA time zone name.
func New(locale, currencyCode, timezone string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", currencyCode, err)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	base, _ := tag.Base()
	lang := base.String()
	if _, ok := monthNames[lang]; !ok {
		lang = "en"
	}
	symbol, ok := symbols[unit.String()]
	if !ok {
		symbol = unit.String()
	}
	scale, _ := currency.Cash.Rounding(unit)

	groupSep, decimalSep := separators(message.NewPrinter(tag))

	return &Formatter{
		lang:       lang,
		symbol:     symbol,
		scale:      scale,
		groupSep:   groupSep,
		decimalSep: decimalSep,
		loc:        loc,
	}, nil
}

// separators reads the locale's group and decimal marks off a rendered
// sample. Locales without ASCII digits get the en-US marks.
func separators(p *message.Printer) (group, dec string) {
	sample := p.Sprint(number.Decimal(12345678.5,
		number.MinFractionDigits(1),
		number.MaxFractionDigits(1),
	))
	var marks []string
	var run strings.Builder
	for _, r := range sample {
		if r >= '0' && r <= '9' {
			if run.Len() > 0 {
				marks = append(marks, run.String())
				run.Reset()
			}
			continue
		}
		if unicode.IsDigit(r) {
			return ",", "."
		}
		run.WriteRune(r)
	}
	if len(marks) < 2 || run.Len() > 0 {
		return ",", "."
	}
	return marks[0], marks[len(marks)-1]
}

// Price renders an amount with the currency symbol and locale grouping.
// The amount is rounded to the currency's cash scale and trailing zero
// fraction digits are dropped.
func (f *Formatter) Price(amount decimal.Decimal) string {
	fixed := amount.Round(int32(f.scale)).StringFixed(int32(f.scale))
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	frac = strings.TrimRight(frac, "0")

	digits := sign + groupThousands(whole, f.groupSep)
	if frac != "" {
		digits += f.decimalSep + frac
	}
	return f.symbol + " " + digits
}

func groupThousands(whole, sep string) string {
	head := len(whole) % 3
	if head == 0 {
		head = 3
	}
	if len(whole) <= head {
		return whole
	}
	var b strings.Builder
	b.WriteString(whole[:head])
	for i := head; i < len(whole); i += 3 {
		b.WriteString(sep)
		b.WriteString(whole[i : i+3])
	}
	return b.String()
}

// Date renders the day part of a backend timestamp.
func (f *Formatter) Date(raw string) string {
	t, marker := f.parse(raw)
	if marker != "" {
		return marker
	}
	return f.longDate(t)
}

// DateTime renders a backend timestamp including hours and minutes.
func (f *Formatter) DateTime(raw string) string {
	t, marker := f.parse(raw)
	if marker != "" {
		return marker
	}
	if f.lang == "id" {
		return f.longDate(t) + " pukul " + t.Format("15.04")
	}
	return f.longDate(t) + " at " + t.Format("15:04")
}

func (f *Formatter) longDate(t time.Time) string {
	month := monthNames[f.lang][t.Month()-1]
	if f.lang == "id" {
		return fmt.Sprintf("%d %s %d", t.Day(), month, t.Year())
	}
	return fmt.Sprintf("%s %d, %d", month, t.Day(), t.Year())
}

func (f *Formatter) parse(raw string) (time.Time, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, DateUnavailable
	}
	// Some backends serialize timestamps as epoch milliseconds.
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).In(f.loc), ""
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(f.loc), ""
		}
	}
	return time.Time{}, DateInvalid
}
