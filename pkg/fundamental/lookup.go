package fundamental

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Common categories, sections, time units and fields of fundamentals documents.
const (
	CategoryFinancials = "Financials"

	SectionIncomeStatement = "Income_Statement"
	SectionCashFlow        = "Cash_Flow"
	SectionBalanceSheet    = "Balance_Sheet"

	TimeUnitYearly    = "yearly"
	TimeUnitQuarterly = "quarterly"

	FieldOperatingIncome        = "operatingIncome"
	FieldIncomeBeforeTax        = "incomeBeforeTax"
	FieldIncomeTaxExpense       = "incomeTaxExpense"
	FieldCapitalExpenditures    = "capitalExpenditures"
	FieldDepreciation           = "depreciation"
	FieldChangeInWorkingCapital = "changeInWorkingCapital"
	FieldTotalRevenue           = "totalRevenue"
	FieldFreeCashFlow           = "freeCashFlow"
	FieldInterestExpense        = "interestExpense"
)

// FieldPath addresses one field of a report section.
type FieldPath struct {
	Category string `json:"category"`
	Section  string `json:"section"`
	TimeUnit string `json:"time_unit"`
	Field    string `json:"field"`
}

// Financials returns the path of field in a section of the Financials category.
func Financials(section, timeUnit, field string) FieldPath {
	return FieldPath{Category: CategoryFinancials, Section: section, TimeUnit: timeUnit, Field: field}
}

// ParseFieldPath parses "Category/Section/TimeUnit/Field".
func ParseFieldPath(s string) (FieldPath, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 4 {
		return FieldPath{}, fmt.Errorf("invalid field path %q: want Category/Section/TimeUnit/Field", s)
	}
	for _, p := range parts {
		if p == "" {
			return FieldPath{}, fmt.Errorf("invalid field path %q: empty component", s)
		}
	}
	return FieldPath{Category: parts[0], Section: parts[1], TimeUnit: parts[2], Field: parts[3]}, nil
}

// WithField returns a copy of p addressing another field of the same section.
func (p FieldPath) WithField(field string) FieldPath {
	p.Field = field
	return p
}

func (p FieldPath) String() string {
	return p.Category + "/" + p.Section + "/" + p.TimeUnit + "/" + p.Field
}

// Lookup provides report values by field and date ("2006-01-02").
type Lookup interface {
	Lookup(path FieldPath, date string) Value
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(path FieldPath, date string) Value

// Lookup implements Lookup.
func (f LookupFunc) Lookup(path FieldPath, date string) Value {
	return f(path, date)
}

// LookupFloat looks up a value rendered according to mode.
func LookupFloat(l Lookup, path FieldPath, date string, mode MissingMode) float64 {
	return l.Lookup(path, date).Float(mode)
}

type sectionKey struct {
	category, section, timeUnit string
}

type valueKey struct {
	sectionKey
	date, field string
}

// Store is an in-memory Lookup. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	ticker string
	values map[valueKey]float64
	dates  map[sectionKey]map[string]ReportDate
}

// NewStore creates an empty store.
func NewStore(ticker string) *Store {
	return &Store{
		ticker: ticker,
		values: make(map[valueKey]float64),
		dates:  make(map[sectionKey]map[string]ReportDate),
	}
}

// Ticker returns the instrument the store describes.
func (s *Store) Ticker() string {
	return s.ticker
}

// Set records a value. A missing value registers the report date without
// storing a number.
func (s *Store) Set(path FieldPath, date ReportDate, v Value) {
	sk := sectionKey{path.Category, path.Section, path.TimeUnit}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dates[sk] == nil {
		s.dates[sk] = make(map[string]ReportDate)
	}
	s.dates[sk][date.Date] = date

	key := valueKey{sectionKey: sk, date: date.Date, field: path.Field}
	if f, ok := v.Get(); ok {
		s.values[key] = f
	} else {
		delete(s.values, key)
	}
}

// Lookup implements Lookup.
func (s *Store) Lookup(path FieldPath, date string) Value {
	key := valueKey{
		sectionKey: sectionKey{path.Category, path.Section, path.TimeUnit},
		date:       date,
		field:      path.Field,
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.values[key]; ok {
		return Present(v)
	}
	return Missing()
}

// Dates returns the report dates of the section containing path, most recent first.
func (s *Store) Dates(path FieldPath) []ReportDate {
	sk := sectionKey{path.Category, path.Section, path.TimeUnit}

	s.mu.RLock()
	out := make([]ReportDate, 0, len(s.dates[sk]))
	for _, d := range s.dates[sk] {
		out = append(out, d)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Year > out[j].Year
	})
	return out
}
