// Package fieldlist parses and renders weighted field lists such as
// "content^10, title^20.5, keywords" used for boosted query and phrase fields.
package fieldlist

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultDelimiter separates fields in a list string.
const DefaultDelimiter = ","

// WeightSeparator separates a field name from its boost.
const WeightSeparator = "^"

// MaxWeightExponent bounds the decimal exponent of a boost. Weights such as
// 1e400000 would render as hundreds of kilobytes of digits and are treated
// as malformed.
const MaxWeightExponent = 64

// Backend parameter keys.
const (
	QueryFields         = "qf"
	PhraseFields        = "pf"
	BigramPhraseFields  = "pf2"
	TrigramPhraseFields = "pf3"
)

// Field is a field name with an optional boost.
// An invalid Weight means the backend default boost.
type Field struct {
	Name   string
	Weight decimal.NullDecimal
}

// NewField creates a field without an explicit boost.
func NewField(name string) Field {
	return Field{Name: name}
}

// NewWeightedField creates a field with an explicit boost.
func NewWeightedField(name string, weight decimal.Decimal) Field {
	return Field{Name: name, Weight: decimal.NewNullDecimal(weight)}
}

// HasWeight reports whether the field carries an explicit boost.
func (f Field) HasWeight() bool { return f.Weight.Valid }

func (f Field) String() string {
	if !f.Weight.Valid {
		return f.Name
	}
	return f.Name + WeightSeparator + f.Weight.Decimal.String()
}

// Source supplies the configured state of one field list.
type Source interface {
	IsEnabled() bool
	ConfiguredFields() string
}

// List is an ordered, possibly disabled, list of weighted fields.
// Duplicates are kept; order matters to the backend.
type List struct {
	fields    []Field
	enabled   bool
	delimiter string
	key       string
	malformed []string
}

// Option configures parsing and rendering.
type Option func(*List)

// WithDelimiter sets the field delimiter (default ",").
func WithDelimiter(d string) Option {
	return func(l *List) {
		if d != "" {
			l.delimiter = d
		}
	}
}

// WithParameterKey sets the backend parameter the list renders to (default "pf").
func WithParameterKey(key string) Option {
	return func(l *List) {
		if key != "" {
			l.key = key
		}
	}
}

func newList(enabled bool, opts []Option) List {
	l := List{enabled: enabled, delimiter: DefaultDelimiter, key: PhraseFields}
	for _, o := range opts {
		o(&l)
	}
	return l
}

// Parse reads a list string. Tokens are trimmed and empty tokens skipped.
// A token whose weight is not a number, or whose exponent exceeds
// MaxWeightExponent, keeps its field name, loses the weight and is reported
// by Malformed.
func Parse(s string, opts ...Option) List {
	l := newList(true, opts)
	for _, token := range strings.Split(s, l.delimiter) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		name, rawWeight, hasWeight := strings.Cut(token, WeightSeparator)
		name = strings.TrimSpace(name)
		f := Field{Name: name}
		if hasWeight {
			w, ok := parseWeight(rawWeight)
			if ok {
				f.Weight = decimal.NewNullDecimal(w)
			} else {
				l.malformed = append(l.malformed, token)
			}
		}
		l.fields = append(l.fields, f)
	}
	return l
}

func parseWeight(s string) (decimal.Decimal, bool) {
	w, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, false
	}
	if exp := w.Exponent(); exp > MaxWeightExponent || exp < -MaxWeightExponent {
		return decimal.Decimal{}, false
	}
	return w, true
}

// Disabled returns an empty, disabled list.
func Disabled(opts ...Option) List {
	return newList(false, opts)
}

// FromConfiguration returns Disabled when the source is switched off and
// otherwise parses its configured field string.
func FromConfiguration(src Source, opts ...Option) List {
	if src == nil || !src.IsEnabled() {
		return Disabled(opts...)
	}
	return Parse(src.ConfiguredFields(), opts...)
}

// Serialize renders l with its delimiter.
func Serialize(l List) string {
	parts := make([]string, len(l.fields))
	for i, f := range l.fields {
		parts[i] = f.String()
	}
	return strings.Join(parts, l.delimiter)
}

func (l List) String() string { return Serialize(l) }

// Fields returns a copy of the fields in order.
func (l List) Fields() []Field {
	out := make([]Field, len(l.fields))
	copy(out, l.fields)
	return out
}

// Enabled reports whether the list is switched on.
func (l List) Enabled() bool { return l.enabled }

// Len returns the number of fields.
func (l List) Len() int { return len(l.fields) }

// Delimiter returns the delimiter used for rendering.
func (l List) Delimiter() string { return l.delimiter }

// ParameterKey returns the backend parameter name.
func (l List) ParameterKey() string { return l.key }

// Malformed returns the tokens whose weight was discarded during parsing.
func (l List) Malformed() []string {
	out := make([]string, len(l.malformed))
	copy(out, l.malformed)
	return out
}

// Add returns a copy of l with f appended.
func (l List) Add(f Field) List {
	fields := make([]Field, len(l.fields), len(l.fields)+1)
	copy(fields, l.fields)
	l.fields = append(fields, f)
	l.malformed = l.Malformed()
	return l
}

// Parameter returns the backend parameter for the list. ok is false when the
// list is disabled or empty.
func (l List) Parameter() (key, value string, ok bool) {
	if !l.enabled || len(l.fields) == 0 {
		return "", "", false
	}
	return l.key, Serialize(l), true
}
