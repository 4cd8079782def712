package condition

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/Aleph-Alpha/querykit/v1/embedding"
	"github.com/Aleph-Alpha/querykit/v1/schema"
)

// Node is one variant of the condition tree. Values reaching Evaluate are of
// the Go type the node was built for; the typed Condition wrapper and the
// builders guarantee that.
type Node interface {
	Evaluate(v any) bool
	Equal(other Node) bool
	Encode() (schema.Value, error)
	String() string
}

// ── Constants ───────────────────────────────────────────────────────────────

// AlwaysCondition matches everything.
type AlwaysCondition struct{}

func (AlwaysCondition) Evaluate(any) bool { return true }
func (AlwaysCondition) String() string    { return "Always" }

func (AlwaysCondition) Equal(o Node) bool {
	_, ok := o.(AlwaysCondition)
	return ok
}

// NeverCondition matches nothing.
type NeverCondition struct{}

func (NeverCondition) Evaluate(any) bool { return false }
func (NeverCondition) String() string    { return "Never" }

func (NeverCondition) Equal(o Node) bool {
	_, ok := o.(NeverCondition)
	return ok
}

// ── Comparisons ─────────────────────────────────────────────────────────────

// EqualCondition matches values equal to Value under Type's equality.
type EqualCondition struct {
	Type  schema.Type
	Value any
}

func (c EqualCondition) Evaluate(v any) bool { return c.Type.Equal(v, c.Value) }

func (c EqualCondition) Equal(o Node) bool {
	other, ok := o.(EqualCondition)
	return ok && sameValue(c.Type, c.Value, other.Type, other.Value)
}

func (c EqualCondition) String() string { return fmt.Sprintf("== %v", c.Value) }

// NotEqualCondition matches values not equal to Value.
type NotEqualCondition struct {
	Type  schema.Type
	Value any
}

func (c NotEqualCondition) Evaluate(v any) bool { return !c.Type.Equal(v, c.Value) }

func (c NotEqualCondition) Equal(o Node) bool {
	other, ok := o.(NotEqualCondition)
	return ok && sameValue(c.Type, c.Value, other.Type, other.Value)
}

func (c NotEqualCondition) String() string { return fmt.Sprintf("!= %v", c.Value) }

// CompareOp enumerates the ordering comparisons.
type CompareOp uint8

const (
	OpGreaterThan CompareOp = iota
	OpLessThan
	OpGreaterThanOrEqual
	OpLessThanOrEqual
)

var compareOpNames = [...]string{"GreaterThan", "LessThan", "GreaterThanOrEqual", "LessThanOrEqual"}
var compareOpSymbols = [...]string{">", "<", ">=", "<="}

func (op CompareOp) String() string { return compareOpNames[op] }

// CompareCondition orders values against Value. Type must be ordered; the
// builders enforce that at construction.
type CompareCondition struct {
	Op    CompareOp
	Type  schema.Ordered
	Value any
}

func (c CompareCondition) Evaluate(v any) bool {
	r := c.Type.Compare(v, c.Value)
	switch c.Op {
	case OpGreaterThan:
		return r > 0
	case OpLessThan:
		return r < 0
	case OpGreaterThanOrEqual:
		return r >= 0
	default:
		return r <= 0
	}
}

func (c CompareCondition) Equal(o Node) bool {
	other, ok := o.(CompareCondition)
	return ok && c.Op == other.Op && sameValue(c.Type, c.Value, other.Type, other.Value)
}

func (c CompareCondition) String() string {
	return fmt.Sprintf("%s %v", compareOpSymbols[c.Op], c.Value)
}

// InsideCondition matches values that are members of Values.
type InsideCondition struct {
	Type   schema.Type
	Values []any
	index  map[string]struct{}
}

// NotInsideCondition matches values that are not members of Values.
type NotInsideCondition struct {
	Type   schema.Type
	Values []any
	index  map[string]struct{}
}

func newMembership(t schema.Type, values []any) map[string]struct{} {
	idx := make(map[string]struct{}, len(values))
	for _, v := range values {
		idx[valueKey(t, v)] = struct{}{}
	}
	return idx
}

// members returns the prebuilt index, or builds one from Values for nodes
// assembled by hand.
func members(t schema.Type, values []any, index map[string]struct{}) map[string]struct{} {
	if index != nil {
		return index
	}
	return newMembership(t, values)
}

func (c InsideCondition) Evaluate(v any) bool {
	_, ok := members(c.Type, c.Values, c.index)[valueKey(c.Type, v)]
	return ok
}

func (c InsideCondition) Equal(o Node) bool {
	other, ok := o.(InsideCondition)
	return ok && sameMembers(c.Type, members(c.Type, c.Values, c.index), other.Type, members(other.Type, other.Values, other.index))
}

func (c InsideCondition) String() string { return fmt.Sprintf("in %v", c.Values) }

func (c NotInsideCondition) Evaluate(v any) bool {
	_, ok := members(c.Type, c.Values, c.index)[valueKey(c.Type, v)]
	return !ok
}

func (c NotInsideCondition) Equal(o Node) bool {
	other, ok := o.(NotInsideCondition)
	return ok && sameMembers(c.Type, members(c.Type, c.Values, c.index), other.Type, members(other.Type, other.Values, other.index))
}

func (c NotInsideCondition) String() string { return fmt.Sprintf("not in %v", c.Values) }

// ── Logic ───────────────────────────────────────────────────────────────────

// AndCondition matches when every child matches. An empty And matches.
type AndCondition struct {
	Conditions []Node
}

func (c AndCondition) Evaluate(v any) bool {
	for _, n := range c.Conditions {
		if !n.Evaluate(v) {
			return false
		}
	}
	return true
}

func (c AndCondition) Equal(o Node) bool {
	other, ok := o.(AndCondition)
	return ok && sameNodes(c.Conditions, other.Conditions)
}

func (c AndCondition) String() string { return joinNodes("And", c.Conditions) }

// OrCondition matches when any child matches. An empty Or matches nothing.
type OrCondition struct {
	Conditions []Node
}

func (c OrCondition) Evaluate(v any) bool {
	for _, n := range c.Conditions {
		if n.Evaluate(v) {
			return true
		}
	}
	return false
}

func (c OrCondition) Equal(o Node) bool {
	other, ok := o.(OrCondition)
	return ok && sameNodes(c.Conditions, other.Conditions)
}

func (c OrCondition) String() string { return joinNodes("Or", c.Conditions) }

// NotCondition negates its child.
type NotCondition struct {
	Condition Node
}

func (c NotCondition) Evaluate(v any) bool { return !c.Condition.Evaluate(v) }

func (c NotCondition) Equal(o Node) bool {
	other, ok := o.(NotCondition)
	return ok && c.Condition.Equal(other.Condition)
}

func (c NotCondition) String() string { return "Not(" + c.Condition.String() + ")" }

// ── Structure ───────────────────────────────────────────────────────────────

// OnFieldCondition evaluates Condition against field Index of a record of
// type Owner.
type OnFieldCondition struct {
	Owner     schema.Struct
	Index     int
	Condition Node
}

func (c OnFieldCondition) Evaluate(v any) bool {
	return c.Condition.Evaluate(c.Owner.Project(v, c.Index))
}

func (c OnFieldCondition) Equal(o Node) bool {
	other, ok := o.(OnFieldCondition)
	return ok &&
		c.Owner.ID() == other.Owner.ID() &&
		c.Index == other.Index &&
		c.Condition.Equal(other.Condition)
}

func (c OnFieldCondition) FieldName() string { return c.Owner.Field(c.Index).Name }

func (c OnFieldCondition) String() string {
	return c.FieldName() + " " + c.Condition.String()
}

// ElementsCondition quantifies Condition over the elements of a list or set.
// With All unset it matches when at least one element matches, so an empty
// collection never matches; with All set it matches when every element does.
type ElementsCondition struct {
	Container schema.Container
	All       bool
	Condition Node
}

func (c ElementsCondition) Evaluate(v any) bool {
	items := c.Container.Elements(v)
	if c.All {
		for _, item := range items {
			if !c.Condition.Evaluate(item) {
				return false
			}
		}
		return true
	}
	for _, item := range items {
		if c.Condition.Evaluate(item) {
			return true
		}
	}
	return false
}

func (c ElementsCondition) Equal(o Node) bool {
	other, ok := o.(ElementsCondition)
	return ok &&
		c.All == other.All &&
		c.Container.ID() == other.Container.ID() &&
		c.Condition.Equal(other.Condition)
}

// Variant names the tagged form: ListAnyElements, ListAllElements,
// SetAnyElements or SetAllElements.
func (c ElementsCondition) Variant() string {
	kind := "List"
	if c.Container.IsSet() {
		kind = "Set"
	}
	if c.All {
		return kind + "AllElements"
	}
	return kind + "AnyElements"
}

func (c ElementsCondition) String() string {
	return c.Variant() + "(" + c.Condition.String() + ")"
}

// SizeEqualsCondition matches lists or sets with exactly Size elements.
type SizeEqualsCondition struct {
	Container schema.Container
	Size      int
}

func (c SizeEqualsCondition) Evaluate(v any) bool { return c.Container.Len(v) == c.Size }

func (c SizeEqualsCondition) Equal(o Node) bool {
	other, ok := o.(SizeEqualsCondition)
	return ok && c.Size == other.Size && c.Container.ID() == other.Container.ID()
}

func (c SizeEqualsCondition) String() string { return fmt.Sprintf("size == %d", c.Size) }

// ExistsCondition matches maps containing Key.
type ExistsCondition struct {
	Map schema.Mapping
	Key string
}

func (c ExistsCondition) Evaluate(v any) bool {
	_, ok := c.Map.Lookup(v, c.Key)
	return ok
}

func (c ExistsCondition) Equal(o Node) bool {
	other, ok := o.(ExistsCondition)
	return ok && c.Key == other.Key && c.Map.ID() == other.Map.ID()
}

func (c ExistsCondition) String() string { return fmt.Sprintf("has %q", c.Key) }

// OnKeyCondition evaluates Condition against the value stored under Key. A
// missing key does not match.
type OnKeyCondition struct {
	Map       schema.Mapping
	Key       string
	Condition Node
}

func (c OnKeyCondition) Evaluate(v any) bool {
	val, ok := c.Map.Lookup(v, c.Key)
	return ok && c.Condition.Evaluate(val)
}

func (c OnKeyCondition) Equal(o Node) bool {
	other, ok := o.(OnKeyCondition)
	return ok && c.Key == other.Key && c.Map.ID() == other.Map.ID() && c.Condition.Equal(other.Condition)
}

func (c OnKeyCondition) String() string {
	return fmt.Sprintf("[%q] %s", c.Key, c.Condition)
}

// IfNotNullCondition evaluates Condition against a present optional value.
// An absent value does not match.
type IfNotNullCondition struct {
	Optional  schema.Nullable
	Condition Node
}

func (c IfNotNullCondition) Evaluate(v any) bool {
	if c.Optional.IsNull(v) {
		return false
	}
	return c.Condition.Evaluate(c.Optional.Unwrap(v))
}

func (c IfNotNullCondition) Equal(o Node) bool {
	other, ok := o.(IfNotNullCondition)
	return ok && c.Optional.ID() == other.Optional.ID() && c.Condition.Equal(other.Condition)
}

func (c IfNotNullCondition) String() string { return "?" + c.Condition.String() }

// IsNullCondition matches absent (or, when Negate is set, present) optionals.
type IsNullCondition struct {
	Optional schema.Nullable
	Negate   bool
}

func (c IsNullCondition) Evaluate(v any) bool { return c.Optional.IsNull(v) != c.Negate }

func (c IsNullCondition) Equal(o Node) bool {
	other, ok := o.(IsNullCondition)
	return ok && c.Negate == other.Negate && c.Optional.ID() == other.Optional.ID()
}

func (c IsNullCondition) String() string {
	if c.Negate {
		return "!= null"
	}
	return "== null"
}

// ── Text ────────────────────────────────────────────────────────────────────

// StringContainsCondition matches strings containing Value.
type StringContainsCondition struct {
	Value      string
	IgnoreCase bool
}

func (c StringContainsCondition) Evaluate(v any) bool {
	s := v.(string)
	if c.IgnoreCase {
		return strings.Contains(strings.ToLower(s), strings.ToLower(c.Value))
	}
	return strings.Contains(s, c.Value)
}

func (c StringContainsCondition) Equal(o Node) bool {
	other, ok := o.(StringContainsCondition)
	return ok && c == other
}

func (c StringContainsCondition) String() string { return fmt.Sprintf("contains %q", c.Value) }

// RegexMatchesCondition matches strings matching Pattern.
type RegexMatchesCondition struct {
	Pattern    string
	IgnoreCase bool
	re         *regexp.Regexp
}

func newRegexMatches(pattern string, ignoreCase bool) (RegexMatchesCondition, error) {
	expr := pattern
	if ignoreCase {
		expr = "(?i)" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return RegexMatchesCondition{}, fmt.Errorf("condition: invalid pattern %q: %w", pattern, err)
	}
	return RegexMatchesCondition{Pattern: pattern, IgnoreCase: ignoreCase, re: re}, nil
}

func (c RegexMatchesCondition) Evaluate(v any) bool { return c.re.MatchString(v.(string)) }

func (c RegexMatchesCondition) Equal(o Node) bool {
	other, ok := o.(RegexMatchesCondition)
	return ok && c.Pattern == other.Pattern && c.IgnoreCase == other.IgnoreCase
}

func (c RegexMatchesCondition) String() string { return fmt.Sprintf("matches /%s/", c.Pattern) }

// FullTextSearchCondition searches the text-indexed fields of a record. The
// record text is lower-cased and every whitespace-separated term of Value is
// tested for substring containment; RequireAllTermsPresent selects between
// all terms and any term.
type FullTextSearchCondition struct {
	Owner                  schema.Struct
	Value                  string
	RequireAllTermsPresent bool
	fields                 []int
}

func (c FullTextSearchCondition) Evaluate(v any) bool {
	var sb strings.Builder
	for _, i := range c.fields {
		t := c.Owner.Field(i).Type.(schema.Textual)
		sb.WriteString(strings.ToLower(t.Text(c.Owner.Project(v, i))))
		sb.WriteByte('\n')
	}
	text := sb.String()
	terms := strings.Fields(strings.ToLower(c.Value))
	if len(terms) == 0 {
		return true
	}
	for _, term := range terms {
		found := strings.Contains(text, term)
		if found && !c.RequireAllTermsPresent {
			return true
		}
		if !found && c.RequireAllTermsPresent {
			return false
		}
	}
	return c.RequireAllTermsPresent
}

func (c FullTextSearchCondition) Equal(o Node) bool {
	other, ok := o.(FullTextSearchCondition)
	return ok &&
		c.Owner.ID() == other.Owner.ID() &&
		c.Value == other.Value &&
		c.RequireAllTermsPresent == other.RequireAllTermsPresent
}

func (c FullTextSearchCondition) String() string { return fmt.Sprintf("search %q", c.Value) }

// ── Geo and vectors ─────────────────────────────────────────────────────────

const earthRadiusKilometers = 6371.0

// GeoDistanceCondition matches coordinates whose great-circle distance from
// (Latitude, Longitude) lies within [GreaterThanKilometers, LessThanKilometers].
type GeoDistanceCondition struct {
	Latitude              float64
	Longitude             float64
	GreaterThanKilometers float64
	LessThanKilometers    float64
}

func (c GeoDistanceCondition) Evaluate(v any) bool {
	p := v.(schema.GeoCoordinate)
	d := haversineKilometers(c.Latitude, c.Longitude, p.Latitude, p.Longitude)
	return d >= c.GreaterThanKilometers && d <= c.LessThanKilometers
}

func (c GeoDistanceCondition) Equal(o Node) bool {
	other, ok := o.(GeoDistanceCondition)
	return ok && c == other
}

func (c GeoDistanceCondition) String() string {
	return fmt.Sprintf("within %v..%vkm of (%v,%v)", c.GreaterThanKilometers, c.LessThanKilometers, c.Latitude, c.Longitude)
}

func haversineKilometers(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKilometers * math.Asin(math.Min(1, math.Sqrt(a)))
}

// SimilarToCondition matches embeddings scoring at least MinScore against
// Vector under Metric. Embeddings of another dimension never match.
type SimilarToCondition struct {
	Vector   embedding.Embedding
	Metric   embedding.Metric
	MinScore float32
}

func (c SimilarToCondition) Evaluate(v any) bool {
	score, err := c.Metric.Score(v.(embedding.Embedding), c.Vector)
	return err == nil && score >= c.MinScore
}

func (c SimilarToCondition) Equal(o Node) bool {
	other, ok := o.(SimilarToCondition)
	return ok && c.Metric == other.Metric && c.MinScore == other.MinScore && c.Vector.Equal(other.Vector)
}

func (c SimilarToCondition) String() string {
	return fmt.Sprintf("%s(%d dims) >= %v", c.Metric, len(c.Vector), c.MinScore)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func sameValue(t schema.Type, v any, ot schema.Type, ov any) bool {
	return t.ID() == ot.ID() && t.Equal(v, ov)
}

func sameNodes(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func sameMembers(t schema.Type, a map[string]struct{}, ot schema.Type, b map[string]struct{}) bool {
	if t.ID() != ot.ID() || len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func joinNodes(name string, nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

// valueKey hashes v for membership tests. Scalars hash by their Go value;
// everything else by the canonical key of its encoding. Negative zero keys
// like zero, matching Eq.
func valueKey(t schema.Type, v any) string {
	switch x := v.(type) {
	case string:
		return "s" + x
	case float32:
		return fmt.Sprintf("%T:%v", x, x+0)
	case float64:
		return fmt.Sprintf("%T:%v", x, x+0)
	case bool, int, int32, int64:
		return fmt.Sprintf("%T:%v", x, x)
	}
	enc, err := t.Encode(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return enc.Key()
}
