// Package search holds the store-agnostic search core: the predicate tree
// the filter model compiles to, and the fixed relevance weight table. A
// store adapter lowers both to native query syntax; query text is never
// assembled by hand.
package search

// MatchMode selects how a text match compares against the query
type MatchMode int

const (
	MatchExact MatchMode = iota
	MatchPrefix
	MatchContains
)

// Predicate is one node of the compiled filter tree
type Predicate interface {
	isPredicate()
}

// TextMatch matches a text column against the query, case-insensitive
type TextMatch struct {
	Column string
	Query  string
	Mode   MatchMode
}

// Term matches a column for equality
type Term struct {
	Column string
	Value  interface{}
}

// Range constrains a column to [Min, Max]; a nil bound is open
type Range struct {
	Column string
	Min    interface{}
	Max    interface{}
}

// InSet matches a column against a value set
type InSet struct {
	Column string
	Values []string
}

// AnyTag matches a multi-valued (array) column when it shares at least one
// value with the given list. OR-within-facet semantics.
type AnyTag struct {
	Column string
	Values []string
}

// TagMatch matches a multi-valued column when any element contains the
// query, case-insensitive.
type TagMatch struct {
	Column string
	Query  string
}

// ExistsIn is an existential predicate over a related table: the candidate
// matches if at least one related row satisfies Where. Link is the column
// on Table referring back to the candidate; JoinTable/JoinOn optionally
// pull in the associated entity table.
type ExistsIn struct {
	Table     string
	Link      string
	Parent    string
	JoinTable string
	JoinOn    [2]string
	Where     Predicate
}

// And combines predicates conjunctively
type And []Predicate

// Or combines predicates disjunctively
type Or []Predicate

func (TextMatch) isPredicate() {}
func (Term) isPredicate()      {}
func (Range) isPredicate()     {}
func (InSet) isPredicate()     {}
func (AnyTag) isPredicate()    {}
func (TagMatch) isPredicate()  {}
func (ExistsIn) isPredicate()  {}
func (And) isPredicate()       {}
func (Or) isPredicate()        {}
