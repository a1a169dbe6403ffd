package rdf

// ExtraTriple is a free-form statement attached to a record. Forward extras
// use the record as subject; inverse extras use it as object.
type ExtraTriple struct {
	Predicate IRI
	Object    Term
	Inverse   bool
}

// ExtraTripler is implemented by records carrying free-form triples.
type ExtraTripler interface {
	ExtraTriples() []ExtraTriple
}

// Extras is an embeddable bag of free-form triples. Embedding it in a record
// makes the record an ExtraTripler; the schema registry ignores it as a field.
type Extras struct {
	extra []ExtraTriple
}

// Add attaches (record, p, o).
func (e *Extras) Add(p IRI, o Term) {
	e.extra = append(e.extra, ExtraTriple{Predicate: p, Object: o})
}

// AddInverse attaches (s, p, record).
func (e *Extras) AddInverse(p IRI, s Term) {
	e.extra = append(e.extra, ExtraTriple{Predicate: p, Object: s, Inverse: true})
}

// ExtraTriples returns the attached triples in insertion order.
func (e *Extras) ExtraTriples() []ExtraTriple {
	return e.extra
}
