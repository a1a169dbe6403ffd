package rdf

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semcodec/document"
)

const ex = "http://example.org/"

type level string

type stringer struct{}

func (stringer) String() string { return "custom" }

func TestLiteralOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Literal
	}{
		{"string", "x", Literal{Lexical: "x"}},
		{"named string", level("high"), Literal{Lexical: "high"}},
		{"bool", true, Literal{Lexical: "true", Datatype: XSDBoolean}},
		{"int", 42, Literal{Lexical: "42", Datatype: XSDInteger}},
		{"int8", int8(-3), Literal{Lexical: "-3", Datatype: XSDInteger}},
		{"uint64", uint64(7), Literal{Lexical: "7", Datatype: XSDInteger}},
		{"float32", float32(1.5), Literal{Lexical: "1.5", Datatype: XSDDouble}},
		{"float64", 0.1, Literal{Lexical: "0.1", Datatype: XSDDouble}},
		{"time", time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), Literal{Lexical: "2020-01-02T03:04:05Z", Datatype: XSDDateTime}},
		{"date", document.Date{Year: 2020, Month: time.March, Day: 9}, Literal{Lexical: "2020-03-09", Datatype: XSDDate}},
		{"stringer", stringer{}, Literal{Lexical: "custom"}},
		{"literal", LangLiteral("hallo", "de"), Literal{Lexical: "hallo", Lang: "de"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LiteralOf(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := LiteralOf([]int{1})
	assert.Error(t, err)
}

func TestTermStrings(t *testing.T) {
	assert.Equal(t, ex+"a", IRI(ex+"a").String())
	assert.Equal(t, "_:b1", BlankNode{ID: "b1"}.String())
	assert.Equal(t, `"x"`, NewLiteral("x").String())
	assert.Equal(t, `"x"@en`, LangLiteral("x", "en").String())
	assert.Equal(t, `"1"^^<`+string(XSDInteger)+`>`, Literal{Lexical: "1", Datatype: XSDInteger}.String())

	assert.Equal(t, TermIRI, IRI("x").Kind())
	assert.Equal(t, TermBlankNode, BlankNode{}.Kind())
	assert.Equal(t, TermLiteral, Literal{}.Kind())
}

func TestGraphSetSemantics(t *testing.T) {
	g := NewGraph()
	a, b := IRI(ex+"a"), IRI(ex+"b")

	g.Add(a, ex+"p", b)
	g.Add(a, ex+"p", NewLiteral("v"))
	g.Add(a, ex+"p", b)

	assert.Equal(t, 2, g.Len())
	assert.True(t, g.Contains(a, ex+"p", b))
	assert.False(t, g.Contains(b, ex+"p", a))
	assert.Equal(t, []Triple{
		{S: a, P: ex + "p", O: b},
		{S: a, P: ex + "p", O: NewLiteral("v")},
	}, g.Triples())
}

func TestGraphZeroValue(t *testing.T) {
	var g Graph
	g.Add(IRI(ex+"a"), ex+"p", NewLiteral("v"))
	assert.Equal(t, 1, g.Len())
}

func TestGraphMatchAndMerge(t *testing.T) {
	g := NewGraph()
	a, b := IRI(ex+"a"), BlankNode{ID: "n"}
	g.Add(a, Type, IRI(ex+"Thing"))
	g.Add(a, ex+"name", NewLiteral("A"))
	g.Add(b, ex+"name", NewLiteral("B"))

	assert.Len(t, g.Match(nil, ex+"name"), 2)
	assert.Len(t, g.Match(a, ""), 2)
	assert.Len(t, g.Match(b, Type), 0)
	assert.Len(t, g.Match(nil, ""), 3)

	other := NewGraph()
	other.Add(a, ex+"name", NewLiteral("A"))
	other.Add(a, ex+"extra", NewLiteral("E"))
	g.Merge(other)
	assert.Equal(t, 4, g.Len())
}

func TestGraphConcurrentAdds(t *testing.T) {
	g := NewGraph()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				g.Add(IRI(ex+"s"), ex+"p", Literal{Lexical: string(rune('a' + j%26))})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 26, g.Len())
}

func TestExtras(t *testing.T) {
	var e Extras
	assert.Empty(t, e.ExtraTriples())

	e.Add(ex+"p", NewLiteral("v"))
	e.AddInverse(ex+"q", IRI(ex+"other"))

	var x ExtraTripler = &e
	assert.Equal(t, []ExtraTriple{
		{Predicate: ex + "p", Object: NewLiteral("v")},
		{Predicate: ex + "q", Object: IRI(ex + "other"), Inverse: true},
	}, x.ExtraTriples())
}

func TestTee(t *testing.T) {
	a, b := NewGraph(), NewGraph()
	sink := Tee(a, nil, b)
	sink.Add(IRI(ex+"s"), ex+"p", NewLiteral("o"))

	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, b.Len())
}
