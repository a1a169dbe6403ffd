package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/c360studio/semcodec/rdf"
	"github.com/c360studio/semstreams/vocabulary"
)

func defaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":     rdf.RDFNamespace,
		"rdfs":    "http://www.w3.org/2000/01/rdf-schema#",
		"xsd":     rdf.XSDNamespace,
		"owl":     "http://www.w3.org/2002/07/owl#",
		"dcterms": "http://purl.org/dc/terms/",
		"dcat":    "http://www.w3.org/ns/dcat#",
		"foaf":    "http://xmlns.com/foaf/0.1/",
		"skos":    "http://www.w3.org/2004/02/skos/core#",
		"prov":    "http://www.w3.org/ns/prov#",
		"qb":      "http://purl.org/linked-data/cube#",
	}
}

func defaultMappers() map[string]Mapper {
	return map[string]Mapper{
		"literal": LiteralMapper,
		"iri":     IRIMapper,
		"ref":     RefMapper,
	}
}

// LiteralMapper maps a scalar to a typed literal.
func LiteralMapper(v any) (any, error) {
	return rdf.LiteralOf(v)
}

// IRIMapper maps a string-like value to an IRI.
func IRIMapper(v any) (any, error) {
	switch x := v.(type) {
	case rdf.IRI:
		return x, nil
	case fmt.Stringer:
		return rdf.IRI(x.String()), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		if rv.String() == "" {
			return nil, fmt.Errorf("empty IRI")
		}
		return rdf.IRI(rv.String()), nil
	}
	return nil, fmt.Errorf("cannot use %T as an IRI", v)
}

// RefMapper returns the value unchanged, so records map to their nodes.
func RefMapper(v any) (any, error) {
	return v, nil
}

// RegisterPrefix makes prefix usable in rdf tags as "prefix:local".
// Types registered before the call are unaffected.
func (r *Registry) RegisterPrefix(prefix, namespace string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefixes[prefix] = namespace
}

// Prefixes returns a copy of the prefix table.
func (r *Registry) Prefixes() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.prefixes))
	for k, v := range r.prefixes {
		out[k] = v
	}
	return out
}

// RegisterMapper makes m usable in rdf tags as "map=name".
func (r *Registry) RegisterMapper(name string, m Mapper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappers[name] = m
}

// ExpandIRI resolves a predicate reference: an absolute IRI, a CURIE with a
// registered prefix, or a dotted predicate registered with the vocabulary
// registry.
func (r *Registry) ExpandIRI(ref string) (rdf.IRI, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.expandIRI(ref)
}

func (r *Registry) expandIRI(ref string) (rdf.IRI, error) {
	switch {
	case ref == "":
		return "", fmt.Errorf("empty predicate")
	case strings.Contains(ref, "://"), strings.HasPrefix(ref, "urn:"):
		return rdf.IRI(ref), nil
	}
	if prefix, local, ok := strings.Cut(ref, ":"); ok {
		ns, known := r.prefixes[prefix]
		if !known {
			return "", fmt.Errorf("unknown prefix %q", prefix)
		}
		return rdf.IRI(ns + local), nil
	}
	meta := vocabulary.GetPredicateMetadata(ref)
	if meta == nil || meta.StandardIRI == "" {
		return "", fmt.Errorf("predicate %q is not registered with an IRI", ref)
	}
	return rdf.IRI(meta.StandardIRI), nil
}

// parseAnnotations reads an rdf tag:
//
//	rdf:"dcterms:title,mandatory;dcterms:alternative,optional,inverse,map=literal"
//
// Callers hold r.mu.
func (r *Registry) parseAnnotations(tag string) ([]Annotation, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, nil
	}
	var out []Annotation
	for _, part := range strings.Split(tag, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tokens := strings.Split(part, ",")
		iri, err := r.expandIRI(strings.TrimSpace(tokens[0]))
		if err != nil {
			return nil, err
		}
		a := Annotation{Predicate: iri}
		for _, tok := range tokens[1:] {
			tok = strings.TrimSpace(tok)
			switch {
			case tok == "inverse":
				a.Direction = Inverse
			case tok == "forward":
				a.Direction = Forward
			case strings.HasPrefix(tok, "map="):
				name := strings.TrimPrefix(tok, "map=")
				m, ok := r.mappers[name]
				if !ok {
					return nil, fmt.Errorf("unknown mapper %q", name)
				}
				a.Map = m
			default:
				c, ok := ParseCardinality(tok)
				if !ok {
					return nil, fmt.Errorf("unknown annotation option %q", tok)
				}
				a.Cardinality = c
			}
		}
		out = append(out, a)
	}
	return out, nil
}
