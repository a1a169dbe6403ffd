// Package dcat declares W3C DCAT 3 record types for the codec: catalogs,
// datasets, dataset series, distributions and the agents that publish them.
//
// The records only declare schemas. Decoding a catalog file and exporting it
// as RDF is done with the codec and graph packages.
//
// Import this package to auto-register predicates and record types:
//
//	import _ "github.com/c360studio/semcodec/vocabulary/dcat"
package dcat
