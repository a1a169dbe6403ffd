package dcat

import (
	"sync"

	"github.com/c360studio/semstreams/vocabulary"
)

// Resource predicates, usable by name in rdf struct tags.
const (
	// ResourceTitle is the human-readable name of a cataloged resource.
	ResourceTitle = "dcat.resource.title"

	// ResourceDescription is the free-text account of a resource.
	ResourceDescription = "dcat.resource.description"

	// ResourceKeyword is a keyword or tag describing a resource.
	ResourceKeyword = "dcat.resource.keyword"

	// ResourceTheme is a category of the resource (skos:Concept IRI).
	ResourceTheme = "dcat.resource.theme"
)

// Relationship predicates.
const (
	// HasDistribution links a dataset to its distributions.
	// Domain: dataset, Range: distribution
	HasDistribution = "dcat.rel.distribution"

	// InSeries links a dataset to the series it belongs to.
	// Domain: dataset, Range: dataset series
	InSeries = "dcat.rel.in_series"

	// HasDataset links a catalog to the datasets it lists.
	// Domain: catalog, Range: dataset
	HasDataset = "dcat.rel.dataset"
)

// Distribution predicates.
const (
	// DistributionAccessURL is a URL giving access to the distribution.
	DistributionAccessURL = "dcat.distribution.access_url"

	// DistributionMediaType is the IANA media type of the distribution.
	DistributionMediaType = "dcat.distribution.media_type"

	// DistributionByteSize is the size of the distribution in bytes.
	DistributionByteSize = "dcat.distribution.byte_size"
)

var registerOnce sync.Once

// registerPredicates registers the DCAT predicates with the semstreams
// vocabulary so rdf tags can refer to them by name.
func registerPredicates() {
	registerOnce.Do(func() {
		vocabulary.Register(ResourceTitle,
			vocabulary.WithDescription("Name given to a cataloged resource"),
			vocabulary.WithDataType("string"),
			vocabulary.WithIRI(vocabulary.DcTitle))

		vocabulary.Register(ResourceDescription,
			vocabulary.WithDescription("Free-text account of a cataloged resource"),
			vocabulary.WithDataType("string"),
			vocabulary.WithIRI(DctermsNamespace+"description"))

		vocabulary.Register(ResourceKeyword,
			vocabulary.WithDescription("Keyword or tag describing a resource"),
			vocabulary.WithDataType("array"),
			vocabulary.WithIRI(PropKeyword))

		vocabulary.Register(ResourceTheme,
			vocabulary.WithDescription("Main category of a resource"),
			vocabulary.WithDataType("array"),
			vocabulary.WithIRI(PropTheme))

		vocabulary.Register(HasDistribution,
			vocabulary.WithDescription("Links a dataset to an available distribution"),
			vocabulary.WithDataType("entity_id"),
			vocabulary.WithIRI(PropDistribution))

		vocabulary.Register(InSeries,
			vocabulary.WithDescription("Links a dataset to the dataset series it belongs to"),
			vocabulary.WithDataType("entity_id"),
			vocabulary.WithIRI(PropInSeries))

		vocabulary.Register(HasDataset,
			vocabulary.WithDescription("Links a catalog to a dataset it lists"),
			vocabulary.WithDataType("entity_id"),
			vocabulary.WithIRI(PropDataset))

		vocabulary.Register(DistributionAccessURL,
			vocabulary.WithDescription("URL giving access to a distribution"),
			vocabulary.WithDataType("string"),
			vocabulary.WithIRI(PropAccessURL))

		vocabulary.Register(DistributionMediaType,
			vocabulary.WithDescription("IANA media type of a distribution"),
			vocabulary.WithDataType("string"),
			vocabulary.WithIRI(PropMediaType))

		vocabulary.Register(DistributionByteSize,
			vocabulary.WithDescription("Size of a distribution in bytes"),
			vocabulary.WithDataType("int"),
			vocabulary.WithIRI(PropByteSize))
	})
}
