package dcat

import "github.com/c360studio/semcodec/rdf"

// Namespace is the W3C DCAT namespace.
const Namespace = "http://www.w3.org/ns/dcat#"

// Related namespaces used by DCAT records.
const (
	DctermsNamespace = "http://purl.org/dc/terms/"
	FoafNamespace    = "http://xmlns.com/foaf/0.1/"
	LocnNamespace    = "http://www.w3.org/ns/locn#"
)

// Class IRIs emitted as rdf:type.
const (
	// ClassResource is the parent class of cataloged resources.
	ClassResource = rdf.IRI(Namespace + "Resource")

	// ClassDataset is a collection of data published by one agent.
	// Extends: ClassResource
	ClassDataset = rdf.IRI(Namespace + "Dataset")

	// ClassDatasetSeries groups datasets published separately.
	// Extends: ClassDataset
	ClassDatasetSeries = rdf.IRI(Namespace + "DatasetSeries")

	// ClassCatalog is a curated collection of dataset metadata.
	// Extends: ClassDataset
	ClassCatalog = rdf.IRI(Namespace + "Catalog")

	ClassDistribution = rdf.IRI(Namespace + "Distribution")
	ClassAgent        = rdf.IRI(FoafNamespace + "Agent")
	ClassLocation     = rdf.IRI(DctermsNamespace + "Location")
)

// Object property IRIs.
const (
	PropDistribution = Namespace + "distribution"
	PropDataset      = Namespace + "dataset"
	PropInSeries     = Namespace + "inSeries"
	PropSeriesMember = Namespace + "seriesMember"
	PropTheme        = Namespace + "theme"
	PropAccessURL    = Namespace + "accessURL"
	PropDownloadURL  = Namespace + "downloadURL"
)

// Data property IRIs.
const (
	PropKeyword   = Namespace + "keyword"
	PropMediaType = Namespace + "mediaType"
	PropByteSize  = Namespace + "byteSize"
	PropBbox      = Namespace + "bbox"
	PropGeometry  = LocnNamespace + "geometry"
)
