package dcat

import (
	"fmt"
	"reflect"
	"time"

	"github.com/c360studio/semcodec/document"
	"github.com/c360studio/semcodec/rdf"
	"github.com/c360studio/semcodec/schema"
)

// Agent is a person or organization (foaf:Agent).
type Agent struct {
	ID       rdf.IRI `codec:"id"`
	Name     string  `codec:"name" rdf:"foaf:name,mandatory"`
	Homepage string  `codec:"homepage" rdf:"foaf:homepage,optional,map=iri"`
}

// Subject returns the agent IRI. Agents without one become blank nodes.
func (a *Agent) Subject() rdf.Term { return a.ID }

// Location is a spatial region (dcterms:Location).
type Location struct {
	ID       rdf.IRI `codec:"id"`
	Label    string  `codec:"label" rdf:"skos:prefLabel,recommended"`
	Bbox     string  `codec:"bbox" rdf:"dcat:bbox,optional"`
	Geometry string  `codec:"geometry" rdf:"locn:geometry,optional"`
}

func (l *Location) Subject() rdf.Term { return l.ID }

// Resource holds the properties shared by every cataloged resource.
// Free-form statements can be attached through the embedded Extras.
type Resource struct {
	rdf.Extras
	ID          rdf.IRI             `codec:"id"`
	Title       string              `codec:"title" rdf:"dcat.resource.title,mandatory"`
	Description string              `codec:"description" rdf:"dcat.resource.description,recommended"`
	Keywords    []string            `codec:"keywords" rdf:"dcat.resource.keyword,recommended"`
	Themes      map[string]struct{} `codec:"themes" rdf:"dcat.resource.theme,optional,map=iri"`
	Publisher   *Agent              `codec:"publisher" rdf:"dcterms:publisher,recommended"`
	Issued      document.Date       `codec:"issued" rdf:"dcterms:issued,optional"`
	Modified    time.Time           `codec:"modified" rdf:"dcterms:modified,optional"`
	License     string              `codec:"license" rdf:"dcterms:license,optional,map=iri"`
}

// Subject returns the resource IRI. Resources without one become blank
// nodes.
func (r *Resource) Subject() rdf.Term { return r.ID }

// Distribution is one accessible form of a dataset.
type Distribution struct {
	ID          rdf.IRI `codec:"id"`
	Title       string  `codec:"title" rdf:"dcterms:title,optional"`
	AccessURL   string  `codec:"access_url" rdf:"dcat.distribution.access_url,mandatory,map=iri"`
	DownloadURL string  `codec:"download_url" rdf:"dcat:downloadURL,optional,map=iri"`
	MediaType   string  `codec:"media_type" rdf:"dcat.distribution.media_type,recommended"`
	ByteSize    *int64  `codec:"byte_size" rdf:"dcat.distribution.byte_size,optional"`
}

func (d *Distribution) Subject() rdf.Term { return d.ID }

// Dataset is a collection of data available in one or more distributions.
// Spatial holds either a Location or the IRI of a named place.
type Dataset struct {
	Resource
	Version       string         `codec:"version" rdf:"dcat:version,optional"`
	Distributions []Distribution `codec:"distributions" rdf:"dcat.rel.distribution,recommended"`
	Series        *DatasetSeries `codec:"in_series" rdf:"dcat.rel.in_series;dcat:seriesMember,inverse"`
	Spatial       schema.Union   `codec:"spatial" rdf:"dcterms:spatial,optional"`
}

// DatasetSeries is a dataset made of separately published datasets. Members
// point at their series with in_series; the series side is emitted as
// dcat:seriesMember.
type DatasetSeries struct {
	Dataset
	Frequency string `codec:"frequency" rdf:"dcterms:accrualPeriodicity,optional,map=iri"`
}

// Catalog lists datasets. A catalog must name its publisher.
type Catalog struct {
	Dataset
	Homepage string    `codec:"homepage" rdf:"foaf:homepage,optional,map=iri"`
	Datasets []Dataset `codec:"datasets" rdf:"dcat.rel.dataset,recommended"`
}

func init() {
	if err := Register(schema.Global()); err != nil {
		panic(err)
	}
}

// Register adds the DCAT prefixes and record types to r. Types are
// registered base first.
func Register(r *schema.Registry) error {
	registerPredicates()
	r.RegisterPrefix("dcat", Namespace)
	r.RegisterPrefix("dcterms", DctermsNamespace)
	r.RegisterPrefix("foaf", FoafNamespace)
	r.RegisterPrefix("locn", LocnNamespace)

	defs := []struct {
		sample any
		opts   []schema.Option
	}{
		{Agent{}, []schema.Option{
			schema.Class(ClassAgent),
			schema.Field("id", schema.Default(rdf.IRI(""))),
			schema.Field("homepage", schema.Default("")),
		}},
		{Location{}, []schema.Option{
			schema.Class(ClassLocation),
			schema.Field("id", schema.Default(rdf.IRI(""))),
			schema.Field("label", schema.Default("")),
			schema.Field("bbox", schema.Default("")),
			schema.Field("geometry", schema.Default("")),
		}},
		{Resource{}, []schema.Option{
			schema.Class(ClassResource),
			schema.Field("id", schema.Default(rdf.IRI(""))),
			schema.Field("description", schema.Default("")),
			schema.Field("keywords", schema.Default(nil)),
			schema.Field("themes", schema.Default(nil)),
			schema.Field("publisher", schema.Default(nil)),
			schema.Field("issued", schema.Default(document.Date{})),
			schema.Field("modified", schema.Default(time.Time{})),
			schema.Field("license", schema.Default("")),
		}},
		{Distribution{}, []schema.Option{
			schema.Class(ClassDistribution),
			schema.Field("id", schema.Default(rdf.IRI(""))),
			schema.Field("title", schema.Default("")),
			schema.Field("download_url", schema.Default("")),
			schema.Field("media_type", schema.Default("")),
			schema.Field("byte_size", schema.Default(nil)),
		}},
		{Dataset{}, []schema.Option{
			schema.Class(ClassDataset),
			schema.Field("version", schema.Default("")),
			schema.Field("distributions", schema.Default(nil)),
			schema.Field("in_series", schema.Default(nil)),
			schema.Field("spatial",
				schema.OneOf(reflect.TypeFor[Location](), reflect.TypeFor[rdf.IRI]()),
				schema.Default(schema.Union{})),
		}},
		{DatasetSeries{}, []schema.Option{
			schema.Class(ClassDatasetSeries),
			schema.Field("frequency", schema.Default("")),
		}},
		{Catalog{}, []schema.Option{
			schema.Class(ClassCatalog),
			schema.Field("homepage", schema.Default("")),
			schema.Field("datasets", schema.Default(nil)),
			schema.Field("publisher", schema.Annotate(schema.Annotation{
				Predicate:   DctermsNamespace + "publisher",
				Cardinality: schema.Mandatory,
			})),
		}},
	}
	for _, d := range defs {
		if _, err := r.Register(d.sample, d.opts...); err != nil {
			return fmt.Errorf("register dcat %T: %w", d.sample, err)
		}
	}
	return nil
}

// Records returns the DCAT record types registered in r, most general first.
func Records(r *schema.Registry) []*schema.RecordType {
	var out []*schema.RecordType
	for _, name := range []string{"Agent", "Location", "Resource", "Distribution", "Dataset", "DatasetSeries", "Catalog"} {
		if rt, ok := r.Lookup(name); ok {
			out = append(out, rt)
		}
	}
	return out
}
