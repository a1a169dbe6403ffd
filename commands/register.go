// Package commands provides the semcodec subcommands.
// Each command reads its dependencies from an Env built by the root command.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/semcodec/codec"
	"github.com/c360studio/semcodec/config"
	"github.com/c360studio/semcodec/graph"
	"github.com/c360studio/semcodec/metrics"
	"github.com/c360studio/semcodec/schema"
)

// Env carries what the subcommands share. The root command fills it in
// PersistentPreRunE, tests fill it directly.
type Env struct {
	Out io.Writer
	Err io.Writer

	Logger   *slog.Logger
	Config   *config.Config
	Registry *schema.Registry
	Metrics  *metrics.Metrics

	// Dial opens the publishing connection. Nil means DialNATS.
	Dial Dialer
	// OpenBucket opens the record store. Nil means OpenNATSBucket.
	OpenBucket BucketOpener
}

// Register adds every subcommand to root.
func Register(root *cobra.Command, env *Env) {
	root.AddCommand(
		TypesCommand(env),
		DecodeCommand(env),
		ExportCommand(env),
		StoreCommand(env),
		ConfigCommand(env),
	)
}

func (e *Env) codec() *codec.Codec {
	return codec.New(e.Registry,
		codec.WithLogger(e.Logger),
		codec.WithMetrics(e.Metrics))
}

func (e *Env) encoder() *graph.Encoder {
	return graph.NewEncoder(e.Registry,
		graph.WithLogger(e.Logger),
		graph.WithMetrics(e.Metrics))
}

func (e *Env) dialer() Dialer {
	if e.Dial != nil {
		return e.Dial
	}
	return DialNATS
}

func (e *Env) bucketOpener() BucketOpener {
	if e.OpenBucket != nil {
		return e.OpenBucket
	}
	return OpenNATSBucket
}

// selectType picks the record type for doc. A named type must exist. Without
// a name the document's shape decides: among all structural matches the one
// every other match extends wins, so a sparse document lands on the most
// general type that accepts it.
func selectType(c *codec.Codec, doc any, name string) (*schema.RecordType, error) {
	reg := c.Registry()
	if name != "" {
		rt, ok := reg.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown type %q", name)
		}
		return rt, nil
	}

	var matches []*schema.RecordType
	for _, rt := range reg.Types() {
		if c.StructurallyMatches(rt, doc) {
			matches = append(matches, rt)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no registered type matches the document", codec.ErrNoCandidate)
	case 1:
		return matches[0], nil
	}

	for _, candidate := range matches {
		general := true
		for _, other := range matches {
			if other != candidate && !other.Extends(candidate) {
				general = false
				break
			}
		}
		if general {
			return candidate, nil
		}
	}

	names := make([]string, len(matches))
	for i, rt := range matches {
		names[i] = rt.Name()
	}
	return nil, fmt.Errorf("document matches %s; use --type", strings.Join(names, ", "))
}
