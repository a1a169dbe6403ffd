package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/c360studio/semcodec/schema"
)

// TypesCommand lists the registered record types, or the fields of one.
func TypesCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "types [name]",
		Short: "List registered record types",
		Long: `List the record types known to the registry with their bases and
rdf:type classes. Given a type name, list its fields instead: document key,
Go type, shape, whether the key may be absent, and graph annotations.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				rt, ok := env.Registry.Lookup(args[0])
				if !ok {
					return fmt.Errorf("unknown type %q", args[0])
				}
				return printFields(env, rt)
			}
			return printTypes(env)
		},
	}
}

func printTypes(env *Env) error {
	w := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tBASES\tFIELDS\tCLASSES")
	for _, rt := range env.Registry.Types() {
		bases := make([]string, 0, len(rt.Bases()))
		for _, b := range rt.Bases() {
			bases = append(bases, b.Name())
		}
		classes := make([]string, 0)
		for _, c := range rt.Classes() {
			classes = append(classes, string(c))
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			rt.Name(), orDash(strings.Join(bases, ", ")), len(rt.Fields()), orDash(strings.Join(classes, " ")))
	}
	return w.Flush()
}

func printFields(env *Env, rt *schema.RecordType) error {
	w := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tGO TYPE\tSHAPE\tOPTIONAL\tOWNER\tANNOTATIONS")
	for _, f := range rt.Fields() {
		annotations := make([]string, len(f.Annotations))
		for i, a := range f.Annotations {
			annotations[i] = a.String()
		}
		optional := "no"
		if f.HasDefault() {
			optional = "yes"
		}
		key := f.Name
		if !f.Construct {
			key += " (post)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			key, f.Type, env.Registry.ShapeOf(f.Type), optional, f.Owner, orDash(strings.Join(annotations, "; ")))
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
