package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"p3a-hq/manifest/pkg/cli"
	"p3a-hq/manifest/pkg/mdl"
	"p3a-hq/manifest/pkg/mdl/compiler"
	"p3a-hq/manifest/pkg/mdl/grammar"
	"p3a-hq/manifest/pkg/mdl/schema"
	"p3a-hq/manifest/pkg/mdl/source"
	"p3a-hq/manifest/pkg/processing"
)

var inspectFlags struct {
	generation string
	dump       bool
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show how a single declaration is understood",
	Long: `Validate one declaration file and describe it.

Inspect prints the metric name, cadence and attributes, then the
definition tree one node per line. Invalid files are reported the same
way build reports them.

Examples:
  # Describe a declaration
  p3ac inspect metrics/Brave.Core.UsageDaily.yaml

  # Dump the validated declaration structure
  p3ac inspect metrics/Brave.Core.UsageDaily.yaml --dump`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectFlags.generation, "generation", "g", "", "definition grammar: v1 (flat), v2 (compositional)")
	inspectCmd.Flags().BoolVar(&inspectFlags.dump, "dump", false, "dump the validated declaration structure")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("generation") {
		cfg.Schema.Generation = inspectFlags.generation
	}

	gen, err := grammar.ParseGeneration(cfg.Schema.Generation)
	if err != nil {
		return cli.NewConfigError("schema.generation", err.Error())
	}
	c, err := mdl.NewCompiler(gen, compiler.WithContextLines(cfg.Compiler.ContextLines))
	if err != nil {
		return cli.NewCommandError("inspect", err)
	}

	entry := source.NewLoader(cfg.Metrics.Extensions...).LoadFile(args[0])
	result, compileErr := c.Compile(cmd.Context(), []compiler.Entry{entry})
	if compileErr != nil {
		report := &processing.Report{Generation: gen, Result: result, Err: compileErr}
		return finishReport(cmd, "inspect", cli.FormatText, cfg, report, compileErr)
	}

	decl := result.Declarations[entry.Name]
	out := cmd.OutOrStdout()
	writeDeclaration(out, entry.Name, gen, decl)
	if inspectFlags.dump {
		spew.Fdump(out, decl)
	}
	return nil
}

func writeDeclaration(w io.Writer, name string, gen grammar.Generation, decl *schema.Declaration) {
	fmt.Fprintf(w, "Metric:     %s\n", name)
	fmt.Fprintf(w, "Generation: %s (%s)\n", gen, gen.Name())

	cadence := "-"
	if decl.Cadence != nil {
		cadence = string(*decl.Cadence)
	}
	fmt.Fprintf(w, "Cadence:    %s\n", cadence)

	fmt.Fprintf(w, "Attributes: %s\n", joinAttributes(decl.Attributes))
	if len(decl.AppendAttributes) > 0 {
		fmt.Fprintf(w, "Appended:   %s\n", joinAttributes(decl.AppendAttributes))
	}

	var flags []string
	for _, f := range []struct {
		name string
		v    *bool
	}{
		{"ephemeral", decl.Ephemeral},
		{"constellation_only", decl.ConstellationOnly},
		{"nebula", decl.Nebula},
		{"disable_country_strip", decl.DisableCountryStrip},
		{"record_activation_date", decl.RecordActivationDate},
	} {
		if f.v != nil && *f.v {
			flags = append(flags, f.name)
		}
	}
	if len(flags) > 0 {
		fmt.Fprintf(w, "Flags:      %s\n", strings.Join(flags, ", "))
	}
	if decl.ActivationMetricName != nil {
		fmt.Fprintf(w, "Activation: %s\n", *decl.ActivationMetricName)
	}

	if decl.Definition == nil || decl.Definition.Node == nil {
		fmt.Fprintln(w, "Definition: none")
		return
	}

	fmt.Fprintln(w, "Definition:")
	for _, line := range strings.Split(strings.TrimRight(grammar.Outline(decl.Definition), "\n"), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}

	counts := grammar.Count(decl.Definition.Node)
	types := make([]string, 0, len(counts))
	for t, n := range counts {
		types = append(types, fmt.Sprintf("%s=%d", t, n))
	}
	sort.Strings(types)
	fmt.Fprintf(w, "Depth:      %d\n", grammar.Depth(decl.Definition.Node))
	fmt.Fprintf(w, "Sources:    %d\n", len(grammar.Sources(decl.Definition.Node)))
	fmt.Fprintf(w, "Nodes:      %s\n", strings.Join(types, " "))
}

func joinAttributes(attrs []schema.Attribute) string {
	if len(attrs) == 0 {
		return "-"
	}
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = string(a)
	}
	return strings.Join(parts, ", ")
}
