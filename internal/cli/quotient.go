package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/discrete/pkg/coxeter"
	"github.com/matzehuels/discrete/pkg/group"
	"github.com/matzehuels/discrete/pkg/pipeline"
)

// Output formats for quotient.
const formatSummary = "summary"

// quotientOpts holds the flags for the quotient command.
type quotientOpts struct {
	presentationFlags
	rank   int    // preset rank; 0 uses the settings file
	format string // summary or json
	output string
}

// quotientCommand creates the quotient command.
func (c *CLI) quotientCommand() *cobra.Command {
	opts := quotientOpts{format: formatSummary}

	cmd := &cobra.Command{
		Use:   "quotient",
		Short: "Enumerate a tiling's elements and tiles and link them",
		Long: `Quotient enumerates both the element table and the coset (tile) table of a
presentation, then maps every element to the tile its inverse reaches.

By default the tiling comes from the settings file; --rank selects a
built-in preset and presentation flags override both.`,
		Example: `  # Klein quartic: {7,3} with (g0 g2 g1)^8, tiles fixed by <g0, g1>
  discrete quotient --rank 3

  # Dodecahedron faces
  discrete quotient --schlafli "{5,3}" --subgroup "0 1"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuotient(cmd, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVar(&opts.rank, "rank", 0, "use the built-in preset for rank 3 or 4")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: summary, json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write output to file")

	return cmd
}

func (c *CLI) runQuotient(cmd *cobra.Command, opts quotientOpts) error {
	if err := validateFormat(opts.format, formatSummary, formatJSON); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.rank != 0 {
		preset, err := coxeter.DefaultSettings(opts.rank)
		if err != nil {
			return err
		}
		cfg.Tiling = preset
	}
	popts, err := opts.options(cmd, cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := newSpinner(ctx, cmd.ErrOrStderr(), "Enumerating quotient...")
	spin.Start()
	res, err := runner.Quotient(ctx, popts)
	spin.Stop()
	if err != nil {
		return err
	}

	return writeOutput(cmd, opts.output, func(w io.Writer) error {
		if opts.format == formatJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		writeQuotientSummary(w, popts, res)
		return nil
	})
}

func writeQuotientSummary(w io.Writer, opts pipeline.Options, res *pipeline.QuotientResult) {
	q := res.Quotient
	fmt.Fprintln(w, StyleTitle.Render("Quotient"))
	if opts.Schlafli != "" {
		printKeyValue(w, "Schläfli", opts.Schlafli)
	}
	if len(opts.Relations) > 0 {
		printKeyValue(w, "Relations", strings.Join(opts.Relations, ", "))
	}
	printKeyValue(w, "Subgroup", "<"+opts.Subgroup+">")
	printKeyValue(w, "Elements", StyleNumber.Render(fmt.Sprint(q.Elements.PointCount())))
	printKeyValue(w, "Tiles", StyleNumber.Render(fmt.Sprint(q.Cosets.PointCount())))

	sizes := q.FiberSizes()
	if len(sizes) > 0 {
		lo, hi := slices.Min(sizes), slices.Max(sizes)
		if lo == hi {
			printKeyValue(w, "Per tile", fmt.Sprint(lo))
		} else {
			printKeyValue(w, "Per tile", fmt.Sprintf("%d to %d", lo, hi))
		}
	}

	unmapped := 0
	for _, c := range q.InverseMap {
		if c == group.None {
			unmapped++
		}
	}
	if q.Complete() {
		printSuccess(w, "Both tables complete")
	} else {
		printWarning(w, "Partial result: %d elements without a tile", unmapped)
	}
	printDetail(w, "elements: %d steps, %d coincidences", res.ElementStats.Steps, res.ElementStats.Coincidences)
	printDetail(w, "tiles: %d steps, %d coincidences", res.CosetStats.Steps, res.CosetStats.Coincidences)
	if res.CacheHit {
		printDetail(w, "%s", styleCached.Render(iconCached))
	}
}
