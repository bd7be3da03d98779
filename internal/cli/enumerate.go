package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	derrors "github.com/matzehuels/discrete/pkg/errors"
	"github.com/matzehuels/discrete/pkg/pipeline"
)

// Output formats for enumerate.
const (
	formatTable = "table"
	formatText  = "text"
	formatJSON  = "json"
)

// enumerateOpts holds the flags for the enumerate command.
type enumerateOpts struct {
	presentationFlags
	format  string // table, text or json
	output  string // file path; empty writes to stdout
	maxRows int    // rows shown by the table format
}

// enumerateCommand creates the enumerate command.
func (c *CLI) enumerateCommand() *cobra.Command {
	opts := enumerateOpts{format: formatTable, maxRows: 64}

	cmd := &cobra.Command{
		Use:   "enumerate",
		Short: "Enumerate the cosets of a subgroup (or the group elements)",
		Long: `Enumerate runs Todd-Coxeter coset enumeration and prints the resulting
multiplication table, with the word reaching each point from the identity.

Without presentation flags the tiling from the settings file is used.`,
		Example: `  # Dihedral group of order 6
  discrete enumerate -g 2 -r "0 1;3"

  # Faces of the dodecahedron as cosets of <g0, g1>
  discrete enumerate --schlafli "{5,3}" --subgroup "0 1"

  # First 20 steps of the infinite {7,3} group, as JSON
  discrete enumerate --schlafli "{7,3}" --limit 20 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEnumerate(cmd, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: table, text, json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write output to file")
	cmd.Flags().IntVar(&opts.maxRows, "max-rows", opts.maxRows, "rows shown in table format (0 for all)")

	return cmd
}

func (c *CLI) runEnumerate(cmd *cobra.Command, opts enumerateOpts) error {
	if err := validateFormat(opts.format, formatTable, formatText, formatJSON); err != nil {
		return err
	}
	if opts.output != "" {
		if err := derrors.ValidatePath(opts.output); err != nil {
			return err
		}
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
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

	res, err := runner.Enumerate(ctx, popts)
	if err != nil {
		return err
	}

	return writeOutput(cmd, opts.output, func(w io.Writer) error {
		return writeEnumeration(w, res, opts.format, opts.maxRows)
	})
}

func writeEnumeration(w io.Writer, res *pipeline.Result, format string, maxRows int) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case formatText:
		_, err := io.WriteString(w, res.Group.String())
		return err
	}
	fmt.Fprintln(w, renderGroupTable(res.Group, maxRows))
	printStats(w, res.Stats, res.CacheHit)
	return nil
}

// writeOutput calls fn with stdout, or with the file at path when set.
func writeOutput(cmd *cobra.Command, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	printSuccess(cmd.ErrOrStderr(), "Wrote output")
	printFile(cmd.ErrOrStderr(), path)
	return nil
}

func validateFormat(format string, valid ...string) error {
	if slices.Contains(valid, format) {
		return nil
	}
	return derrors.New(derrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %v)", format, valid)
}
