package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	derrors "github.com/matzehuels/discrete/pkg/errors"
	"github.com/matzehuels/discrete/pkg/group"
)

// Output formats for render.
const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	presentationFlags
	input  string // JSON file from `enumerate --format json`; replaces enumeration
	format string // dot or svg
	output string // output file; stdout when empty
	words  bool   // label points with words instead of indices
	layout string // graphviz layout engine
}

// renderCommand creates the render command for Cayley graphs.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG, layout: "neato"}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the Cayley graph of a group to DOT or SVG",
		Long: `Render draws the action of the generators on the points of a group: one
edge per involution pair, coloured by generator. Undefined entries of a
partial table are drawn as dashed edges to a "?" node.`,
		Example: `  discrete render --schlafli "{5,3}" --subgroup "0 1" -o dodecahedron.svg
  discrete enumerate -g 2 -r "0 1;4" -f json -o d4.json
  discrete render --input d4.json --format dot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "read the group from a JSON file instead of enumerating")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write output to file")
	cmd.Flags().BoolVar(&opts.words, "words", false, "label points with their words")
	cmd.Flags().StringVar(&opts.layout, "layout", opts.layout, "graphviz layout engine (neato, dot, circo, ...)")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, opts renderOpts) error {
	if err := validateFormat(opts.format, formatDOT, formatSVG); err != nil {
		return err
	}
	if opts.output != "" {
		if err := derrors.ValidatePath(opts.output); err != nil {
			return err
		}
	}

	g, err := c.loadGroup(cmd, opts.presentationFlags, opts.input)
	if err != nil {
		return err
	}

	dot := group.ToDOT(g, group.DOTOptions{Words: opts.words, Layout: opts.layout})
	out := []byte(dot)
	if opts.format == formatSVG {
		prog := newProgress(c.Logger)
		out, err = group.RenderSVG(dot)
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		prog.done("Rendered Cayley graph", "points", g.PointCount(), "bytes", len(out))
	}

	return writeOutput(cmd, opts.output, func(w io.Writer) error {
		_, err := w.Write(out)
		return err
	})
}

// loadGroup reads a group from input when set, otherwise enumerates the
// presentation described by flags.
func (c *CLI) loadGroup(cmd *cobra.Command, flags presentationFlags, input string) (*group.Group, error) {
	if input != "" {
		return readGroupFile(input)
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	popts, err := flags.options(cmd, cfg)
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	res, err := runner.Enumerate(cmd.Context(), popts)
	if err != nil {
		return nil, err
	}
	return res.Group, nil
}

// readGroupFile accepts either the output of `enumerate --format json` or a
// bare group document.
func readGroupFile(path string) (*group.Group, error) {
	if err := derrors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, derrors.Wrap(derrors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var wrapped struct {
		Group *group.Group `json:"group"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Group != nil {
		return wrapped.Group, nil
	}
	return group.ReadGroup(bytes.NewReader(data))
}
