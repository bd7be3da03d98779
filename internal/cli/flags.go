package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/discrete/pkg/config"
	"github.com/matzehuels/discrete/pkg/pipeline"
)

// presentationFlags are the flags shared by every command that enumerates.
type presentationFlags struct {
	generators int
	schlafli   string
	relations  []string
	subgroup   string
	limit      int
	refresh    bool
}

// register adds the presentation flags to cmd.
func (f *presentationFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVarP(&f.generators, "generators", "g", 0, "number of involutive generators")
	fs.StringVar(&f.schlafli, "schlafli", "", `Schläfli symbol supplying the Coxeter relations, e.g. "{7,3}"`)
	fs.StringArrayVarP(&f.relations, "relation", "r", nil, `relation word, e.g. "0 1;3" for (g0 g1)^3 (repeatable)`)
	fs.StringVarP(&f.subgroup, "subgroup", "s", "", `subgroup generators, e.g. "0 1"`)
	fs.IntVarP(&f.limit, "limit", "n", 0, "maximum discovery steps (default from config)")
	fs.BoolVar(&f.refresh, "refresh", false, "ignore cached results")
}

// explicit reports whether any flag describes a presentation. Without one
// the tiling from the settings file is used.
func (f *presentationFlags) explicit(cmd *cobra.Command) bool {
	fs := cmd.Flags()
	return fs.Changed("generators") || fs.Changed("schlafli") || fs.Changed("relation")
}

// options merges the flags over cfg.
func (f *presentationFlags) options(cmd *cobra.Command, cfg config.Config) (pipeline.Options, error) {
	var opts pipeline.Options
	if f.explicit(cmd) {
		opts = pipeline.Options{
			Generators: f.generators,
			Schlafli:   f.schlafli,
			Relations:  f.relations,
			Subgroup:   f.subgroup,
		}
	} else {
		opts = pipeline.OptionsFromSettings(cfg.Tiling, cfg.Limit)
		if cmd.Flags().Changed("subgroup") {
			opts.Subgroup = f.subgroup
		}
	}

	opts.Limit = cfg.Limit
	if cmd.Flags().Changed("limit") {
		opts.Limit = f.limit
	}
	opts.Refresh = f.refresh

	ttl, err := cfg.CacheTTL()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts.TTL = ttl
	return opts, nil
}
