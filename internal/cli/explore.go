package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/discrete/pkg/group"
)

// exploreCommand creates the explore command: an interactive walk over a
// group where each digit key applies a generator.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		flags presentationFlags
		input string
	)

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Walk a group interactively, one key per generator",
		Long: `Explore enumerates a group (or loads one with --input) and opens an
interactive view. Press 0-9 to apply a generator to the current point,
backspace to step back, r to return to the identity and q to quit.`,
		Example: `  discrete explore --schlafli "{5,3}"
  discrete explore --input klein.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGroup(cmd, flags, input)
			if err != nil {
				return err
			}
			p := tea.NewProgram(newExploreModel(g),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err = p.Run()
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&input, "input", "i", "", "read the group from a JSON file instead of enumerating")

	return cmd
}

// =============================================================================
// exploreModel - Interactive group walk
// =============================================================================

var (
	explorePointStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	exploreHelpStyle  = lipgloss.NewStyle().Foreground(colorDim)
	exploreBoxStyle   = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// exploreModel is the bubbletea model for explore.
type exploreModel struct {
	group   *group.Group
	current group.Point

	// path is the generators applied so far; trail the points they left.
	path  group.Word
	trail []group.Point

	message string
}

func newExploreModel(g *group.Group) exploreModel {
	return exploreModel{group: g, current: group.Identity}
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.message = ""
	switch s := key.String(); s {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "backspace", "u":
		if n := len(m.trail); n > 0 {
			m.current = m.trail[n-1]
			m.trail = m.trail[:n-1]
			m.path = m.path[:len(m.path)-1]
		}
	case "r", "home":
		m.current = group.Identity
		m.path = nil
		m.trail = nil
	default:
		gen, err := strconv.Atoi(s)
		if err != nil || len(s) != 1 {
			return m, nil
		}
		m = m.apply(group.Generator(gen))
	}
	return m, nil
}

// apply moves along generator gen, leaving a message when it cannot.
func (m exploreModel) apply(gen group.Generator) exploreModel {
	if int(gen) >= m.group.GeneratorCount() {
		m.message = fmt.Sprintf("no generator g%d (group has %d)", gen, m.group.GeneratorCount())
		return m
	}
	next, ok := m.group.MulGen(m.current, gen)
	if !ok {
		m.message = fmt.Sprintf("g%d is undefined at point %d (partial table)", gen, m.current)
		return m
	}
	m.trail = append(m.trail, m.current)
	m.path = m.path.Append(gen)
	m.current = next
	return m
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Explore"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d points · %d generators", m.group.PointCount(), m.group.GeneratorCount())))
	b.WriteString("\n\n")

	var body strings.Builder
	fmt.Fprintf(&body, "point  %s\n", explorePointStyle.Render(strconv.Itoa(int(m.current))))
	fmt.Fprintf(&body, "word   %s\n", m.group.Word(m.current))
	fmt.Fprintf(&body, "path   %s\n\n", m.path)
	for gen, r := range m.group.Row(m.current) {
		style := lipgloss.NewStyle().Foreground(generatorColors[gen%len(generatorColors)])
		target := iconUnknown
		if r != group.None {
			target = strconv.Itoa(int(r))
		}
		if r == m.current {
			target += " (fixed)"
		}
		fmt.Fprintf(&body, "%s %s %s\n", style.Render(fmt.Sprintf("g%d", gen)), StyleDim.Render(iconArrow), target)
	}
	b.WriteString(exploreBoxStyle.Render(strings.TrimRight(body.String(), "\n")))
	b.WriteString("\n")

	if m.message != "" {
		b.WriteString(StyleWarning.Render(m.message))
		b.WriteString("\n")
	}
	b.WriteString(exploreHelpStyle.Render("0-9 apply generator  ⌫ back  r reset  q quit"))
	b.WriteString("\n")
	return b.String()
}
