package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"

	"github.com/zeu5/gridchase-rl/core"
	"github.com/zeu5/gridchase-rl/features"
	"github.com/zeu5/gridchase-rl/policies"
	"github.com/zeu5/gridchase-rl/util"
)

type stateRow struct {
	state   string
	best    core.Action
	value   float64
	entries []policies.Entry
}

func InspectCommand() *cobra.Command {
	var (
		role   string
		top    int
		format string
		color  bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <table-file>",
		Args:  cobra.ExactArgs(1),
		Short: "Print the best action of every state of a value table",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				actions []core.Action
				decode  policies.StateDecoder
				tf      policies.Format
			)
			switch role {
			case core.RoleEvader.String():
				actions, decode, tf = core.MoveActions, features.ParseEvaderState, policies.EvaderFormat()
			case core.RolePursuer.String():
				actions, decode, tf = core.IntentActions, features.ParsePursuerState, policies.PursuerFormat()
			default:
				return fmt.Errorf("unknown role %q", role)
			}
			if format != "" {
				if err := tf.Kind.UnmarshalText([]byte(format)); err != nil {
					return err
				}
			}

			q := policies.NewQTable(actions, policies.DefaultQParams())
			stats, err := policies.Load(args[0], q, tf, decode)
			if err != nil {
				return err
			}
			if stats.Missing {
				return fmt.Errorf("%s: %w", args[0], os.ErrNotExist)
			}
			for _, s := range stats.Skipped {
				logger.WithField("line", s.Line).Warn("skipped: " + s.Reason)
			}
			if !cmd.Flags().Changed("color") {
				color = util.IsTerminal(os.Stdout)
			}
			printTable(cmd.OutOrStdout(), q, top, aurora.NewAurora(color))
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", core.RoleEvader.String(), "Role the table belongs to: evader or pursuer")
	cmd.Flags().IntVar(&top, "top", 0, "Only print the N states with the highest best value, 0 prints all")
	cmd.Flags().StringVar(&format, "format", "", "Table format: delimited or jsonl, defaults to the role's format")
	cmd.Flags().BoolVar(&color, "color", false, "Colored output, defaults to on for terminals")
	return cmd
}

func printTable(out io.Writer, q *policies.QTable, top int, au aurora.Aurora) {
	rows := make(map[string]*stateRow)
	for _, e := range q.Entries() {
		h := e.State.Hash()
		r, ok := rows[h]
		if !ok {
			best, value := q.Max(e.State)
			r = &stateRow{state: h, best: best, value: value}
			rows[h] = r
		}
		r.entries = append(r.entries, e)
	}
	sorted := make([]*stateRow, 0, len(rows))
	for _, r := range rows {
		sorted = append(sorted, r)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].value != sorted[j].value {
			return sorted[i].value > sorted[j].value
		}
		return sorted[i].state < sorted[j].state
	})
	if top > 0 && top < len(sorted) {
		sorted = sorted[:top]
	}

	fmt.Fprintf(out, "%d states, %d entries\n", len(rows), q.Len())
	for _, r := range sorted {
		fmt.Fprintf(out, "%s\n  best: %s %s\n ", r.state, au.Bold(r.best).String(), colorValue(au, r.value).String())
		// Entries outside the enumeration, such as a blocked Stay, are listed too.
		for _, e := range r.entries {
			fmt.Fprintf(out, " %s=%s", e.Action, colorValue(au, e.Value).String())
		}
		fmt.Fprintln(out)
	}
}

func colorValue(au aurora.Aurora, v float64) aurora.Value {
	s := fmt.Sprintf("%.4f", v)
	switch {
	case v > 0:
		return au.Green(s)
	case v < 0:
		return au.Red(s)
	}
	return au.White(s)
}
