package main

import (
	"fmt"
	"strings"

	"github.com/flanksource/clicky"
	"github.com/flanksource/understudy/fixtures"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:          "actions [patterns...]",
	Short:        "List the actions fixture documents define",
	RunE:         runActions,
	SilenceUsage: true,
}

type actionRow struct {
	Source  string `json:"source" pretty:"label=Source,style=text-gray-500"`
	Action  string `json:"action" pretty:"label=Action,style=text-blue-600"`
	Rules   int    `json:"rules" pretty:"label=Rules"`
	Guarded int    `json:"guarded,omitempty" pretty:"label=Guarded,omitempty"`
}

func runActions(cmd *cobra.Command, args []string) error {
	patterns := args
	if len(patterns) == 0 {
		patterns = fixtures.DefaultPatterns()
	}

	docs, err := fixtures.LoadAll(patterns)
	if err != nil {
		return err
	}

	var rows []actionRow
	for _, doc := range docs {
		for _, action := range doc.Actions {
			guarded := lo.CountBy(action.Rules, func(rule fixtures.Rule) bool { return rule.Expr != "" })
			rows = append(rows, actionRow{
				Source:  doc.Source,
				Action:  action.Name,
				Rules:   len(action.Rules),
				Guarded: guarded,
			})
		}
	}
	if len(rows) == 0 {
		return fmt.Errorf("no actions found in %s", strings.Join(patterns, ", "))
	}

	fmt.Println(clicky.MustFormat(rows))
	return nil
}

func init() {
	rootCmd.AddCommand(actionsCmd)
}
