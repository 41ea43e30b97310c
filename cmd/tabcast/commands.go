package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tabcast/internal/export"
	"tabcast/internal/query"
	"tabcast/internal/rules"
	"tabcast/internal/validate"
	"tabcast/pkg/schema"
)

var showProgress bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the data-quality catalog over the loaded collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		var progress validate.Progress
		if showProgress {
			progress = func(stage string, index, total int) {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s\n", index, total, stage)
			}
		}
		report := validate.RunWithProgress(ds, progress)
		return printJSON(report)
	},
}

var searchCollection string

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Filter one collection with a natural-language query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := schema.CollectionKind(searchCollection)
		col, err := loadCollectionByKind(kind)
		if err != nil {
			return err
		}
		q := strings.Join(args, " ")
		conds := assistService().ParseConditions(cmd.Context(), q, kind)
		result := query.Execute(conds, col)
		return printJSON(struct {
			Conditions []schema.Condition `json:"conditions"`
			Matches    any                `json:"matches"`
		}{conds, result})
	},
}

var (
	rulePriority int
	ruleOverride bool
)

var ruleCmd = &cobra.Command{
	Use:   "rule",
	Short: "Author and manage business rules",
}

var ruleSuggestCmd = &cobra.Command{
	Use:   "suggest <sentence>",
	Short: "Convert a sentence into a typed rule candidate",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		sentence := strings.Join(args, " ")
		parsed := assistService().ConvertRule(cmd.Context(), sentence, ds)
		if parsed == nil {
			return fmt.Errorf("could not understand the sentence as a rule")
		}
		return printJSON(parsed)
	},
}

var ruleAddCmd = &cobra.Command{
	Use:   "add <sentence>",
	Short: "Convert a sentence and persist the resulting rule",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		sentence := strings.Join(args, " ")
		parsed := assistService().ConvertRule(cmd.Context(), sentence, ds)
		if parsed == nil {
			return fmt.Errorf("could not understand the sentence as a rule")
		}
		store, err := rules.OpenStore(cfg.RuleStorePath)
		if err != nil {
			return err
		}
		rule, err := store.Add(parsed, rulePriority, ruleOverride)
		if err != nil {
			return err
		}
		return printJSON(rule)
	},
}

var ruleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := rules.OpenStore(cfg.RuleStorePath)
		if err != nil {
			return err
		}
		return printJSON(store.List())
	},
}

var ruleRmCmd = &cobra.Command{
	Use:   "rm <rule-id>",
	Short: "Delete a persisted rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := rules.OpenStore(cfg.RuleStorePath)
		if err != nil {
			return err
		}
		return store.Remove(args[0])
	},
}

var ruleToggleCmd = &cobra.Command{
	Use:   "toggle <rule-id>",
	Short: "Enable or disable a persisted rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := rules.OpenStore(cfg.RuleStorePath)
		if err != nil {
			return err
		}
		enabled, err := store.Toggle(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s enabled=%v\n", args[0], enabled)
		return nil
	},
}

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export findings, rules and weights as a versioned envelope",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		report := validate.Run(ds)

		store, err := rules.OpenStore(cfg.RuleStorePath)
		if err != nil {
			return err
		}

		weights, ok := schema.WeightPresets()[cfg.WeightsPreset]
		if !ok {
			weights = schema.DefaultWeights()
		}

		env := export.Build(report, store.Enabled(), weights)
		var out []byte
		if exportFormat == "yaml" {
			out, err = env.YAML()
		} else {
			out, err = env.JSON()
		}
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&showProgress, "progress", false, "print stage progress to stderr")
	searchCmd.Flags().StringVarP(&searchCollection, "collection", "c", "clients", "collection to search (clients, workers, tasks)")
	ruleAddCmd.Flags().IntVar(&rulePriority, "priority", 1, "priority of the persisted rule")
	ruleAddCmd.Flags().BoolVar(&ruleOverride, "override", false, "persist even when the rule is not directly acceptable")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format (json or yaml)")

	ruleCmd.AddCommand(ruleSuggestCmd, ruleAddCmd, ruleListCmd, ruleRmCmd, ruleToggleCmd)
}
