// tabcast validates tabular scheduling data and turns natural-language
// queries and rules into exported allocation configuration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tabcast/internal/assist"
	"tabcast/internal/core"
)

var (
	cfg *core.Config
	log core.Logger

	clientsPath string
	workersPath string
	tasksPath   string
	rulesPath   string
)

var rootCmd = &cobra.Command{
	Use:   "tabcast",
	Short: "Validate scheduling data and author allocation rules in plain language",
	Long: `tabcast ingests client, worker and task records, runs the data-quality
catalog over them, answers natural-language searches, converts plain
sentences into typed business rules, and exports the result as a
versioned configuration envelope.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = core.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if v := viper.GetString("rules"); v != "" {
			cfg.RuleStorePath = v
		}
		if rulesPath != "" {
			cfg.RuleStorePath = rulesPath
		}
		log = core.NewLogger(cfg.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&clientsPath, "clients", "", "path to clients JSON records")
	rootCmd.PersistentFlags().StringVar(&workersPath, "workers", "", "path to workers JSON records")
	rootCmd.PersistentFlags().StringVar(&tasksPath, "tasks", "", "path to tasks JSON records")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "path to the rule store (default rules.yaml)")

	viper.SetEnvPrefix("TABCAST")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("rules", rootCmd.PersistentFlags().Lookup("rules"))

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(ruleCmd)
	rootCmd.AddCommand(exportCmd)
}

// assistService wires the optional external strategy in front of the
// local heuristics. A missing API key silently disables it.
func assistService() *assist.Service {
	if !cfg.AssistEnabled() {
		return assist.NewService(nil, log)
	}
	client, err := assist.NewClient(assist.ClientConfig{
		APIKey:  cfg.AssistAPIKey,
		BaseURL: cfg.AssistBaseURL,
		Model:   cfg.AssistModel,
		Timeout: cfg.AssistTimeout,
	})
	if err != nil {
		log.Warn("assist disabled", "error", err.Error())
		return assist.NewService(nil, log)
	}
	return assist.NewService(client, log)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
