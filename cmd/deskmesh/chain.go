package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deskmesh/deskmesh/chain"
	"github.com/deskmesh/deskmesh/model"
)

var chainCity string

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Run the city-insights prompt chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		m, err := cfg.NewModel()
		if err != nil {
			return err
		}
		tracked := model.TrackUsage(m)

		insights := chain.New("city-insights", []chain.Step{
			{
				Name:        "country",
				Model:       tracked,
				Instruction: "Reply with a single country name, no punctuation.",
				Prompt:      "Which country is the city of {{.city}} in?",
				OutputKey:   "country",
			},
			{
				Name:   "fact",
				Model:  tracked,
				Prompt: "Share one surprising fact about {{.country}} in two sentences.",
			},
		}, func(o *chain.Options) {
			o.Logger = cfg.NewLogger()
		})

		result, err := insights.Run(context.Background(), chain.State{"city": chainCity})
		if err != nil {
			return err
		}

		fmt.Printf("Country: %s\n", result.State["country"])
		fmt.Printf("Fact: %s\n", result.State["fact"])
		fmt.Printf("Tokens used: %d\n", tracked.Usage().TotalTokens)
		return nil
	},
}

func init() {
	chainCmd.Flags().StringVar(&chainCity, "city", "Marseille", "City to look up")
	rootCmd.AddCommand(chainCmd)
}
