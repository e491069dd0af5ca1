package main

import (
	"github.com/spf13/cobra"

	"github.com/deskmesh/deskmesh"
	"github.com/deskmesh/deskmesh/specialist"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive call-centre chat with routed specialists",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		desk, err := deskmesh.New(func(o *deskmesh.Options) {
			o.Config = &cfg
		})
		if err != nil {
			return err
		}

		m := desk.Model()
		err = desk.Register(
			specialist.New("billing", "Handles billing, payments, refunds and account charges", m,
				func(o *specialist.Options) {
					o.Instruction = "You are a billing support agent. " +
						"Answer questions about invoices, payments, refunds and account charges."
				}),
			specialist.New("technical", "Handles connectivity, router and device problems", m,
				func(o *specialist.Options) {
					o.Instruction = "You are a technical support agent. " +
						"Diagnose connectivity, router and device problems step by step."
				}),
			specialist.New("products", "Handles plans, upgrades and product availability", m,
				func(o *specialist.Options) {
					o.Instruction = "You are a product advisor. " +
						"Answer questions about plans, upgrades and product availability."
				}),
		)
		if err != nil {
			return err
		}

		return repl(desk, "DeskMesh call centre")
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
