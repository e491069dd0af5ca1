package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deskmesh/deskmesh"
	"github.com/deskmesh/deskmesh/specialist"
	"github.com/deskmesh/deskmesh/taskdesk"
)

var purgeTasks bool

var assistCmd = &cobra.Command{
	Use:   "assist",
	Short: "Interactive task management assistant backed by SQLite",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := taskdesk.Open(cfg.TaskDB)
		if err != nil {
			return err
		}
		defer store.Close()

		if purgeTasks {
			if err := store.Purge(); err != nil {
				return err
			}
		}

		desk, err := deskmesh.New(func(o *deskmesh.Options) {
			o.Config = &cfg
		})
		if err != nil {
			return err
		}

		err = desk.Register(
			specialist.New("tasks", "Manages projects and tasks: create, list, update and delete", desk.Model(),
				func(o *specialist.Options) {
					o.Instruction = fmt.Sprintf(
						"You are a task management assistant. Today is %s. "+
							"Use your tools to manage projects and tasks. "+
							"Always include the link when you mention a project or task.",
						time.Now().Format("2006-01-02"))
					o.Tools = taskdesk.Tools(store)
				}),
		)
		if err != nil {
			return err
		}

		return repl(desk, "DeskMesh task assistant")
	},
}

func init() {
	assistCmd.Flags().BoolVar(&purgeTasks, "purge", false, "Delete all projects and tasks before starting")
	rootCmd.AddCommand(assistCmd)
}
