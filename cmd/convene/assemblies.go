package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/swarmlab/convene/internal/assembly"
	"github.com/swarmlab/convene/internal/config"
)

var (
	assembliesDir string
	assembliesTag string
)

var assembliesCmd = &cobra.Command{
	Use:   "assemblies [query]",
	Short: "List or search available assembly templates",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := assembliesDir
		if dir == "" {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			dir = cfg.Templates.Dir
		}

		loader, err := assembly.NewLoader(dir)
		if err != nil {
			return err
		}

		defs := loader.All()
		if assembliesTag != "" {
			defs = loader.ByTag(assembliesTag)
		} else if len(args) == 1 {
			defs = loader.Search(args[0])
		}

		if len(defs) == 0 {
			fmt.Println("No assembly templates found.")
			return nil
		}

		bold := color.New(color.Bold)
		for _, def := range defs {
			bold.Printf("%s", def.Name)
			fmt.Printf(" v%s\n", def.Version)
			if def.Description != "" {
				fmt.Printf("  %s\n", def.Description)
			}
			fmt.Printf("  roles: %s\n", strings.Join(def.RoleNames(), ", "))
			if tags := def.Tags(); len(tags) > 0 {
				fmt.Printf("  tags: %s\n", strings.Join(tags, ", "))
			}
			if d := def.EstimatedDuration(); d != "" {
				fmt.Printf("  estimated duration: %s\n", d)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	assembliesCmd.Flags().StringVarP(&assembliesDir, "dir", "d", "", "Templates directory (defaults to the configured one)")
	assembliesCmd.Flags().StringVar(&assembliesTag, "tag", "", "Filter templates by tag")
}
