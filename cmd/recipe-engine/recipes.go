// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/recipe-engine/internal/draft"
	"github.com/pdiddy/recipe-engine/internal/store"
	"github.com/pdiddy/recipe-engine/pkg/types"
)

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Query, export and manage stored recipes",
	Long: `Recipes reads the local recipe store (--store-dir, default data/). Use
subcommands to list, show, delete or export recipes, or to reopen one as
the draft for further editing.`,
}

// --- list ---

var recipesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored recipes, most recently updated first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			recipes, err := st.List(cmd.Context(), listOptsFromFlags(cmd))
			if err != nil {
				return err
			}
			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				if recipes == nil {
					recipes = []types.Recipe{}
				}
				return writeJSON(cmd.OutOrStdout(), recipes)
			}
			return formatListOutput(cmd.OutOrStdout(), recipes)
		})
	},
}

func formatListOutput(w io.Writer, recipes []types.Recipe) error {
	if len(recipes) == 0 {
		fmt.Fprintln(w, "No recipes found.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-30s  %5s  %10s  %10s  %s\n",
		"ID", "Name", "Ingr.", "Quantity", "kcal", "Score")
	fmt.Fprintln(w, strings.Repeat("-", 106))
	for _, r := range recipes {
		fmt.Fprintf(w, "%-36s  %-30s  %5d  %10.2f  %10.2f  %s\n",
			r.ID, shorten(r.Name, 30), len(r.Ingredients), r.Quantity,
			r.NutrientTotals.TotalCalories, r.Score)
	}
	fmt.Fprintf(w, "\n%d recipes\n", len(recipes))
	return nil
}

// --- show / delete ---

var recipesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one stored recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			r, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			printRecipe(cmd.OutOrStdout(), r)
			return nil
		})
	},
}

var recipesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		})
	},
}

// --- edit ---

var recipesEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Open a stored recipe as the draft",
	Long: `Edit copies a stored recipe into the draft file. Submitting the draft
afterwards replaces the stored recipe instead of creating a new one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := engineConfig()
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(cfg.DraftPath); err == nil && !force {
			return fmt.Errorf("draft %s already exists: submit it or pass --force", cfg.DraftPath)
		}
		return withStore(func(st *store.Store) error {
			r, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := draft.Save(cfg.DraftPath, r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened %q as draft in %s\n", r.Name, cfg.DraftPath)
			return nil
		})
	},
}

// --- export ---

var recipesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored recipes to YAML or JSON",
	Long: `Export writes every stored recipe (or a filtered subset) to stdout or to
the file given with --output. Supports the same filter flags as list.`,
	Args: cobra.NoArgs,
	RunE: runRecipesExport,
}

func runRecipesExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	if format != "yaml" && format != "json" {
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	w := cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer f.Close()
		w = f
	}

	err := withStore(func(st *store.Store) error {
		opts := listOptsFromFlags(cmd)
		if format == "json" {
			return st.ExportJSON(cmd.Context(), w, opts)
		}
		return st.ExportYAML(cmd.Context(), w, opts)
	})
	if err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
	}
	return nil
}

// --- shared helpers ---

// withStore opens the configured store for the duration of fn.
func withStore(fn func(*store.Store) error) error {
	cfg, err := engineConfig()
	if err != nil {
		return err
	}
	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func listOptsFromFlags(cmd *cobra.Command) store.ListOptions {
	name, _ := cmd.Flags().GetString("name")
	score, _ := cmd.Flags().GetString("score")
	limit, _ := cmd.Flags().GetInt("limit")
	return store.ListOptions{
		Name:  name,
		Score: types.Score(strings.ToUpper(score)),
		Limit: limit,
	}
}

func init() {
	for _, c := range []*cobra.Command{recipesListCmd, recipesExportCmd} {
		c.Flags().String("name", "", "filter by text in the recipe name")
		c.Flags().String("score", "", "filter by score class (A-E)")
	}
	recipesListCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	recipesListCmd.Flags().Bool("json", false, "output results as JSON")

	recipesShowCmd.Flags().Bool("json", false, "output the recipe as JSON")

	recipesEditCmd.Flags().Bool("force", false, "overwrite an existing draft")

	recipesExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	recipesExportCmd.Flags().String("output", "", "write to this file instead of stdout")
	recipesExportCmd.Flags().Int("limit", 0, "maximum recipes to export (0 = all)")

	recipesCmd.AddCommand(recipesListCmd)
	recipesCmd.AddCommand(recipesShowCmd)
	recipesCmd.AddCommand(recipesDeleteCmd)
	recipesCmd.AddCommand(recipesEditCmd)
	recipesCmd.AddCommand(recipesExportCmd)

	rootCmd.AddCommand(recipesCmd)
}
