// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/recipe-engine/internal/aggregate"
	"github.com/pdiddy/recipe-engine/internal/classify"
	"github.com/pdiddy/recipe-engine/internal/draft"
	"github.com/pdiddy/recipe-engine/internal/ingest"
	"github.com/pdiddy/recipe-engine/internal/store"
	"github.com/pdiddy/recipe-engine/pkg/types"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Edit the recipe draft (new, add, quantity, remove, submit)",
	Long: `Draft edits the recipe being composed. The draft lives in a YAML file
(--draft, default drafts/current.yaml). Adding an ingredient leaves the
totals unchanged until its quantity is set; every quantity change and
removal recomputes the totals, the additive list and the score.`,
}

// --- new / rename ---

var draftNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Start a new recipe draft",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDraftNew,
}

func runDraftNew(cmd *cobra.Command, args []string) error {
	cfg, err := engineConfig()
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(cfg.DraftPath); err == nil && !force {
		return fmt.Errorf("draft %s already exists: submit it or pass --force", cfg.DraftPath)
	}

	ed, err := newEditor(cfg)
	if err != nil {
		return err
	}
	r := ed.New(strings.Join(args, " "))
	if err := draft.Save(cfg.DraftPath, r); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Started draft %q in %s\n", r.Name, cfg.DraftPath)
	return nil
}

var draftRenameCmd = &cobra.Command{
	Use:   "rename <name>",
	Short: "Rename the recipe draft",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editDraft(cmd, func(ed *draft.Editor, r types.Recipe) (types.Recipe, error) {
			r = ed.Rename(r, strings.Join(args, " "))
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed draft to %q\n", r.Name)
			return r, nil
		})
	},
}

// --- add ---

var draftAddCmd = &cobra.Command{
	Use:   "add <ingredients-file>",
	Short: "Add ingredients from a lookup result file",
	Long: `Add reads ingredient records from a JSON or YAML file as returned by
the ingredient lookup service and appends them to the draft without a
quantity. Use --query to pick records by product name; when several records
match, pass --all to add every match.`,
	Args: cobra.ExactArgs(1),
	RunE: runDraftAdd,
}

func runDraftAdd(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	all, _ := cmd.Flags().GetBool("all")

	records, err := ingest.LoadFile(args[0])
	if err != nil {
		return err
	}
	selected := ingest.Select(records, query)
	switch {
	case len(selected) == 0:
		return fmt.Errorf("no ingredient in %s matches %q", args[0], query)
	case len(selected) > 1 && !all:
		names := make([]string, len(selected))
		for i, rec := range selected {
			names[i] = rec.ProductName
		}
		return fmt.Errorf("%d ingredients match (%s): narrow --query or pass --all",
			len(selected), strings.Join(names, ", "))
	}

	return editDraft(cmd, func(ed *draft.Editor, r types.Recipe) (types.Recipe, error) {
		for _, rec := range selected {
			var ing types.RecipeIngredient
			r, ing = ed.AddIngredient(r, rec)
			fmt.Fprintf(cmd.OutOrStdout(), "added   %s  %s\n", ing.ID, ing.ProductName)
		}
		return r, nil
	})
}

// --- quantity / remove ---

var draftQuantityCmd = &cobra.Command{
	Use:   "quantity <ingredient-id> <amount>",
	Short: "Set the quantity of an ingredient and recompute the draft",
	Long: `Quantity sets the amount of one ingredient, in the same unit basis as
its per-100 values. The ingredient ID may be shortened to any unique prefix.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseFloat(strings.ReplaceAll(args[1], ",", "."), 64)
		if err != nil {
			return fmt.Errorf("invalid quantity %q: %w", args[1], err)
		}
		return editDraft(cmd, func(ed *draft.Editor, r types.Recipe) (types.Recipe, error) {
			id, err := resolveIngredient(r, args[0])
			if err != nil {
				return r, err
			}
			r, err = ed.UpdateQuantity(cmd.Context(), r, id, amount)
			if err != nil {
				return r, err
			}
			printRecipe(cmd.OutOrStdout(), r)
			return r, nil
		})
	},
}

var draftRemoveCmd = &cobra.Command{
	Use:   "remove <ingredient-id>",
	Short: "Remove an ingredient and recompute the draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editDraft(cmd, func(ed *draft.Editor, r types.Recipe) (types.Recipe, error) {
			id, err := resolveIngredient(r, args[0])
			if err != nil {
				return r, err
			}
			r, err = ed.RemoveIngredient(cmd.Context(), r, id)
			if err != nil {
				return r, err
			}
			printRecipe(cmd.OutOrStdout(), r)
			return r, nil
		})
	},
}

// --- show / submit ---

var draftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the recipe draft",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := engineConfig()
		if err != nil {
			return err
		}
		r, err := loadDraft(cfg)
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return writeJSON(cmd.OutOrStdout(), r)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Status: %s\n", draft.StatusOf(r))
		printRecipe(cmd.OutOrStdout(), r)
		return nil
	},
}

var draftSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Save the recipe draft to the recipe store",
	Long: `Submit re-derives every ingredient of the draft, recomputes the totals
and score, and saves the recipe. A draft opened with "recipes edit" replaces
the stored recipe; any other draft creates a new one. The draft file is
removed afterwards unless --keep is given.`,
	Args: cobra.NoArgs,
	RunE: runDraftSubmit,
}

func runDraftSubmit(cmd *cobra.Command, args []string) error {
	keep, _ := cmd.Flags().GetBool("keep")

	cfg, err := engineConfig()
	if err != nil {
		return err
	}
	r, err := loadDraft(cfg)
	if err != nil {
		return err
	}
	if err := draft.ValidateForSubmit(r); err != nil {
		return err
	}
	ed, err := newEditor(cfg)
	if err != nil {
		return err
	}
	r = ed.Refresh(cmd.Context(), r)

	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	saved, result, err := st.Save(cmd.Context(), r)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %q (score %s)\n", result, saved.ID, saved.Name, saved.Score)

	if !keep {
		if err := os.Remove(cfg.DraftPath); err != nil {
			return fmt.Errorf("removing submitted draft: %w", err)
		}
	}
	return nil
}

// --- shared helpers ---

// newEditor builds a draft editor scoring with the configured classifier.
func newEditor(cfg types.EngineConfig) (*draft.Editor, error) {
	c, err := classify.New(cfg.Classifier)
	if err != nil {
		return nil, err
	}
	return draft.NewEditor(aggregate.New(c)), nil
}

func loadDraft(cfg types.EngineConfig) (types.Recipe, error) {
	r, err := draft.Load(cfg.DraftPath)
	if errors.Is(err, os.ErrNotExist) {
		return r, fmt.Errorf("no draft at %s: start one with \"draft new\"", cfg.DraftPath)
	}
	return r, err
}

// editDraft loads the draft, applies edit and saves the result.
func editDraft(cmd *cobra.Command, edit func(*draft.Editor, types.Recipe) (types.Recipe, error)) error {
	cfg, err := engineConfig()
	if err != nil {
		return err
	}
	r, err := loadDraft(cfg)
	if err != nil {
		return err
	}
	ed, err := newEditor(cfg)
	if err != nil {
		return err
	}
	r, err = edit(ed, r)
	if err != nil {
		return err
	}
	return draft.Save(cfg.DraftPath, r)
}

// resolveIngredient maps an ingredient ID or unique ID prefix to its full ID.
func resolveIngredient(r types.Recipe, ref string) (string, error) {
	if _, ok := r.Ingredient(ref); ok {
		return ref, nil
	}
	var matches []string
	for _, ing := range r.Ingredients {
		if strings.HasPrefix(ing.ID, ref) {
			matches = append(matches, ing.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", draft.ErrIngredientNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ingredient prefix %q is ambiguous: %s", ref, strings.Join(matches, ", "))
	}
}

func init() {
	draftNewCmd.Flags().Bool("force", false, "overwrite an existing draft")

	draftAddCmd.Flags().String("query", "", "pick records whose product name contains this text")
	draftAddCmd.Flags().Bool("all", false, "add every matching record")

	draftShowCmd.Flags().Bool("json", false, "output the draft as JSON")

	draftSubmitCmd.Flags().Bool("keep", false, "keep the draft file after submitting")

	draftCmd.AddCommand(draftNewCmd)
	draftCmd.AddCommand(draftRenameCmd)
	draftCmd.AddCommand(draftAddCmd)
	draftCmd.AddCommand(draftQuantityCmd)
	draftCmd.AddCommand(draftRemoveCmd)
	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftSubmitCmd)

	rootCmd.AddCommand(draftCmd)
}
