// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists submitted recipes in a SQLite database.
//
// A recipe row holds the totals, additive set and score; its ingredients
// live in a child table ordered by position. Nested ingredient fields are
// stored as JSON text columns.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/recipe-engine/internal/draft"
	"github.com/pdiddy/recipe-engine/internal/log"
	"github.com/pdiddy/recipe-engine/pkg/types"
)

const (
	dbFile       = "recipes.db"
	defaultLimit = 50

	// timeLayout is fixed-width so that timestamps sort as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// ErrNotFound is returned when no recipe has the requested ID.
var ErrNotFound = errors.New("recipe not found")

// SaveResult tells whether Save inserted or replaced a recipe.
type SaveResult string

const (
	SaveCreated SaveResult = "created"
	SaveUpdated SaveResult = "updated"
)

// Store manages the recipe SQLite database.
type Store struct {
	db           *sql.DB
	dir          string
	defaultLimit int
	now          func() time.Time
}

// NewStore opens or creates dir/recipes.db and creates the schema if it
// does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	limit := cfg.DefaultLimit
	if limit <= 0 {
		limit = defaultLimit
	}

	s := &Store{
		db:           db,
		dir:          dir,
		defaultLimit: limit,
		now:          func() time.Time { return time.Now().UTC() },
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, dbFile)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS recipes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			quantity REAL NOT NULL,
			calories REAL NOT NULL,
			fat REAL NOT NULL,
			saturated_fat REAL NOT NULL,
			carbohydrates REAL NOT NULL,
			sugars REAL NOT NULL,
			proteins REAL NOT NULL,
			salt REAL NOT NULL,
			additives TEXT NOT NULL,
			nutriscore TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ingredients (
			recipe_id TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			product_name TEXT NOT NULL,
			brand TEXT,
			source TEXT,
			calories_100 REAL,
			quantity REAL,
			calories_current REAL,
			nutriments TEXT NOT NULL,
			scaled_nutriments TEXT NOT NULL,
			additives_tags TEXT NOT NULL,
			PRIMARY KEY (recipe_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recipes_name ON recipes(name)`,
		`CREATE INDEX IF NOT EXISTS idx_recipes_nutriscore ON recipes(nutriscore)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save persists r. A recipe without an ID is created under a new ID; a
// recipe with an ID replaces the stored one, keeping its creation time.
// Recipes without ingredients are rejected with draft.ErrNoIngredients.
func (s *Store) Save(ctx context.Context, r types.Recipe) (types.Recipe, SaveResult, error) {
	if err := draft.ValidateForSubmit(r); err != nil {
		return r, "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return r, "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	out := r
	now := s.now()
	result := SaveCreated
	out.CreatedAt = now
	out.UpdatedAt = now

	if out.ID == "" {
		out.ID = uuid.NewString()
	} else {
		var created string
		err := tx.QueryRowContext(ctx, `SELECT created_at FROM recipes WHERE id = ?`, out.ID).Scan(&created)
		switch {
		case err == nil:
			result = SaveUpdated
			if t, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
				out.CreatedAt = t
			}
		case errors.Is(err, sql.ErrNoRows):
		default:
			return r, "", fmt.Errorf("looking up recipe %s: %w", out.ID, err)
		}
	}

	additivesJSON, err := json.Marshal(additivesOrEmpty(out.Additives))
	if err != nil {
		return r, "", fmt.Errorf("encoding additives: %w", err)
	}
	t := out.NutrientTotals
	_, err = tx.ExecContext(ctx,
		`INSERT INTO recipes (id, name, quantity, calories, fat, saturated_fat, carbohydrates,
			sugars, proteins, salt, additives, nutriscore, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, quantity=excluded.quantity, calories=excluded.calories,
			fat=excluded.fat, saturated_fat=excluded.saturated_fat,
			carbohydrates=excluded.carbohydrates, sugars=excluded.sugars,
			proteins=excluded.proteins, salt=excluded.salt, additives=excluded.additives,
			nutriscore=excluded.nutriscore, updated_at=excluded.updated_at`,
		out.ID, out.Name, out.Quantity, t.TotalCalories, t.Fat, t.SaturatedFat, t.Carbohydrates,
		t.Sugars, t.Proteins, t.Salt, string(additivesJSON), nullString(string(out.Score)),
		formatTime(out.CreatedAt), formatTime(out.UpdatedAt),
	)
	if err != nil {
		return r, "", fmt.Errorf("upserting recipe: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM ingredients WHERE recipe_id = ?`, out.ID); err != nil {
		return r, "", fmt.Errorf("deleting old ingredients: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ingredients (recipe_id, position, id, product_name, brand, source,
			calories_100, quantity, calories_current, nutriments, scaled_nutriments, additives_tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return r, "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, ing := range out.Ingredients {
		samplesJSON, err := json.Marshal(ing.NutrientSamples)
		if err != nil {
			return r, "", fmt.Errorf("encoding nutriments of %s: %w", ing.ProductName, err)
		}
		scaledJSON, err := json.Marshal(ing.ScaledNutrients)
		if err != nil {
			return r, "", fmt.Errorf("encoding scaled nutriments of %s: %w", ing.ProductName, err)
		}
		tagsJSON, err := json.Marshal(ing.AdditiveTags)
		if err != nil {
			return r, "", fmt.Errorf("encoding additive tags of %s: %w", ing.ProductName, err)
		}
		_, err = stmt.ExecContext(ctx,
			out.ID, i, ing.ID, ing.ProductName, ing.Brand, ing.Source,
			ing.CaloriesPer100, ing.Quantity, ing.CaloriesForQuantity,
			string(samplesJSON), string(scaledJSON), string(tagsJSON),
		)
		if err != nil {
			return r, "", fmt.Errorf("inserting ingredient %s: %w", ing.ProductName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return r, "", fmt.Errorf("committing recipe: %w", err)
	}

	log.Debug(ctx, "recipe saved", "id", out.ID, "result", string(result), "ingredients", len(out.Ingredients))
	return out, result, nil
}

// Get returns the recipe with the given ID.
func (s *Store) Get(ctx context.Context, id string) (types.Recipe, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)
	r, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Recipe{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return types.Recipe{}, err
	}

	r.Ingredients, err = s.loadIngredients(ctx, id)
	if err != nil {
		return types.Recipe{}, err
	}
	return r, nil
}

// Delete removes the recipe with the given ID and its ingredients.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting recipe %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting recipe %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ListOptions filters List results.
type ListOptions struct {
	// Name matches recipes whose name contains it, case-insensitively.
	Name string

	// Score matches recipes with exactly this class label.
	Score types.Score

	// Limit caps the result count. Zero uses the store default.
	Limit int
}

// List returns recipes matching opts, most recently updated first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.Recipe, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT ` + recipeColumns + ` FROM recipes WHERE 1=1`)
	if opts.Name != "" {
		qb.WriteString(` AND name LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(opts.Name)+"%")
	}
	if opts.Score.IsSet() {
		qb.WriteString(` AND nutriscore = ?`)
		args = append(args, string(opts.Score))
	}
	qb.WriteString(` ORDER BY updated_at DESC, name LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}

	var recipes []types.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating recipes: %w", err)
	}
	rows.Close()

	for i := range recipes {
		recipes[i].Ingredients, err = s.loadIngredients(ctx, recipes[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return recipes, nil
}

const recipeColumns = `id, name, quantity, calories, fat, saturated_fat, carbohydrates,
	sugars, proteins, salt, additives, nutriscore, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row scanner) (types.Recipe, error) {
	var (
		r                      types.Recipe
		t                      = &r.NutrientTotals
		additivesJSON          string
		score                  sql.NullString
		createdStr, updatedStr string
	)
	err := row.Scan(&r.ID, &r.Name, &r.Quantity, &t.TotalCalories, &t.Fat, &t.SaturatedFat,
		&t.Carbohydrates, &t.Sugars, &t.Proteins, &t.Salt, &additivesJSON, &score,
		&createdStr, &updatedStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scanning recipe: %w", err)
	}

	t.TotalQuantity = r.Quantity
	r.Score = types.Score(score.String)
	r.Additives = []string{}
	if err := json.Unmarshal([]byte(additivesJSON), &r.Additives); err != nil {
		return r, fmt.Errorf("decoding additives of %s: %w", r.ID, err)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	r.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return r, nil
}

func (s *Store) loadIngredients(ctx context.Context, recipeID string) ([]types.RecipeIngredient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, product_name, brand, source, calories_100, quantity, calories_current,
			nutriments, scaled_nutriments, additives_tags
		 FROM ingredients WHERE recipe_id = ? ORDER BY position`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("loading ingredients of %s: %w", recipeID, err)
	}
	defer rows.Close()

	ingredients := []types.RecipeIngredient{}
	for rows.Next() {
		var (
			ing                              types.RecipeIngredient
			brand, source                    sql.NullString
			cal100, quantity, calCurrent     sql.NullFloat64
			samplesJSON, scaledJSON, tagJSON string
		)
		if err := rows.Scan(&ing.ID, &ing.ProductName, &brand, &source, &cal100, &quantity,
			&calCurrent, &samplesJSON, &scaledJSON, &tagJSON); err != nil {
			return nil, fmt.Errorf("scanning ingredient: %w", err)
		}
		ing.Brand = brand.String
		ing.Source = source.String
		ing.CaloriesPer100 = nullFloat(cal100)
		ing.Quantity = nullFloat(quantity)
		ing.CaloriesForQuantity = nullFloat(calCurrent)

		if err := json.Unmarshal([]byte(samplesJSON), &ing.NutrientSamples); err != nil {
			return nil, fmt.Errorf("decoding nutriments of %s: %w", ing.ProductName, err)
		}
		if err := json.Unmarshal([]byte(scaledJSON), &ing.ScaledNutrients); err != nil {
			return nil, fmt.Errorf("decoding scaled nutriments of %s: %w", ing.ProductName, err)
		}
		if err := json.Unmarshal([]byte(tagJSON), &ing.AdditiveTags); err != nil {
			return nil, fmt.Errorf("decoding additive tags of %s: %w", ing.ProductName, err)
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// additivesOrEmpty keeps an empty additive set encoding as [] rather than null.
func additivesOrEmpty(a []string) []string {
	if a == nil {
		return []string{}
	}
	return a
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
