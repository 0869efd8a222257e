// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest reads ingredient records produced by the ingredient
// lookup service and normalizes them into types.SourceRecord.
//
// The service is loose about shapes: nutriments arrive either as a list of
// {name, quantity_100} objects or as an object keyed by nutrient name, and
// numbers are sometimes quoted. Parsing walks the raw JSON with gjson so
// that keyed nutriments keep their document order.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/recipe-engine/internal/numeric"
	"github.com/pdiddy/recipe-engine/pkg/types"
)

// ParseJSON parses one record or an array of records.
func ParseJSON(data []byte) ([]types.SourceRecord, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON ingredient data")
	}

	root := gjson.ParseBytes(data)
	switch {
	case root.IsArray():
		var records []types.SourceRecord
		var err error
		root.ForEach(func(_, v gjson.Result) bool {
			var rec types.SourceRecord
			rec, err = parseRecord(v)
			if err != nil {
				err = fmt.Errorf("record %d: %w", len(records), err)
				return false
			}
			records = append(records, rec)
			return true
		})
		if err != nil {
			return nil, err
		}
		return records, nil

	case root.IsObject():
		rec, err := parseRecord(root)
		if err != nil {
			return nil, err
		}
		return []types.SourceRecord{rec}, nil

	default:
		return nil, fmt.Errorf("ingredient data must be an object or an array, got %s", root.Type)
	}
}

func parseRecord(v gjson.Result) (types.SourceRecord, error) {
	if !v.IsObject() {
		return types.SourceRecord{}, fmt.Errorf("expected an object, got %s", v.Type)
	}

	rec := types.SourceRecord{
		ProductName: strings.TrimSpace(v.Get("product_name").String()),
		Brand:       strings.TrimSpace(v.Get("brands").String()),
		Source:      firstString(v, "sursa", "source"),
	}
	if rec.ProductName == "" {
		return types.SourceRecord{}, fmt.Errorf("missing product_name")
	}

	if cal := v.Get("calories"); cal.Exists() {
		f, ok := toFloat(cal)
		if !ok {
			return types.SourceRecord{}, fmt.Errorf("%s: calories %q is not a number", rec.ProductName, cal.Raw)
		}
		rec.Calories = &f
	}

	nutriments, err := parseNutriments(v.Get("nutriments"))
	if err != nil {
		return types.SourceRecord{}, fmt.Errorf("%s: %w", rec.ProductName, err)
	}
	rec.Nutriments = nutriments

	v.Get("additives_tags").ForEach(func(_, tag gjson.Result) bool {
		if s := strings.TrimSpace(tag.String()); s != "" {
			rec.AdditiveTags = append(rec.AdditiveTags, s)
		}
		return true
	})

	return rec, nil
}

// parseNutriments normalizes the list and keyed forms into one ordered list.
func parseNutriments(v gjson.Result) (types.NutrientList, error) {
	if !v.Exists() || v.Type == gjson.Null {
		return nil, nil
	}

	var (
		out types.NutrientList
		err error
	)
	switch {
	case v.IsArray():
		v.ForEach(func(_, item gjson.Result) bool {
			var s types.NutrientSample
			s, err = parseSample("", item)
			if err != nil {
				return false
			}
			out = append(out, s)
			return true
		})
	case v.IsObject():
		v.ForEach(func(key, item gjson.Result) bool {
			var s types.NutrientSample
			s, err = parseSample(key.String(), item)
			if err != nil {
				return false
			}
			out = append(out, s)
			return true
		})
	default:
		return nil, fmt.Errorf("nutriments must be a list or an object, got %s", v.Type)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// parseSample reads one nutrient. key is the mapping key for the keyed
// form and empty for the list form; an explicit name always wins.
func parseSample(key string, item gjson.Result) (types.NutrientSample, error) {
	if !item.IsObject() {
		f, ok := toFloat(item)
		if key == "" || !ok {
			return types.NutrientSample{}, fmt.Errorf("nutrient %q: unsupported value %s", key, item.Raw)
		}
		return types.NutrientSample{Name: key, QuantityPer100: f}, nil
	}

	name := item.Get("name").String()
	if name == "" {
		name = key
	}
	if name == "" {
		return types.NutrientSample{}, fmt.Errorf("nutrient without a name: %s", item.Raw)
	}

	s := types.NutrientSample{Name: name}
	if q := item.Get("quantity_100"); q.Exists() {
		f, ok := toFloat(q)
		if !ok {
			return types.NutrientSample{}, fmt.Errorf("nutrient %q: quantity_100 %q is not a number", name, q.Raw)
		}
		s.QuantityPer100 = f
	}
	return s, nil
}

// toFloat accepts JSON numbers and numeric strings (comma decimal
// separators included). Quoted NaN and infinities read as 0.
func toFloat(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return finiteOrZero(v.Float()), true
	case gjson.String:
		s := strings.ReplaceAll(strings.TrimSpace(v.Str), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return finiteOrZero(f), true
	case gjson.Null:
		return 0, true
	default:
		return 0, false
	}
}

func finiteOrZero(f float64) float64 {
	if !numeric.Finite(f) {
		return 0
	}
	return f
}

func firstString(v gjson.Result, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(v.Get(k).String()); s != "" {
			return s
		}
	}
	return ""
}

// yamlRecord accepts the lookup service's "sursa" key next to "source",
// as ParseJSON does.
type yamlRecord struct {
	types.SourceRecord `yaml:",inline"`
	Sursa              string `yaml:"sursa"`
}

func (y yamlRecord) record() types.SourceRecord {
	rec := y.SourceRecord
	if s := strings.TrimSpace(y.Sursa); s != "" {
		rec.Source = s
	}
	if rec.Calories != nil {
		f := finiteOrZero(*rec.Calories)
		rec.Calories = &f
	}
	return rec
}

// ParseYAML parses one record or a list of records in YAML form.
func ParseYAML(data []byte) ([]types.SourceRecord, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing YAML ingredient data: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	doc := node.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		var raw []yamlRecord
		if err := doc.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding ingredient records: %w", err)
		}
		records := make([]types.SourceRecord, len(raw))
		for i, y := range raw {
			records[i] = y.record()
		}
		return records, validate(records)
	case yaml.MappingNode:
		var y yamlRecord
		if err := doc.Decode(&y); err != nil {
			return nil, fmt.Errorf("decoding ingredient record: %w", err)
		}
		records := []types.SourceRecord{y.record()}
		return records, validate(records)
	default:
		return nil, fmt.Errorf("ingredient data must be a mapping or a list")
	}
}

func validate(records []types.SourceRecord) error {
	for i, rec := range records {
		if strings.TrimSpace(rec.ProductName) == "" {
			return fmt.Errorf("record %d: missing product_name", i)
		}
	}
	return nil
}

// LoadFile reads ingredient records from path, choosing the parser by
// extension (.json, .yaml, .yml).
func LoadFile(path string) ([]types.SourceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ingredient file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported ingredient file %s: use .json, .yaml or .yml", filepath.Base(path))
	}
}

// Select returns the records whose product name contains query,
// case-insensitively. An empty query selects every record.
func Select(records []types.SourceRecord, query string) []types.SourceRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}
	var out []types.SourceRecord
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.ProductName), q) {
			out = append(out, rec)
		}
	}
	return out
}
