package competency

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// SupportedMajor is the catalog format major version this build reads.
const SupportedMajor = "v1"

var catalogSchema = map[string]any{
	"type":     "object",
	"required": []any{"version", "skills", "roles"},
	"properties": map[string]any{
		"version": map[string]any{"type": "string", "minLength": 1},
		"skills": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "name"},
				"properties": map[string]any{
					"id":            map[string]any{"type": "string", "pattern": "^[a-z0-9][a-z0-9-]*$"},
					"name":          map[string]any{"type": "string", "minLength": 1},
					"category":      map[string]any{"type": "string"},
					"importance":    map[string]any{"type": "number", "exclusiveMinimum": 0},
					"prerequisites": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"keywords":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
			},
		},
		"roles": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "name", "requirements"},
				"properties": map[string]any{
					"id":          map[string]any{"type": "string", "minLength": 1},
					"name":        map[string]any{"type": "string", "minLength": 1},
					"description": map[string]any{"type": "string"},
					"requirements": map[string]any{
						"type":     "array",
						"minItems": 1,
						"items": map[string]any{
							"type":     "object",
							"required": []any{"skill", "level"},
							"properties": map[string]any{
								"skill": map[string]any{"type": "string"},
								"level": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
							},
						},
					},
				},
			},
		},
		"resources": map[string]any{
			"type": "object",
			"additionalProperties": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"title", "kind"},
					"properties": map[string]any{
						"title": map[string]any{"type": "string", "minLength": 1},
						"kind":  map[string]any{"enum": []any{"course", "tutorials", "book", "project"}},
					},
				},
			},
		},
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "skill", "tier", "prompt"},
				"properties": map[string]any{
					"tier":       map[string]any{"enum": []any{"beginner", "intermediate", "advanced", "expert"}},
					"format":     map[string]any{"enum": []any{"choice", "free_text"}},
					"difficulty": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
					"answer":     map[string]any{"type": "integer", "minimum": 0},
				},
			},
		},
	},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		def, err := toJSONValue(catalogSchema)
		if err != nil {
			compileErr = fmt.Errorf("catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://catalog.json", def); err != nil {
			compileErr = fmt.Errorf("add catalog schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile("schema://catalog.json")
	})
	return compiled, compileErr
}

// toJSONValue round-trips v through JSON so YAML scalars and Go literals
// become the value types the validator expects.
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(b))
}

// validateDocument checks the raw decoded YAML against the catalog schema.
func validateDocument(raw any) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	doc, err := toJSONValue(raw)
	if err != nil {
		return fmt.Errorf("catalog is not JSON-compatible: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("catalog schema validation failed: %w", err)
	}
	return nil
}

// validateCatalog performs structural checks the schema cannot express.
// Returns a combined error describing all problems found, or nil if valid.
func validateCatalog(c *Catalog) error {
	var errs []string

	v := c.Version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		errs = append(errs, fmt.Sprintf("invalid catalog version %q", c.Version))
	} else if semver.Major(v) != SupportedMajor {
		errs = append(errs, fmt.Sprintf("unsupported catalog version %q (want %s.x)", c.Version, SupportedMajor))
	}

	skillSet := make(map[string]bool, len(c.SkillList))
	for _, s := range c.SkillList {
		if skillSet[s.ID] {
			errs = append(errs, fmt.Sprintf("duplicate skill ID: %q", s.ID))
		}
		skillSet[s.ID] = true
	}
	for _, s := range c.SkillList {
		for _, p := range s.Prerequisites {
			if !skillSet[p] {
				errs = append(errs, fmt.Sprintf("skill %q references nonexistent prerequisite %q", s.ID, p))
			}
		}
	}
	if len(topoSort(c.SkillList)) != len(c.SkillList) && len(errs) == 0 {
		errs = append(errs, "prerequisites contain a cycle")
	}

	roleSet := make(map[string]bool, len(c.RoleList))
	for _, r := range c.RoleList {
		if roleSet[r.ID] {
			errs = append(errs, fmt.Sprintf("duplicate role ID: %q", r.ID))
		}
		roleSet[r.ID] = true

		seen := make(map[string]bool, len(r.Requirements))
		for _, req := range r.Requirements {
			if !skillSet[req.SkillID] {
				errs = append(errs, fmt.Sprintf("role %q requires unknown skill %q", r.ID, req.SkillID))
			}
			if seen[req.SkillID] {
				errs = append(errs, fmt.Sprintf("role %q lists skill %q twice", r.ID, req.SkillID))
			}
			seen[req.SkillID] = true
			if req.Level < 0 || req.Level > 1 {
				errs = append(errs, fmt.Sprintf("role %q: level %.2f for %q outside [0,1]", r.ID, req.Level, req.SkillID))
			}
		}
	}

	for skillID := range c.Resource {
		if !skillSet[skillID] {
			errs = append(errs, fmt.Sprintf("resources listed for unknown skill %q", skillID))
		}
	}

	qSet := make(map[string]bool, len(c.Bank))
	for _, q := range c.Bank {
		if qSet[q.ID] {
			errs = append(errs, fmt.Sprintf("duplicate question ID: %q", q.ID))
		}
		qSet[q.ID] = true
		if !skillSet[q.SkillID] {
			errs = append(errs, fmt.Sprintf("question %q references unknown skill %q", q.ID, q.SkillID))
		}
		switch q.Format {
		case FormatChoice:
			if len(q.Choices) < 2 {
				errs = append(errs, fmt.Sprintf("question %q needs at least 2 choices", q.ID))
			} else if q.Answer < 0 || q.Answer >= len(q.Choices) {
				errs = append(errs, fmt.Sprintf("question %q answer index %d out of range", q.ID, q.Answer))
			}
		case FormatFreeText:
			if len(q.Accepted) == 0 && len(q.Keywords) == 0 {
				errs = append(errs, fmt.Sprintf("free-text question %q needs accepted answers or keywords", q.ID))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
