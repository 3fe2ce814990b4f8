package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/abhisek/skillforge/internal/competency"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// SkillChecker reports whether a skill ID exists. *competency.Catalog
// satisfies it.
type SkillChecker interface {
	HasSkill(id string) bool
}

// Codec encodes and decodes profile blobs, validating them against the
// blob schema and the skill catalog at the persistence boundary.
type Codec struct {
	skills SkillChecker
}

// NewCodec returns a Codec that checks skill references against skills.
// A nil checker skips the reference check.
func NewCodec(skills SkillChecker) *Codec {
	return &Codec{skills: skills}
}

// Encode validates and serializes a profile.
func (c *Codec) Encode(p *Profile) ([]byte, error) {
	if err := c.Validate(p); err != nil {
		return nil, err
	}
	if p.Version == 0 {
		p.Version = SchemaVersion
	}
	return json.Marshal(p)
}

// Decode parses and validates a stored blob. Out-of-scale ratings fail with
// ErrInvalidRating and unknown skills with competency.ErrNotFound.
func (c *Codec) Decode(data []byte) (*Profile, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	schema, err := blobSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if p.SelfRatings == nil {
		p.SelfRatings = make(map[string]SelfRating)
	}
	if err := c.Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate runs the semantic checks the schema cannot express.
func (c *Codec) Validate(p *Profile) error {
	if p.Version > SchemaVersion {
		return fmt.Errorf("%w: blob version %d is newer than supported %d", ErrMalformed, p.Version, SchemaVersion)
	}
	for skillID, r := range p.SelfRatings {
		if r.Value < RatingMin || r.Value > RatingMax {
			return fmt.Errorf("%w: %s rated %d, want %d..%d", ErrInvalidRating, skillID, r.Value, RatingMin, RatingMax)
		}
		if err := c.checkSkill(skillID); err != nil {
			return err
		}
	}
	for _, r := range p.QuizHistory {
		if r.Difficulty < 0 || r.Difficulty > 1 {
			return fmt.Errorf("%w: response %s difficulty %.2f outside [0,1]", ErrInvalidRating, r.QuestionID, r.Difficulty)
		}
		if err := c.checkSkill(r.SkillID); err != nil {
			return err
		}
	}
	return nil
}

func (c *Codec) checkSkill(id string) error {
	if c.skills == nil || c.skills.HasSkill(id) {
		return nil
	}
	return fmt.Errorf("profile references skill %q: %w", id, competency.ErrNotFound)
}

var blobDefinition = map[string]any{
	"type":     "object",
	"required": []any{"version", "profile_name"},
	"properties": map[string]any{
		"version":        map[string]any{"type": "integer", "minimum": 0},
		"profile_name":   map[string]any{"type": "string"},
		"selected_role":  map[string]any{"type": "string"},
		"hours_per_week": map[string]any{"type": "integer", "minimum": 0},
		"self_ratings": map[string]any{
			"type": []any{"object", "null"},
			"additionalProperties": map[string]any{
				"type":     "object",
				"required": []any{"value"},
				"properties": map[string]any{
					"value": map[string]any{"type": "integer"},
				},
			},
		},
		"quiz_history": map[string]any{
			"type": []any{"array", "null"},
			"items": map[string]any{
				"type":     "object",
				"required": []any{"question_id", "skill_id", "correct"},
				"properties": map[string]any{
					"question_id":    map[string]any{"type": "string", "minLength": 1},
					"skill_id":       map[string]any{"type": "string", "minLength": 1},
					"correct":        map[string]any{"type": "boolean"},
					"difficulty":     map[string]any{"type": "number"},
					"low_confidence": map[string]any{"type": "boolean"},
				},
			},
		},
	},
}

var (
	blobOnce     sync.Once
	blobCompiled *jsonschema.Schema
	blobErr      error
)

func blobSchema() (*jsonschema.Schema, error) {
	blobOnce.Do(func() {
		b, err := json.Marshal(blobDefinition)
		if err != nil {
			blobErr = fmt.Errorf("marshal profile schema: %w", err)
			return
		}
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
		if err != nil {
			blobErr = fmt.Errorf("parse profile schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://profile.json", def); err != nil {
			blobErr = fmt.Errorf("add profile schema: %w", err)
			return
		}
		blobCompiled, blobErr = c.Compile("schema://profile.json")
	})
	return blobCompiled, blobErr
}
