package competency

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a role or skill is not in the catalog.
var ErrNotFound = errors.New("not found")

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the loaded competency model: skills, roles, resources and
// the question bank. It is read-only after Load and safe for concurrent
// readers.
type Catalog struct {
	Version   string                `yaml:"version"`
	SkillList []Skill               `yaml:"skills"`
	RoleList  []RoleProfile         `yaml:"roles"`
	Resource  map[string][]Resource `yaml:"resources"`
	Bank      []Question            `yaml:"questions"`

	skillByID   map[string]*Skill
	roleByID    map[string]*RoleProfile
	bySkill     map[string][]Question
	questionIDs map[string]*Question
}

// Default returns the embedded catalog. It panics if the embedded data
// is invalid, which the package tests guard against.
func Default() *Catalog {
	c, err := Load(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(fmt.Sprintf("competency: embedded catalog: %v", err))
	}
	return c
}

// LoadFile reads and validates a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a YAML catalog, validates it against the catalog schema and
// the structural rules, and builds lookup indices.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := validateDocument(raw); err != nil {
		return nil, err
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c.applyDefaults()
	if err := validateCatalog(&c); err != nil {
		return nil, err
	}
	c.buildIndices()
	return &c, nil
}

func (c *Catalog) applyDefaults() {
	for i := range c.SkillList {
		if c.SkillList[i].Importance == 0 {
			c.SkillList[i].Importance = 1.0
		}
	}
	for i := range c.Bank {
		q := &c.Bank[i]
		if q.Format == "" {
			q.Format = FormatChoice
		}
		if q.Difficulty == 0 {
			q.Difficulty = q.Tier.Difficulty()
		}
	}
	if c.Resource == nil {
		c.Resource = make(map[string][]Resource)
	}
}

func (c *Catalog) buildIndices() {
	c.skillByID = make(map[string]*Skill, len(c.SkillList))
	for i := range c.SkillList {
		c.skillByID[c.SkillList[i].ID] = &c.SkillList[i]
	}
	c.roleByID = make(map[string]*RoleProfile, len(c.RoleList))
	for i := range c.RoleList {
		c.roleByID[c.RoleList[i].ID] = &c.RoleList[i]
	}
	c.bySkill = make(map[string][]Question)
	c.questionIDs = make(map[string]*Question, len(c.Bank))
	for i := range c.Bank {
		q := c.Bank[i]
		c.bySkill[q.SkillID] = append(c.bySkill[q.SkillID], q)
		c.questionIDs[q.ID] = &c.Bank[i]
	}
}

// GetRole returns the role with the given ID.
func (c *Catalog) GetRole(id string) (RoleProfile, error) {
	r, ok := c.roleByID[id]
	if !ok {
		return RoleProfile{}, fmt.Errorf("role %q: %w", id, ErrNotFound)
	}
	return *r, nil
}

// ListRoles returns all roles in declared order.
func (c *Catalog) ListRoles() []RoleProfile {
	out := make([]RoleProfile, len(c.RoleList))
	copy(out, c.RoleList)
	return out
}

// Skill returns the skill with the given ID.
func (c *Catalog) Skill(id string) (Skill, error) {
	s, ok := c.skillByID[id]
	if !ok {
		return Skill{}, fmt.Errorf("skill %q: %w", id, ErrNotFound)
	}
	return *s, nil
}

// HasSkill reports whether id names a catalog skill.
func (c *Catalog) HasSkill(id string) bool {
	_, ok := c.skillByID[id]
	return ok
}

// Skills returns all skills in declared order.
func (c *Catalog) Skills() []Skill {
	out := make([]Skill, len(c.SkillList))
	copy(out, c.SkillList)
	return out
}

// Importance returns the declared importance weight for a skill, or 0
// when the skill is unknown.
func (c *Catalog) Importance(id string) float64 {
	if s, ok := c.skillByID[id]; ok {
		return s.Importance
	}
	return 0
}

// Resources returns the curated resources for a skill. Unknown skills and
// skills without resources both yield an empty slice.
func (c *Catalog) Resources(skillID string) []Resource {
	rs := c.Resource[skillID]
	out := make([]Resource, len(rs))
	copy(out, rs)
	return out
}

// Questions returns the question bank for a skill in declared order.
func (c *Catalog) Questions(skillID string) []Question {
	qs := c.bySkill[skillID]
	out := make([]Question, len(qs))
	copy(out, qs)
	return out
}

// Question returns a question by ID.
func (c *Catalog) Question(id string) (Question, error) {
	q, ok := c.questionIDs[id]
	if !ok {
		return Question{}, fmt.Errorf("question %q: %w", id, ErrNotFound)
	}
	return *q, nil
}

// LearningOrder orders the given skill IDs so that prerequisites come
// before the skills that depend on them. Among skills whose prerequisites
// are satisfied the input order wins.
func (c *Catalog) LearningOrder(ids []string) []string {
	remaining := make([]string, len(ids))
	copy(remaining, ids)

	out := make([]string, 0, len(ids))
	for len(remaining) > 0 {
		pick := 0
		for i, cand := range remaining {
			blocked := false
			for _, other := range remaining {
				if other != cand && c.dependsOn(cand, other) {
					blocked = true
					break
				}
			}
			if !blocked {
				pick = i
				break
			}
		}
		out = append(out, remaining[pick])
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}
	return out
}

// dependsOn reports whether skill a transitively requires skill b.
func (c *Catalog) dependsOn(a, b string) bool {
	seen := make(map[string]bool)
	stack := []string{a}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s, ok := c.skillByID[id]
		if !ok {
			continue
		}
		for _, p := range s.Prerequisites {
			if p == b {
				return true
			}
			if !seen[p] {
				seen[p] = true
				stack = append(stack, p)
			}
		}
	}
	return false
}

// topoSort returns skill IDs in prerequisite order (Kahn's algorithm),
// ties broken by ID.
func topoSort(skills []Skill) []string {
	inDegree := make(map[string]int, len(skills))
	dependents := make(map[string][]string)
	for _, s := range skills {
		inDegree[s.ID] = len(s.Prerequisites)
		for _, p := range s.Prerequisites {
			dependents[p] = append(dependents[p], s.ID)
		}
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	var order []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		deps := append([]string(nil), dependents[id]...)
		sort.Strings(deps)
		for _, d := range deps {
			inDegree[d]--
			if inDegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}
	return order
}
