// Package catalog holds the static mission content shipped with the service.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
	"mission-quiz-service/internal/domain"
)

//go:embed missions.yaml
var missionsYAML []byte

// BadgeInfo is display metadata for a badge type.
type BadgeInfo struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Icon        string `yaml:"icon" json:"icon"`
	Color       string `yaml:"color" json:"color"`
}

// Catalog is an immutable, ordered set of missions keyed by id.
type Catalog struct {
	missions []domain.Mission
	index    map[string]int
	badges   map[domain.BadgeType]BadgeInfo
}

type document struct {
	Missions []domain.Mission                `yaml:"missions"`
	Badges   map[domain.BadgeType]BadgeInfo `yaml:"badges"`
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(missionsYAML)
}

// MustDefault is Default for program start-up and tests.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	return New(doc.Missions, doc.Badges)
}

// New validates missions and builds a catalog around them.
func New(missions []domain.Mission, badges map[domain.BadgeType]BadgeInfo) (*Catalog, error) {
	c := &Catalog{
		missions: missions,
		index:    make(map[string]int, len(missions)),
		badges:   badges,
	}
	questionIDs := make(map[string]string)
	for i, m := range missions {
		if _, dup := c.index[m.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate mission %q", domain.ErrInvalidCatalog, m.ID)
		}
		if err := Validate(m); err != nil {
			return nil, err
		}
		for _, q := range m.Questions {
			if owner, dup := questionIDs[q.ID]; dup {
				return nil, fmt.Errorf("%w: question %q appears in %q and %q", domain.ErrInvalidCatalog, q.ID, owner, m.ID)
			}
			questionIDs[q.ID] = m.ID
		}
		c.index[m.ID] = i
	}
	for t := range badges {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: unknown badge type %q", domain.ErrInvalidCatalog, t)
		}
	}
	return c, nil
}

// Validate checks a single mission for well-formed content.
func Validate(m domain.Mission) error {
	if m.ID == "" {
		return fmt.Errorf("%w: mission without id", domain.ErrInvalidCatalog)
	}
	if !m.Difficulty.Valid() {
		return fmt.Errorf("%w: mission %q: difficulty %q", domain.ErrInvalidCatalog, m.ID, m.Difficulty)
	}
	if len(m.Questions) == 0 {
		return fmt.Errorf("%w: mission %q has no questions", domain.ErrInvalidCatalog, m.ID)
	}
	for _, q := range m.Questions {
		if err := validateQuestion(q); err != nil {
			return fmt.Errorf("%w: mission %q: %v", domain.ErrInvalidCatalog, m.ID, err)
		}
	}
	return nil
}

func validateQuestion(q domain.Question) error {
	if q.ID == "" {
		return fmt.Errorf("question without id")
	}
	if !q.Type.Valid() {
		return fmt.Errorf("question %q: type %q", q.ID, q.Type)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("question %q: difficulty %q", q.ID, q.Difficulty)
	}
	if q.TimeLimit <= 0 {
		return fmt.Errorf("question %q: time limit must be positive", q.ID)
	}
	if got, want := q.CorrectAnswer.Kind(), q.Type.AnswerKind(); got != want {
		return fmt.Errorf("question %q: %s answer for %s question", q.ID, got, q.Type)
	}
	if q.Type != domain.QuestionDragDrop || len(q.DropZones) == 0 {
		return nil
	}
	items, _ := q.CorrectAnswer.Ordered()
	if len(items) != len(q.DropZones) {
		return fmt.Errorf("question %q: %d answers for %d drop zones", q.ID, len(items), len(q.DropZones))
	}
	for i, zone := range q.DropZones {
		if items[i] != zone.CorrectItemID {
			return fmt.Errorf("question %q: zone %q expects %q, answer has %q", q.ID, zone.ID, zone.CorrectItemID, items[i])
		}
	}
	return nil
}

// Missions returns the missions in catalog order.
func (c *Catalog) Missions() []domain.Mission {
	out := make([]domain.Mission, len(c.missions))
	copy(out, c.missions)
	return out
}

// Mission looks a mission up by id.
func (c *Catalog) Mission(id string) (domain.Mission, bool) {
	i, ok := c.index[id]
	if !ok {
		return domain.Mission{}, false
	}
	return c.missions[i], true
}

// BadgeInfo returns display metadata, falling back to a generic entry.
func (c *Catalog) BadgeInfo(t domain.BadgeType) BadgeInfo {
	if info, ok := c.badges[t]; ok {
		return info
	}
	return BadgeInfo{Name: string(t), Description: "Special achievement.", Icon: "Award", Color: "text-gray-500"}
}
