// Package routing maps escalated action items to internal teams using a
// keyword rules file loaded at startup.
package routing

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultTeam is returned when no rule keyword matches an action.
const DefaultTeam = "General Support"

// rulesSchema validates the routing rules file: a non-empty JSON object of
// keyword -> team name.
const rulesSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "minProperties": 1,
  "additionalProperties": {
    "type": "string",
    "minLength": 1
  }
}`

// Table routes action text to a team by case-insensitive keyword match.
type Table struct {
	rules    map[string]string
	keywords []string
}

// NewTable builds a table from an in-memory rule set.
func NewTable(rules map[string]string) *Table {
	keywords := make([]string, 0, len(rules))
	normalized := make(map[string]string, len(rules))
	for keyword, team := range rules {
		k := strings.ToLower(strings.TrimSpace(keyword))
		if k == "" {
			continue
		}
		normalized[k] = team
		keywords = append(keywords, k)
	}
	// Deterministic match order regardless of file/map ordering.
	sort.Strings(keywords)
	return &Table{rules: normalized, keywords: keywords}
}

// LoadTable reads and validates the rules file. A missing or invalid file is
// a fatal configuration error for the caller.
func LoadTable(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routing rules %s: %w", path, err)
	}

	schema, err := jsonschema.CompileString("team_routing_rules.schema.json", rulesSchema)
	if err != nil {
		return nil, fmt.Errorf("compile routing rules schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse routing rules %s: %w", path, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate routing rules %s: %w", path, err)
	}

	var rules map[string]string
	if err := json.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("parse routing rules %s: %w", path, err)
	}
	return NewTable(rules), nil
}

// TeamFor returns the team for the first matching rule keyword, or
// DefaultTeam when nothing matches.
func (t *Table) TeamFor(action string) string {
	lower := strings.ToLower(action)
	for _, keyword := range t.keywords {
		if strings.Contains(lower, keyword) {
			return t.rules[keyword]
		}
	}
	return DefaultTeam
}

// Teams lists the distinct team names in the table, sorted.
func (t *Table) Teams() []string {
	seen := make(map[string]bool, len(t.rules))
	teams := make([]string, 0, len(t.rules))
	for _, team := range t.rules {
		if seen[team] {
			continue
		}
		seen[team] = true
		teams = append(teams, team)
	}
	sort.Strings(teams)
	return teams
}
