// Package roster defines the record snapshot the visualization consumes.
//
// A [Snapshot] is an immutable copy of the people, skills, categories and
// assignments held by the external document store at one point in time. The
// layout engine only ever reads it; every layout pass starts from a fresh
// snapshot.
//
// The types carry json, yaml, toml and bson tags so the same structs decode
// roster files and document-store collections.
package roster

import (
	"fmt"
	"strings"
)

// Unknown is the display label used whenever a reference cannot be resolved.
const Unknown = "Unknown"

// Person is one individual shown as a badge.
type Person struct {
	ID         string   `json:"id" yaml:"id" toml:"id" bson:"id"`
	Name       string   `json:"name" yaml:"name" toml:"name" bson:"name"`
	Title      string   `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty" bson:"title,omitempty"`
	Flagged    bool     `json:"flagged,omitempty" yaml:"flagged,omitempty" toml:"flagged,omitempty" bson:"flagged,omitempty"`
	SkillIDs   []string `json:"skill_ids,omitempty" yaml:"skill_ids,omitempty" toml:"skill_ids,omitempty" bson:"skill_ids,omitempty"`
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty" toml:"categories,omitempty" bson:"categories,omitempty"`
	Email      string   `json:"email,omitempty" yaml:"email,omitempty" toml:"email,omitempty" bson:"email,omitempty"`
	Phone      string   `json:"phone,omitempty" yaml:"phone,omitempty" toml:"phone,omitempty" bson:"phone,omitempty"`
}

// FirstName returns the first word of the person's name, used as the badge
// caption. Unnamed people are shown as [Unknown].
func (p *Person) FirstName() string {
	if p == nil {
		return Unknown
	}
	fields := strings.Fields(p.Name)
	if len(fields) == 0 {
		return Unknown
	}
	return fields[0]
}

// DisplayName returns the full name, or [Unknown] for a missing or unnamed person.
func (p *Person) DisplayName() string {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return Unknown
	}
	return p.Name
}

// HasCategory reports whether the person lists the named category.
func (p *Person) HasCategory(name string) bool {
	for _, c := range p.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Skill is a tag attached to people.
type Skill struct {
	ID    string `json:"id" yaml:"id" toml:"id" bson:"id"`
	Name  string `json:"name" yaml:"name" toml:"name" bson:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty" bson:"color,omitempty"`
}

// Category is a declared grouping bucket. A category with a Parent is a
// sub-category nested inside the parent's circle.
type Category struct {
	Name   string `json:"name" yaml:"name" toml:"name" bson:"name"`
	Color  string `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty" bson:"color,omitempty"`
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty" toml:"parent,omitempty" bson:"parent,omitempty"`
}

// Target is the entity people are assigned to (a "data product").
type Target struct {
	ID   string `json:"id" yaml:"id" toml:"id" bson:"id"`
	Name string `json:"name" yaml:"name" toml:"name" bson:"name"`
}

// Role is the capacity in which a person works on a target.
type Role struct {
	ID   string `json:"id" yaml:"id" toml:"id" bson:"id"`
	Name string `json:"name" yaml:"name" toml:"name" bson:"name"`
}

// Assignment joins a person to a target in a role with a number of hours.
type Assignment struct {
	PersonID string  `json:"person_id" yaml:"person_id" toml:"person_id" bson:"person_id"`
	TargetID string  `json:"target_id" yaml:"target_id" toml:"target_id" bson:"target_id"`
	RoleID   string  `json:"role_id,omitempty" yaml:"role_id,omitempty" toml:"role_id,omitempty" bson:"role_id,omitempty"`
	Hours    float64 `json:"hours,omitempty" yaml:"hours,omitempty" toml:"hours,omitempty" bson:"hours,omitempty"`
}

// Snapshot is the full set of records for one layout pass.
type Snapshot struct {
	People      []*Person     `json:"people" yaml:"people" toml:"people" bson:"people"`
	Skills      []*Skill      `json:"skills,omitempty" yaml:"skills,omitempty" toml:"skills,omitempty" bson:"skills,omitempty"`
	Categories  []Category    `json:"categories,omitempty" yaml:"categories,omitempty" toml:"categories,omitempty" bson:"categories,omitempty"`
	Targets     []*Target     `json:"targets,omitempty" yaml:"targets,omitempty" toml:"targets,omitempty" bson:"targets,omitempty"`
	Roles       []*Role       `json:"roles,omitempty" yaml:"roles,omitempty" toml:"roles,omitempty" bson:"roles,omitempty"`
	Assignments []*Assignment `json:"assignments,omitempty" yaml:"assignments,omitempty" toml:"assignments,omitempty" bson:"assignments,omitempty"`
}

// Person returns the person with the given id.
func (s *Snapshot) Person(id string) (*Person, bool) {
	if s == nil {
		return nil, false
	}
	for _, p := range s.People {
		if p != nil && p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Skill returns the skill with the given id.
func (s *Snapshot) Skill(id string) (*Skill, bool) {
	if s == nil {
		return nil, false
	}
	for _, sk := range s.Skills {
		if sk != nil && sk.ID == id {
			return sk, true
		}
	}
	return nil, false
}

// Target returns the target with the given id.
func (s *Snapshot) Target(id string) (*Target, bool) {
	if s == nil {
		return nil, false
	}
	for _, t := range s.Targets {
		if t != nil && t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Role returns the role with the given id.
func (s *Snapshot) Role(id string) (*Role, bool) {
	if s == nil {
		return nil, false
	}
	for _, r := range s.Roles {
		if r != nil && r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// AssignmentsFor returns the assignments of one person in snapshot order.
func (s *Snapshot) AssignmentsFor(personID string) []*Assignment {
	if s == nil {
		return nil
	}
	var out []*Assignment
	for _, a := range s.Assignments {
		if a != nil && a.PersonID == personID {
			out = append(out, a)
		}
	}
	return out
}

// HoursByPerson sums assignment hours per person. Negative or non-finite
// hours are ignored.
func (s *Snapshot) HoursByPerson() map[string]float64 {
	out := make(map[string]float64)
	if s == nil {
		return out
	}
	for _, a := range s.Assignments {
		if a == nil || !(a.Hours > 0) || a.Hours > maxHours {
			continue
		}
		out[a.PersonID] += a.Hours
	}
	return out
}

// maxHours bounds a single assignment; it also rejects +Inf.
const maxHours = 1e9

// Validate reports structural problems that would make lookups ambiguous.
// Dangling references are not errors: they render as [Unknown].
func (s *Snapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("nil snapshot")
	}
	seen := make(map[string]bool, len(s.People))
	for i, p := range s.People {
		if p == nil {
			return fmt.Errorf("person %d is empty", i)
		}
		if p.ID == "" {
			return fmt.Errorf("person %d (%s) has no id", i, p.Name)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate person id %q", p.ID)
		}
		seen[p.ID] = true
	}
	cats := make(map[string]bool, len(s.Categories))
	for _, c := range s.Categories {
		if c.Name == "" {
			return fmt.Errorf("category with empty name")
		}
		if cats[c.Name] {
			return fmt.Errorf("duplicate category %q", c.Name)
		}
		cats[c.Name] = true
	}
	return nil
}
