package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kiracore/tracker/internal/model"
)

// Seed is the YAML document accepted by `tracker init --seed`
type Seed struct {
	Workspaces []SeedWorkspace `yaml:"workspaces"`
	Users      []SeedUser      `yaml:"users"`
	Projects   []SeedProject   `yaml:"projects"`
	Labels     []SeedLabel     `yaml:"labels"`
}

type SeedWorkspace struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
	Logo string `yaml:"logo"`
}

type SeedUser struct {
	Name   string     `yaml:"name"`
	Email  string     `yaml:"email"`
	Avatar string     `yaml:"avatar"`
	Role   model.Role `yaml:"role"`
}

// SeedProject refers to its lead and members by email
type SeedProject struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Lead        string   `yaml:"lead"`
	Members     []string `yaml:"members"`
}

type SeedLabel struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

// LoadSeedFromFile reads a seed document
func LoadSeedFromFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	seed := &Seed{}
	if err := yaml.Unmarshal(data, seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	return seed, nil
}

// Validate validates the seed document
func (s *Seed) Validate() *ValidationResult {
	result := &ValidationResult{}

	for i, ws := range s.Workspaces {
		field := fmt.Sprintf("workspaces[%d]", i)
		if ws.Name == "" {
			result.AddError(field+".name", "name is required")
		}
		if err := ValidateSlug(ws.Slug); err != nil {
			result.AddError(field+".slug", err.(ValidationError).Message)
		}
	}

	emails := make(map[string]bool)
	for i, u := range s.Users {
		field := fmt.Sprintf("users[%d]", i)
		if u.Name == "" {
			result.AddError(field+".name", "name is required")
		}
		if err := ValidateEmail(u.Email); err != nil {
			result.AddError(field+".email", err.(ValidationError).Message)
		} else if emails[u.Email] {
			result.AddError(field+".email", fmt.Sprintf("duplicate user email %q", u.Email))
		}
		emails[u.Email] = true
		if u.Role == "" {
			result.AddWarning(field+".role", "role not specified, defaulting to developer")
		} else if !u.Role.Valid() {
			result.AddError(field+".role", fmt.Sprintf("unknown role %q", u.Role))
		}
	}

	keys := make(map[string]bool)
	for i, p := range s.Projects {
		field := fmt.Sprintf("projects[%d]", i)
		if err := ValidateProjectKey(p.Key); err != nil {
			result.AddError(field+".key", err.(ValidationError).Message)
		} else if keys[p.Key] {
			result.AddError(field+".key", fmt.Sprintf("project key %q already exists", p.Key))
		}
		keys[p.Key] = true
		if p.Name == "" {
			result.AddError(field+".name", "name is required")
		}
		if p.Lead != "" && !emails[p.Lead] {
			result.AddError(field+".lead", fmt.Sprintf("lead %q is not a seeded user", p.Lead))
		}
		for _, m := range p.Members {
			if !emails[m] {
				result.AddWarning(field+".members", fmt.Sprintf("member %q is not a seeded user, skipping", m))
			}
		}
	}

	names := make(map[string]bool)
	for i, l := range s.Labels {
		field := fmt.Sprintf("labels[%d]", i)
		if l.Name == "" {
			result.AddError(field+".name", "name is required")
		} else if names[l.Name] {
			result.AddWarning(field+".name", fmt.Sprintf("duplicate label %q", l.Name))
		}
		names[l.Name] = true
		if err := ValidateColor(l.Color); err != nil {
			result.AddError(field+".color", err.(ValidationError).Message)
		}
	}

	return result
}

// DefaultSeed returns the starter content written by `tracker init`
func DefaultSeed() *Seed {
	return &Seed{
		Labels: []SeedLabel{
			{Name: "frontend", Color: "#3b82f6"},
			{Name: "backend", Color: "#10b981"},
			{Name: "design", Color: "#8b5cf6"},
			{Name: "urgent", Color: "#ef4444"},
		},
	}
}
