package recommendation

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed resources.yaml
var defaultResourcesYAML []byte

const (
	PriorityCurated  = 1
	PriorityFallback = 2

	TypeSearch = "search"

	searchBaseURL = "https://www.google.com/search?q="
)

type Resource struct {
	Title string `yaml:"title" json:"title"`
	URL   string `yaml:"url" json:"url"`
	Type  string `yaml:"type" json:"type"`
}

type Recommendation struct {
	Skill     string     `json:"skill"`
	Priority  int        `json:"priority"`
	Resources []Resource `json:"resources"`
}

type resourcesFile struct {
	Resources map[string][]Resource `yaml:"resources"`
}

// Engine maps missing skills to learning resources. The curated table is
// fixed at construction.
type Engine struct {
	curated map[string][]Resource
}

func NewEngine(curated map[string][]Resource) *Engine {
	table := make(map[string][]Resource, len(curated))
	for skill, res := range curated {
		key := normalizeSkill(skill)
		if key == "" || len(res) == 0 {
			continue
		}
		cp := make([]Resource, len(res))
		copy(cp, res)
		table[key] = cp
	}
	return &Engine{curated: table}
}

func LoadEngine(data []byte) (*Engine, error) {
	var f resourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse resources: %w", err)
	}
	return NewEngine(f.Resources), nil
}

func LoadEngineFile(path string) (*Engine, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resources: %w", err)
	}
	return LoadEngine(b)
}

// DefaultEngine returns the engine backed by the resource table shipped with
// the binary.
func DefaultEngine() (*Engine, error) {
	return LoadEngine(defaultResourcesYAML)
}

// Recommend returns exactly one entry per distinct missing skill, sorted by
// skill name. Skills without curated resources get a single search resource.
func (e *Engine) Recommend(missing []string) []Recommendation {
	seen := make(map[string]struct{}, len(missing))
	skills := make([]string, 0, len(missing))
	for _, m := range missing {
		key := normalizeSkill(m)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		skills = append(skills, key)
	}
	sort.Strings(skills)

	out := make([]Recommendation, 0, len(skills))
	for _, s := range skills {
		if e != nil {
			if res, ok := e.curated[s]; ok {
				cp := make([]Resource, len(res))
				copy(cp, res)
				out = append(out, Recommendation{Skill: s, Priority: PriorityCurated, Resources: cp})
				continue
			}
		}
		out = append(out, Recommendation{Skill: s, Priority: PriorityFallback, Resources: []Resource{fallback(s)}})
	}
	return out
}

func (e *Engine) HasCurated(skill string) bool {
	if e == nil {
		return false
	}
	_, ok := e.curated[normalizeSkill(skill)]
	return ok
}

func fallback(skill string) Resource {
	return Resource{
		Title: "Search fundamentals of " + skill,
		URL:   searchBaseURL + url.QueryEscape("fundamentals of "+skill),
		Type:  TypeSearch,
	}
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
