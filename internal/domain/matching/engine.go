package matching

import (
	"strings"

	"skillbridge/internal/domain/skill"
)

// GapResult reports how a candidate's skills cover a job's requirements.
// Matched and Missing partition the canonicalized requirements and keep the
// job's declared order.
type GapResult struct {
	Matched         []string
	Missing         []string
	Unrecognized    []string
	MatchPercentage float64
}

// CanonicalTaxonomy resolves free-form skill names to canonical ones.
type CanonicalTaxonomy interface {
	Canonical(name string) (string, bool)
}

type GapAnalyzer struct {
	taxonomy CanonicalTaxonomy
}

func NewGapAnalyzer(t CanonicalTaxonomy) *GapAnalyzer {
	return &GapAnalyzer{taxonomy: t}
}

// Canonicalize maps required skill names to canonical names, collapsing
// duplicates. Names the taxonomy does not know are kept lowercased and also
// returned in unrecognized.
func (g *GapAnalyzer) Canonicalize(required []string) (canonical []string, unrecognized []string) {
	seen := make(map[string]struct{}, len(required))
	canonical = make([]string, 0, len(required))
	unrecognized = make([]string, 0)

	for _, raw := range required {
		name := strings.ToLower(strings.Join(strings.Fields(raw), " "))
		if name == "" {
			continue
		}

		known := false
		if g != nil && g.taxonomy != nil {
			if c, ok := g.taxonomy.Canonical(name); ok {
				name = c
				known = true
			}
		}

		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		canonical = append(canonical, name)
		if !known {
			unrecognized = append(unrecognized, name)
		}
	}

	return canonical, unrecognized
}

// Detect splits the job's required skills into matched and missing against
// the candidate's skills. Candidate skills the job does not ask for are not
// reported. MatchPercentage is 0 when the job lists no skills.
func (g *GapAnalyzer) Detect(resumeSkills skill.Set, required []string) GapResult {
	reqs, unrecognized := g.Canonicalize(required)

	res := GapResult{
		Matched:      make([]string, 0, len(reqs)),
		Missing:      make([]string, 0, len(reqs)),
		Unrecognized: unrecognized,
	}
	for _, r := range reqs {
		if resumeSkills.Has(r) {
			res.Matched = append(res.Matched, r)
		} else {
			res.Missing = append(res.Missing, r)
		}
	}

	if len(reqs) > 0 {
		res.MatchPercentage = 100 * float64(len(res.Matched)) / float64(len(reqs))
	}
	return res
}
