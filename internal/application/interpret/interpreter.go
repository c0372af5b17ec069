package interpret

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bryanwahyu/genefit/internal/domain/species"
)

// Sections is the best-effort split of a completion into display sections.
// Unclassified keeps whatever precedes the first recognised section; Fallback
// is set when no keyword matched and the text was cut into thirds instead.
type Sections struct {
	Physical     string `json:"physical"`
	Nutrition    string `json:"nutrition"`
	Health       string `json:"health"`
	Unclassified string `json:"unclassified,omitempty"`
	Fallback     bool   `json:"fallback"`
}

type rule struct {
	start *regexp.Regexp
	stop  *regexp.Regexp
}

type ruleSet struct {
	physical, nutrition, health rule
}

type subject struct {
	pattern *regexp.Regexp
	info    species.Info
}

// Interpreter classifies and segments free-text completions using a catalog.
type Interpreter struct {
	version  int
	fallback species.Info
	subjects []subject
	human    ruleSet
	animal   ruleSet
}

// New compiles the catalog keywords. Species keywords are case-insensitive
// patterns; section keywords are literal words.
func New(c *species.Catalog) (*Interpreter, error) {
	in := &Interpreter{version: c.Version, fallback: c.Default}
	for _, e := range c.Species {
		re, err := regexp.Compile("(?i)" + e.Keyword)
		if err != nil {
			return nil, fmt.Errorf("species keyword %q: %w", e.Keyword, err)
		}
		in.subjects = append(in.subjects, subject{pattern: re, info: e.Info})
	}
	var err error
	if in.human, err = compileRules(c.Sections.Human); err != nil {
		return nil, fmt.Errorf("human sections: %w", err)
	}
	if in.animal, err = compileRules(c.Sections.Animal); err != nil {
		return nil, fmt.Errorf("animal sections: %w", err)
	}
	return in, nil
}

func compileRules(r species.SectionRules) (ruleSet, error) {
	var (
		out ruleSet
		err error
	)
	if out.physical, err = compileRule(r.Physical); err != nil {
		return out, err
	}
	if out.nutrition, err = compileRule(r.Nutrition); err != nil {
		return out, err
	}
	out.health, err = compileRule(r.Health)
	return out, err
}

func compileRule(r species.SectionRule) (rule, error) {
	if len(r.Start) == 0 {
		return rule{}, fmt.Errorf("section rule has no start keywords")
	}
	out := rule{start: alternation(r.Start)}
	if len(r.Stop) > 0 {
		out.stop = alternation(r.Stop)
	}
	return out, nil
}

func alternation(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile("(?i)(?:" + strings.Join(quoted, "|") + ")")
}

// CatalogVersion reports the version of the catalog in use.
func (in *Interpreter) CatalogVersion() int { return in.version }

// ClassifySubject returns the first catalog species whose keyword appears in
// text, or the default subject.
func (in *Interpreter) ClassifySubject(text string) species.Info {
	for _, s := range in.subjects {
		if s.pattern.MatchString(text) {
			return s.info
		}
	}
	return in.fallback
}

// ExtractSections splits text with the animal or human keyword rules.
func (in *Interpreter) ExtractSections(text string, isAnimal bool) Sections {
	rules := in.human
	if isAnimal {
		rules = in.animal
	}

	var out Sections
	first := -1
	grab := func(r rule) string {
		from, section := r.extract(text)
		if section != "" && (first < 0 || from < first) {
			first = from
		}
		return section
	}
	out.Physical = grab(rules.physical)
	out.Nutrition = grab(rules.nutrition)
	out.Health = grab(rules.health)

	if out.Physical == "" && out.Nutrition == "" && out.Health == "" {
		return splitThirds(text)
	}
	if first > 0 {
		out.Unclassified = strings.TrimSpace(text[:first])
	}
	return out
}

// Interpret classifies text and extracts its sections with the matching rules.
func (in *Interpreter) Interpret(text string) (species.Info, Sections) {
	subj := in.ClassifySubject(text)
	return subj, in.ExtractSections(text, subj.IsAnimal())
}

// extract returns the offset of the leftmost start keyword and the trimmed
// text from there up to the first stop keyword at or after the keyword's end.
func (r rule) extract(text string) (int, string) {
	loc := r.start.FindStringIndex(text)
	if loc == nil {
		return -1, ""
	}
	end := len(text)
	if r.stop != nil {
		if stop := r.stop.FindStringIndex(text[loc[1]:]); stop != nil {
			end = loc[1] + stop[0]
		}
	}
	return loc[0], strings.TrimSpace(text[loc[0]:end])
}

// splitThirds distributes the non-blank paragraphs over the three sections.
func splitThirds(text string) Sections {
	var parts []string
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	n := len(parts)
	a, b := ceilDiv(n, 3), ceilDiv(2*n, 3)
	return Sections{
		Physical:  strings.Join(parts[:a], "\n\n"),
		Nutrition: strings.Join(parts[a:b], "\n\n"),
		Health:    strings.Join(parts[b:], "\n\n"),
		Fallback:  true,
	}
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }
