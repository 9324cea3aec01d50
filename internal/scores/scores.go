// Package scores declares the named 0-100 scalar scores the analyzer
// computes statistics for. The built-in table mirrors the extraction
// taxonomy; a scores.toml file can replace or extend it.
package scores

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Definition describes one named score field.
type Definition struct {
	// Name is the llm_meta field name carrying the score
	Name string `toml:"name"`

	// Methodology is the one-line explanation shown next to the stats
	Methodology string `toml:"methodology"`
}

// definitionsFile is the root structure of scores.toml
type definitionsFile struct {
	Scores []Definition `toml:"score"`
}

// BuiltIn returns the default score definitions in analysis order.
func BuiltIn() []Definition {
	return []Definition{
		{Name: "inferred_future_relevance_score", Methodology: "How useful for future reference? Higher = more likely to revisit."},
		{Name: "urgency_score", Methodology: "How time-sensitive was the query? Higher = more urgent/stressful."},
		{Name: "complexity_score", Methodology: "Technical depth required. Higher = more complex."},
		{Name: "information_density", Methodology: "Signal vs noise ratio. Higher = more dense/valuable."},
		{Name: "depth_of_engagement", Methodology: "User effort/investment. Higher = deeper engagement."},
		{Name: "user_satisfaction_inferred", Methodology: "Did user seem satisfied? Higher = happier."},
		{Name: "user_request_quality_inferred", Methodology: "How clear was the ask? Higher = better prompts."},
		{Name: "ai_response_quality_score", Methodology: "How good were AI responses? Higher = better responses."},
	}
}

// SerendipityPublic and SerendipityPower are analyzed separately from the
// regular score table: they share the computation shape but carry their own
// top lists and must not cross-contaminate rankings.
const (
	SerendipityPublic = "serendipity_vs_general_public"
	SerendipityPower  = "serendipity_vs_power_users"
)

// Load reads score definitions from a TOML file. An empty path returns the
// built-in table.
func Load(path string) ([]Definition, error) {
	if path == "" {
		return BuiltIn(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading score definitions %s: %w", path, err)
	}

	var file definitionsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing score definitions %s: %w", path, err)
	}
	if len(file.Scores) == 0 {
		return nil, fmt.Errorf("score definitions %s declare no scores", path)
	}

	seen := make(map[string]bool, len(file.Scores))
	for _, def := range file.Scores {
		if def.Name == "" {
			return nil, fmt.Errorf("score definitions %s contain an unnamed score", path)
		}
		if seen[def.Name] {
			return nil, fmt.Errorf("score definitions %s declare %q twice", path, def.Name)
		}
		seen[def.Name] = true
	}

	return file.Scores, nil
}
