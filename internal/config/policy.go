package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ainexus/nexus-backend/internal/logger"
)

// Policy holds the tunable personalization constants. The qualitative
// properties (monotonic capped score, streaks as running maximums) are fixed;
// the exact weights are deployment policy.
type Policy struct {
	Scoring struct {
		TutorialWeight int `yaml:"tutorial_weight"`
		PromptWeight   int `yaml:"prompt_weight"`
		ToolWeight     int `yaml:"tool_weight"`
		ScoreCap       int `yaml:"score_cap"`
		LevelTiers     int `yaml:"level_tiers"`
	} `yaml:"scoring"`

	// ActivityRetention bounds how many activity rows are kept per user.
	// Older rows are dropped; this is a documented retention policy.
	ActivityRetention int `yaml:"activity_retention"`
}

func DefaultPolicy() Policy {
	var p Policy
	p.Scoring.TutorialWeight = 5
	p.Scoring.PromptWeight = 2
	p.Scoring.ToolWeight = 1
	p.Scoring.ScoreCap = 100
	p.Scoring.LevelTiers = 4
	p.ActivityRetention = 100
	return p
}

// LoadPolicy reads the YAML policy file at path. A missing file is not an
// error: defaults apply. A present but unparsable file is surfaced so a bad
// deploy fails loudly instead of silently running with defaults.
func LoadPolicy(path string, log *logger.Logger) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if log != nil {
				log.Debug("No policy file found, using defaults", "path", path)
			}
			return p, nil
		}
		return p, err
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, err
	}
	p = sanitize(p)
	if log != nil {
		log.Info("Loaded personalization policy", "path", path,
			"tutorial_weight", p.Scoring.TutorialWeight,
			"prompt_weight", p.Scoring.PromptWeight,
			"tool_weight", p.Scoring.ToolWeight,
			"score_cap", p.Scoring.ScoreCap)
	}
	return p, nil
}

func sanitize(p Policy) Policy {
	d := DefaultPolicy()
	if p.Scoring.ScoreCap <= 0 {
		p.Scoring.ScoreCap = d.Scoring.ScoreCap
	}
	if p.Scoring.LevelTiers <= 0 {
		p.Scoring.LevelTiers = d.Scoring.LevelTiers
	}
	if p.Scoring.TutorialWeight < 0 {
		p.Scoring.TutorialWeight = d.Scoring.TutorialWeight
	}
	if p.Scoring.PromptWeight < 0 {
		p.Scoring.PromptWeight = d.Scoring.PromptWeight
	}
	if p.Scoring.ToolWeight < 0 {
		p.Scoring.ToolWeight = d.Scoring.ToolWeight
	}
	if p.ActivityRetention <= 0 {
		p.ActivityRetention = d.ActivityRetention
	}
	return p
}
