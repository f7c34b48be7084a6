package poi

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultDedupThresholdM is the planar distance below which two records of
// the same category are treated as one real-world feature.
const DefaultDedupThresholdM = 50.0

// Rule maps a tag key and value set to a category. Rules are tried in
// order and the first match wins; features matching no rule are dropped.
type Rule struct {
	Key      string   `yaml:"key"`
	Values   []string `yaml:"values"`
	Category Category `yaml:"category"`
}

// DefaultRules is the built-in classification table: food shops and
// campsites, in decreasing order of specificity.
func DefaultRules() []Rule {
	return []Rule{
		{Key: "shop", Values: []string{"supermarket"}, Category: Supermarket},
		{Key: "shop", Values: []string{"convenience", "grocery"}, Category: ConvenienceStore},
		{Key: "shop", Values: []string{"bakery"}, Category: Bakery},
		{Key: "shop", Values: []string{"general", "food", "butcher", "greengrocer", "marketplace", "mall", "department_store"}, Category: OtherShop},
		{Key: "tourism", Values: []string{"camp_site", "caravan_site"}, Category: Campsite},
	}
}

// Classify maps a raw tag set to a category using the rule table. The
// second return value is false when no rule matches.
func Classify(tags map[string]string, rules []Rule) (Category, bool) {
	for _, r := range rules {
		v, ok := tags[r.Key]
		if !ok {
			continue
		}
		for _, want := range r.Values {
			if v == want {
				return r.Category, true
			}
		}
	}
	return CategoryUnknown, false
}

// RulesConfig is the optional YAML override for the classification table
// and deduplication threshold.
type RulesConfig struct {
	Rules           []Rule  `yaml:"rules"`
	DedupThresholdM float64 `yaml:"dedup_threshold_m"`
}

// LoadRules reads a rules file, filling in defaults for anything omitted.
func LoadRules(path string) (*RulesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading rules file %s: %v", path, err)
	}
	var cfg RulesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing rules file %s: %v", path, err)
	}
	if len(cfg.Rules) == 0 {
		cfg.Rules = DefaultRules()
	}
	if cfg.DedupThresholdM == 0 {
		cfg.DedupThresholdM = DefaultDedupThresholdM
	}
	return &cfg, nil
}
