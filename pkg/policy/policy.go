// Package policy loads bank-statement parser profiles from a YAML policy
// file. A profile names the correction rules and residual tolerance to use
// for statements of a given institution; the profile is chosen by pattern
// matching against page-1 text.
package policy

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// DefaultResidualTolerance is the residual window applied when the policy
// file does not specify one, in currency units.
const DefaultResidualTolerance = 1.0

// GenericProfileName identifies the fallback profile used when no detection
// pattern matches.
const GenericProfileName = "generic"

type fileDefaults struct {
	ResidualTolerance *float64 `yaml:"residual_tolerance"`
	TxRules           []string `yaml:"tx_rules"`
}

type fileProfile struct {
	Detect            []string `yaml:"detect"`
	ResidualTolerance *float64 `yaml:"residual_tolerance"`
	TxRules           []string `yaml:"tx_rules"`
}

type file struct {
	Defaults fileDefaults           `yaml:"defaults"`
	Profiles map[string]fileProfile `yaml:"profiles"`
}

// Profile is a resolved parser profile: the rule names to apply, in order,
// and the residual tolerance for balance reconciliation.
type Profile struct {
	Name              string
	ResidualTolerance float64
	TxRules           []string
}

type compiledProfile struct {
	profile Profile
	detect  []*regexp.Regexp
}

// Store holds the loaded policy. It is immutable after Load and safe for
// concurrent use.
type Store struct {
	defaults Profile
	profiles []compiledProfile
}

// Generic returns the built-in default profile, used when no policy file is
// configured.
func Generic() Profile {
	return Profile{Name: GenericProfileName, ResidualTolerance: DefaultResidualTolerance}
}

// Load reads and compiles a policy file. A missing path yields a store that
// always returns the generic profile. A malformed detection pattern is a
// programming error in the policy file and fails loading.
func Load(path string) (*Store, error) {
	if path == "" {
		return &Store{defaults: Generic()}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Store{defaults: Generic()}, nil
		}
		return nil, fmt.Errorf("policy: read %s: %w", path, err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("policy: parse %s: %w", path, err)
	}

	defaults := Profile{
		Name:              GenericProfileName,
		ResidualTolerance: DefaultResidualTolerance,
		TxRules:           f.Defaults.TxRules,
	}
	if f.Defaults.ResidualTolerance != nil {
		defaults.ResidualTolerance = *f.Defaults.ResidualTolerance
	}

	s := &Store{defaults: defaults}
	for name, fp := range f.Profiles {
		cp := compiledProfile{
			profile: Profile{
				Name:              name,
				ResidualTolerance: defaults.ResidualTolerance,
				TxRules:           fp.TxRules,
			},
		}
		if fp.ResidualTolerance != nil {
			cp.profile.ResidualTolerance = *fp.ResidualTolerance
		}
		if len(fp.TxRules) == 0 {
			cp.profile.TxRules = defaults.TxRules
		}
		for _, pat := range fp.Detect {
			re, err := regexp.Compile("(?i)" + pat)
			if err != nil {
				return nil, fmt.Errorf("policy: profile %s: bad pattern %q: %w", name, pat, err)
			}
			cp.detect = append(cp.detect, re)
		}
		s.profiles = append(s.profiles, cp)
	}
	return s, nil
}

// Pick selects the profile whose detection patterns score the most hits
// against the page-1 text. Ties go to the first profile that reached the
// best score; zero hits everywhere falls back to the defaults.
func (s *Store) Pick(page1Text string) Profile {
	best := s.defaults
	bestHits := 0
	for _, cp := range s.profiles {
		hits := 0
		for _, re := range cp.detect {
			if re.MatchString(page1Text) {
				hits++
			}
		}
		if hits > bestHits {
			best = cp.profile
			bestHits = hits
		}
	}
	return best
}
