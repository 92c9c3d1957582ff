package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
)

// policyFile is the on-disk layout of the voting policy:
//
//	[weights]
//	contributor = 2
//	voter = 1
//
//	[threshold]
//	minimum = 1
//	watcher_fraction = 0.03
//
//	[meritocracy]
//	quorum = 1
//	mention_fraction = 0.5
type policyFile struct {
	Weights struct {
		Contributor int `toml:"contributor"`
		Voter       int `toml:"voter"`
	} `toml:"weights"`
	Threshold struct {
		Minimum         int     `toml:"minimum"`
		WatcherFraction float64 `toml:"watcher_fraction"`
	} `toml:"threshold"`
	Meritocracy struct {
		Quorum          int     `toml:"quorum"`
		MentionFraction float64 `toml:"mention_fraction"`
	} `toml:"meritocracy"`
}

// LoadPolicy reads a TOML voting policy. Missing keys keep their defaults;
// unknown keys are rejected so typos do not silently fall back.
func LoadPolicy(path string) (model.VotingPolicy, error) {
	var f policyFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return model.VotingPolicy{}, fmt.Errorf("read policy file %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return model.VotingPolicy{}, fmt.Errorf("policy file %s has unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if f.Threshold.WatcherFraction > 1 || f.Meritocracy.MentionFraction > 1 {
		return model.VotingPolicy{}, fmt.Errorf("policy file %s: fractions must be at most 1", path)
	}

	return model.VotingPolicy{
		ContributorWeight: f.Weights.Contributor,
		VoterWeight:       f.Weights.Voter,
		MinThreshold:      f.Threshold.Minimum,
		WatcherFraction:   f.Threshold.WatcherFraction,
		MentionFraction:   f.Meritocracy.MentionFraction,
		MeritocracyQuorum: f.Meritocracy.Quorum,
	}.WithDefaults(), nil
}
