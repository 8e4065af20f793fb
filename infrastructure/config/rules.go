package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"agenda-sync/domain/feed"
)

// LoadRules reads feed rules from a YAML file layered over the defaults. An
// empty path returns the defaults.
func LoadRules(path string) (feed.Rules, error) {
	rules := feed.DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	if err := DecodeRules(bytes.NewReader(data), &rules); err != nil {
		return feed.DefaultRules(), fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	return rules, nil
}

// DecodeRules decodes YAML into rules, keeping fields the document omits.
// Unknown keys are rejected so typos do not silently disable a filter.
func DecodeRules(r io.Reader, rules *feed.Rules) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(rules); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
