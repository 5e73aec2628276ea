package main

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/nozzlewatch/nozzlewatch/internal/settings"
)

type settingsStore interface {
	Fields() []settings.Descriptor
	PendingText(id settings.FieldID) (string, bool)
	SetPending(id settings.FieldID, raw string) error
	Revert()
}

// encodeSettingsYAML renders the pending values as a flat mapping in field
// table order. Values use the same text form the settings inputs accept.
func encodeSettingsYAML(store settingsStore, redactSecrets bool) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, desc := range store.Fields() {
		text, _ := store.PendingText(desc.ID)
		if desc.Kind == settings.KindSecret && redactSecrets && text != "" {
			text = redactedValue
		}

		val := &yaml.Node{Kind: yaml.ScalarNode, Value: text}
		switch desc.Kind {
		case settings.KindText, settings.KindSecret, settings.KindMask, settings.KindChoice:
			val.Tag = "!!str"
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: string(desc.ID), HeadComment: desc.Label},
			val,
		)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}

	return out, nil
}

const redactedValue = "<redacted>"

// importSettingsYAML stages every value in data. Either all values are staged
// or none are: on any error the pending edits are reverted.
func importSettingsYAML(store settingsStore, data []byte) (int, error) {
	pairs, err := decodeSettingsYAML(data)
	if err != nil {
		return 0, err
	}

	var errs []error
	staged := 0
	for _, p := range pairs {
		if p.value == redactedValue {
			continue
		}
		if err := store.SetPending(settings.FieldID(p.key), p.value); err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", p.line, err))

			continue
		}
		staged++
	}
	if len(errs) > 0 {
		store.Revert()

		return 0, errors.Join(errs...)
	}

	return staged, nil
}

type settingPair struct {
	key   string
	value string
	line  int
}

func decodeSettingsYAML(data []byte) ([]settingPair, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("settings document is empty")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: settings must be a mapping of field to value", root.Line)
	}

	seen := make(map[string]bool, len(root.Content)/2)
	pairs := make([]settingPair, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: value of %q must be a scalar", val.Line, key.Value)
		}
		if seen[key.Value] {
			return nil, fmt.Errorf("line %d: duplicate setting %q", key.Line, key.Value)
		}
		seen[key.Value] = true
		pairs = append(pairs, settingPair{key: key.Value, value: val.Value, line: key.Line})
	}

	return pairs, nil
}
