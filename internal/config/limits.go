package config

import (
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/stabctl/internal/servo"
	"github.com/san-kum/stabctl/internal/telemetry"
)

// Limits is the YAML form of an axis limit setting: the scalar "auto", a
// single [min, max] pair for every channel, or one entry per channel.
type Limits telemetry.LimitSet

func (l *Limits) UnmarshalYAML(node *yaml.Node) error {
	key := "limits"
	switch node.Kind {
	case yaml.ScalarNode:
		if isAuto(node) {
			*l = nil
			return nil
		}
		return servo.Configf(key, "line %d: expected auto or [min, max], got %q", node.Line, node.Value)
	case yaml.SequenceNode:
		if len(node.Content) == 0 {
			*l = nil
			return nil
		}
		if node.Content[0].Kind == yaml.ScalarNode && !isAuto(node.Content[0]) {
			pair, err := decodePair(node)
			if err != nil {
				return err
			}
			*l = Limits{pair}
			return nil
		}
		out := make(Limits, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind == yaml.ScalarNode && isAuto(item) {
				out = append(out, telemetry.AutoLimits())
				continue
			}
			pair, err := decodePair(item)
			if err != nil {
				return err
			}
			out = append(out, pair)
		}
		*l = out
		return nil
	}
	return servo.Configf(key, "line %d: unsupported limits form", node.Line)
}

func (l Limits) MarshalYAML() (any, error) {
	encode := func(v telemetry.Limits) any {
		if v.Auto {
			return "auto"
		}
		return []float64{v.Min, v.Max}
	}
	switch len(l) {
	case 0:
		return "auto", nil
	case 1:
		return encode(l[0]), nil
	}
	out := make([]any, len(l))
	for i, v := range l {
		out[i] = encode(v)
	}
	return out, nil
}

func isAuto(n *yaml.Node) bool {
	v := strings.ToLower(strings.TrimSpace(n.Value))
	return n.Tag == "!!null" || v == "auto" || v == ""
}

func decodePair(n *yaml.Node) (telemetry.Limits, error) {
	var pair []float64
	if err := n.Decode(&pair); err != nil || len(pair) != 2 {
		return telemetry.Limits{}, servo.Configf("limits", "line %d: expected a [min, max] pair", n.Line)
	}
	if math.IsNaN(pair[0]) || math.IsNaN(pair[1]) || pair[0] > pair[1] {
		return telemetry.Limits{}, servo.Configf("limits", "line %d: invalid range [%g, %g]", n.Line, pair[0], pair[1])
	}
	return telemetry.Fixed(pair[0], pair[1]), nil
}
