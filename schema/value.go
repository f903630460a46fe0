package schema

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/oy3o/fixcodec"
)

// ParseValue decodes a YAML document into the canonical value of t.
// See fixcodec.Convert for the accepted shapes.
func ParseValue(t fixcodec.Type, data []byte) (any, error) {
	var loose any
	if err := yaml.Unmarshal(data, &loose); err != nil {
		return nil, fmt.Errorf("failed to parse value YAML: %w", err)
	}
	return fixcodec.Convert(t, loose)
}

// MarshalValue renders a canonical value of t as YAML.
func MarshalValue(t fixcodec.Type, v any) ([]byte, error) {
	node, err := ValueNode(t, v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ValueNode renders a canonical value of t as a YAML node. Struct fields
// keep their declaration order. Unit variants become their name, other
// variants a single-key mapping; a named variant nests its payload under
// the field name, which is the form ParseValue reads back.
func ValueNode(t fixcodec.Type, v any) (*yaml.Node, error) {
	// Shape and scalar types are checked once up front.
	if _, err := fixcodec.Encode(t, v); err != nil {
		return nil, err
	}
	return valueNode(t, v)
}

func valueNode(t fixcodec.Type, v any) (*yaml.Node, error) {
	switch t := t.(type) {
	case fixcodec.Scalar:
		return scalarNode(v)
	case *fixcodec.Struct:
		m := v.(map[string]any)
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, f := range t.Fields {
			fv, err := valueNode(f.Type, m[f.Name])
			if err != nil {
				return nil, err
			}
			if err := appendPair(node, f.Name, fv); err != nil {
				return nil, err
			}
		}
		return node, nil
	case *fixcodec.Enum:
		ev := v.(fixcodec.EnumValue)
		variant := t.Variants[t.VariantIndex(ev.Name)]
		if !variant.HasPayload() {
			return scalarNode(ev.Name)
		}
		payload, err := valueNode(variant.Payload, ev.Payload)
		if err != nil {
			return nil, err
		}
		if variant.Field != "" {
			inner := &yaml.Node{Kind: yaml.MappingNode}
			if err := appendPair(inner, variant.Field, payload); err != nil {
				return nil, err
			}
			payload = inner
		}
		node := &yaml.Node{Kind: yaml.MappingNode}
		if err := appendPair(node, ev.Name, payload); err != nil {
			return nil, err
		}
		return node, nil
	case *fixcodec.Array:
		items := v.([]any)
		node := &yaml.Node{Kind: yaml.SequenceNode}
		if _, ok := t.Elem.(fixcodec.Scalar); ok {
			node.Style = yaml.FlowStyle
		}
		for _, item := range items {
			n, err := valueNode(t.Elem, item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, n)
		}
		return node, nil
	}
	return nil, fmt.Errorf("schema: unsupported descriptor %T", t)
}

// scalarNode lets the YAML encoder pick the tag and quoting, so names that
// would read back as another type (true, null, 0x10) stay strings.
func scalarNode(v any) (*yaml.Node, error) {
	n := new(yaml.Node)
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}

func appendPair(m *yaml.Node, key string, value *yaml.Node) error {
	k, err := scalarNode(key)
	if err != nil {
		return err
	}
	m.Content = append(m.Content, k, value)
	return nil
}
