package schema

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Document is the serialized form of a schema.
type Document struct {
	Version string     `yaml:"version" toml:"version"`
	Types   []TypeDecl `yaml:"types" toml:"types"`
}

// TypeDecl declares a struct (Fields) or an enum (Repr and Variants).
type TypeDecl struct {
	Name     string        `yaml:"name" toml:"name"`
	Fields   []FieldDecl   `yaml:"fields,omitempty" toml:"fields,omitempty"`
	Repr     string        `yaml:"repr,omitempty" toml:"repr,omitempty"`
	Variants []VariantDecl `yaml:"variants,omitempty" toml:"variants,omitempty"`
}

// IsEnum reports whether the declaration describes an enum.
func (d *TypeDecl) IsEnum() bool {
	return d.Repr != "" || len(d.Variants) > 0
}

type FieldDecl struct {
	Name string `yaml:"name" toml:"name"`
	Type string `yaml:"type" toml:"type"`
}

// VariantDecl declares one enum variant. Tag is the explicit discriminant,
// if any. Payload names an unnamed payload type; Fields holds the single
// named payload of a struct-like variant.
type VariantDecl struct {
	Name    string      `yaml:"name" toml:"name"`
	Tag     *uint64     `yaml:"tag,omitempty" toml:"tag,omitempty"`
	Payload string      `yaml:"payload,omitempty" toml:"payload,omitempty"`
	Fields  []FieldDecl `yaml:"fields,omitempty" toml:"fields,omitempty"`
}

// variantDecl breaks the UnmarshalYAML recursion.
type variantDecl VariantDecl

// UnmarshalYAML accepts either a full mapping or a bare variant name,
// which declares a unit variant with an implicit tag.
func (v *VariantDecl) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}
		*v = VariantDecl{Name: name}
		return nil
	case yaml.MappingNode:
		return node.Decode((*variantDecl)(v))
	default:
		return fmt.Errorf("line %d: expected variant name or mapping", node.Line)
	}
}

// MarshalYAML writes unit variants with an implicit tag as a bare name.
func (v VariantDecl) MarshalYAML() (any, error) {
	if v.Tag == nil && v.Payload == "" && len(v.Fields) == 0 {
		return v.Name, nil
	}
	return variantDecl(v), nil
}

// LoadFile loads and parses a schema file. Files ending in .toml are read
// as TOML, everything else as YAML.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	if isTOML(path) {
		return ParseTOML(data)
	}
	return Parse(data)
}

// Parse parses YAML data into a Document.
func Parse(data []byte) (*Document, error) {
	var doc Document

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}

	applyDefaults(&doc)

	return &doc, nil
}

// ParseTOML parses TOML data into a Document. Unknown keys are rejected.
func ParseTOML(data []byte) (*Document, error) {
	var doc Document

	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema TOML: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		return nil, fmt.Errorf("schema TOML has unknown keys %v", unknown)
	}

	applyDefaults(&doc)

	return &doc, nil
}

func applyDefaults(doc *Document) {
	if doc.Version == "" {
		doc.Version = "1"
	}
}

// Marshal serializes a Document to YAML.
func Marshal(doc *Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

// MarshalTOML serializes a Document to TOML.
func MarshalTOML(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes a Document to path, as TOML if the path ends in .toml.
func WriteFile(doc *Document, path string) error {
	marshal := Marshal
	if isTOML(path) {
		marshal = MarshalTOML
	}

	data, err := marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write schema file %s: %w", path, err)
	}

	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
