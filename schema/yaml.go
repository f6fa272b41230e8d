// Copyright 2026 The wdbc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package schema

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// A schema definition file looks like:
//
//	name: CharTitles
//	key: Id
//	fields:
//	  - {name: Id, type: int32}
//	  - {type: pad, width: 4}
//	  - {name: TitleMale, type: locstring}
//	  - {name: TitleFemale, type: locstring}
//	  - {name: Index, type: int32}
//	  - {name: Flags, type: array, of: int32, count: 2}
type yamlSchema struct {
	Name   string      `yaml:"name"`
	Key    string      `yaml:"key"`
	Fields []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Width int    `yaml:"width"`
	Of    string `yaml:"of"`
	Count int    `yaml:"count"`
}

// LoadFile reads a YAML schema definition from path.
func LoadFile(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("os.ReadFile(%s): %w", path, err)
	}
	s, err := ParseYAML(data)
	if err != nil {
		return Schema{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseYAML decodes a YAML schema definition.  The result isn't compiled;
// pass it to Compile to validate widths and names.
func ParseYAML(data []byte) (Schema, error) {
	var ys yamlSchema
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ys); err != nil {
		return Schema{}, fmt.Errorf("%w: yaml: %v", ErrSchema, err)
	}

	s := Schema{Name: ys.Name, Key: ys.Key}
	for i, yf := range ys.Fields {
		f, err := yf.field()
		if err != nil {
			return Schema{}, fmt.Errorf("field %d: %w", i, err)
		}
		s.Fields = append(s.Fields, f)
	}
	return s, nil
}

func (yf yamlField) field() (Field, error) {
	switch t := strings.ToLower(yf.Type); t {
	case "array":
		elem, err := primitive(yf.Of, "")
		if err != nil {
			return nil, err
		}
		return Array(yf.Name, elem, yf.Count), nil
	case "pad", "padding":
		width := yf.Width
		if width == 0 {
			width = 4
		}
		return Pad(width), nil
	case "locstring", "localized":
		return LocString(yf.Name), nil
	default:
		return primitive(t, yf.Name)
	}
}

func primitive(typ, name string) (Field, error) {
	switch strings.ToLower(typ) {
	case "int8":
		return Int8(name), nil
	case "int16":
		return Int16(name), nil
	case "int32", "int":
		return Int32(name), nil
	case "int64":
		return Int64(name), nil
	case "float", "float32":
		return Float32(name), nil
	case "string":
		return String(name), nil
	default:
		return nil, fmt.Errorf("%w: unknown field type %q", ErrSchema, typ)
	}
}
