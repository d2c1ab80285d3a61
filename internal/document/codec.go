package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

const maxDepth = 128

var ErrTooDeep = errors.New("document: nesting too deep")

// Parse decodes the first YAML document in data. JSON input is accepted as
// well. Empty input yields null.
func Parse(data []byte) (Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Null(), err
	}
	if root.Kind == 0 {
		return Null(), nil
	}
	return fromNode(&root, 0)
}

// ParseMap is Parse for callers that only accept a mapping at the top level.
// ok is false for anything else.
func ParseMap(data []byte) (m *Map, ok bool) {
	v, err := Parse(data)
	if err != nil {
		return nil, false
	}
	return v.AsMap()
}

func fromNode(n *yaml.Node, depth int) (Value, error) {
	if depth > maxDepth {
		return Null(), ErrTooDeep
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return fromNode(n.Content[0], depth+1)
	case yaml.AliasNode:
		if n.Alias == nil {
			return Null(), nil
		}
		return fromNode(n.Alias, depth+1)
	case yaml.MappingNode:
		return mapping(n, depth)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c, depth+1)
			if err != nil {
				return Null(), err
			}
			items = append(items, v)
		}
		return List(items...), nil
	case yaml.ScalarNode:
		return scalar(n), nil
	}
	return Null(), nil
}

var errMergeValue = errors.New("document: merge key needs a mapping or a list of mappings")

// mapping applies merge keys the way YAML 1.1 defines them: explicit keys
// win wherever they appear, and earlier merged mappings win over later ones.
func mapping(n *yaml.Node, depth int) (Value, error) {
	explicit := map[string]bool{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if key := mappingKey(n.Content[i]); key.ShortTag() != "!!merge" {
			explicit[key.Value] = true
		}
	}

	m := NewMap()
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := mappingKey(n.Content[i])
		v, err := fromNode(n.Content[i+1], depth+1)
		if err != nil {
			return Null(), err
		}
		if key.ShortTag() != "!!merge" {
			m.Set(key.Value, v)
			continue
		}

		sources, isList := v.AsList()
		if !isList {
			sources = []Value{v}
		}
		for _, src := range sources {
			merged, ok := src.AsMap()
			if !ok {
				return Null(), errMergeValue
			}
			for _, k := range merged.Keys() {
				if _, seen := m.Get(k); seen || explicit[k] {
					continue
				}
				mv, _ := merged.Get(k)
				m.Set(k, mv)
			}
		}
	}
	return Object(m), nil
}

func mappingKey(key *yaml.Node) *yaml.Node {
	if key.Kind == yaml.AliasNode && key.Alias != nil {
		return key.Alias
	}
	return key
}

// scalar keeps timestamps, binaries and anything else it cannot type as the
// source text.
func scalar(n *yaml.Node) Value {
	switch n.ShortTag() {
	case "!!null":
		return Null()
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return Bool(b)
		}
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int(i)
		}
		var f float64
		if err := n.Decode(&f); err == nil {
			return Float(f)
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return Float(f)
		}
	}
	return String(n.Value)
}

// YAML renders m in block style with sorted keys.
func (m *Map) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m.Interface()); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// JSON renders m keeping insertion order. An empty indent produces compact
// output.
func (m *Map) JSON(indent string) ([]byte, error) {
	return EncodeJSON(Object(m), indent)
}

func EncodeJSON(v Value, indent string) ([]byte, error) {
	if v.kind == KindMap && v.m == nil {
		v = Object(NewMap())
	}
	raw, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	if indent == "" {
		return raw, nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeMap(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *Map) MarshalYAML() (interface{}, error) {
	return m.Interface(), nil
}

func (v Value) MarshalYAML() (interface{}, error) {
	return v.Interface(), nil
}

func writeValue(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindString:
		return writeString(buf, v.str)
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.num, 10))
	case KindFloat:
		// JSON has no representation for .inf and .nan
		if math.IsInf(v.flt, 0) || math.IsNaN(v.flt) {
			buf.WriteString("null")
			return nil
		}
		b, err := json.Marshal(v.flt)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindMap:
		return writeMap(buf, v.m)
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	}
	return nil
}

func writeMap(buf *bytes.Buffer, m *Map) error {
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		v, _ := m.Get(k)
		if err := writeValue(buf, v); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
