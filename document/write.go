package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Marshal renders a Document in the given format, keeping mapping order.
func Marshal(doc any, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		node, err := toYAML(doc)
		if err != nil {
			return nil, err
		}
		return yaml.Marshal(node)
	case FormatJSON:
		var buf bytes.Buffer
		if err := writeJSON(&buf, doc); err != nil {
			return nil, err
		}
		var out bytes.Buffer
		if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
			return nil, err
		}
		out.WriteByte('\n')
		return out.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// WriteFile atomically writes a Document to path, choosing the format by
// extension.
func WriteFile(path string, doc any) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(doc, format)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func toYAML(doc any) (*yaml.Node, error) {
	switch v := doc.(type) {
	case nil:
		return scalarNode("!!null", "null"), nil
	case *Map:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range v.Keys() {
			val, _ := v.Get(k)
			child, err := toYAML(val)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			n.Content = append(n.Content, scalarNode("!!str", k), child)
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v {
			child, err := toYAML(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case string:
		return scalarNode("!!str", v), nil
	case bool:
		return scalarNode("!!bool", strconv.FormatBool(v)), nil
	case time.Time:
		return scalarNode("!!str", v.Format(time.RFC3339Nano)), nil
	case Date:
		return scalarNode("!!str", v.String()), nil
	}

	rv := reflect.ValueOf(doc)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return scalarNode("!!int", strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return scalarNode("!!int", strconv.FormatUint(rv.Uint(), 10)), nil
	case reflect.Float32, reflect.Float64:
		return scalarNode("!!float", yamlFloat(rv.Float())), nil
	case reflect.String:
		return scalarNode("!!str", rv.String()), nil
	case reflect.Bool:
		return scalarNode("!!bool", strconv.FormatBool(rv.Bool())), nil
	}

	n := &yaml.Node{}
	if err := n.Encode(doc); err != nil {
		return nil, err
	}
	return n, nil
}

// yamlFloat spells f the way YAML 1.2 reads it back.
func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func writeJSON(buf *bytes.Buffer, doc any) error {
	switch v := doc.(type) {
	case *Map:
		buf.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			val, _ := v.Get(k)
			if err := writeJSON(buf, val); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
		}
		buf.WriteByte('}')
		return nil
	case []any:
		buf.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case time.Time:
		doc = v.Format(time.RFC3339Nano)
	case Date:
		doc = v.String()
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}
