package frontmatter

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// SerializeYAML encodes fields as YAML with map keys sorted at every level,
// so equal maps always produce equal bytes. An empty map yields no output.
func SerializeYAML(fields map[string]any) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}

	root, err := mappingNode(fields)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	encErr := enc.Encode(root)
	if closeErr := enc.Close(); encErr == nil {
		encErr = closeErr
	}
	if encErr != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", encErr)
	}
	return buf.Bytes(), nil
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func mappingNode(m map[string]any) (*yaml.Node, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		val, err := valueNode(m[k])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out.Content = append(out.Content, scalar("!!str", k), val)
	}
	return out, nil
}

func valueNode(v any) (*yaml.Node, error) {
	switch vv := v.(type) {
	case nil:
		return scalar("!!null", "null"), nil
	case string:
		return scalar("!!str", vv), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(vv)), nil
	case int:
		return scalar("!!int", strconv.Itoa(vv)), nil
	case int64:
		return scalar("!!int", strconv.FormatInt(vv, 10)), nil
	case float64:
		return scalar("!!float", strconv.FormatFloat(vv, 'g', -1, 64)), nil
	case time.Time:
		return scalar("!!timestamp", vv.Format(time.RFC3339)), nil
	case map[string]any:
		return mappingNode(vv)
	case map[any]any:
		flat := make(map[string]any, len(vv))
		for k, val := range vv {
			flat[fmt.Sprint(k)] = val
		}
		return mappingNode(flat)
	case []string:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, s := range vv {
			seq.Content = append(seq.Content, scalar("!!str", s))
		}
		return seq, nil
	case []any:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range vv {
			n, err := valueNode(item)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, n)
		}
		return seq, nil
	default:
		var n yaml.Node
		if err := n.Encode(v); err != nil {
			return nil, fmt.Errorf("encode %T: %w", v, err)
		}
		return &n, nil
	}
}
