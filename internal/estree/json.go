package estree

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-json-experiment/json/jsontext"
)

// Trees nest one JSON object per syntax level plus one array per list, so
// this leaves room for deeply nested but still sane input.
const maxDepth = 10000

type DecodeError struct {
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid syntax tree at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode reads an ESTree JSON document. Objects with a string "type" become
// typed nodes and every other object becomes an untyped record. Key order
// is preserved since it determines traversal order.
func Decode(data []byte) (*Node, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data), jsontext.WithDepthLimit(maxDepth))
	value, err := decodeValue(dec)
	if err != nil {
		return nil, &DecodeError{Offset: dec.InputOffset(), Err: err}
	}
	root, ok := value.(*Node)
	if !ok || root == nil || root.Type == "" {
		return nil, &DecodeError{Offset: 0, Err: fmt.Errorf("expected a node object at the top level")}
	}
	return root, nil
}

func decodeValue(dec *jsontext.Decoder) (interface{}, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}

	switch tok.Kind() {
	case 'n':
		return nil, nil
	case 't', 'f':
		return tok.Bool(), nil
	case '"':
		return tok.String(), nil
	case '0':
		return tok.Float(), nil
	case '{':
		return decodeObject(dec)
	case '[':
		return decodeArray(dec)
	}

	return nil, fmt.Errorf("unexpected token %q", tok.Kind())
}

func decodeObject(dec *jsontext.Decoder) (*Node, error) {
	node := &Node{}
	for dec.PeekKind() != '}' {
		keyTok, err := dec.ReadToken()
		if err != nil {
			return nil, err
		}
		key := keyTok.String()
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		if key == "type" {
			if typ, ok := value.(string); ok {
				node.Type = typ
				continue
			}
		}
		node.Fields = append(node.Fields, Field{Key: key, Value: value})
	}
	if _, err := dec.ReadToken(); err != nil {
		return nil, err
	}
	return node, nil
}

func decodeArray(dec *jsontext.Decoder) (interface{}, error) {
	var values []interface{}
	allNodes := true
	for dec.PeekKind() != ']' {
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		if _, ok := value.(*Node); !ok && value != nil {
			allNodes = false
		}
		values = append(values, value)
	}
	if _, err := dec.ReadToken(); err != nil {
		return nil, err
	}

	// Empty arrays are node lists in every ESTree field that can be empty
	if allNodes {
		nodes := make([]*Node, len(values))
		for i, value := range values {
			nodes[i], _ = value.(*Node)
		}
		return nodes, nil
	}
	return values, nil
}

// Encode writes a tree as JSON with "type" as the first key of every node.
// An empty indent produces compact output.
func Encode(root *Node, indent string) ([]byte, error) {
	var buf bytes.Buffer
	var opts []jsontext.Options
	if indent != "" {
		opts = append(opts, jsontext.Multiline(true), jsontext.WithIndent(indent))
	}
	enc := jsontext.NewEncoder(&buf, opts...)
	if err := encodeValue(enc, root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(enc *jsontext.Encoder, value interface{}) error {
	switch v := value.(type) {
	case nil:
		return enc.WriteToken(jsontext.Null)

	case *Node:
		if v == nil {
			return enc.WriteToken(jsontext.Null)
		}
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return err
		}
		if v.Type != "" {
			if err := enc.WriteToken(jsontext.String("type")); err != nil {
				return err
			}
			if err := enc.WriteToken(jsontext.String(v.Type)); err != nil {
				return err
			}
		}
		for _, f := range v.Fields {
			if err := enc.WriteToken(jsontext.String(f.Key)); err != nil {
				return err
			}
			if err := encodeValue(enc, f.Value); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndObject)

	case []*Node:
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		for _, item := range v {
			if err := encodeValue(enc, item); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndArray)

	case []interface{}:
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		for _, item := range v {
			if err := encodeValue(enc, item); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndArray)

	case string:
		return enc.WriteToken(jsontext.String(v))

	case bool:
		return enc.WriteToken(jsontext.Bool(v))

	case float64:
		// JSON has no representation for these and ESTree never needs them
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return enc.WriteToken(jsontext.Null)
		}
		return enc.WriteToken(jsontext.Float(v))

	case int:
		return enc.WriteToken(jsontext.Int(int64(v)))
	}

	return fmt.Errorf("cannot encode value of type %T", value)
}
