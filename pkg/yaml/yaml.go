package yaml

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

func Unmarshal(in []byte, out any) error {
	return yaml.Unmarshal(in, out)
}

func Encode(v any, indent int) ([]byte, error) {
	b := bytes.NewBuffer(nil)
	e := yaml.NewEncoder(b)
	e.SetIndent(indent)

	if err := e.Encode(v); err != nil {
		return nil, err
	}
	if err := e.Close(); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Patch sets the value by the path of keys and keeps comments of the file.
// Missing parent maps are created, nil value removes the key.
func Patch(src []byte, value any, path ...string) ([]byte, error) {
	if len(path) == 0 {
		return nil, errors.New("yaml: empty path")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, err
	}

	if root.Kind == 0 {
		root.Kind = yaml.DocumentNode
	}
	if len(root.Content) == 0 {
		root.Content = []*yaml.Node{{Kind: yaml.MappingNode}}
	}

	node := root.Content[0]
	for i, name := range path {
		if node.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("yaml: %s is not a map", name)
		}

		key, child := FindChild(node, name)

		if i < len(path)-1 {
			if child == nil {
				if value == nil {
					return src, nil // nothing to remove
				}
				key, child = newKey(name), &yaml.Node{Kind: yaml.MappingNode}
				node.Content = append(node.Content, key, child)
			}
			node = child
			continue
		}

		if value == nil {
			if key != nil {
				RemoveChild(node, name)
			}
			break
		}

		put := &yaml.Node{}
		if err := put.Encode(value); err != nil {
			return nil, err
		}

		if child != nil {
			put.LineComment = child.LineComment
			*child = *put
		} else {
			node.Content = append(node.Content, newKey(name), put)
		}
	}

	return Encode(&root, 2)
}

// FindChild - key and value nodes of the map item
func FindChild(node *yaml.Node, name string) (key, value *yaml.Node) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == name {
			return node.Content[i], node.Content[i+1]
		}
	}
	return nil, nil
}

func RemoveChild(node *yaml.Node, name string) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == name {
			node.Content = append(node.Content[:i], node.Content[i+2:]...)
			return
		}
	}
}

func newKey(name string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
}
