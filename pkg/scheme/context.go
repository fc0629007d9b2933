package scheme

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	scderrors "github.com/bcomnes/scd/pkg/errors"
)

// Field is one named context value. Value is always an int or a string.
type Field struct {
	Name  string
	Value any
}

// Context is the ordered name → value mapping a Version exposes to
// replacement templates.
type Context struct {
	fields []Field
	index  map[string]int
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{index: make(map[string]int)}
}

// Set adds or replaces a value. Integers of any width are stored as int,
// nil as "", and anything else that is not a string is formatted with %v.
func (c *Context) Set(name string, value any) {
	switch v := value.(type) {
	case int:
	case int64:
		value = int(v)
	case int32:
		value = int(v)
	case uint64:
		value = int(v)
	case string:
	case nil:
		value = ""
	default:
		value = fmt.Sprint(v)
	}

	if i, ok := c.index[name]; ok {
		c.fields[i].Value = value
		return
	}
	c.index[name] = len(c.fields)
	c.fields = append(c.fields, Field{Name: name, Value: value})
}

// Get returns the value stored under name.
func (c *Context) Get(name string) (any, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.fields[i].Value, true
}

// Has reports whether name is present.
func (c *Context) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Len returns the number of fields.
func (c *Context) Len() int {
	return len(c.fields)
}

// Keys returns field names in insertion order.
func (c *Context) Keys() []string {
	keys := make([]string, len(c.fields))
	for i, f := range c.fields {
		keys[i] = f.Name
	}
	return keys
}

// Map returns the fields as a plain map, suitable for template engines.
func (c *Context) Map() map[string]any {
	m := make(map[string]any, len(c.fields))
	for _, f := range c.fields {
		m[f.Name] = f.Value
	}
	return m
}

// Clone returns an independent copy.
func (c *Context) Clone() *Context {
	out := &Context{
		fields: append([]Field(nil), c.fields...),
		index:  make(map[string]int, len(c.index)),
	}
	for k, v := range c.index {
		out.index[k] = v
	}
	return out
}

// Merge returns a copy of c with extra appended in sorted key order. A key
// that already exists in c is a configuration error: extra context can add
// names but never redefine version fields.
func (c *Context) Merge(extra map[string]any) (*Context, error) {
	out := c.Clone()
	if len(extra) == 0 {
		return out, nil
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var collisions []string
	for _, k := range keys {
		if c.Has(k) {
			collisions = append(collisions, k)
			continue
		}
		out.Set(k, extra[k])
	}
	if len(collisions) > 0 {
		return nil, scderrors.NewWithContext(scderrors.ErrCodeConfig,
			fmt.Sprintf("extra context redefines built-in version fields: %v", collisions),
			map[string]any{"keys": collisions})
	}
	return out, nil
}

// MarshalJSON renders the context as a JSON object in field order.
func (c *Context) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range c.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML renders the context as a YAML mapping in field order.
func (c *Context) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range c.fields {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name}
		value := &yaml.Node{}
		if err := value.Encode(f.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, key, value)
	}
	return node, nil
}
