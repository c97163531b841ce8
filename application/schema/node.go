package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/resq-ai/resq-core/domain/errors"
)

// NodeKind identifies one of the closed set of schema node variants.
type NodeKind string

const (
	KindObject  NodeKind = "object"
	KindArray   NodeKind = "array"
	KindString  NodeKind = "string"
	KindNumber  NodeKind = "number"
	KindInteger NodeKind = "integer"
	KindBoolean NodeKind = "boolean"
	KindEnum    NodeKind = "enum"
)

// Node is a schema node. The set of implementations is closed: use the
// constructors in this package (Object, Array, String, Number, Integer,
// Boolean, Enum) to build schemas.
type Node interface {
	// Kind returns the node variant.
	Kind() NodeKind

	// Validate checks raw against the node and returns the coerced value
	// or the first mismatch. path locates raw inside the root value.
	Validate(path string, raw any) Result

	common() *nodeConfig
}

// NodeOption configures the modifiers shared by every node variant.
type NodeOption func(*nodeConfig)

type nodeConfig struct {
	def         any
	min         *float64
	drop        func(*errors.SchemaValidationError) bool
	description string
	minLength   int
	optional    bool
	hasDefault  bool
}

// Optional marks an object field as optional: omitting it is not an error.
func Optional() NodeOption {
	return func(c *nodeConfig) {
		c.optional = true
	}
}

// Default declares the value used when an object field is omitted.
// A field with a default is implicitly optional.
func Default(v any) NodeOption {
	return func(c *nodeConfig) {
		c.optional = true
		c.hasDefault = true
		c.def = v
	}
}

// Describe attaches a description, exported into the JSON Schema.
func Describe(description string) NodeOption {
	return func(c *nodeConfig) {
		c.description = description
	}
}

// Min sets an inclusive lower bound on Number and Integer nodes.
func Min(v float64) NodeOption {
	return func(c *nodeConfig) {
		c.min = &v
	}
}

// NonEmpty requires a String node to hold at least one character.
func NonEmpty() NodeOption {
	return func(c *nodeConfig) {
		c.minLength = 1
	}
}

// DropWhen makes an Array node discard an element whose validation failure
// satisfies pred. Any other element failure still fails the whole array, and
// non-array values are always rejected.
func DropWhen(pred func(*errors.SchemaValidationError) bool) NodeOption {
	return func(c *nodeConfig) {
		c.drop = pred
	}
}

// NonFinite reports whether err was caused by a NaN or infinite number.
func NonFinite(err *errors.SchemaValidationError) bool {
	if err == nil {
		return false
	}
	switch err.Actual {
	case "NaN", "+Inf", "-Inf":
		return true
	}
	return false
}

func newConfig(opts []NodeOption) nodeConfig {
	var c nodeConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Field is one named property of an Object node.
type Field struct {
	Node Node
	Name string
}

// Prop pairs a field name with its schema, for use with Object.
func Prop(name string, node Node) Field {
	return Field{Name: name, Node: node}
}

// ObjectNode validates a map[string]any against a fixed set of fields.
// Fields not declared are dropped from the output.
type ObjectNode struct {
	fields []Field
	cfg    nodeConfig
}

// Object creates an object node with fields in declaration order.
func Object(fields []Field, opts ...NodeOption) *ObjectNode {
	return &ObjectNode{fields: fields, cfg: newConfig(opts)}
}

func (n *ObjectNode) Kind() NodeKind      { return KindObject }
func (n *ObjectNode) common() *nodeConfig { return &n.cfg }
func (n *ObjectNode) Fields() []Field     { return slices.Clone(n.fields) }

func (n *ObjectNode) Validate(path string, raw any) Result {
	obj, ok := asObject(raw)
	if !ok {
		return failure(path, "object", describe(raw))
	}

	out := make(map[string]any, len(n.fields))
	for _, f := range n.fields {
		fieldPath := joinField(path, f.Name)
		v, present := obj[f.Name]
		if !present || v == nil {
			c := f.Node.common()
			switch {
			case c.hasDefault:
				out[f.Name] = cloneValue(c.def)
				continue
			case c.optional:
				continue
			case present:
				return failure(fieldPath, expectation(f.Node), "null")
			default:
				return failure(fieldPath, expectation(f.Node), "missing")
			}
		}

		res := f.Node.Validate(fieldPath, v)
		if !res.OK() {
			return res
		}
		out[f.Name] = res.Value
	}
	return success(out)
}

// ArrayNode validates a slice whose elements all satisfy Items.
type ArrayNode struct {
	items Node
	cfg   nodeConfig
}

// Array creates an array node.
func Array(items Node, opts ...NodeOption) *ArrayNode {
	return &ArrayNode{items: items, cfg: newConfig(opts)}
}

func (n *ArrayNode) Kind() NodeKind      { return KindArray }
func (n *ArrayNode) common() *nodeConfig { return &n.cfg }
func (n *ArrayNode) Items() Node         { return n.items }

func (n *ArrayNode) Validate(path string, raw any) Result {
	elems, ok := asSlice(raw)
	if !ok {
		return failure(path, "array", describe(raw))
	}

	out := make([]any, 0, len(elems))
	for i, elem := range elems {
		res := n.items.Validate(fmt.Sprintf("%s[%d]", path, i), elem)
		if !res.OK() {
			if n.cfg.drop != nil && n.cfg.drop(res.Err) {
				continue
			}
			return res
		}
		out = append(out, res.Value)
	}
	return success(out)
}

// StringNode accepts strings.
type StringNode struct {
	cfg nodeConfig
}

// String creates a string node.
func String(opts ...NodeOption) *StringNode {
	return &StringNode{cfg: newConfig(opts)}
}

func (n *StringNode) Kind() NodeKind      { return KindString }
func (n *StringNode) common() *nodeConfig { return &n.cfg }

func (n *StringNode) Validate(path string, raw any) Result {
	s, ok := raw.(string)
	if !ok {
		return failure(path, "string", describe(raw))
	}
	if utf8.RuneCountInString(s) < n.cfg.minLength {
		return failure(path, "non-empty string", describe(s))
	}
	return success(s)
}

// NumberNode accepts finite numbers and yields float64.
type NumberNode struct {
	cfg nodeConfig
}

// Number creates a number node.
func Number(opts ...NodeOption) *NumberNode {
	return &NumberNode{cfg: newConfig(opts)}
}

func (n *NumberNode) Kind() NodeKind      { return KindNumber }
func (n *NumberNode) common() *nodeConfig { return &n.cfg }

func (n *NumberNode) Validate(path string, raw any) Result {
	f, res, ok := finiteNumber(path, raw, "finite number")
	if !ok {
		return res
	}
	if n.cfg.min != nil && f < *n.cfg.min {
		return failure(path, "number >= "+formatFloat(*n.cfg.min), formatFloat(f))
	}
	return success(f)
}

// IntegerNode accepts finite integral numbers and yields int.
type IntegerNode struct {
	cfg nodeConfig
}

// Integer creates an integer node.
func Integer(opts ...NodeOption) *IntegerNode {
	return &IntegerNode{cfg: newConfig(opts)}
}

func (n *IntegerNode) Kind() NodeKind      { return KindInteger }
func (n *IntegerNode) common() *nodeConfig { return &n.cfg }

func (n *IntegerNode) Validate(path string, raw any) Result {
	f, res, ok := finiteNumber(path, raw, "integer")
	if !ok {
		return res
	}
	if f != math.Trunc(f) || math.Abs(f) > maxSafeInteger {
		return failure(path, "integer", formatFloat(f))
	}
	if n.cfg.min != nil && f < *n.cfg.min {
		return failure(path, "integer >= "+formatFloat(*n.cfg.min), formatFloat(f))
	}
	return success(int(f))
}

// BooleanNode accepts booleans.
type BooleanNode struct {
	cfg nodeConfig
}

// Boolean creates a boolean node.
func Boolean(opts ...NodeOption) *BooleanNode {
	return &BooleanNode{cfg: newConfig(opts)}
}

func (n *BooleanNode) Kind() NodeKind      { return KindBoolean }
func (n *BooleanNode) common() *nodeConfig { return &n.cfg }

func (n *BooleanNode) Validate(path string, raw any) Result {
	b, ok := raw.(bool)
	if !ok {
		return failure(path, "boolean", describe(raw))
	}
	return success(b)
}

// EnumNode accepts one of a fixed set of strings.
type EnumNode struct {
	values []string
	cfg    nodeConfig
}

// Enum creates an enum node over values.
func Enum(values []string, opts ...NodeOption) *EnumNode {
	return &EnumNode{values: slices.Clone(values), cfg: newConfig(opts)}
}

func (n *EnumNode) Kind() NodeKind      { return KindEnum }
func (n *EnumNode) common() *nodeConfig { return &n.cfg }
func (n *EnumNode) Values() []string    { return slices.Clone(n.values) }

func (n *EnumNode) Validate(path string, raw any) Result {
	s, ok := raw.(string)
	if !ok || !slices.Contains(n.values, s) {
		return failure(path, expectation(n), describe(raw))
	}
	return success(s)
}

// Validate checks raw against root. It is the entry point used by the dispatcher.
func Validate(root Node, raw any) Result {
	return root.Validate("", raw)
}

// maxSafeInteger is the largest integer a float64 represents exactly.
const maxSafeInteger = 1 << 53

func finiteNumber(path string, raw any, expected string) (float64, Result, bool) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, failure(path, expected, "number "+v.String()), false
		}
		f = parsed
	default:
		return 0, failure(path, expected, describe(raw)), false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, failure(path, expected, describe(f)), false
	}
	return f, Result{}, true
}

func expectation(n Node) string {
	if e, ok := n.(*EnumNode); ok {
		return "one of [" + strings.Join(e.values, " ") + "]"
	}
	if n.Kind() == KindNumber {
		return "finite number"
	}
	return string(n.Kind())
}

func describe(raw any) string {
	switch v := raw.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case bool:
		return "boolean"
	case float64:
		switch {
		case math.IsNaN(v):
			return "NaN"
		case math.IsInf(v, 1):
			return "+Inf"
		case math.IsInf(v, -1):
			return "-Inf"
		}
		return "number " + formatFloat(v)
	case float32:
		return describe(float64(v))
	case int, int32, int64, json.Number:
		return fmt.Sprintf("number %v", v)
	}
	if _, ok := asObject(raw); ok {
		return "object"
	}
	if _, ok := asSlice(raw); ok {
		return "array"
	}
	return fmt.Sprintf("%T", raw)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func joinField(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func asObject(raw any) (map[string]any, bool) {
	m, ok := raw.(map[string]any)
	return m, ok
}

func asSlice(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case []any:
		return v, true
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// cloneValue deep-copies JSON-shaped defaults so callers can't mutate them.
func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// compile-time check that the closed set implements Node.
var (
	_ Node = (*ObjectNode)(nil)
	_ Node = (*ArrayNode)(nil)
	_ Node = (*StringNode)(nil)
	_ Node = (*NumberNode)(nil)
	_ Node = (*IntegerNode)(nil)
	_ Node = (*BooleanNode)(nil)
	_ Node = (*EnumNode)(nil)
)
