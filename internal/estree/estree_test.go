package estree_test

import (
	"testing"

	"github.com/esm2cjs/esm2cjs/internal/estree"
	"github.com/esm2cjs/esm2cjs/internal/test"
	"gotest.tools/v3/assert"
)

func TestDecodeEncode(t *testing.T) {
	input := `{"type":"Program","body":[{"type":"ExpressionStatement","expression":{"type":"Literal","value":1.5,"raw":"1.5"}},{"type":"ExpressionStatement","expression":{"type":"TemplateLiteral","quasis":[{"type":"TemplateElement","value":{"raw":"a","cooked":"a"},"tail":true}],"expressions":[]}}],"sourceType":"module"}`
	root, err := estree.Decode([]byte(input))
	assert.NilError(t, err)

	test.AssertEqual(t, root.Type, "Program")
	test.AssertEqual(t, root.Str("sourceType"), "module")
	lit := root.Children("body")[0].Child("expression")
	test.AssertEqual(t, lit.Num("value"), 1.5)

	quasi := root.Children("body")[1].Child("expression").Children("quasis")[0]
	test.AssertEqual(t, quasi.Child("value").Type, "")
	test.AssertEqual(t, quasi.Child("value").Str("raw"), "a")

	out, err := estree.Encode(root, "")
	assert.NilError(t, err)
	test.AssertEqualWithDiff(t, string(out), input)
}

func TestDecodeTypeFirst(t *testing.T) {
	root, err := estree.Decode([]byte(`{"name":"x","type":"Identifier"}`))
	assert.NilError(t, err)
	out, err := estree.Encode(root, "")
	assert.NilError(t, err)
	test.AssertEqual(t, string(out), `{"type":"Identifier","name":"x"}`)
}

func TestDecodeHoles(t *testing.T) {
	root, err := estree.Decode([]byte(`{"type":"ArrayExpression","elements":[null,{"type":"Identifier","name":"a"}]}`))
	assert.NilError(t, err)
	elements := root.Children("elements")
	test.AssertEqual(t, len(elements), 2)
	assert.Assert(t, elements[0] == nil)
	test.AssertEqual(t, elements[1].Name(), "a")
}

func TestDecodeErrors(t *testing.T) {
	for _, input := range []string{`[1,2]`, `{"type":`, `{"name":"x"}`, `{"type":"A",}`} {
		_, err := estree.Decode([]byte(input))
		assert.Assert(t, err != nil, input)
	}
}

func TestEqualIgnoresPositions(t *testing.T) {
	a, err := estree.Decode([]byte(`{"type":"Identifier","start":0,"end":1,"name":"x"}`))
	assert.NilError(t, err)
	b, err := estree.Decode([]byte(`{"type":"Identifier","name":"x","range":[4,5]}`))
	assert.NilError(t, err)
	assert.Assert(t, estree.Equal(a, b))

	b.Set("name", "y")
	assert.Assert(t, !estree.Equal(a, b))
}

func TestStripPositions(t *testing.T) {
	root, err := estree.Decode([]byte(`{"type":"Program","start":0,"body":[{"type":"EmptyStatement","start":0,"end":1}],"end":1}`))
	assert.NilError(t, err)
	root.StripPositions()
	out, err := estree.Encode(root, "")
	assert.NilError(t, err)
	test.AssertEqual(t, string(out), `{"type":"Program","body":[{"type":"EmptyStatement"}]}`)
}

func TestCloneIsDeep(t *testing.T) {
	original := estree.Call(estree.Ident("require"), estree.StringLit("x"))
	clone := original.Clone()
	clone.Children("arguments")[0].Set("value", "y")
	test.AssertEqual(t, original.Children("arguments")[0].Str("value"), "x")
	assert.Assert(t, !estree.Equal(original, clone))
}

func TestSetKeepsFieldOrder(t *testing.T) {
	node := estree.New("X", estree.F("a", 1.0), estree.F("b", 2.0))
	node.Set("a", 3.0)
	node.Set("c", 4.0)
	test.AssertEqual(t, node.Fields[0].Key, "a")
	test.AssertEqual(t, node.Fields[0].Value, 3.0)
	test.AssertEqual(t, node.Fields[2].Key, "c")
	node.Delete("b")
	test.AssertEqual(t, len(node.Fields), 2)
}

func TestDot(t *testing.T) {
	member := estree.Dot(estree.Ident("m"), "a b")
	test.AssertEqual(t, member.Bool("computed"), true)
	test.AssertEqual(t, member.Child("property").Str("value"), "a b")

	member = estree.Dot(estree.Ident("m"), "default")
	test.AssertEqual(t, member.Bool("computed"), false)
	test.AssertEqual(t, member.Child("property").Name(), "default")
}
