package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	src := "<?php\nclass User { public $name; }"
	root := Layout(N(KindProgram,
		N(KindClass,
			F("name", Name("User")),
			N(KindDeclarationList,
				N(KindProperty,
					L(KindVisibility, "public"),
					N(KindPropertyElement, Var("$name")),
				),
			),
		),
	), src)

	assert.Equal(t, 0, root.Value.Start)
	assert.Equal(t, len(src), root.Value.End)

	class := First(root, KindClass)
	require.NotNil(t, class)
	name := NameOf(class)
	assert.Equal(t, "User", Text(name))
	assert.Equal(t, 12, name.Value.Start)
	assert.Equal(t, 16, name.Value.End)

	prop := First(First(class, KindDeclarationList), KindProperty)
	v := First(First(prop, KindPropertyElement), KindVariableName)
	assert.Equal(t, "$name", src[v.Value.Start:v.Value.End])
	assert.Equal(t, prop.Value.Start, 19)
	assert.Equal(t, prop.Value.End, v.Value.End)
}

func TestLayout_RepeatedText(t *testing.T) {
	src := "$a = $a;"
	root := Layout(N(KindAssignment, F("left", Var("$a")), F("right", Var("$a"))), src)
	assert.Equal(t, 0, Field(root, "left").Value.Start)
	assert.Equal(t, 5, Field(root, "right").Value.Start)
}

func TestLayout_MissingText(t *testing.T) {
	root := Layout(N(KindProgram, Name("Foo"), Name("Absent")), "Foo")
	absent := root.Child(1)
	assert.Equal(t, 3, absent.Value.Start)
	assert.Equal(t, 3, absent.Value.End)
}

func TestHelpers(t *testing.T) {
	n := N(KindUseDeclaration, Name("A"), F("alias", Name("B")), L(KindQualifiedName, `X\Y`))

	assert.Equal(t, "B", Text(Field(n, "alias")))
	assert.Nil(t, Field(n, "missing"))
	assert.Equal(t, "A", Text(First(n, KindName)))
	assert.Len(t, All(n, KindName, KindQualifiedName), 3)
	assert.True(t, Has(n, KindQualifiedName))
	assert.False(t, Has(n, KindVariableName))
	assert.True(t, Is(n, KindClass, KindUseDeclaration))
	assert.False(t, Is(nil, KindClass))
	assert.Equal(t, "", Kind(nil))
	assert.Equal(t, "", Text(nil))
	assert.True(t, IsError(N(KindError)))
	assert.False(t, IsError(n))
}

func TestContains(t *testing.T) {
	n := L(KindName, "foo")
	n.Value.Start, n.Value.End = 4, 7
	assert.False(t, Contains(n, 3))
	assert.True(t, Contains(n, 4))
	assert.True(t, Contains(n, 7))
	assert.False(t, Contains(n, 8))
	assert.False(t, Contains(nil, 0))
}
