package reader

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/phpsymbols/internal/document"
	s "github.com/dshills/phpsymbols/internal/syntax"
	"github.com/dshills/phpsymbols/pkg/types"
)

func read(t *testing.T, src string, root *s.Node, opts ...Options) *types.ParseResult {
	t.Helper()
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	doc := document.New("file:///test.php", src, 1)
	res, err := New(o).Read(context.Background(), doc, s.Layout(root, src))
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func kw(word string) *s.Node { return s.L(word, word) }

func class(name string, body ...*s.Node) *s.Node {
	return s.N(s.KindClass, kw("class"), s.F("name", s.Name(name)), s.F("body", s.N(s.KindDeclarationList, body...)))
}

func stmt(n *s.Node) *s.Node { return s.N(s.KindExpressionStatement, n) }

func assign(left, right *s.Node) *s.Node {
	return s.N(s.KindAssignment, s.F("left", left), s.F("right", right))
}

func params(ps ...*s.Node) *s.Node {
	return s.F("parameters", s.N(s.KindParameters, ps...))
}

func param(typ, name string) *s.Node {
	p := s.N(s.KindSimpleParameter)
	if typ != "" {
		p.Append(s.F("type", s.Type(typ)))
	}
	p.Append(s.F("name", s.Var(name)))
	return p
}

func names(syms []*types.Symbol) []string {
	out := make([]string, len(syms))
	for i, sym := range syms {
		out[i] = sym.Kind.String() + " " + sym.Name
	}
	return out
}

func TestRead_NamespaceImportAndTrait(t *testing.T) {
	src := `<?php namespace Wat; use Foo\Baz; class Bar { use Baz; }`
	root := s.N(s.KindProgram,
		s.N(s.KindNamespaceDefinition, kw("namespace"), s.F("name", s.L(s.KindNamespaceName, "Wat"))),
		s.N(s.KindNamespaceUse, s.N(s.KindNamespaceUseClause, s.L(s.KindQualifiedName, `Foo\Baz`))),
		class("Bar", s.N(s.KindUseDeclaration, s.Name("Baz"))),
	)

	res := read(t, src, root)
	assert.False(t, res.HasErrors())

	top := res.Root.Children
	require.Len(t, top, 3)
	assert.Equal(t, []string{"namespace Wat", "class Baz", `class Wat\Bar`}, names(top))

	stub := top[1]
	assert.True(t, stub.Modifiers.Has(types.ModUse))
	assert.Equal(t, []types.Stub{{Kind: types.KindClass, Name: `Foo\Baz`}}, stub.Associated)

	assert.Equal(t, []types.Stub{{Kind: types.KindTrait, Name: `Foo\Baz`}}, top[2].Associated)
}

func TestRead_MagicMethodFromDocComment(t *testing.T) {
	comment := "/** @method int fn(string $p) description */"
	src := "<?php\n" + comment + "\nclass A {}"
	root := s.N(s.KindProgram, s.Comment(comment), class("A"))

	res := read(t, src, root)
	require.Len(t, res.Root.Children, 1)
	a := res.Root.Children[0]
	require.NotNil(t, a.DocLocation)

	m := a.Child("fn", types.KindMethod)
	require.NotNil(t, m)
	assert.True(t, m.Modifiers.Has(types.ModMagic))
	assert.Equal(t, "int", m.Type.String())
	assert.Equal(t, "A", m.Scope)
	assert.Equal(t, "description", m.Doc)
	require.Len(t, m.Children, 1)
	p := m.Children[0]
	assert.Equal(t, types.KindParameter, p.Kind)
	assert.Equal(t, "$p", p.Name)
	assert.Equal(t, "string", p.Type.String())
}

func TestRead_MagicPropertiesAndStaticMethod(t *testing.T) {
	comment := `/**
 * Model base.
 * @property-read int $id
 * @property User $owner
 * @method static self find(int $id)
 */`
	src := "<?php namespace App;\n" + comment + "\nclass Model {}"
	root := s.N(s.KindProgram,
		s.N(s.KindNamespaceDefinition, kw("namespace"), s.F("name", s.L(s.KindNamespaceName, "App"))),
		s.Comment(comment),
		class("Model"),
	)

	res := read(t, src, root)
	model := res.Root.Child(`App\Model`, types.KindClass)
	require.NotNil(t, model)
	assert.Equal(t, "Model base.", model.Doc)

	id := model.Child("$id", types.KindProperty)
	require.NotNil(t, id)
	assert.True(t, id.Modifiers.Has(types.ModReadOnly|types.ModMagic))

	owner := model.Child("$owner")
	require.NotNil(t, owner)
	assert.Equal(t, `App\User`, owner.Type.String())

	find := model.Child("FIND", types.KindMethod)
	require.NotNil(t, find)
	assert.True(t, find.Modifiers.Has(types.ModStatic))
	assert.Equal(t, "self", find.Type.String())
}

func TestRead_MalformedUse(t *testing.T) {
	src := "<?php class A {} use"
	root := s.N(s.KindProgram, class("A"), s.N(s.KindError, kw("use")))

	res := read(t, src, root)
	assert.Equal(t, []string{"class A"}, names(res.Root.Children))
	require.True(t, res.HasErrors())
	assert.Equal(t, 1, res.Errors[0].Line)
	assert.Equal(t, 18, res.Errors[0].Column)
}

func TestRead_IncompleteUseDeclaration(t *testing.T) {
	src := "<?php use ; class A {}"
	root := s.N(s.KindProgram, s.N(s.KindNamespaceUse, kw("use")), class("A"))

	res := read(t, src, root)
	assert.Equal(t, []string{"class A"}, names(res.Root.Children))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "incomplete use declaration", res.Errors[0].Message)
}

func TestRead_GroupUse(t *testing.T) {
	src := `<?php use App\{Models\User, function helper as h}; class C extends User {}`
	root := s.N(s.KindProgram,
		s.N(s.KindNamespaceUse,
			s.L(s.KindNamespaceName, "App"),
			s.N(s.KindNamespaceUseGroup,
				s.N(s.KindNamespaceUseClause, s.L(s.KindQualifiedName, `Models\User`)),
				s.N(s.KindNamespaceUseClause, kw("function"), s.Name("helper"), s.F("alias", s.Name("h"))),
			),
		),
		s.N(s.KindClass, kw("class"), s.F("name", s.Name("C")),
			s.N(s.KindBaseClause, s.Name("User")),
			s.F("body", s.N(s.KindDeclarationList)),
		),
	)

	res := read(t, src, root)
	top := res.Root.Children
	require.Len(t, top, 3)
	assert.Equal(t, []string{"class User", "function h", "class C"}, names(top))
	assert.Equal(t, `App\Models\User`, top[0].Associated[0].Name)
	assert.Equal(t, types.Stub{Kind: types.KindFunction, Name: `App\helper`}, top[1].Associated[0])
	assert.Equal(t, []types.Stub{{Kind: types.KindClass, Name: `App\Models\User`}}, top[2].Associated)
}

func TestRead_ClassMembers(t *testing.T) {
	src := `<?php
interface Shape extends Base, Other {}
abstract class Circle implements Shape {
    const PI = 3.14;
    /** @var float */
    protected $radius;
    public static ?Circle $last;
    /** @return self */
    abstract public function scale(float $by);
    function area(): float {}
}`
	root := s.N(s.KindProgram,
		s.N(s.KindInterface, kw("interface"), s.F("name", s.Name("Shape")),
			s.N(s.KindBaseClause, s.Name("Base"), s.Name("Other")),
			s.F("body", s.N(s.KindDeclarationList)),
		),
		s.N(s.KindClass, s.L(s.KindAbstract, "abstract"), kw("class"), s.F("name", s.Name("Circle")),
			s.N(s.KindInterfaceClause, s.Name("Shape")),
			s.F("body", s.N(s.KindDeclarationList,
				s.N(s.KindConst, kw("const"), s.N(s.KindConstElement, s.Name("PI"), s.L("float", "3.14"))),
				s.Comment("/** @var float */"),
				s.N(s.KindProperty, s.L(s.KindVisibility, "protected"), s.N(s.KindPropertyElement, s.Var("$radius"))),
				s.N(s.KindProperty, s.L(s.KindVisibility, "public"), s.L(s.KindStaticModifier, "static"),
					s.F("type", s.N(s.KindOptionalType, s.Type("Circle"))),
					s.N(s.KindPropertyElement, s.Var("$last"))),
				s.Comment("/** @return self */"),
				s.N(s.KindMethod, s.L(s.KindAbstract, "abstract"), s.L(s.KindVisibility, "public"), kw("function"),
					s.F("name", s.Name("scale")), params(param("float", "$by"))),
				s.N(s.KindMethod, kw("function"), s.F("name", s.Name("area")), params(),
					s.F("return_type", s.L(s.KindPrimitiveType, "float")),
					s.F("body", s.N(s.KindCompound))),
			)),
		),
	)

	res := read(t, src, root)
	require.Len(t, res.Root.Children, 2)

	shape := res.Root.Children[0]
	assert.Equal(t, types.KindInterface, shape.Kind)
	assert.Equal(t, []types.Stub{{Kind: types.KindInterface, Name: "Base"}, {Kind: types.KindInterface, Name: "Other"}}, shape.Associated)

	circle := res.Root.Children[1]
	assert.True(t, circle.Modifiers.Has(types.ModAbstract))
	assert.Equal(t, []types.Stub{{Kind: types.KindInterface, Name: "Shape"}}, circle.Associated)
	assert.Equal(t, []string{"class_constant PI", "property $radius", "property $last", "method scale", "method area"}, names(circle.Children))

	pi := circle.Children[0]
	assert.Equal(t, "Circle", pi.Scope)
	assert.True(t, pi.Modifiers.Has(types.ModPublic))

	radius := circle.Children[1]
	assert.Equal(t, "float", radius.Type.String())
	assert.True(t, radius.Modifiers.Has(types.ModProtected))

	last := circle.Children[2]
	assert.Equal(t, "Circle|null", last.Type.String())
	assert.True(t, last.Modifiers.Has(types.ModStatic|types.ModPublic))

	scale := circle.Children[3]
	assert.Equal(t, "self", scale.Type.String())
	assert.True(t, scale.Modifiers.Has(types.ModAbstract))
	require.Len(t, scale.Children, 1)
	assert.Equal(t, "float", scale.Children[0].Type.String())

	area := circle.Children[4]
	assert.Equal(t, "float", area.Type.String())
	assert.Equal(t, types.ModPublic, area.Modifiers)

	for _, sym := range res.Root.Descendants() {
		assert.NoError(t, sym.Validate(), sym.Name)
	}
}

func TestRead_PromotedConstructorProperties(t *testing.T) {
	src := `<?php class P { public function __construct(private readonly int $id, $plain) {} }`
	promoted := s.N(s.KindPromotedParameter, s.L(s.KindVisibility, "private"), s.L(s.KindReadonly, "readonly"),
		s.F("type", s.L(s.KindPrimitiveType, "int")), s.F("name", s.Var("$id")))
	root := s.N(s.KindProgram, class("P",
		s.N(s.KindMethod, s.L(s.KindVisibility, "public"), kw("function"), s.F("name", s.Name("__construct")),
			params(promoted, param("", "$plain")), s.F("body", s.N(s.KindCompound))),
	))

	res := read(t, src, root)
	p := res.Root.Children[0]
	assert.Equal(t, []string{"property $id", "method __construct"}, names(p.Children))
	id := p.Children[0]
	assert.True(t, id.Modifiers.Has(types.ModPrivate|types.ModReadOnly))
	assert.Equal(t, "int", id.Type.String())
	assert.Equal(t, "P", id.Scope)

	ctor := p.Children[1]
	assert.Equal(t, []string{"parameter $id", "parameter $plain"}, names(ctor.Children))
}

func functionRun() (string, *s.Node) {
	src := `<?php
function run(int $a) {
    $b = new Foo();
    $b = 2;
    $a = 3;
}
$top = 1;`
	root := s.N(s.KindProgram,
		s.N(s.KindFunction, kw("function"), s.F("name", s.Name("run")), params(param("int", "$a")),
			s.F("body", s.N(s.KindCompound,
				stmt(assign(s.Var("$b"), s.N(s.KindObjectCreation, kw("new"), s.Name("Foo"), s.N(s.KindArguments)))),
				stmt(assign(s.Var("$b"), s.L("integer", "2"))),
				stmt(assign(s.Var("$a"), s.L("integer", "3"))),
			)),
		),
		stmt(assign(s.Var("$top"), s.L("integer", "1"))),
	)
	return src, root
}

func TestRead_Variables(t *testing.T) {
	src, root := functionRun()
	res := read(t, src, root)

	assert.Equal(t, []string{"function run", "variable $top"}, names(res.Root.Children))
	run := res.Root.Children[0]
	assert.Equal(t, []string{"parameter $a", "variable $b"}, names(run.Children))

	b := run.Children[1]
	assert.Equal(t, "Foo", b.Type.String(), "first seen type wins")
	assert.Equal(t, "run", b.Scope)
	assert.Equal(t, uint32(2), b.Location.Range.Start.Line)
}

func TestRead_ExternalOnly(t *testing.T) {
	src := `<?php
use Lib\Thing;
class K {
    private function hidden() {}
    public function shown() { $local = 1; }
}
$f = function () {};`
	root := s.N(s.KindProgram,
		s.N(s.KindNamespaceUse, s.N(s.KindNamespaceUseClause, s.L(s.KindQualifiedName, `Lib\Thing`))),
		class("K",
			s.N(s.KindMethod, s.L(s.KindVisibility, "private"), kw("function"), s.F("name", s.Name("hidden")), params(), s.F("body", s.N(s.KindCompound))),
			s.N(s.KindMethod, s.L(s.KindVisibility, "public"), kw("function"), s.F("name", s.Name("shown")), params(),
				s.F("body", s.N(s.KindCompound, stmt(assign(s.Var("$local"), s.L("integer", "1")))))),
		),
		stmt(assign(s.Var("$f"), s.N(s.KindAnonymousFunction, kw("function"), params(), s.F("body", s.N(s.KindCompound))))),
	)

	full := read(t, src, root)
	assert.Equal(t, []string{"class Thing", "class K", "variable $f", "function {closure:" + strconv.Itoa(strings.Index(src, "function ()")) + "}"}, names(full.Root.Children))

	ext := read(t, src, root, Options{ExternalOnly: true})
	assert.Equal(t, []string{"class K"}, names(ext.Root.Children))
	k := ext.Root.Children[0]
	assert.Equal(t, []string{"method shown"}, names(k.Children))
	assert.Empty(t, k.Children[0].Children)
}

func TestRead_ClosureCaptures(t *testing.T) {
	src := `<?php
$x = 1;
$f = function ($a) use ($x) { $y = 2; $x = 5; };
$g = fn($z) => $z;`
	closure := s.N(s.KindAnonymousFunction, kw("function"), params(param("", "$a")),
		s.N(s.KindUseClause, s.Var("$x")),
		s.F("body", s.N(s.KindCompound,
			stmt(assign(s.Var("$y"), s.L("integer", "2"))),
			stmt(assign(s.Var("$x"), s.L("integer", "5"))),
		)),
	)
	arrow := s.N(s.KindArrowFunction, kw("fn"), params(param("", "$z")), s.F("body", s.Var("$z")))
	root := s.N(s.KindProgram,
		stmt(assign(s.Var("$x"), s.L("integer", "1"))),
		stmt(assign(s.Var("$f"), closure)),
		stmt(assign(s.Var("$g"), arrow)),
	)

	res := read(t, src, root)
	top := res.Root.Children
	require.Len(t, top, 5)
	assert.Equal(t, []string{"variable $x", "variable $f"}, names(top[:2]))

	fn := top[2]
	assert.True(t, fn.Modifiers.Has(types.ModAnonymous))
	assert.Equal(t, []string{"parameter $a", "variable $x", "variable $y"}, names(fn.Children))
	assert.True(t, fn.Children[1].Modifiers.Has(types.ModUse))

	assert.Equal(t, "variable $g", names(top[3:4])[0])
	assert.Contains(t, top[4].Name, "{fn:")
}

func TestRead_StatementVariables(t *testing.T) {
	src := `<?php
global $config;
foreach ($items as $key => $item) {}
try {} catch (NotFound|Denied $e) {}`
	root := s.N(s.KindProgram,
		s.N(s.KindGlobal, kw("global"), s.Var("$config")),
		s.N(s.KindForeach, kw("foreach"), s.Var("$items"), kw("as"),
			s.N(s.KindPair, s.Var("$key"), s.Var("$item")),
			s.F("body", s.N(s.KindCompound))),
		s.N("try_statement", kw("try"), s.N(s.KindCompound),
			s.N(s.KindCatch, kw("catch"),
				s.F("type", s.N(s.KindTypeList, s.Type("NotFound"), s.Type("Denied"))),
				s.F("name", s.Var("$e")),
				s.F("body", s.N(s.KindCompound)),
			)),
	)

	res := read(t, src, root)
	assert.Equal(t, []string{"variable $config", "variable $key", "variable $item", "variable $e"}, names(res.Root.Children))
	assert.Equal(t, []string{"NotFound", "Denied"}, res.Root.Children[3].Type.Names)
}

func TestRead_DocTypesAndConstants(t *testing.T) {
	src := `<?php
namespace App;
const LIMIT = 10;
define('APP_VERSION', '1.0');
/**
 * Finds things.
 * @param string $q
 * @return Result[]
 */
function search($q) {
    /** @var Client $c */
    $c = make();
}`
	root := s.N(s.KindProgram,
		s.N(s.KindNamespaceDefinition, kw("namespace"), s.F("name", s.L(s.KindNamespaceName, "App"))),
		s.N(s.KindConst, kw("const"), s.N(s.KindConstElement, s.Name("LIMIT"), s.L("integer", "10"))),
		stmt(s.N(s.KindFunctionCall, s.F("function", s.Name("define")),
			s.F("arguments", s.N(s.KindArguments,
				s.N(s.KindArgument, s.L(s.KindString, "'APP_VERSION'")),
				s.N(s.KindArgument, s.L(s.KindString, "'1.0'")),
			)))),
		s.Comment("/**\n * Finds things.\n * @param string $q\n * @return Result[]\n */"),
		s.N(s.KindFunction, kw("function"), s.F("name", s.Name("search")), params(param("", "$q")),
			s.F("body", s.N(s.KindCompound,
				s.Comment("/** @var Client $c */"),
				stmt(assign(s.Var("$c"), s.N(s.KindFunctionCall, s.F("function", s.Name("make")), s.N(s.KindArguments)))),
			))),
	)

	res := read(t, src, root)
	assert.Equal(t, []string{"namespace App", `constant App\LIMIT`, "constant APP_VERSION", `function App\search`}, names(res.Root.Children))

	search := res.Root.Children[3]
	assert.Equal(t, "Finds things.", search.Doc)
	assert.Equal(t, `App\Result[]`, search.Type.String())
	assert.Equal(t, []string{"parameter $q", "variable $c"}, names(search.Children))
	assert.Equal(t, "string", search.Children[0].Type.String())
	assert.Equal(t, `App\Client`, search.Children[1].Type.String())
}

func TestRead_DocCommentMustBeAdjacent(t *testing.T) {
	src := "<?php\n/** Orphan */\n$x = 1;\nclass A {}"
	root := s.N(s.KindProgram,
		s.Comment("/** Orphan */"),
		stmt(assign(s.Var("$x"), s.L("integer", "1"))),
		class("A"),
	)
	res := read(t, src, root)
	a := res.Root.Child("A")
	require.NotNil(t, a)
	assert.Empty(t, a.Doc)
	assert.Nil(t, a.DocLocation)
}

func TestRead_BracedNamespaces(t *testing.T) {
	src := `<?php namespace One { class A {} } namespace { class B {} }`
	root := s.N(s.KindProgram,
		s.N(s.KindNamespaceDefinition, kw("namespace"), s.F("name", s.L(s.KindNamespaceName, "One")),
			s.F("body", s.N(s.KindCompound, class("A")))),
		s.N(s.KindNamespaceDefinition, kw("namespace"), s.F("body", s.N(s.KindCompound, class("B")))),
	)
	res := read(t, src, root)
	assert.Equal(t, []string{"namespace One", `class One\A`, "class B"}, names(res.Root.Children))
}

func TestRead_EnumAndAnonymousClass(t *testing.T) {
	src := `<?php enum Suit { case Hearts; } $o = new class extends Base {};`
	root := s.N(s.KindProgram,
		s.N(s.KindEnum, kw("enum"), s.F("name", s.Name("Suit")),
			s.F("body", s.N(s.KindEnumDeclarations, s.N(s.KindEnumCase, kw("case"), s.F("name", s.Name("Hearts")))))),
		stmt(assign(s.Var("$o"), s.N(s.KindAnonymousClass, kw("new"), kw("class"),
			s.N(s.KindBaseClause, s.Name("Base")), s.N(s.KindDeclarationList)))),
	)

	res := read(t, src, root)
	top := res.Root.Children
	require.Len(t, top, 3)

	suit := top[0]
	assert.Equal(t, types.KindClass, suit.Kind)
	hearts := suit.Child("Hearts", types.KindClassConstant)
	require.NotNil(t, hearts)
	assert.Equal(t, "Suit", hearts.Type.String())

	anon := top[2]
	assert.True(t, anon.Modifiers.Has(types.ModAnonymous))
	assert.Contains(t, anon.Name, "{class:")
	assert.Equal(t, []types.Stub{{Kind: types.KindClass, Name: "Base"}}, anon.Associated)
}

func TestRead_Cancelled(t *testing.T) {
	src, root := functionRun()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc := document.New("file:///test.php", src, 1)
	res, err := New(Options{}).Read(ctx, doc, s.Layout(root, src))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}
