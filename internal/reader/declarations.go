package reader

import (
	"fmt"
	"strings"

	"github.com/dshills/phpsymbols/internal/resolve"
	"github.com/dshills/phpsymbols/internal/syntax"
	"github.com/dshills/phpsymbols/pkg/types"
)

var classKinds = map[string]types.SymbolKind{
	syntax.KindClass:     types.KindClass,
	syntax.KindInterface: types.KindInterface,
	syntax.KindTrait:     types.KindTrait,
	syntax.KindEnum:      types.KindClass,
}

var modifierKinds = []string{
	syntax.KindVisibility,
	syntax.KindStaticModifier,
	syntax.KindAbstract,
	syntax.KindFinal,
	syntax.KindReadonly,
	syntax.KindVarModifier,
}

func (v *visitor) enterNamespace(n *syntax.Node) {
	nameNode := syntax.Field(n, "name")
	if nameNode == nil {
		nameNode = syntax.First(n, syntax.KindNamespaceName, syntax.KindName, syntax.KindQualifiedName)
	}
	v.resolver.SetNamespace(syntax.Text(nameNode))
	if ns := v.resolver.Namespace(); ns != "" {
		v.spine[0].sym.AddChild(&types.Symbol{
			Kind:     types.KindNamespace,
			Name:     ns,
			Location: v.locate(n),
		})
	}
}

func (v *visitor) enterClass(n *syntax.Node) {
	kind := classKinds[n.Value.Kind]
	name := syntax.Text(syntax.NameOf(n))
	mods := modifiers(n)
	if name == "" {
		name = anonymousName("class", n)
		mods |= types.ModAnonymous
	} else {
		name = v.resolver.Declare(name)
	}

	sym := &types.Symbol{
		Kind:      kind,
		Name:      name,
		Modifiers: mods,
		Location:  v.locate(n),
	}
	v.associateClauses(sym, n)
	doc := v.attachDoc(sym, n)
	v.push(sym, n, false)
	v.magicMembers(sym, doc)
}

func (v *visitor) enterAnonymousClass(n *syntax.Node) bool {
	if v.opts.ExternalOnly {
		return false
	}
	sym := &types.Symbol{
		Kind:      types.KindClass,
		Name:      anonymousName("class", n),
		Modifiers: types.ModAnonymous,
		Location:  v.locate(n),
	}
	v.associateClauses(sym, n)
	v.push(sym, n, false)
	return true
}

// associateClauses records extends and implements clauses as stubs
func (v *visitor) associateClauses(sym *types.Symbol, n *syntax.Node) {
	base := types.KindClass
	if sym.Kind == types.KindInterface {
		base = types.KindInterface
	}
	for _, c := range syntax.All(n, syntax.KindBaseClause) {
		for _, name := range syntax.All(c, syntax.KindName, syntax.KindQualifiedName) {
			sym.Associate(base, v.resolver.Resolve(resolve.Class, syntax.Text(name)))
		}
	}
	for _, c := range syntax.All(n, syntax.KindInterfaceClause) {
		for _, name := range syntax.All(c, syntax.KindName, syntax.KindQualifiedName) {
			sym.Associate(types.KindInterface, v.resolver.Resolve(resolve.Class, syntax.Text(name)))
		}
	}
}

func (v *visitor) readTraitUse(n *syntax.Node) {
	class := v.classFrame()
	if class == nil {
		return
	}
	for _, name := range syntax.All(n, syntax.KindName, syntax.KindQualifiedName) {
		class.Associate(types.KindTrait, v.resolver.Resolve(resolve.Class, syntax.Text(name)))
	}
}

func (v *visitor) enterFunction(n *syntax.Node) {
	name := syntax.Text(syntax.NameOf(n))
	if name == "" {
		name = anonymousName("function", n)
	}
	sym := &types.Symbol{
		Kind:     types.KindFunction,
		Name:     v.resolver.Declare(name),
		Location: v.locate(n),
	}
	sym.Type = v.typeOf(n, "return_type")
	doc := v.attachDoc(sym, n)
	v.returnType(sym, doc)
	params := v.readParams(sym, n, doc, nil)
	v.push(sym, n, true)
	v.seed(params)
}

func (v *visitor) enterMethod(n *syntax.Node) bool {
	mods := withDefaultVisibility(modifiers(n))
	if v.opts.ExternalOnly && mods.Has(types.ModPrivate) {
		return false
	}
	class := v.classFrame()
	sym := &types.Symbol{
		Kind:      types.KindMethod,
		Name:      syntax.Text(syntax.NameOf(n)),
		Modifiers: mods,
		Scope:     scopeName(class),
		Location:  v.locate(n),
	}
	if sym.Name == "" {
		sym.Name = anonymousName("method", n)
	}
	sym.Type = v.typeOf(n, "return_type")
	doc := v.attachDoc(sym, n)
	v.returnType(sym, doc)

	var promote *types.Symbol
	if strings.EqualFold(sym.Name, "__construct") {
		promote = class
	}
	params := v.readParams(sym, n, doc, promote)
	v.push(sym, n, true)
	v.seed(params)
	return !v.opts.ExternalOnly
}

func (v *visitor) enterClosure(n *syntax.Node) bool {
	if v.opts.ExternalOnly {
		return false
	}
	prefix := "closure"
	if n.Value.Kind == syntax.KindArrowFunction {
		prefix = "fn"
	}
	sym := &types.Symbol{
		Kind:      types.KindFunction,
		Name:      anonymousName(prefix, n),
		Modifiers: types.ModAnonymous,
		Location:  v.locate(n),
	}
	if syntax.Has(n, syntax.KindStaticModifier) || syntax.Has(n, "static") {
		sym.Modifiers |= types.ModStatic
	}
	sym.Type = v.typeOf(n, "return_type")
	doc := v.attachDoc(sym, n)
	params := v.readParams(sym, n, doc, nil)

	if use := syntax.First(n, syntax.KindUseClause); use != nil {
		for _, vn := range variables(use) {
			name := syntax.Text(vn)
			sym.AddChild(&types.Symbol{
				Kind:      types.KindVariable,
				Name:      name,
				Modifiers: types.ModUse,
				Scope:     sym.Name,
				Location:  v.locate(vn),
			})
			params = append(params, name)
		}
	}
	v.push(sym, n, true)
	v.seed(params)
	return true
}

// readParams appends Parameter children to fn and returns their names.
// Promoted constructor parameters also become properties of promote.
func (v *visitor) readParams(fn *types.Symbol, n *syntax.Node, doc *docInfo, promote *types.Symbol) []string {
	list := syntax.Field(n, "parameters")
	if list == nil {
		list = syntax.First(n, syntax.KindParameters)
	}
	var names []string
	for _, p := range syntax.All(list, syntax.KindSimpleParameter, syntax.KindVariadicParameter, syntax.KindPromotedParameter) {
		nameNode := syntax.Field(p, "name")
		if nameNode == nil {
			nameNode = syntax.First(p, syntax.KindVariableName)
		}
		name := syntax.Text(nameNode)
		if name == "" {
			continue
		}
		typ := v.typeOf(p, "type")
		if typ.IsEmpty() {
			typ = doc.paramType(v, name)
		}
		mods := types.ModNone
		if p.Value.Kind == syntax.KindVariadicParameter {
			mods |= types.ModVariadic
		}
		if typ.Contains("null") {
			mods |= types.ModNullable
		}
		fn.AddChild(&types.Symbol{
			Kind:      types.KindParameter,
			Name:      name,
			Type:      typ,
			Modifiers: mods,
			Scope:     fn.Name,
			Location:  v.locate(p),
		})
		names = append(names, name)

		if p.Value.Kind == syntax.KindPromotedParameter && promote != nil {
			pm := withDefaultVisibility(modifiers(p))
			if v.opts.ExternalOnly && pm.Has(types.ModPrivate) {
				continue
			}
			promote.AddChild(&types.Symbol{
				Kind:      types.KindProperty,
				Name:      name,
				Type:      typ,
				Modifiers: pm,
				Scope:     promote.Name,
				Location:  v.locate(p),
			})
		}
	}
	return names
}

func (v *visitor) readProperty(n *syntax.Node) {
	mods := withDefaultVisibility(modifiers(n))
	if v.opts.ExternalOnly && mods.Has(types.ModPrivate) {
		return
	}
	class := v.classFrame()
	declared := v.typeOf(n, "type")
	doc := v.docFor(n)

	for _, el := range syntax.All(n, syntax.KindPropertyElement) {
		nameNode := syntax.Field(el, "name")
		if nameNode == nil {
			nameNode = syntax.First(el, syntax.KindVariableName)
		}
		name := syntax.Text(nameNode)
		if name == "" {
			continue
		}
		typ := declared
		if typ.IsEmpty() {
			typ = doc.varType(v, name)
		}
		sym := &types.Symbol{
			Kind:      types.KindProperty,
			Name:      name,
			Type:      typ,
			Modifiers: mods,
			Scope:     scopeName(class),
			Location:  v.locate(el),
		}
		doc.apply(v, sym)
		v.add(sym)
	}
}

func (v *visitor) readConst(n *syntax.Node) {
	inClass := v.top().sym.Kind.IsType()
	mods := modifiers(n)
	if inClass {
		mods = withDefaultVisibility(mods)
	}
	if v.opts.ExternalOnly && mods.Has(types.ModPrivate) {
		return
	}
	class := v.classFrame()
	declared := v.typeOf(n, "type")
	doc := v.docFor(n)

	for _, el := range syntax.All(n, syntax.KindConstElement) {
		name := syntax.Text(syntax.First(el, syntax.KindName))
		if name == "" {
			continue
		}
		sym := &types.Symbol{
			Kind:      types.KindConstant,
			Name:      v.resolver.Declare(name),
			Type:      declared,
			Modifiers: mods,
			Location:  v.locate(el),
		}
		if inClass {
			sym.Kind = types.KindClassConstant
			sym.Name = name
			sym.Scope = scopeName(class)
		}
		if sym.Type.IsEmpty() {
			sym.Type = doc.varType(v, "")
		}
		doc.apply(v, sym)
		v.add(sym)
	}
}

// readEnumCase records a case as a constant typed as its enum
func (v *visitor) readEnumCase(n *syntax.Node) {
	class := v.classFrame()
	name := syntax.Text(syntax.NameOf(n))
	if name == "" || class == nil {
		return
	}
	sym := &types.Symbol{
		Kind:      types.KindClassConstant,
		Name:      name,
		Type:      types.NewType(class.Name),
		Modifiers: types.ModPublic,
		Scope:     class.Name,
		Location:  v.locate(n),
	}
	v.docFor(n).apply(v, sym)
	v.add(sym)
}

// readDefine records define('NAME', value) calls as global constants
func (v *visitor) readDefine(n *syntax.Node) {
	fn := syntax.Field(n, "function")
	if fn == nil {
		fn = syntax.First(n, syntax.KindName, syntax.KindQualifiedName)
	}
	if !strings.EqualFold(strings.TrimPrefix(syntax.Text(fn), `\`), "define") {
		return
	}
	args := syntax.Field(n, "arguments")
	if args == nil {
		args = syntax.First(n, syntax.KindArguments)
	}
	first := syntax.First(args, syntax.KindArgument)
	if first == nil {
		first = args
	}
	str := syntax.First(first, syntax.KindString, syntax.KindEncapsed)
	name := strings.Trim(syntax.Text(str), `'"`)
	name = strings.TrimPrefix(name, `\`)
	if name == "" {
		return
	}
	v.add(&types.Symbol{
		Kind:     types.KindConstant,
		Name:     name,
		Location: v.locate(n),
	})
}

func (v *visitor) seed(names []string) {
	f := v.top()
	for _, n := range names {
		f.vars[n] = true
	}
}

func modifiers(n *syntax.Node) types.Modifiers {
	mods := types.ModNone
	for _, c := range syntax.All(n, modifierKinds...) {
		if c.Value.Kind == syntax.KindVarModifier {
			mods |= types.ModPublic
			continue
		}
		mods |= types.ParseModifier(syntax.Text(c))
	}
	return mods
}

func withDefaultVisibility(m types.Modifiers) types.Modifiers {
	if m.Visibility() == 0 {
		m |= types.ModPublic
	}
	return m
}

func scopeName(class *types.Symbol) string {
	if class == nil {
		return ""
	}
	return class.Name
}

// anonymousName gives name-less constructs a positional name
func anonymousName(prefix string, n *syntax.Node) string {
	return fmt.Sprintf("{%s:%d}", prefix, n.Value.Start)
}
