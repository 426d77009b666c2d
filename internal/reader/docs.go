package reader

import (
	"strings"

	"github.com/dshills/phpsymbols/internal/phpdoc"
	"github.com/dshills/phpsymbols/internal/resolve"
	"github.com/dshills/phpsymbols/internal/syntax"
	"github.com/dshills/phpsymbols/pkg/types"
)

// docInfo is the doc comment attached to a declaration. A nil *docInfo is
// valid and behaves as an empty comment.
type docInfo struct {
	doc     *phpdoc.Doc
	comment *syntax.Node
}

// docFor returns the doc comment immediately preceding n with only
// whitespace between them
func (v *visitor) docFor(n *syntax.Node) *docInfo {
	target := n
	if p := target.Parent(); p != nil && p.Value.Kind == syntax.KindExpressionStatement && target.Index() == 0 {
		target = p
	}
	prev := target.PrevSibling()
	if prev == nil || prev.Value.Kind != syntax.KindComment || !phpdoc.IsDocComment(prev.Value.Text) {
		return nil
	}
	if strings.TrimSpace(v.doc.Slice(prev.Value.End, target.Value.Start)) != "" {
		return nil
	}
	return &docInfo{doc: phpdoc.Parse(prev.Value.Text), comment: prev}
}

// attachDoc finds and applies the doc comment of n to sym
func (v *visitor) attachDoc(sym *types.Symbol, n *syntax.Node) *docInfo {
	d := v.docFor(n)
	d.apply(v, sym)
	return d
}

func (d *docInfo) apply(v *visitor, sym *types.Symbol) {
	if d == nil {
		return
	}
	sym.Doc = d.doc.Summary
	if d.doc.Description != "" {
		sym.Doc += "\n\n" + d.doc.Description
	}
	sym.DocLocation = v.locate(d.comment)
}

func (d *docInfo) resolveType(v *visitor, s string) types.TypeExpr {
	return v.resolver.ResolveType(types.ParseTypeString(s))
}

func (d *docInfo) paramType(v *visitor, name string) types.TypeExpr {
	if d == nil {
		return types.TypeExpr{}
	}
	if tag, ok := d.doc.Param(name); ok {
		return d.resolveType(v, tag.Type)
	}
	return types.TypeExpr{}
}

// varType returns the @var type for name. A tag without a variable applies
// to any name.
func (d *docInfo) varType(v *visitor, name string) types.TypeExpr {
	if d == nil {
		return types.TypeExpr{}
	}
	for _, tag := range d.doc.TagsNamed("var") {
		if tag.Variable == "" || tag.Variable == name {
			return d.resolveType(v, tag.Type)
		}
	}
	return types.TypeExpr{}
}

// returnType fills a missing declared return type from @return
func (v *visitor) returnType(sym *types.Symbol, d *docInfo) {
	if d == nil || !sym.Type.IsEmpty() {
		return
	}
	if tag, ok := d.doc.Tag("return"); ok {
		sym.Type = d.resolveType(v, tag.Type)
	}
}

// magicMembers synthesizes the @property and @method tags of a class-like
func (v *visitor) magicMembers(class *types.Symbol, d *docInfo) {
	if d == nil {
		return
	}
	loc := v.locate(d.comment)

	for _, tag := range d.doc.TagsNamed("property", "property-read", "property-write") {
		if tag.Variable == "" {
			continue
		}
		mods := types.ModPublic | types.ModMagic
		if tag.Name == "property-read" {
			mods |= types.ModReadOnly
		}
		class.AddChild(&types.Symbol{
			Kind:      types.KindProperty,
			Name:      tag.Variable,
			Type:      d.resolveType(v, tag.Type),
			Modifiers: mods,
			Scope:     class.Name,
			Location:  loc,
			Doc:       tag.Description,
		})
	}

	for _, tag := range d.doc.TagsNamed("method") {
		if tag.Method == "" {
			continue
		}
		mods := types.ModPublic | types.ModMagic
		if tag.Static {
			mods |= types.ModStatic
		}
		m := &types.Symbol{
			Kind:      types.KindMethod,
			Name:      tag.Method,
			Type:      d.resolveType(v, tag.Type),
			Modifiers: mods,
			Scope:     class.Name,
			Location:  loc,
			Doc:       tag.Description,
		}
		for _, p := range tag.Params {
			if p.Name == "" {
				continue
			}
			pm := types.ModNone
			if p.Variadic {
				pm |= types.ModVariadic
			}
			m.AddChild(&types.Symbol{
				Kind:      types.KindParameter,
				Name:      p.Name,
				Type:      v.resolver.ResolveType(types.ParseTypeString(p.Type)),
				Modifiers: pm,
				Scope:     m.Name,
				Location:  loc,
			})
		}
		class.AddChild(m)
	}
}

// typeOf reads the declared type stored under field of n, falling back to
// the first type child
func (v *visitor) typeOf(n *syntax.Node, field string) types.TypeExpr {
	tn := syntax.Field(n, field)
	if tn == nil {
		tn = syntax.First(n, syntax.KindNamedType, syntax.KindPrimitiveType, syntax.KindOptionalType,
			syntax.KindUnionType, syntax.KindIntersection)
	}
	return v.typeExpr(tn)
}

func (v *visitor) typeExpr(tn *syntax.Node) types.TypeExpr {
	if tn == nil {
		return types.TypeExpr{}
	}
	switch tn.Value.Kind {
	case syntax.KindPrimitiveType:
		return types.NewType(syntax.Text(tn))
	case syntax.KindNamedType, syntax.KindName, syntax.KindQualifiedName, syntax.KindRelativeScope:
		if tn.IsLeaf() {
			return types.NewType(v.resolver.Resolve(resolve.Class, syntax.Text(tn)))
		}
		return v.typeExpr(syntax.First(tn, syntax.KindName, syntax.KindQualifiedName))
	case syntax.KindOptionalType:
		var inner types.TypeExpr
		for _, c := range tn.Children() {
			inner = inner.Union(v.typeExpr(c))
		}
		return inner.Add("null")
	case syntax.KindUnionType, syntax.KindIntersection, syntax.KindTypeList:
		var out types.TypeExpr
		for _, c := range tn.Children() {
			out = out.Union(v.typeExpr(c))
		}
		return out
	}
	return types.TypeExpr{}
}
