// Package types provides the shared symbol model for PHPSymbols.
//
// # Core Types
//
// Symbol is the unit of the index. Each document produces a tree of symbols
// rooted at a KindNone symbol:
//
//	root := types.NewRoot()
//	class := &types.Symbol{
//	    Kind: types.KindClass,
//	    Name: `App\Http\Controller`,
//	}
//	root.AddChild(class)
//
// Children express ownership (class members, function parameters).
// Associated holds Stub references (base class, interfaces, traits) that are
// resolved by name through the symbol store, never by pointer:
//
//	class.Associate(types.KindTrait, `App\Concerns\Loggable`)
//
// # Names
//
// Type-like symbols carry fully qualified names without a leading separator.
// Members carry their short name plus the owning type in Scope. Variables,
// parameters and properties keep the leading "$".
//
// Class-likes, functions and methods compare case-insensitively, everything
// else is case-sensitive; see NameEqual.
//
// # Types
//
// TypeExpr is a textual union type recorded from declarations or docblocks.
// It is an annotation only; no inference is performed.
package types
