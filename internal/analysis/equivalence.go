package analysis

import (
	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/navigator"
	"github.com/standardbeagle/smellscan/internal/syntax"
)

// ExpressionPair is two arithmetic expressions with the same structure.
type ExpressionPair struct {
	First  syntax.NodeID
	Second syntax.NodeID
}

// operand is one side of a binary expression: a literal, a resolved
// symbol, or neither.
type operand struct {
	literal bool
	lit     syntax.LitKind
	value   string
	sym     *model.Symbol
}

func (o operand) null() bool { return !o.literal && o.sym == nil }

// EquivalentButDistinct reports whether a and b are different nodes with the
// same nested binary structure. Levels are compared position by position:
// operators must match, an operand that is neither literal nor resolved must
// be so on both sides, literals in the same slot must have equal values, and
// when all four operands of a level resolve to symbols they must be the same
// slot by slot. Operand order matters.
func EquivalentButDistinct(tree *syntax.Tree, oracle model.Oracle, a, b syntax.NodeID) bool {
	if a == b {
		return false
	}
	la := nestedBinaries(tree, a)
	lb := nestedBinaries(tree, b)
	if len(la) == 0 || len(la) != len(lb) {
		return false
	}
	for i := range la {
		if !sameLevel(tree, oracle, la[i], lb[i]) {
			return false
		}
	}
	return true
}

func sameLevel(tree *syntax.Tree, oracle model.Oracle, x, y syntax.NodeID) bool {
	if tree.Node(x).Op != tree.Node(y).Op {
		return false
	}
	xl, xr := operands(tree, oracle, x)
	yl, yr := operands(tree, oracle, y)

	if !sameSlot(xl, yl) || !sameSlot(xr, yr) {
		return false
	}
	if xl.sym != nil && xr.sym != nil && yl.sym != nil && yr.sym != nil {
		return xl.sym.Same(yl.sym) && xr.sym.Same(yr.sym)
	}
	return true
}

func sameSlot(a, b operand) bool {
	if a.null() != b.null() {
		return false
	}
	if a.literal && b.literal {
		return a.lit == b.lit && a.value == b.value
	}
	return true
}

func operands(tree *syntax.Tree, oracle model.Oracle, bin syntax.NodeID) (operand, operand) {
	var left, right operand
	if id, ok := tree.ChildByField(bin, "left"); ok {
		left = operandOf(tree, oracle, id)
	}
	if id, ok := tree.ChildByField(bin, "right"); ok {
		right = operandOf(tree, oracle, id)
	}
	return left, right
}

func operandOf(tree *syntax.Tree, oracle model.Oracle, id syntax.NodeID) operand {
	n := tree.Node(id)
	if n.Kind == syntax.KindLiteral {
		value := n.Value
		if value == "" {
			value = tree.Text(id)
		}
		return operand{literal: true, lit: n.Lit, value: value}
	}
	if sym, ok := oracle.SymbolOf(id); ok {
		return operand{sym: sym}
	}
	return operand{}
}

// nestedBinaries lists root (when binary) and every binary expression below
// it in document order.
func nestedBinaries(tree *syntax.Tree, root syntax.NodeID) []syntax.NodeID {
	var out []syntax.NodeID
	if tree.Kind(root) == syntax.KindBinary {
		out = append(out, root)
	}
	for id := range navigator.DescendantsOfKind(tree, root, syntax.KindBinary) {
		out = append(out, id)
	}
	return out
}

// ArithmeticExpressions returns the +, -, * and / expressions of the tree in
// document order.
func ArithmeticExpressions(tree *syntax.Tree) []syntax.NodeID {
	var out []syntax.NodeID
	for id := range navigator.DescendantsOfKind(tree, tree.Root(), syntax.KindBinary) {
		if tree.Node(id).Op.IsArithmetic() {
			out = append(out, id)
		}
	}
	return out
}

// FindLimitConditions pairs structurally equivalent arithmetic expressions.
// Each expression is paired with the first equivalent candidate found; a
// matched expression and every binary nested in it take part in no further
// pair.
func FindLimitConditions(unit *model.SourceUnit) []ExpressionPair {
	tree := unit.Tree
	oracle := unit.Oracle()
	candidates := ArithmeticExpressions(tree)

	consumed := make(map[syntax.NodeID]bool)
	consume := func(id syntax.NodeID) {
		for _, n := range nestedBinaries(tree, id) {
			consumed[n] = true
		}
	}

	var pairs []ExpressionPair
	for _, a := range candidates {
		if consumed[a] {
			continue
		}
		for _, b := range candidates {
			if b == a || consumed[b] {
				continue
			}
			if EquivalentButDistinct(tree, oracle, a, b) {
				consume(a)
				consume(b)
				pairs = append(pairs, ExpressionPair{First: a, Second: b})
				break
			}
		}
	}
	return pairs
}
