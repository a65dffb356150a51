package calculator

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

var (
	ErrInvalidExpression = errors.New("invalid expression")
	ErrDivisionByZero    = errors.New("division by zero")
)

var displaySymbols = strings.NewReplacer("×", "*", "÷", "/")

var allowedOperators = map[string]bool{"+": true, "-": true, "*": true, "/": true}

// arithmeticOnly records the first node that is not a number or one of the
// four basic operators.
type arithmeticOnly struct {
	rejected string
}

func (v *arithmeticOnly) Visit(node *ast.Node) {
	if v.rejected != "" {
		return
	}
	switch n := (*node).(type) {
	case *ast.IntegerNode, *ast.FloatNode:
	case *ast.UnaryNode:
		if n.Operator != "+" && n.Operator != "-" {
			v.rejected = fmt.Sprintf("operator %q", n.Operator)
		}
	case *ast.BinaryNode:
		if !allowedOperators[n.Operator] {
			v.rejected = fmt.Sprintf("operator %q", n.Operator)
		}
	default:
		v.rejected = fmt.Sprintf("%T", n)
	}
}

// Evaluate computes an arithmetic expression made of numbers, parentheses
// and + - * /. The display symbols × and ÷ are accepted.
func Evaluate(expression string) (float64, error) {
	expression = strings.TrimSpace(displaySymbols.Replace(expression))
	if expression == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidExpression)
	}

	tree, err := parser.Parse(expression)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	check := &arithmeticOnly{}
	ast.Walk(&tree.Node, check)
	if check.rejected != "" {
		return 0, fmt.Errorf("%w: %s is not allowed", ErrInvalidExpression, check.rejected)
	}

	program, err := expr.Compile(expression)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	out, err := expr.Run(program, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}

	var result float64
	switch v := out.(type) {
	case int:
		result = float64(v)
	case float64:
		result = v
	default:
		return 0, fmt.Errorf("%w: unexpected result %T", ErrInvalidExpression, out)
	}
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, ErrDivisionByZero
	}
	return result, nil
}
