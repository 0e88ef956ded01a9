package metapath

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Debug gives a textual representation of an expression tree. Each node is
// written as its kind followed by its operands between parentheses.
func Debug(expr Expr) string {
	var str strings.Builder
	debugExpr(&str, expr)
	return str.String()
}

func debugExpr(w io.Writer, expr Expr) {
	switch v := expr.(type) {
	case literal:
		io.WriteString(w, "literal")
		io.WriteString(w, "(")
		io.WriteString(w, v.value.Type().String())
		io.WriteString(w, ", ")
		if isStringLike(v.value) {
			io.WriteString(w, strconv.Quote(v.value.String()))
		} else {
			io.WriteString(w, v.value.String())
		}
		io.WriteString(w, ")")
	case *empty:
		io.WriteString(w, "empty")
	case *contextItem:
		io.WriteString(w, "context")
	case root:
		io.WriteString(w, "root")
	case variable:
		io.WriteString(w, "variable")
		io.WriteString(w, "(")
		io.WriteString(w, v.name.String())
		io.WriteString(w, ")")
	case comma:
		debugList(w, "sequence", v.all...)
	case stringConcat:
		debugList(w, "concat", v.all...)
	case and:
		debugList(w, "and", v.all...)
	case or:
		debugList(w, "or", v.all...)
	case union:
		debugList(w, "union", v.all...)
	case intersect:
		debugList(w, "intersect", v.left, v.right)
	case except:
		debugList(w, "except", v.left, v.right)
	case let:
		io.WriteString(w, "let")
		io.WriteString(w, "(")
		io.WriteString(w, v.name.String())
		io.WriteString(w, ", ")
		debugExpr(w, v.bound)
		io.WriteString(w, ", ")
		debugExpr(w, v.body)
		io.WriteString(w, ")")
	case loop:
		io.WriteString(w, "for")
		io.WriteString(w, "(")
		io.WriteString(w, v.name.String())
		io.WriteString(w, ", ")
		debugExpr(w, v.in)
		io.WriteString(w, ", ")
		debugExpr(w, v.body)
		io.WriteString(w, ")")
	case conditional:
		debugList(w, "if", v.test, v.csq, v.alt)
	case simpleMap:
		debugList(w, "map", v.left, v.right)
	case rng:
		debugList(w, "range", v.start, v.end)
	case quantified:
		if v.every {
			io.WriteString(w, "every")
		} else {
			io.WriteString(w, "some")
		}
		io.WriteString(w, "(")
		for i, b := range v.binds {
			if i > 0 {
				io.WriteString(w, ", ")
			}
			io.WriteString(w, "(")
			io.WriteString(w, b.Name.String())
			io.WriteString(w, ", ")
			debugExpr(w, b.Expr)
			io.WriteString(w, ")")
		}
		io.WriteString(w, ", ")
		debugList(w, "satisfies", v.satisfies)
		io.WriteString(w, ")")
	case arithmetic:
		debugList(w, v.op.String(), v.left, v.right)
	case negate:
		debugList(w, "negate", v.expr)
	case valueCompare:
		debugList(w, v.op.Keyword(), v.left, v.right)
	case generalCompare:
		debugList(w, v.op.String(), v.left, v.right)
	case cast:
		debugTyped(w, "cast", v.expr, v.target.String(), v.allowEmpty)
	case castable:
		debugTyped(w, "castable", v.expr, v.target.String(), v.allowEmpty)
	case instanceOf:
		debugTyped(w, "instance-of", v.expr, v.target.String(), false)
	case treat:
		debugTyped(w, "treat", v.expr, v.target.String(), false)
	case step:
		io.WriteString(w, "step")
		io.WriteString(w, "(")
		io.WriteString(w, v.axis.String())
		io.WriteString(w, ", ")
		io.WriteString(w, v.test.String())
		io.WriteString(w, ")")
	case predicate:
		io.WriteString(w, "filter")
		io.WriteString(w, "(")
		debugExpr(w, v.base)
		for i := range v.preds {
			io.WriteString(w, ", ")
			debugExpr(w, v.preds[i])
		}
		io.WriteString(w, ")")
	case relativePath:
		debugList(w, "path", v.left, v.right)
	case relativeSearch:
		debugList(w, "search", v.left, v.right)
	case rootPath:
		debugList(w, "root-path", v.expr)
	case rootSearch:
		debugList(w, "root-search", v.expr)
	case unaryLookup:
		io.WriteString(w, "lookup")
		io.WriteString(w, "(")
		debugKey(w, v.key)
		io.WriteString(w, ")")
	case postfixLookup:
		io.WriteString(w, "lookup")
		io.WriteString(w, "(")
		debugExpr(w, v.base)
		io.WriteString(w, ", ")
		debugKey(w, v.key)
		io.WriteString(w, ")")
	case functionCallAccessor:
		debugList(w, "accessor", v.base, v.key)
	case mapConstructor:
		io.WriteString(w, "map-constructor")
		io.WriteString(w, "(")
		for i, e := range v.entries {
			if i > 0 {
				io.WriteString(w, ", ")
			}
			debugList(w, "entry", e.Key, e.Value)
		}
		io.WriteString(w, ")")
	case curlyArray:
		if v.expr == nil {
			io.WriteString(w, "curly-array()")
			break
		}
		debugList(w, "curly-array", v.expr)
	case squareArray:
		debugList(w, "square-array", v.all...)
	case functionCall:
		io.WriteString(w, "call")
		io.WriteString(w, "(")
		io.WriteString(w, displayName(v.fn.Name))
		for i := range v.args {
			io.WriteString(w, ", ")
			debugExpr(w, v.args[i])
		}
		io.WriteString(w, ")")
	case namedFunctionRef:
		io.WriteString(w, "function-ref")
		io.WriteString(w, "(")
		io.WriteString(w, displayName(v.fn.Name))
		io.WriteString(w, "#")
		io.WriteString(w, strconv.Itoa(v.fn.Arity()))
		io.WriteString(w, ")")
	case dynamicFunctionCall:
		debugList(w, "dynamic-call", append([]Expr{v.base}, v.args...)...)
	case inlineFunction:
		io.WriteString(w, "function")
		io.WriteString(w, "(")
		for i, p := range v.params {
			if i > 0 {
				io.WriteString(w, ", ")
			}
			io.WriteString(w, "$")
			io.WriteString(w, p.Name)
		}
		if len(v.params) > 0 {
			io.WriteString(w, ", ")
		}
		debugExpr(w, v.body)
		io.WriteString(w, ")")
	default:
		fmt.Fprintf(w, "<%T>", expr)
	}
}

func debugList(w io.Writer, name string, all ...Expr) {
	io.WriteString(w, name)
	io.WriteString(w, "(")
	for i := range all {
		if i > 0 {
			io.WriteString(w, ", ")
		}
		debugExpr(w, all[i])
	}
	io.WriteString(w, ")")
}

func debugTyped(w io.Writer, name string, expr Expr, target string, allowEmpty bool) {
	io.WriteString(w, name)
	io.WriteString(w, "(")
	debugExpr(w, expr)
	io.WriteString(w, ", ")
	io.WriteString(w, target)
	if allowEmpty {
		io.WriteString(w, "?")
	}
	io.WriteString(w, ")")
}

func debugKey(w io.Writer, key KeySpecifier) {
	if k, ok := key.(exprKey); ok {
		debugExpr(w, k.expr)
		return
	}
	io.WriteString(w, key.String())
}
