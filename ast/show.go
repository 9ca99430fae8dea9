package ast

import (
	"fmt"
	"strings"
)

// ExprString renders an expression for logs and test failure messages. The
// output is for humans; it is not meant to be parsed back.
func ExprString(expr Expr) string {
	ctx := newShowContext()
	ctx.showExprWalker(expr)
	return ctx.String()
}

func TypeString(t Type) string {
	if t == nil {
		return "_"
	}
	return t.TypeName()
}

type showContext struct {
	*strings.Builder
	indent    int
	indentStr string
}

func newShowContext() *showContext {
	return &showContext{
		Builder:   &strings.Builder{},
		indentStr: "  ",
	}
}

func (ctx *showContext) line() {
	ctx.WriteString("\n")
	ctx.WriteString(strings.Repeat(ctx.indentStr, ctx.indent))
}

func (ctx *showContext) showList(exprs []Expr) {
	for i, sub := range exprs {
		if i > 0 {
			ctx.WriteString(", ")
		}
		ctx.showExprWalker(sub)
	}
}

func (ctx *showContext) showExprWalker(expr Expr) {
	if expr == nil {
		ctx.WriteString("nil")
		return
	}
	switch expr := expr.(type) {
	case *Var:
		ctx.WriteString(expr.Id.Name)
	case *Literal:
		ctx.WriteString(expr.Syntax)
	case *BoolLit:
		ctx.WriteString(fmt.Sprint(expr.Value))
	case *UnitLit:
		ctx.WriteString("()")
	case *Let:
		ctx.WriteString(fmt.Sprintf("val %s = ", expr.Binder.Id.Name))
		ctx.showExprWalker(expr.Value)
		ctx.line()
		ctx.showExprWalker(expr.Body)
	case *LetMut:
		ctx.WriteString(fmt.Sprintf("var %s = ", expr.Binder.Id.Name))
		ctx.showExprWalker(expr.Value)
		ctx.line()
		ctx.showExprWalker(expr.Body)
	case *Assign:
		ctx.WriteString(expr.Id.Name + " = ")
		ctx.showExprWalker(expr.Value)
	case *Block:
		ctx.WriteString("{")
		ctx.indent++
		for _, sub := range expr.Exprs {
			ctx.line()
			ctx.showExprWalker(sub)
		}
		ctx.indent--
		ctx.line()
		ctx.WriteString("}")
	case *Lambda:
		params := make([]string, 0, len(expr.Params))
		for _, param := range expr.Params {
			params = append(params, param.Id.Name)
		}
		ctx.WriteString("(" + strings.Join(params, ", ") + ") => ")
		ctx.showExprWalker(expr.Body)
	case *Call:
		ctx.WriteString(expr.Callee.Name)
		ctx.WriteString("(")
		ctx.showList(expr.Args)
		ctx.WriteString(")")
	case *ClassNew:
		ctx.WriteString("new " + expr.Class.TypeName() + "(")
		ctx.showList(expr.Args)
		ctx.WriteString(")")
	case *FieldSelect:
		ctx.showExprWalker(expr.Recv)
		ctx.WriteString("." + expr.Field.Name)
	case *FieldAssign:
		ctx.showExprWalker(expr.Recv)
		ctx.WriteString("." + expr.Field.Name + " = ")
		ctx.showExprWalker(expr.Value)
	case *IsInstance:
		ctx.showExprWalker(expr.X)
		ctx.WriteString(" is " + TypeString(expr.Tpe))
	case *AsInstance:
		ctx.showExprWalker(expr.X)
		ctx.WriteString(" as " + TypeString(expr.Tpe))
	case *RefEq:
		ctx.showExprWalker(expr.Lhs)
		ctx.WriteString(" eq ")
		ctx.showExprWalker(expr.Rhs)
	case *Equals:
		ctx.showExprWalker(expr.Lhs)
		ctx.WriteString(" == ")
		ctx.showExprWalker(expr.Rhs)
	case *ObjectIdentity:
		ctx.WriteString("identity(")
		ctx.showExprWalker(expr.X)
		ctx.WriteString(")")
	case *Old:
		ctx.WriteString("old(")
		ctx.showExprWalker(expr.X)
		ctx.WriteString(")")
	case *If:
		ctx.WriteString("if (")
		ctx.showExprWalker(expr.Cond)
		ctx.WriteString(") ")
		ctx.showExprWalker(expr.Then)
		ctx.WriteString(" else ")
		ctx.showExprWalker(expr.Else)
	case *Match:
		ctx.showExprWalker(expr.Scrutinee)
		ctx.WriteString(" match {")
		ctx.indent++
		for _, matchCase := range expr.Cases {
			ctx.line()
			ctx.WriteString("case " + patternString(matchCase.Pattern))
			if matchCase.Guard != nil {
				ctx.WriteString(" if ")
				ctx.showExprWalker(matchCase.Guard)
			}
			ctx.WriteString(" => ")
			ctx.showExprWalker(matchCase.Body)
		}
		ctx.indent--
		ctx.line()
		ctx.WriteString("}")
	case *Assert:
		ctx.WriteString("assert(")
		ctx.showExprWalker(expr.Pred)
		if expr.Msg != "" {
			ctx.WriteString(", " + fmt.Sprintf("%q", expr.Msg))
		}
		ctx.WriteString(")")
		ctx.line()
		ctx.showExprWalker(expr.Body)
	case *Assume:
		ctx.WriteString("assume(")
		ctx.showExprWalker(expr.Pred)
		ctx.WriteString(")")
		ctx.line()
		ctx.showExprWalker(expr.Body)
	case *Choose:
		ctx.WriteString("choose(" + expr.Binder.Id.Name + " => ")
		ctx.showExprWalker(expr.Pred)
		ctx.WriteString(")")
	case *Tuple:
		ctx.WriteString("(")
		ctx.showList(expr.Exprs)
		ctx.WriteString(")")
	case *TupleSelect:
		ctx.showExprWalker(expr.X)
		ctx.WriteString(fmt.Sprintf("._%d", expr.Index))
	case *MapApply:
		ctx.showExprWalker(expr.Map)
		ctx.WriteString("(")
		ctx.showExprWalker(expr.Key)
		ctx.WriteString(")")
	case *MapUpdated:
		ctx.showExprWalker(expr.Map)
		ctx.WriteString(".updated(")
		ctx.showExprWalker(expr.Key)
		ctx.WriteString(", ")
		ctx.showExprWalker(expr.Value)
		ctx.WriteString(")")
	case *MapMerge:
		ctx.WriteString("merge(")
		ctx.showExprWalker(expr.Mask)
		ctx.WriteString(", ")
		ctx.showExprWalker(expr.Left)
		ctx.WriteString(", ")
		ctx.showExprWalker(expr.Right)
		ctx.WriteString(")")
	case *FiniteSet:
		ctx.WriteString("Set(")
		ctx.showList(expr.Elems)
		ctx.WriteString(")")
	case *SetContains:
		ctx.showExprWalker(expr.Set)
		ctx.WriteString(".contains(")
		ctx.showExprWalker(expr.Elem)
		ctx.WriteString(")")
	case *SetSubset:
		ctx.showExprWalker(expr.Lhs)
		ctx.WriteString(" subsetOf ")
		ctx.showExprWalker(expr.Rhs)
	case *SetUnion:
		ctx.showExprWalker(expr.Lhs)
		ctx.WriteString(" ++ ")
		ctx.showExprWalker(expr.Rhs)
	case *And:
		ctx.showExprWalker(expr.Lhs)
		ctx.WriteString(" && ")
		ctx.showExprWalker(expr.Rhs)
	case *Or:
		ctx.showExprWalker(expr.Lhs)
		ctx.WriteString(" || ")
		ctx.showExprWalker(expr.Rhs)
	case *ErrorExpr:
		ctx.WriteString("<error>")
	default:
		ctx.WriteString(expr.ExprName())
	}
}

func patternString(p Pattern) string {
	if p == nil {
		return "nil"
	}
	switch p := p.(type) {
	case *WildcardPattern:
		if p.Binder != nil {
			return p.Binder.Id.Name
		}
		return "_"
	case *ClassPattern:
		return p.Tpe.TypeName() + "(" + subPatternsString(p.Sub) + ")"
	case *TuplePattern:
		return "(" + subPatternsString(p.Sub) + ")"
	case *LiteralPattern:
		return ExprString(p.Lit)
	case *UnapplyPattern:
		args := make([]string, 0, len(p.RecArgs))
		for _, recArg := range p.RecArgs {
			args = append(args, ExprString(recArg))
		}
		return p.Id.Name + "(" + strings.Join(args, ", ") + ")(" + subPatternsString(p.Sub) + ")"
	default:
		return p.PatternName()
	}
}

func subPatternsString(patterns []Pattern) string {
	shown := make([]string, 0, len(patterns))
	for _, sub := range patterns {
		shown = append(shown, patternString(sub))
	}
	return strings.Join(shown, ", ")
}

// FunDefString renders a function definition header and body.
func FunDefString(def *FunDef) string {
	sb := &strings.Builder{}
	params := make([]string, 0, len(def.Params))
	for _, param := range def.Params {
		params = append(params, param.Id.Name+": "+TypeString(param.Tpe))
	}
	sb.WriteString(fmt.Sprintf("def %s(%s): %s", def.Id.Name, strings.Join(params, ", "), TypeString(def.ReturnType)))
	if def.Body != nil {
		sb.WriteString(" = ")
		sb.WriteString(ExprString(def.Body))
	}
	return sb.String()
}
