package ast

// Children returns the direct child nodes of n in source order.
func Children(n *Node) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	add := func(nodes ...*Node) {
		for _, c := range nodes {
			if c != nil {
				out = append(out, c)
			}
		}
	}
	switch d := n.Data.(type) {
	case BinaryOpNode:
		add(d.Left, d.Right)
	case UnaryOpNode:
		add(d.Expr)
	case FuncCallNode:
		add(d.Args...)
	case ProgramNode:
		add(d.Stmts...)
	case FuncDeclNode:
		add(d.Body)
	case VarDeclNode:
		add(d.Init)
	case AssignNode:
		add(d.Value)
	case CallStmtNode:
		add(d.Call)
	case PrintNode:
		add(d.Args...)
	case ReturnNode:
		add(d.Expr)
	case IfNode:
		add(d.Cond, d.ThenBody, d.ElseBody)
	case WhileNode:
		add(d.Cond, d.Body)
	case BlockNode:
		add(d.Stmts...)
	}
	return out
}

// Inspect walks the tree depth-first. Returning false from fn skips n's children.
func Inspect(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, fn)
	}
}
