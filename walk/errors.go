package walk

import (
	"github.com/bnikolic/swift-t/ast"
	"github.com/bnikolic/swift-t/diag"
)

func spanOf(n ast.Node) *diag.Span {
	s := n.Span()
	return &diag.Span{StartLine: s.Line, StartCol: s.Col, EndLine: s.Line, EndCol: s.Col}
}

func (w *Walker) typeErrorf(node ast.Node, format string, args ...interface{}) error {
	return diag.Raise(diag.KindType, spanOf(node), format, args...)
}

func (w *Walker) nameErrorf(node ast.Node, format string, args ...interface{}) error {
	return diag.Raise(diag.KindName, spanOf(node), format, args...)
}

func (w *Walker) definitionErrorf(node ast.Node, format string, args ...interface{}) error {
	return diag.Raise(diag.KindDefinition, spanOf(node), format, args...)
}

func (w *Walker) annotationErrorf(node ast.Node, format string, args ...interface{}) error {
	return diag.Raise(diag.KindAnnotation, spanOf(node), format, args...)
}
