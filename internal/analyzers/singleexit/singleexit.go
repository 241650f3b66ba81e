// Package singleexit implements an analyzer that keeps process exit in package main.
package singleexit

import (
	"go/ast"
	"go/types"
	"strconv"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/types/typeutil"
)

// Analyzer reports os.Exit and log.Fatal* calls outside package main.
// Libraries return errors; only the top-level dispatcher picks the exit code.
var Analyzer = &analysis.Analyzer{
	Name: "singleexit",
	Doc:  "forbid os.Exit and log.Fatal outside package main",
	Run:  run,
}

var forbidden = map[string]map[string]bool{
	"os":  {"Exit": true},
	"log": {"Fatal": true, "Fatalf": true, "Fatalln": true},
}

func run(pass *analysis.Pass) (any, error) {
	if pass.Pkg == nil || pass.Pkg.Name() == "main" {
		return nil, nil
	}
	for _, f := range pass.Files {
		fn := pass.Fset.Position(f.Pos()).Filename
		if strings.HasSuffix(fn, "_test.go") || isGenerated(f) || importsTesting(f) {
			continue
		}

		ast.Inspect(f, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			fun, ok := typeutil.Callee(pass.TypesInfo, call).(*types.Func)
			if !ok || fun.Pkg() == nil {
				return true
			}
			if names, ok := forbidden[fun.Pkg().Path()]; ok && names[fun.Name()] {
				pass.Reportf(call.Pos(), "%s.%s called outside package main; return an error instead", fun.Pkg().Name(), fun.Name())
			}
			return true
		})
	}
	return nil, nil
}

func isGenerated(f *ast.File) bool {
	for _, cg := range f.Comments {
		for _, c := range cg.List {
			if strings.Contains(c.Text, "Code generated") && strings.Contains(c.Text, "DO NOT EDIT") {
				return true
			}
		}
	}
	return false
}

func importsTesting(f *ast.File) bool {
	for _, im := range f.Imports {
		if p, _ := strconv.Unquote(im.Path.Value); p == "testing" || p == "testing/internal/testdeps" {
			return true
		}
	}
	return false
}
