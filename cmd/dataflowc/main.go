// Command dataflowc drives the expression walker over a small fixture
// program and prints the resulting op sequence, the way the teacher's own
// `chai` binary drives its compiler pipeline over a module path. There is no
// parser in this module (see ast package doc) so "build" walks an in-memory
// ast.Tree fixture rather than reading source files from disk -- this binary
// exists to exercise the walker/backend wiring end to end, not to be a
// complete compiler front end.
package main

import (
	"fmt"
	"os"

	"github.com/ComedicChimera/olive"

	"github.com/bnikolic/swift-t/backend"
	"github.com/bnikolic/swift-t/config"
	"github.com/bnikolic/swift-t/diag"
	"github.com/bnikolic/swift-t/ffi"
	"github.com/bnikolic/swift-t/fixture"
	"github.com/bnikolic/swift-t/scope"
)

const version = "0.1.0"

func main() {
	cli := olive.NewCLI("dataflowc", "dataflowc lowers a fixture dataflow program to its instruction op log", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, []string{"silent", "error", "warning", "verbose"})
	logLvlArg.SetDefaultValue("error")

	buildCmd := cli.AddSubcommand("build", "walk a fixture program and print its op log", true)
	buildCmd.AddStringArg("fixture", "f", "the fixture program to walk (default: the sum-of-range sample)", false)
	buildCmd.AddFlag("disable-asserts", "da", "elide assert/assert_eq calls during lowering")

	cli.AddSubcommand("version", "print the dataflowc version", false)

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "CLI Usage Error:", err)
		os.Exit(1)
	}

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		execBuild(subResult, result.Arguments["loglevel"].(string))
	case "version":
		fmt.Println("dataflowc", version)
	default:
		fmt.Fprintln(os.Stderr, "no subcommand given, try `dataflowc build` or `dataflowc version`")
		os.Exit(1)
	}
}

func execBuild(result *olive.ArgParseResult, logLevel string) {
	reporter := diag.NewReporter(parseLevel(logLevel))
	defer reporter.Catch()

	fixtureName := "sum_of_range"
	if v, ok := result.Arguments["fixture"]; ok {
		fixtureName = v.(string)
	}

	prog, ok := fixture.Lookup(fixtureName)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown fixture %q (known: %v)\n", fixtureName, fixture.Names())
		os.Exit(1)
	}

	opts := config.Default()
	opts.OptDisableAsserts = result.HasFlag("disable-asserts")

	rec := backend.NewRecorder()
	reg := ffi.StandardLibrary()

	ctx, vc := prog.Setup(scope.NewGlobalContext())
	if err := prog.Walk(ctx, vc, rec, reg, opts, reporter); err != nil {
		if fault, ok := err.(*diag.Fault); ok {
			reporter.ReportError(fault)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

	fmt.Print(rec.Repr())
}

func parseLevel(s string) diag.Level {
	switch s {
	case "silent":
		return diag.LevelSilent
	case "warning":
		return diag.LevelWarning
	case "verbose":
		return diag.LevelVerbose
	default:
		return diag.LevelError
	}
}
