// Package config loads compiler settings from a TOML project file, the way
// the teacher compiler loads its module file, and exposes the small set of
// options the walk and validate passes need to query at lowering time.
package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

// ProjectFileName is the conventional name of a project's settings file,
// analogous to the teacher's chai-mod.toml.
const ProjectFileName = "dataflow-mod.toml"

// tomlProjectFile mirrors the on-disk TOML shape.
type tomlProjectFile struct {
	Project *tomlProject `toml:"project"`
}

type tomlProject struct {
	Name                 string `toml:"name"`
	DisableAsserts       bool   `toml:"disable-asserts"`
	EnableAlgebra        bool   `toml:"enable-algebra"`
	LogLevel             string `toml:"log-level"`
	CacheDirectory       string `toml:"cache-directory,omitempty"`
	CheckpointLookup     bool   `toml:"checkpoint-lookup"`
	CheckpointWrite      bool   `toml:"checkpoint-write"`
}

// Options holds the resolved compiler settings consulted during lowering.
// It is immutable once returned by Load/Default.
type Options struct {
	Name string

	// OptDisableAsserts, when true, causes the walker to elide
	// assert/assert_eq calls entirely rather than lowering them to
	// Builtin instructions.
	OptDisableAsserts bool

	// OptAlgebra, when true, has Builtin.GetResults infer a combined
	// PLUS/MINUS offset across a chain of integer add/subtract instructions,
	// so CSE can fold a later recomputation of that offset even though the
	// two additions were never written as one expression.
	OptAlgebra bool

	LogLevel LogLevel

	CacheDirectory string

	// CheckpointLookupEnabled and CheckpointWriteEnabled gate whether
	// checkpointed function calls emit the lookup_checkpoint /
	// write_checkpoint instruction pair at all; when both are false a
	// checkpointed call lowers as an ordinary function call.
	CheckpointLookupEnabled bool
	CheckpointWriteEnabled  bool
}

// LogLevel mirrors diag.Level's string encoding in the project file, kept
// separate so the config package does not import diag.
type LogLevel int

const (
	LogSilent LogLevel = iota
	LogError
	LogWarning
	LogVerbose
)

func parseLogLevel(s string) LogLevel {
	switch s {
	case "silent":
		return LogSilent
	case "warning":
		return LogWarning
	case "verbose":
		return LogVerbose
	default:
		return LogError
	}
}

// Default returns the zero-config option set: asserts enabled, algebra
// enabled, error-level logging, checkpointing disabled.
func Default() *Options {
	return &Options{
		OptDisableAsserts:       false,
		OptAlgebra:              true,
		LogLevel:                LogError,
		CheckpointLookupEnabled: false,
		CheckpointWriteEnabled:  false,
	}
}

// Load reads and parses the project file at dir/ProjectFileName. If the file
// does not exist, Load returns Default() with no error, matching the
// teacher's tolerant module-loading behavior for standalone source files.
func Load(dir string) (*Options, error) {
	f, err := os.Open(filepath.Join(dir, ProjectFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	defer f.Close()

	buf, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}

	tpf := &tomlProjectFile{}
	if err := toml.Unmarshal(buf, tpf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ProjectFileName, err)
	}
	if tpf.Project == nil {
		return nil, fmt.Errorf("%s: missing [project] table", ProjectFileName)
	}

	p := tpf.Project
	return &Options{
		Name:                    p.Name,
		OptDisableAsserts:       p.DisableAsserts,
		OptAlgebra:              p.EnableAlgebra,
		LogLevel:                parseLogLevel(p.LogLevel),
		CacheDirectory:          p.CacheDirectory,
		CheckpointLookupEnabled: p.CheckpointLookup,
		CheckpointWriteEnabled:  p.CheckpointWrite,
	}, nil
}
