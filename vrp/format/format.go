// Package format holds the plug-in surface for per-format problem readers,
// init-solution readers, and solution writers, registered under a name the
// CLI validates against. Only "solomon" is fully implemented; "lilim" and
// "pragmatic" are registered so the CLI's format validation and
// error-exit-code path has more than one name to check, but their
// read/write bodies return ErrFormatNotImplemented — parsing those
// grammars is not yet implemented.
package format

import (
	"errors"
	"fmt"
	"io"

	"github.com/ruinrecreate/vrpsolver/vrp"
)

// ErrFormatNotImplemented is returned by a registered format whose
// reader/writer logic is not implemented.
var ErrFormatNotImplemented = errors.New("vrp/format: format not implemented")

// ProblemReader parses a problem file, plus any accompanying matrix
// files, into a *vrp.Problem.
type ProblemReader func(problem io.Reader, matrices []io.Reader) (*vrp.Problem, error)

// InitSolutionReader parses an optional initial-solution file against an
// already-built Problem.
type InitSolutionReader func(r io.Reader, problem *vrp.Problem) (*vrp.InsertionContext, error)

// SolutionWriter serializes a solved InsertionContext in one format's
// on-disk grammar.
type SolutionWriter func(problem *vrp.Problem, solution *vrp.InsertionContext, w io.Writer) error

// Format bundles the three adapters one format registers.
type Format struct {
	Name             string
	ReadProblem      ProblemReader
	ReadInitSolution InitSolutionReader
	WriteSolution    SolutionWriter
}

var registry = map[string]Format{}

// Register adds f under its name, overwriting any previous registration of
// the same name. Called from each format file's init().
func Register(f Format) { registry[f.Name] = f }

// Lookup finds a registered format by name — the validation boundary for
// the CLI's <format> argument; an unknown name is the caller's cue to treat it as
// an input error and exit non-zero.
func Lookup(name string) (Format, error) {
	f, ok := registry[name]
	if !ok {
		return Format{}, fmt.Errorf("unknown format %q (known: %v)", name, Names())
	}
	return f, nil
}

// Names returns every registered format name.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}

func notImplementedReader(io.Reader, []io.Reader) (*vrp.Problem, error) {
	return nil, ErrFormatNotImplemented
}

func notImplementedInitReader(io.Reader, *vrp.Problem) (*vrp.InsertionContext, error) {
	return nil, ErrFormatNotImplemented
}

func notImplementedWriter(*vrp.Problem, *vrp.InsertionContext, io.Writer) error {
	return ErrFormatNotImplemented
}

func init() {
	Register(solomonFormat)
	Register(Format{
		Name:             "lilim",
		ReadProblem:      notImplementedReader,
		ReadInitSolution: notImplementedInitReader,
		WriteSolution:    notImplementedWriter,
	})
	Register(Format{
		Name:             "pragmatic",
		ReadProblem:      notImplementedReader,
		ReadInitSolution: notImplementedInitReader,
		WriteSolution:    notImplementedWriter,
	})
}
