package classify

import (
	"fmt"
	"strings"
)

// One configured watch target: a file path, a glob pattern, or the standard
// input marker, together with the line format its contents are declared to be.
type PathSpec struct {
	// Configured value with any format prefix removed
	Path string

	// How lines from this target are interpreted
	Format Variant

	// Target is the process standard input instead of a file
	IsStdin bool
}

// Splits an input argument of the form [format:]path. Only the known format
// prefix is treated as one, anything else stays part of the path so Windows
// style drive letters or URLs are never mangled. Standard input only carries
// plain text.
func ParsePathSpec(raw string) (spec PathSpec, err error) {
	if strings.TrimSpace(raw) == "" {
		err = fmt.Errorf("watch path cannot be empty")
		return
	}

	spec.Path = raw
	spec.Format = Plain

	if rest, found := strings.CutPrefix(raw, string(JSON)+":"); found {
		spec.Path = rest
		spec.Format = JSON
	}

	if spec.Path == "" {
		err = fmt.Errorf("watch path '%s' has a format prefix but no path", raw)
		return
	}

	if spec.Path == "-" {
		if spec.Format == JSON {
			err = fmt.Errorf("standard input cannot carry the json format")
			return
		}
		spec.IsStdin = true
	}
	return
}

// Parses every input argument and validates the set as a whole: at least one
// target, no duplicate targets, and standard input used at most once.
func ParsePathSpecs(raws []string) (specs []PathSpec, err error) {
	if len(raws) == 0 {
		err = fmt.Errorf("no watch paths configured")
		return
	}

	seen := make(map[string]struct{}, len(raws))
	stdinUsed := false
	for _, raw := range raws {
		var spec PathSpec
		spec, err = ParsePathSpec(raw)
		if err != nil {
			return
		}

		if spec.IsStdin {
			if stdinUsed {
				err = fmt.Errorf("standard input can only be read once")
				return
			}
			stdinUsed = true
		}

		_, duplicate := seen[spec.Path]
		if duplicate {
			err = fmt.Errorf("watch path '%s' is configured more than once", spec.Path)
			return
		}
		seen[spec.Path] = struct{}{}

		specs = append(specs, spec)
	}
	return
}

// Reports whether the path contains glob meta characters. Glob targets are
// re-evaluated by discovery instead of being created up front.
func (spec PathSpec) IsGlob() (glob bool) {
	glob = strings.ContainsAny(spec.Path, "*?[")
	return
}
