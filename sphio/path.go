package sphio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// OutputFile turns a path mask into a sequence of dump paths. The mask
// may contain %d, replaced by a 4-digit zero-padded dump index that
// increments with every call, and %t, replaced by the current simulation
// time. Exactly one substitution of each kind is performed per dump.
type OutputFile struct {
	mask    string
	dumpIdx int
}

func NewOutputFile(mask string) (*OutputFile, error) {
	if mask == "" {
		return nil, errors.New("sphio: empty path mask")
	}
	return &OutputFile{mask: mask}, nil
}

// Next returns the path of the upcoming dump and advances the index.
func (o *OutputFile) Next(time float64) string {
	path := o.mask
	path = strings.Replace(path, "%d", fmt.Sprintf("%04d", o.dumpIdx), 1)
	path = strings.Replace(path, "%t", strconv.FormatFloat(time, 'f', -1, 64), 1)
	o.dumpIdx++
	return path
}

// DumpIdx returns the index the next call to Next will use.
func (o *OutputFile) DumpIdx() int { return o.dumpIdx }

// HasWildcard reports whether the mask substitutes anything; without
// wildcards every dump overwrites the same static path.
func (o *OutputFile) HasWildcard() bool {
	return strings.Contains(o.mask, "%d") || strings.Contains(o.mask, "%t")
}

// digitRuns returns the start and end of every maximal digit run in s.
func digitRuns(s string) [][2]int {
	var runs [][2]int
	start := -1
	for i := 0; i <= len(s); i++ {
		digit := i < len(s) && s[i] >= '0' && s[i] <= '9'
		if digit && start < 0 {
			start = i
		} else if !digit && start >= 0 {
			runs = append(runs, [2]int{start, i})
			start = -1
		}
	}
	return runs
}

// GetDumpIdx recovers the dump index from a concrete path by locating
// the unique 4-digit run in its base name. Digit runs in directory
// components do not count.
func GetDumpIdx(path string) (int, error) {
	base := filepath.Base(path)
	found := -1
	for _, run := range digitRuns(base) {
		if run[1]-run[0] != 4 {
			continue
		}
		if found >= 0 {
			return 0, fmt.Errorf("sphio: path %q has multiple 4-digit runs", path)
		}
		idx, err := strconv.Atoi(base[run[0]:run[1]])
		if err != nil {
			return 0, err
		}
		found = idx
	}
	if found < 0 {
		return 0, fmt.Errorf("sphio: path %q has no 4-digit dump index", path)
	}
	return found, nil
}

// MaskFromPath reconstructs an OutputFile from a concrete dump path,
// replacing the 4-digit index in its base name with %d and resuming from
// that index.
func MaskFromPath(path string) (*OutputFile, error) {
	idx, err := GetDumpIdx(path)
	if err != nil {
		return nil, err
	}
	dir, base := filepath.Split(path)
	mask := dir + strings.Replace(base, fmt.Sprintf("%04d", idx), "%d", 1)
	return &OutputFile{mask: mask, dumpIdx: idx}, nil
}
