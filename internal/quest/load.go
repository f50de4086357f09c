package quest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// LoadResult is what LoadDir found.
type LoadResult struct {
	Quests    []Definition
	FileCount int
}

// ErrNoQuests is returned when a directory holds CUE files but no quests.
var ErrNoQuests = errors.New("no quests found")

// LoadDir compiles every quest in the CUE package rooted at dir. Compile
// errors of individual quests are collected; the remaining quests are still
// returned.
func LoadDir(dir string) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("quests directory: %w", err)}
	}
	if !info.IsDir() {
		return nil, []error{fmt.Errorf("quests directory: %s is not a directory", dir)}
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("scanning %s: %w", dir, err)}
	}
	if len(files) == 0 {
		return nil, []error{fmt.Errorf("no CUE files found in %s", dir)}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{fmt.Errorf("no CUE instances loaded from %s", dir)}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{fmt.Errorf("loading CUE files: %w", inst.Err)}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	quests, errs := Extract(value)
	return &LoadResult{Quests: quests, FileCount: len(files)}, errs
}

// CompileString compiles quests from CUE source.
func CompileString(src string) ([]Definition, []error) {
	value := cuecontext.New().CompileString(src)
	if err := value.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}
	return Extract(value)
}

// Extract compiles every field of the top-level `quest` struct.
func Extract(value cue.Value) ([]Definition, []error) {
	questsVal := value.LookupPath(cue.ParsePath("quest"))
	if !questsVal.Exists() {
		return nil, []error{ErrNoQuests}
	}
	iter, err := questsVal.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var (
		quests []Definition
		errs   []error
		seen   = make(map[string]bool)
	)
	for iter.Next() {
		def, err := CompileQuest(iter.Value())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[def.ID] {
			errs = append(errs, &CompileError{Quest: def.ID, Field: "id", Message: "duplicate quest id", Pos: iter.Value().Pos()})
			continue
		}
		seen[def.ID] = true
		quests = append(quests, *def)
	}
	if len(quests) == 0 && len(errs) == 0 {
		errs = append(errs, ErrNoQuests)
	}
	return quests, errs
}

// FindCUEFiles walks dir and returns every .cue file.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
