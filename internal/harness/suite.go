package harness

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ScenarioOutcome is the result of one scenario file in a suite.
type ScenarioOutcome struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// SuiteResult summarizes a directory of scenarios.
type SuiteResult struct {
	Scenarios []ScenarioOutcome `json:"scenarios"`
	Total     int               `json:"total"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
}

// FindScenarios lists the .yaml and .yml files under dir, sorted. filter is
// an optional glob matched against the file name without extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// RunSuite loads and runs every scenario under dir.
//
// A scenario that fails to load or run counts as failed with the error
// recorded; the remaining scenarios still run.
func RunSuite(dir, filter string) (*SuiteResult, error) {
	paths, err := FindScenarios(dir, filter)
	if err != nil {
		return nil, err
	}

	suite := &SuiteResult{Scenarios: make([]ScenarioOutcome, 0, len(paths))}
	for _, path := range paths {
		suite.add(runScenarioFile(path))
	}
	return suite, nil
}

func (s *SuiteResult) add(o ScenarioOutcome) {
	s.Scenarios = append(s.Scenarios, o)
	s.Total++
	if o.Pass {
		s.Passed++
	} else {
		s.Failed++
	}
}

func runScenarioFile(path string) ScenarioOutcome {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	scenario, err := LoadScenario(path)
	if err != nil {
		return ScenarioOutcome{Name: name, Path: path, Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)}}
	}

	result, err := Run(scenario)
	if err != nil {
		return ScenarioOutcome{Name: scenario.Name, Path: path, Errors: []string{fmt.Sprintf("scenario execution failed: %v", err)}}
	}

	return ScenarioOutcome{Name: scenario.Name, Path: path, Pass: result.Pass, Errors: result.Errors}
}
