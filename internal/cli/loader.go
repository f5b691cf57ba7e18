package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/craftforge/internal/action"
	"github.com/roach88/craftforge/internal/compiler"
	"github.com/roach88/craftforge/internal/guide"
	"github.com/roach88/craftforge/internal/ident"
	"github.com/roach88/craftforge/internal/ir"
	"github.com/roach88/craftforge/internal/item"
)

// LoadError represents an error that occurred while loading an input file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants, shared by every command.
const (
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeScanError      = "E002" // Directory scan error
	ErrCodeNoFiles        = "E003" // No CUE files found
	ErrCodeNotFound       = "E005" // Path not found
	ErrCodeBuildFailed    = "E006" // CUE compile failed
	ErrCodeWriteFailed    = "E007" // File write error
	ErrCodeDecodeFailed   = "E008" // Guide or item file could not be parsed
	ErrCodeInvalidGuide   = "E009" // Guide failed validation
	ErrCodeInvalidItem    = "E010" // Item failed validation
	ErrCodeInvalidCatalog = "E011" // Catalog failed validation
	ErrCodeRunFailed      = "E012" // Guide run did not complete
)

// LoadCatalog compiles the CUE action catalog at path. For a directory
// every .cue file under it is compiled, in lexical order, and the actions
// are concatenated.
func LoadCatalog(path string) ([]action.CraftAction, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("catalog not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing catalog: %v", err)}
	}

	if !info.IsDir() {
		actions, err := compiler.CompileFile(path)
		if err != nil {
			return nil, convertCompileError(err, path)
		}
		return actions, nil
	}

	cueFiles, err := FindCUEFiles(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}
	}

	var actions []action.CraftAction
	for _, file := range cueFiles {
		compiled, err := compiler.CompileFile(file)
		if err != nil {
			return nil, convertCompileError(err, file)
		}
		actions = append(actions, compiled...)
	}
	return actions, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeBuildFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// LoadGuideFile reads a guide or share envelope in JSON or YAML. The guide
// is not validated.
func LoadGuideFile(path string) (guide.Decoded, error) {
	data, err := readInput(path)
	if err != nil {
		return guide.Decoded{}, err
	}
	dec, err := guide.Decode(data)
	if err != nil {
		return guide.Decoded{}, &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("%s: %v", path, err)}
	}
	return dec, nil
}

// LoadItemFile reads an item in JSON or YAML, validates it and gives it an
// id when it has none. JSON items go through item.Import and always get a
// fresh id.
func LoadItemFile(path string, ids ident.Generator) (item.Item, error) {
	data, err := readInput(path)
	if err != nil {
		return item.Item{}, err
	}

	if filepath.Ext(path) == ".json" {
		it, err := item.Import(data, ids)
		if err != nil {
			return item.Item{}, itemLoadError(path, err)
		}
		return it, nil
	}

	var it item.Item
	if err := yaml.Unmarshal(data, &it); err != nil {
		return item.Item{}, &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("%s: %v", path, err)}
	}
	if it.ID == "" {
		it.ID = ids.NewID()
	}
	if res := item.Validate(it); !res.IsValid {
		return item.Item{}, itemLoadError(path, ir.ValidationErrors(res.Errors))
	}
	return it, nil
}

func itemLoadError(path string, err error) *LoadError {
	var verrs ir.ValidationErrors
	if errors.As(err, &verrs) {
		return &LoadError{Code: ErrCodeInvalidItem, Message: fmt.Sprintf("%s: %v", path, verrs)}
	}
	return &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("%s: %v", path, err)}
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return data, nil
}

// loadErrorCode returns the code of a LoadError, or the generic code.
func loadErrorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ErrCodeGeneric
}
