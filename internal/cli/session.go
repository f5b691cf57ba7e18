package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/craftforge/internal/action"
	"github.com/roach88/craftforge/internal/compiler"
	"github.com/roach88/craftforge/internal/engine"
	"github.com/roach88/craftforge/internal/ident"
	"github.com/roach88/craftforge/internal/ir"
	"github.com/roach88/craftforge/internal/registry"
)

// CatalogError reports a --catalog that compiled but failed validation.
type CatalogError struct {
	Path   string
	Errors []ir.ValidationError
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Path, ir.ValidationErrors(e.Errors))
}

// session is the engine wiring one command invocation works against: a
// registry seeded with the built-ins plus the --catalog actions, and a
// manager over it.
type session struct {
	registry *registry.Registry
	manager  *engine.Manager
	ids      ident.Generator
	catalog  []action.CraftAction
}

func newSession(opts *RootOptions) (*session, error) {
	logger := opts.logger()
	ids := ident.Default

	reg := registry.New(
		registry.WithRand(opts.Config.Rand()),
		registry.WithIDGenerator(ids),
		registry.WithLogger(logger),
	)

	s := &session{registry: reg, ids: ids}
	if opts.Catalog != "" {
		actions, err := LoadCatalog(opts.Catalog)
		if err != nil {
			return nil, err
		}
		if errs := compiler.Validate(actions, compiler.KnownFrom(reg.Evaluator(), reg.Executor())); len(errs) > 0 {
			return nil, &CatalogError{Path: opts.Catalog, Errors: errs}
		}
		for _, a := range actions {
			if err := reg.RegisterAction(a); err != nil {
				return nil, &LoadError{Code: ErrCodeInvalidCatalog, Message: err.Error()}
			}
		}
		s.catalog = actions
		logger.Debug("catalog loaded", "path", opts.Catalog, "actions", len(actions))
	}

	s.manager = engine.NewManager(reg,
		engine.WithIDGenerator(ids),
		engine.WithMaxSteps(opts.Config.MaxSteps),
		engine.WithMaxIterations(opts.Config.MaxIterations),
		engine.WithLogger(logger),
	)
	return s, nil
}

// reportSessionError writes a session setup failure and maps it to an exit
// code. Catalog findings are listed one by one.
func reportSessionError(f *OutputFormatter, err error) error {
	var cerr *CatalogError
	if errors.As(err, &cerr) {
		if outErr := f.Invalid(ErrCodeInvalidCatalog, fmt.Sprintf("catalog %s is invalid", cerr.Path), cerr.Errors); outErr != nil {
			return outErr
		}
		return NewExitError(ExitFailure, "invalid catalog")
	}
	code := loadErrorCode(err)
	if outErr := f.Error(code, err.Error(), nil); outErr != nil {
		return outErr
	}
	if code == ErrCodeNotFound {
		return WrapExitError(ExitCommandError, "failed to load catalog", err)
	}
	return WrapExitError(ExitFailure, "failed to load catalog", err)
}
