package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/dslashgen/internal/store"
	"github.com/roach88/dslashgen/internal/variant"
)

// LoadError represents a problem loading the variant set.
type LoadError struct {
	Code    string
	Message string
	Field   string // offending field, if known
	Pos     string // file:line:col, if known
}

func (e *LoadError) Error() string {
	if e.Pos != "" {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadVariants returns the variant set from path, or the embedded set
// when path is empty.
func LoadVariants(path string) (*variant.Set, error) {
	if path == "" {
		set, err := variant.Default()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeVariants, Message: err.Error()}
		}
		return set, nil
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("variant file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing variant file: %v", err)}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a file: %s", path)}
	}

	set, err := variant.LoadFile(path)
	if err != nil {
		return nil, loadError(err)
	}
	return set, nil
}

func loadError(err error) *LoadError {
	var ce *variant.CompileError
	if errors.As(err, &ce) {
		le := &LoadError{Code: ErrCodeVariants, Message: ce.Message, Field: ce.Field}
		if ce.Pos.IsValid() {
			le.Pos = fmt.Sprintf("%s:%d:%d", ce.Pos.Filename(), ce.Pos.Line(), ce.Pos.Column())
		}
		return le
	}
	return &LoadError{Code: ErrCodeVariants, Message: err.Error()}
}

// failLoad reports a variant set error and returns a command error.
func failLoad(f *OutputFormatter, err error) error {
	le := &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	errors.As(err, &le)

	var details map[string]string
	if le.Field != "" || le.Pos != "" {
		details = map[string]string{}
		if le.Field != "" {
			details["field"] = le.Field
		}
		if le.Pos != "" {
			details["position"] = le.Pos
		}
	}
	_ = f.Error(le.Code, le.Message, details)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", le.Code, le.Message), err)
}

// openLedger opens the ledger at path. An empty path means no ledger.
func openLedger(path string) (*store.Store, error) {
	if path == "" {
		return nil, nil
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	return st, nil
}
