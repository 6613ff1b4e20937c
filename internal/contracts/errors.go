package contracts

import (
	"errors"
	"fmt"
	"os"
)

// ErrMissingArtifact is matched by every *MissingArtifactError
var ErrMissingArtifact = errors.New("missing upstream artifact")

// MissingArtifactError is the fatal error raised when a stage starts without
// the file an earlier stage must produce.
type MissingArtifactError struct {
	Stage    string // stage that needed the file
	Path     string
	Producer string // stage that writes it
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("%s: required file %s not found (run the %q stage first)", e.Stage, e.Path, e.Producer)
}

// Unwrap lets errors.Is(err, ErrMissingArtifact) match
func (e *MissingArtifactError) Unwrap() error {
	return ErrMissingArtifact
}

// RequireArtifact returns a *MissingArtifactError when path does not exist
func RequireArtifact(stage, path, producer string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &MissingArtifactError{Stage: stage, Path: path, Producer: producer}
		}
		return fmt.Errorf("%s: stat %s: %w", stage, path, err)
	}
	return nil
}
