package storage

import (
	"fmt"
	"regexp"

	"github.com/pixil98/go-errors"
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// ValidatingSpec is implemented by every record type the store can hold.
type ValidatingSpec interface {
	Validate() error
}

// Asset is the on-disk envelope around a stored record.
type Asset[T ValidatingSpec] struct {
	Version    uint   `json:"version"`
	Identifier string `json:"id"`
	Spec       T      `json:"spec"`
}

func (a *Asset[T]) Id() string {
	return a.Identifier
}

func (a *Asset[T]) Validate() error {
	el := errors.NewErrorList()

	if a.Version == 0 {
		el.Add(fmt.Errorf("version must be set"))
	}

	if a.Identifier == "" {
		el.Add(fmt.Errorf("id must be set"))
	} else if !idPattern.MatchString(a.Identifier) {
		el.Add(fmt.Errorf("id must be alphanumeric"))
	}

	el.Add(a.Spec.Validate())

	return el.Err()
}
