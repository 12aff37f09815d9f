package content

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-codex/pkg/interfaces"
)

// ErrUnknownType is returned for a content type outside the registry.
var ErrUnknownType = errors.New("content: unknown content type")

// NotFoundError reports a missing resource. It matches
// interfaces.ErrDocumentNotFound under errors.Is.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == interfaces.ErrDocumentNotFound
}
