package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"

	"github.com/matzehuels/cybergraph/pkg/analysis"
	"github.com/matzehuels/cybergraph/pkg/cache"
	cgerrors "github.com/matzehuels/cybergraph/pkg/errors"
	"github.com/matzehuels/cybergraph/pkg/graph"
	cgio "github.com/matzehuels/cybergraph/pkg/io"
)

// Classify wraps err with the error code of its sentinel cause so that the
// CLI and the server can report it uniformly. Errors that already carry a
// code, and nil, are returned unchanged.
func Classify(err error) error {
	if err == nil || cgerrors.GetCode(err) != "" {
		return err
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	code := cgerrors.ErrCodeInternal
	msg := "internal error"
	switch {
	case errors.Is(err, graph.ErrInvalidEntityID):
		code, msg = cgerrors.ErrCodeInvalidEntityID, "invalid entity"
	case errors.Is(err, graph.ErrInvalidAttribute):
		code, msg = cgerrors.ErrCodeInvalidInput, "invalid attribute"
	case errors.Is(err, graph.ErrUnknownEntity), errors.Is(err, analysis.ErrEntityNotFound):
		code, msg = cgerrors.ErrCodeEntityNotFound, "entity not found"
	case errors.Is(err, analysis.ErrNoPath):
		code, msg = cgerrors.ErrCodeNoPath, "no path"
	case errors.Is(err, graph.ErrMissingName), errors.Is(err, graph.ErrMissingSource),
		errors.Is(err, graph.ErrMissingTarget), errors.Is(err, cgio.ErrMissingSection),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF),
		errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		code, msg = cgerrors.ErrCodeInvalidDocument, "invalid graph document"
	case errors.Is(err, fs.ErrNotExist):
		code, msg = cgerrors.ErrCodeFileNotFound, "file not found"
	case errors.Is(err, cache.ErrUnavailable):
		code, msg = cgerrors.ErrCodeCacheUnavailable, "cache unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		code, msg = cgerrors.ErrCodeTimeout, "timed out"
	}
	return cgerrors.Wrap(code, err, "%s", msg)
}
