package prompt

import "errors"

var (
	// ErrNotFound is returned for a missing id when strict not-found mode is on.
	ErrNotFound = errors.New("prompt: not found")

	// ErrInvalidImportFormat means the document lacks a version or a prompts array.
	ErrInvalidImportFormat = errors.New("prompt: invalid import format")

	// ErrImportRead means the import source could not be read.
	ErrImportRead = errors.New("prompt: import read failed")

	// ErrImportParse means the import source is not valid JSON.
	ErrImportParse = errors.New("prompt: import parse failed")
)
