package content

import "errors"

var (
	// ErrDocsDirNotFound indicates the default-locale docs directory does not exist.
	ErrDocsDirNotFound = errors.New("docs directory not found")

	// ErrDuplicateDocID indicates two files in one locale resolve to the same doc id.
	ErrDuplicateDocID = errors.New("duplicate doc id")

	// ErrInvalidFrontmatter indicates a document's YAML frontmatter could not be parsed.
	ErrInvalidFrontmatter = errors.New("invalid frontmatter")
)
