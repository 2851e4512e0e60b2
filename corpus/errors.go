package corpus

import "errors"

// Sentinel errors for the corpus package.
var (
	// ErrMaxFailures is returned when the max failure limit is reached.
	ErrMaxFailures = errors.New("corpus: max failures reached")

	// ErrMalformedCorpus is returned when a corpus file does not follow the case layout.
	ErrMalformedCorpus = errors.New("corpus: malformed corpus file")

	// ErrNoCases is returned when a directory holds no corpus cases.
	ErrNoCases = errors.New("corpus: no cases found")

	// ErrBadTree is returned when an expected tree uses a node the harness does not understand.
	ErrBadTree = errors.New("corpus: unsupported expected tree")
)
