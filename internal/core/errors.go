package core

import "errors"

var (
	// ErrImageDecode indicates input bytes were not a decodable image.
	ErrImageDecode = errors.New("image decode failed")

	// ErrStoreUnavailable indicates the vector store could not be reached
	// after bounded retries.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrQuery wraps failures of a nearest-neighbor query, including an
	// empty query text.
	ErrQuery = errors.New("query failed")

	// ErrUnsupportedType indicates a file extension no extractor or
	// converter handles.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrFileTooLarge indicates an upload over the configured size cap.
	ErrFileTooLarge = errors.New("file exceeds size limit")

	// ErrEmptyDocument indicates extraction produced no usable text.
	ErrEmptyDocument = errors.New("no content extracted")

	// ErrAlreadyIngested indicates chunks already exist for a source path.
	ErrAlreadyIngested = errors.New("document already ingested")

	// ErrChatTimeout indicates the upstream chat completion exceeded its
	// request deadline.
	ErrChatTimeout = errors.New("chat completion timed out")
)
