package importer

import "errors"

var (
	// ErrMalformedDocument marks a structural or content defect in the input
	// file. Not retryable; the document is routed to the failure marker.
	ErrMalformedDocument = errors.New("malformed document")
	// ErrReferenceWrite marks a uniqueness race while creating reference
	// rows. The document fails, the batch continues.
	ErrReferenceWrite = errors.New("reference data write failed")
	// ErrStoreWrite marks any other transactional failure.
	ErrStoreWrite = errors.New("store write failed")
)
