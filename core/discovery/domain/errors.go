package domain

import "errors"

var (
	// ErrInvalidData covers malformed requests: bad page size, invalid
	// filter specification, unparsable location.
	ErrInvalidData = errors.New("invalid data provided for discovery operations")
	// ErrUnhandled covers unexpected collaborator failures (cache/store).
	ErrUnhandled = errors.New("unexpected error")
	// ErrIteratorStateCorrupt names a signed iterator token that fails
	// verification or decoding. Iterator state is kept in the cache and no
	// token is issued, so no code path in this package returns it.
	ErrIteratorStateCorrupt = errors.New("iterator state token is invalid or expired")
	// ErrSchemaValidation is returned at startup when the attribute
	// schema file fails validation (spec §6, §7). Fatal: the process
	// exits after logging the offending key/id.
	ErrSchemaValidation = errors.New("attribute schema validation failed")
)
