package storage

import (
	"context"
)

// EditLog is read access to one wiki's CheckUser change log.
type EditLog interface {
	// Close releases the connection.
	Close() error

	// EachEditIP calls fn with the recorded address of every change whose
	// timestamp lies strictly between start and end. Both bounds are
	// 14-digit MediaWiki timestamps and both are exclusive. The slice
	// passed to fn is only valid for the duration of the call.
	EachEditIP(ctx context.Context, start, end string, fn func(ip []byte)) error
}

// Opener opens the edit log of a wiki database.
type Opener interface {
	Open(ctx context.Context, dbname string) (EditLog, error)
}
