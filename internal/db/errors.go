package db

import "errors"

var (
	// ErrKeyNotFound is returned by Get for a missing key. Caches treat it as a miss.
	ErrKeyNotFound = errors.New("db: key not found")
	// ErrIndexNotFound is returned when dropping an index that does not exist.
	ErrIndexNotFound = errors.New("db: index not found")
	// ErrIndexExists is returned by CreateIndex when the name is taken.
	ErrIndexExists = errors.New("db: index already exists")
)

// Command names recorded in Error.Op.
const (
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpSearch      = "FT.SEARCH"
	OpHSet        = "HSET"
	OpGet         = "GET"
	OpSet         = "SET"
	OpIncrBy      = "INCRBY"
	OpExpire      = "EXPIRE"
)

// Error records which command failed and, when known, on which key.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Key + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
