package graph

import (
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var (
	// ErrNotFound: node absent, or present but owned by another user. The
	// two cases are deliberately indistinguishable to callers.
	ErrNotFound = errors.New("graph: node not found")

	// ErrDanglingReference: an edge endpoint does not exist. Never
	// swallowed on the write path.
	ErrDanglingReference = errors.New("graph: edge endpoint does not exist")

	// ErrStoreUnavailable: backend unreachable. Not retried here; retry
	// policy belongs to the caller.
	ErrStoreUnavailable = errors.New("graph: store unavailable")

	// ErrQuery: the backend rejected or failed a query for a reason other
	// than connectivity.
	ErrQuery = errors.New("graph: query failed")

	// ErrInvalidEdgeType: edge type outside the closed whitelist.
	ErrInvalidEdgeType = errors.New("graph: invalid edge type")
)

// classify wraps a driver error with the matching sentinel so callers can
// errors.Is against the taxonomy without importing the driver.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if neo4j.IsConnectivityError(err) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrQuery, err)
}
