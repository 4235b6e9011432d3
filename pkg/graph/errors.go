package graph

import (
	"errors"
	"fmt"

	"github.com/casgraph/casgraph/pkg/identity"
)

// ErrDanglingEndpoint matches any *DanglingEndpointError via errors.Is.
var ErrDanglingEndpoint = errors.New("graph: edge references absent node")

// DanglingEndpointError reports an edge endpoint that is not present in
// the graph.
type DanglingEndpointError struct {
	Endpoint identity.Hash
}

func (e *DanglingEndpointError) Error() string {
	return fmt.Sprintf("graph: edge references absent node %s", e.Endpoint)
}

func (e *DanglingEndpointError) Is(target error) bool {
	return target == ErrDanglingEndpoint
}
