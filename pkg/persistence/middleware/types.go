package middleware

import "github.com/frusal/deploy-my-schema/pkg/ports"

// Middleware allows wrapping a WorkspaceStore to add behavior.
type Middleware func(ports.WorkspaceStore) ports.WorkspaceStore

// Chain applies mws so that the first one is the outermost.
func Chain(store ports.WorkspaceStore, mws ...Middleware) ports.WorkspaceStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
