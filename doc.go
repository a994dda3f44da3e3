// Package notefs is the core of a local-first markdown note workspace: a
// virtual tree of file and folder nodes kept in a flat id-keyed mapping,
// reconciled on startup against a read-only seed set of documents and
// persisted as a single versioned snapshot after every mutation.
//
// The root package holds the shared data model and the interfaces external
// collaborators implement. The workspace package owns all node state and
// mutations, snapshot handles durability and the seed merge, seed collects
// the startup documents, and server exposes the operations to a presentation
// layer over HTTP and WebSocket.
package notefs
