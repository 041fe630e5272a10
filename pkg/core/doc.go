// Package core implements the dataset version-control engine.
//
// A Dataset tracks immutable snapshots of structured dataset metadata:
// named segments of data samples, optionally multiplexed across sensors
// (fusion segments). Clients mutate a Draft (the working snapshot),
// then commit it into an append-only commit graph. Branches and tags
// point into the graph; diff and three-way merge operate on committed
// snapshots.
//
// Commit creation is the serialization point: a committed snapshot is
// permanently read-only and safe to share across concurrent readers. A
// draft has a single logical owner and provides no internal locking.
package core
