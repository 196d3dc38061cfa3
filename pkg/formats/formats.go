// Package formats reads and writes the on-disk formats of compiled
// worlds.
//
// A world cache (.swc) stores the sampled grid and the meshes compiled
// from it so a level can be reopened without re-running the mesher.
package formats
