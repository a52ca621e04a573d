// Package loader resolves and materializes container object graphs.
//
// The Cache is the shared authority mapping container names to loaded
// containers. The Resolver walks table rows to enumerate dependencies,
// crossing container boundaries through the cache and falling back to
// native classes for imports with no table row in their target. The Loader
// orchestrates a full load: decode, seed the dependency graph from every
// row, topologically sort, and materialize objects in order.
package loader
