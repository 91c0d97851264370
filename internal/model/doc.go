// Package model defines the core data types shared across manualmirror:
// crawl seeds, fetched pages, and run reports.
//
// The types in this package are plain data holders with small helper
// methods. They carry no I/O and no dependencies on the crawl machinery,
// which keeps them usable from every other package without import cycles.
package model
