// Package file provides a TOML file implementation of driven.ConfigStore.
//
// The file is ~/.folio/config.toml by default. Nested tables are flattened
// into dot-notation keys when loaded and expanded back into tables when
// saved, so a file written by hand and a file written by `folio settings set`
// look the same:
//
//	[embedding]
//	provider = "ollama"
//	model = "nomic-embed-text"
package file
