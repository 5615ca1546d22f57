package types

// FileID identifies a source unit within one analysis run.
type FileID uint32

// SymbolID is a stable fingerprint of a declared symbol.
type SymbolID uint64
