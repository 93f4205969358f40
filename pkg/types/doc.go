// Package types defines the tile, row, row list and shared-model entities,
// the tile content contracts, the transfer package shapes, the document
// store contract and the standard errors of tiledoc.
//
// Entities here are plain data with small structural helpers. All
// invariant-preserving mutation goes through internal/document.
package types
