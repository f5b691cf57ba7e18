// Package store holds crafting guides in memory, keyed by guide id.
//
// Guides go in and come out as deep copies, so a caller can never edit a
// stored guide behind the manager's back. Listing is deterministic:
// ORDER BY createdAt ASC, id ASC.
package store
