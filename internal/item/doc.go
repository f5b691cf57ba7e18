// Package item models the entity being crafted.
//
// Items are values. Every mutator in this package takes an Item and returns
// a new Item; the argument is never modified and no slice or map is shared
// between the two in a way that a later mutation could observe. History
// snapshots and loop rollbacks rely on this.
//
// Structural invariants (affix limits per rarity, unique modifier names,
// symmetric socket links) are only checked by Validate. Mutators accept any
// input so intermediate states can be represented.
package item
