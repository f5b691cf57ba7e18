// Package compiler turns CUE action catalogs into crafting actions.
//
// A catalog is a CUE file with a top-level "action" struct. Each field of
// that struct is one action; its label is the action id:
//
//	action: vaal_orb: {
//		name:     "Vaal Orb"
//		category: "currency"
//		preconditions: [{operator: "equals", target: "item.isCorrupted", value: false}]
//		outcomes: [{
//			probability: 1
//			description: "Corrupted"
//			changes: [{type: "corrupt"}]
//		}]
//	}
//
// Field names follow the JSON form of action.CraftAction. Compilation
// reports the first structural problem with its source position; Validate
// then reports every semantic problem of the compiled catalog at once.
package compiler
