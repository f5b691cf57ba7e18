// Package ir provides the dynamic value representation shared by every
// craftforge package.
//
// Condition values, modifier value bags, property values, custom item data
// and execution variables all carry arbitrary shapes. Rather than relying on
// untyped interface values, they are modeled as a closed tagged union
// (Value) so comparisons, numeric casts and path resolution are total
// functions.
//
// This package imports nothing internal. All other internal packages may
// import ir; ir is the foundational layer.
//
// Key design constraints:
//   - The zero Value is "absent"; JSON null decodes to absent
//   - Values are immutable once constructed; constructors copy their inputs
//   - Object keys are iterated in RFC 8785 order (UTF-16 code units)
//   - Content fingerprints use canonical JSON and domain-separated SHA-256
package ir
