package item

import (
	"fmt"
	"strings"

	"github.com/roach88/craftforge/internal/ir"
)

// Item validation error codes (E200-E299)
const (
	ErrBaseTypeRequired      = "E200" // base type is required
	ErrTooManyPrefixes       = "E201" // prefix count above rarity limit
	ErrTooManySuffixes       = "E202" // suffix count above rarity limit
	ErrDuplicateModifierName = "E203" // two modifiers share a name
	ErrUnknownLinkTarget     = "E204" // socket links to a missing socket
	ErrAsymmetricLink        = "E205" // link not mirrored by target
	ErrInvalidRarity         = "E206" // rarity outside the closed set
	ErrInvalidItemLevel      = "E207" // item level below 1
	ErrInvalidModifierTier   = "E208" // modifier tier below 1
	ErrInvalidModifierType   = "E209" // modifier type outside the closed set
	ErrInvalidSocketColor    = "E210" // socket color outside the closed set
)

// Validate checks it against the item invariants and returns every finding.
// It never modifies it.
func Validate(it Item) ir.ValidationResult {
	return ir.NewValidationResult(validate(it))
}

func validate(it Item) []ir.ValidationError {
	var errs []ir.ValidationError

	if strings.TrimSpace(it.BaseType) == "" {
		errs = append(errs, ir.ValidationError{
			Field:   "baseType",
			Message: "base type is required",
			Code:    ErrBaseTypeRequired,
		})
	}

	if it.ItemLevel < 1 {
		errs = append(errs, ir.ValidationError{
			Field:   "itemLevel",
			Message: fmt.Sprintf("item level must be at least 1, got %d", it.ItemLevel),
			Code:    ErrInvalidItemLevel,
		})
	}

	limits, ok := LimitsFor(it.Rarity)
	if !ok {
		errs = append(errs, ir.ValidationError{
			Field:   "rarity",
			Message: fmt.Sprintf("unknown rarity %q", it.Rarity),
			Code:    ErrInvalidRarity,
		})
	} else {
		if n := it.CountModifiers(ModifierPrefix); n > limits.Prefixes {
			errs = append(errs, ir.ValidationError{
				Field:   "modifiers",
				Message: fmt.Sprintf("too many prefixes: %d (max %d for %s)", n, limits.Prefixes, it.Rarity),
				Code:    ErrTooManyPrefixes,
			})
		}
		if n := it.CountModifiers(ModifierSuffix); n > limits.Suffixes {
			errs = append(errs, ir.ValidationError{
				Field:   "modifiers",
				Message: fmt.Sprintf("too many suffixes: %d (max %d for %s)", n, limits.Suffixes, it.Rarity),
				Code:    ErrTooManySuffixes,
			})
		}
	}

	seen := make(map[string]bool, len(it.Modifiers))
	for i, m := range it.Modifiers {
		field := fmt.Sprintf("modifiers[%d]", i)
		if seen[m.Name] {
			errs = append(errs, ir.ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate modifier name %q", m.Name),
				Code:    ErrDuplicateModifierName,
			})
		}
		seen[m.Name] = true

		if m.Tier < 1 {
			errs = append(errs, ir.ValidationError{
				Field:   field + ".tier",
				Message: fmt.Sprintf("tier must be at least 1, got %d", m.Tier),
				Code:    ErrInvalidModifierTier,
			})
		}
		if !isModifierType(m.Type) {
			errs = append(errs, ir.ValidationError{
				Field:   field + ".type",
				Message: fmt.Sprintf("unknown modifier type %q", m.Type),
				Code:    ErrInvalidModifierType,
			})
		}
	}

	errs = append(errs, validateSockets(it.Sockets)...)
	return errs
}

func validateSockets(sockets []Socket) []ir.ValidationError {
	var errs []ir.ValidationError

	byID := make(map[string]Socket, len(sockets))
	for _, s := range sockets {
		byID[s.ID] = s
	}

	for i, s := range sockets {
		field := fmt.Sprintf("sockets[%d]", i)
		if !isSocketColor(s.Color) {
			errs = append(errs, ir.ValidationError{
				Field:   field + ".color",
				Message: fmt.Sprintf("unknown socket color %q", s.Color),
				Code:    ErrInvalidSocketColor,
			})
		}
		for _, link := range s.Links {
			target, ok := byID[link]
			if !ok {
				errs = append(errs, ir.ValidationError{
					Field:   field + ".links",
					Message: fmt.Sprintf("socket %s links to unknown socket %s", s.ID, link),
					Code:    ErrUnknownLinkTarget,
				})
				continue
			}
			if !containsString(target.Links, s.ID) {
				errs = append(errs, ir.ValidationError{
					Field:   field + ".links",
					Message: fmt.Sprintf("socket %s links to %s but %s does not link back", s.ID, link, link),
					Code:    ErrAsymmetricLink,
				})
			}
		}
	}
	return errs
}

func isModifierType(t ModifierType) bool {
	switch t {
	case ModifierPrefix, ModifierSuffix, ModifierImplicit, ModifierEnchant, ModifierCorrupted:
		return true
	}
	return false
}

func isSocketColor(c SocketColor) bool {
	switch c {
	case SocketRed, SocketGreen, SocketBlue, SocketWhite:
		return true
	}
	return false
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
