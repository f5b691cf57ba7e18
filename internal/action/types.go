// Package action applies crafting actions to items.
//
// A CraftAction is declarative: preconditions, weighted outcomes and the
// item changes each outcome applies. An action may instead name a custom
// handler, a procedural Handler registered with the Executor under that name.
package action

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/roach88/craftforge/internal/condition"
	"github.com/roach88/craftforge/internal/ir"
)

// ChangeType discriminates ItemChange variants.
type ChangeType string

const (
	ChangeAddModifier    ChangeType = "addModifier"
	ChangeRemoveModifier ChangeType = "removeModifier"
	ChangeModifyProperty ChangeType = "modifyProperty"
	ChangeAddSocket      ChangeType = "addSocket"
	ChangeRemoveSocket   ChangeType = "removeSocket"
	ChangeLinkSockets    ChangeType = "linkSockets"
	ChangeReroll         ChangeType = "reroll"
	ChangeCorrupt        ChangeType = "corrupt"
	ChangeCustom         ChangeType = "custom"
)

// IsKnown reports whether t is one of the declared change types.
func (t ChangeType) IsKnown() bool {
	switch t {
	case ChangeAddModifier, ChangeRemoveModifier, ChangeModifyProperty,
		ChangeAddSocket, ChangeRemoveSocket, ChangeLinkSockets,
		ChangeReroll, ChangeCorrupt, ChangeCustom:
		return true
	}
	return false
}

// CraftAction is a named, preconditioned transformation of an item.
type CraftAction struct {
	ID            string                `json:"id" yaml:"id"`
	Name          string                `json:"name" yaml:"name"`
	Description   string                `json:"description,omitempty" yaml:"description,omitempty"`
	Category      string                `json:"category" yaml:"category"`
	Preconditions []condition.Condition `json:"preconditions" yaml:"preconditions"`
	Requirements  []Requirement         `json:"requirements,omitempty" yaml:"requirements,omitempty"`
	Outcomes      []Outcome             `json:"outcomes" yaml:"outcomes"`
	CustomHandler string                `json:"customHandler,omitempty" yaml:"customHandler,omitempty"`
	Tags          []string              `json:"tags,omitempty" yaml:"tags,omitempty"`
	IsEnabled     bool                  `json:"isEnabled" yaml:"isEnabled"`
}

// Requirement is informational cost metadata. The executor does not
// enforce it.
type Requirement struct {
	Type        string   `json:"type" yaml:"type"`
	Value       ir.Value `json:"value,omitzero" yaml:"value,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Outcome is one weighted result of an action.
type Outcome struct {
	Probability float64               `json:"probability" yaml:"probability"`
	Description string                `json:"description" yaml:"description"`
	Changes     []ItemChange          `json:"changes" yaml:"changes"`
	Conditions  []condition.Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// ItemChange is one declarative edit applied by an outcome. Which fields are
// read depends on Type.
type ItemChange struct {
	Type          ChangeType `json:"type" yaml:"type"`
	Target        string     `json:"target,omitempty" yaml:"target,omitempty"`
	Value         ir.Value   `json:"value,omitzero" yaml:"value,omitempty"`
	ModifierID    string     `json:"modifierId,omitempty" yaml:"modifierId,omitempty"`
	SocketID      string     `json:"socketId,omitempty" yaml:"socketId,omitempty"`
	CustomHandler string     `json:"customHandler,omitempty" yaml:"customHandler,omitempty"`
}

// craftActionFields mirrors CraftAction with an optional enabled flag, so a
// document that omits isEnabled decodes as enabled.
type craftActionFields struct {
	ID            string                `json:"id" yaml:"id"`
	Name          string                `json:"name" yaml:"name"`
	Description   string                `json:"description" yaml:"description"`
	Category      string                `json:"category" yaml:"category"`
	Preconditions []condition.Condition `json:"preconditions" yaml:"preconditions"`
	Requirements  []Requirement         `json:"requirements" yaml:"requirements"`
	Outcomes      []Outcome             `json:"outcomes" yaml:"outcomes"`
	CustomHandler string                `json:"customHandler" yaml:"customHandler"`
	Tags          []string              `json:"tags" yaml:"tags"`
	IsEnabled     *bool                 `json:"isEnabled" yaml:"isEnabled"`
}

func (f craftActionFields) action() CraftAction {
	enabled := true
	if f.IsEnabled != nil {
		enabled = *f.IsEnabled
	}
	return CraftAction{
		ID:            f.ID,
		Name:          f.Name,
		Description:   f.Description,
		Category:      f.Category,
		Preconditions: f.Preconditions,
		Requirements:  f.Requirements,
		Outcomes:      f.Outcomes,
		CustomHandler: f.CustomHandler,
		Tags:          f.Tags,
		IsEnabled:     enabled,
	}
}

// UnmarshalJSON decodes an action; a missing isEnabled means enabled.
func (a *CraftAction) UnmarshalJSON(data []byte) error {
	var f craftActionFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*a = f.action()
	return nil
}

// UnmarshalYAML decodes an action; a missing isEnabled means enabled.
func (a *CraftAction) UnmarshalYAML(node *yaml.Node) error {
	var f craftActionFields
	if err := node.Decode(&f); err != nil {
		return err
	}
	*a = f.action()
	return nil
}
