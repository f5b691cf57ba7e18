package condition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/diegoholiveira/jsonlogic/v3"

	"github.com/roach88/craftforge/internal/ir"
	"github.com/roach88/craftforge/internal/item"
)

// Built-in custom evaluator names.
const (
	EvalCorruptionCheck   = "corruption_check"
	EvalSocketCheck       = "socket_check"
	EvalModifierTierCheck = "modifier_tier_check"
	EvalJSONLogic         = "jsonlogic"
)

func builtinEvaluators() map[string]CustomEvaluator {
	return map[string]CustomEvaluator{
		EvalCorruptionCheck:   EvaluatorFunc(corruptionCheck),
		EvalSocketCheck:       EvaluatorFunc(socketCheck),
		EvalModifierTierCheck: EvaluatorFunc(modifierTierCheck),
		EvalJSONLogic:         EvaluatorFunc(jsonLogicCheck),
	}
}

// corruptionCheck holds when the corruption flag equals the condition value.
func corruptionCheck(c Condition, it item.Item, _ ir.Object) (bool, error) {
	return ir.LooseEqual(ir.Bool(it.IsCorrupted), c.Value), nil
}

// socketCheck holds when the item has at least value sockets.
func socketCheck(c Condition, it item.Item, _ ir.Object) (bool, error) {
	return float64(len(it.Sockets)) >= c.Value.ToNumber(), nil
}

// modifierTierCheck holds when the modifier named by the target has a tier of
// at least value. The target may carry a "modifier." prefix.
func modifierTierCheck(c Condition, it item.Item, _ ir.Object) (bool, error) {
	name := strings.TrimPrefix(c.Target, nsModifier+".")
	m, ok := it.ModifierByName(name)
	if !ok {
		return false, nil
	}
	return float64(m.Tier) >= c.Value.ToNumber(), nil
}

// jsonLogicCheck applies the JsonLogic rule held in the condition value to
// {"item": <item document>, "context": <ctx>} and reads the result as truthy.
func jsonLogicCheck(c Condition, it item.Item, ctx ir.Object) (bool, error) {
	if c.Value.IsAbsent() {
		return false, fmt.Errorf("jsonlogic: rule is required in value")
	}
	rule, err := json.Marshal(c.Value)
	if err != nil {
		return false, fmt.Errorf("jsonlogic: encode rule: %w", err)
	}

	doc, err := item.Document(it)
	if err != nil {
		return false, err
	}
	if ctx == nil {
		ctx = ir.Object{}
	}
	data, err := json.Marshal(ir.Object{"item": doc, "context": ir.FromObject(ctx)})
	if err != nil {
		return false, fmt.Errorf("jsonlogic: encode data: %w", err)
	}

	var out bytes.Buffer
	if err := jsonlogic.Apply(bytes.NewReader(rule), bytes.NewReader(data), &out); err != nil {
		return false, fmt.Errorf("jsonlogic: %w", err)
	}

	var result ir.Value
	if trimmed := bytes.TrimSpace(out.Bytes()); len(trimmed) > 0 {
		if err := json.Unmarshal(trimmed, &result); err != nil {
			return false, fmt.Errorf("jsonlogic: decode result: %w", err)
		}
	}
	// JsonLogic treats an empty array as false.
	if items, ok := result.Items(); ok {
		return len(items) > 0, nil
	}
	return result.Truthy(), nil
}
