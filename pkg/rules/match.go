package rules

import "fmt"

// evaluate runs a rule's full detection block against decoded event data:
// every named selection is matched independently, then combined by the
// block's "condition" string.
func evaluate(detection map[string]any, data map[string]any) (bool, error) {
	condition, _ := detection["condition"].(string)
	if condition == "" {
		return false, fmt.Errorf("rules: detection block has no condition")
	}

	results := make(map[string]bool, len(detection)-1)
	for name, sel := range detection {
		if name == "condition" {
			continue
		}
		ok, err := matchSelection(sel, data)
		if err != nil {
			return false, fmt.Errorf("rules: selection %q: %w", name, err)
		}
		results[name] = ok
	}

	return evalCondition(condition, results)
}
