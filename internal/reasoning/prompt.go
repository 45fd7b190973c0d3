package reasoning

import "fmt"

// #region prompts

const systemPrompt = `You are the item-selection planner for an adaptive
leadership assessment. You receive the current belief state, the answered
item ids, a summary of the remaining item pool, and the validity signals.
Respond with a single JSON object and nothing else:
{"selected_ids": ["..."], "rationale": "..."}`

// buildPrompt renders the selection request and the ordered selection
// priorities for the collaborator.
func buildPrompt(payload string, req SelectionRequest) string {
	return fmt.Sprintf(`Select exactly %d item ids from the pool below for the next round.

Priorities, in order:
1. Target the dimension(s) with the highest uncertainty.
2. If the top archetype matches are close, prefer items that differentiate between them.
3. Include at least one re-test of a moderate-confidence, low-evidence dimension.
4. Avoid a batch that is all one item type.
5. If the validity signals suggest gaming, prefer forced-choice items; they are harder to fake.

Every selected id must come from pool_summary. Assessment state:

%s`, req.BatchSize, payload)
}

// #endregion prompts
