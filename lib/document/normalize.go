// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package document

// MainID is the identifier of the implicit chunk or group created when
// legacy single-content documents are normalized.
const MainID = "main"

// NormalizePage rewrites a page with a top-level "content" field into
// a single chunk "main" holding that content. Other documents are
// returned unchanged.
func NormalizePage(page Value) Value {
	content, ok := page.Get("content")
	if !ok {
		return page
	}
	chunk := map[string]any{"id": MainID, "content": content.raw}
	return page.Without("content").With("chunks", []any{chunk})
}

// NormalizeFlow rewrites the legacy shapes of a flow descriptor:
//
//   - A top-level "pages" list becomes a single group "main".
//   - When the "rules" block has no grade_identifier, both
//     grade_identifier and grade_aggregation_strategy are set on it
//     from the first grading rule that carries a non-null
//     grade_identifier, or to null if none does.
func NormalizeFlow(flow Value) Value {
	if pages, ok := flow.Get("pages"); ok {
		group := map[string]any{"id": MainID, "pages": pages.raw}
		flow = flow.Without("pages").With("groups", []any{group})
	}

	rules, ok := flow.Get("rules")
	if !ok || !rules.IsMap() || rules.Has("grade_identifier") {
		return flow
	}

	rules = rules.With("grade_identifier", nil).With("grade_aggregation_strategy", nil)
	for _, gradingRule := range rules.Field("grading").List() {
		identifier := gradingRule.Field("grade_identifier")
		if identifier.IsNull() {
			continue
		}
		rules = rules.
			With("grade_identifier", identifier.raw).
			With("grade_aggregation_strategy", gradingRule.Field("grade_aggregation_strategy").raw)
		break
	}
	return flow.With("rules", rules)
}
