// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rules evaluates the visibility rules attached to page
// chunks. Rules are tried in order and the first whose predicates all
// hold decides the chunk's weight and whether it is shown.
package rules

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/bureau-foundation/courseware/lib/course"
	"github.com/bureau-foundation/courseware/lib/datespec"
	"github.com/bureau-foundation/courseware/lib/document"
)

// Outcome is the result of evaluating a rule list.
type Outcome struct {
	Weight float64
	Shown  bool
}

// Default is the outcome when no rule matches or a chunk has no rules.
var Default = Outcome{Weight: 0, Shown: true}

// RoleList is an optional role predicate. Nil means the predicate is
// absent; an empty non-nil list matches no role.
type RoleList []string

func (l RoleList) admits(role course.Role) bool {
	return l == nil || slices.Contains(l, string(role))
}

// Rule is one visibility rule. Date predicates hold datespec values as
// they appear in the document (nil when absent) and are resolved at
// evaluation time.
type Rule struct {
	IfHasRole    RoleList
	IfAfter      any
	IfBefore     any
	IfInFacility []string

	// Legacy spellings, checked after the fields above.
	Roles RoleList
	Start any
	End   any

	Weight float64
	Shown  bool

	// Location names the rule in diagnostics.
	Location string
}

// ParseRules reads a rule list from a document value. location
// prefixes the per-rule locations ("<location>, rule 1").
func ParseRules(value document.Value, location string) ([]Rule, error) {
	if value.IsNull() {
		return nil, nil
	}
	if !value.IsList() {
		return nil, fmt.Errorf("%s: rules must be a list", location)
	}

	rules := make([]Rule, 0, value.Len())
	for i, entry := range value.List() {
		ruleLocation := fmt.Sprintf("%s, rule %d", location, i+1)
		rule, err := parseRule(entry, ruleLocation)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func parseRule(entry document.Value, location string) (Rule, error) {
	if !entry.IsMap() {
		return Rule{}, fmt.Errorf("%s: rule must be a mapping", location)
	}
	rule := Rule{Shown: true, Location: location}
	var err error
	if rule.IfHasRole, err = roleList(entry, "if_has_role", location); err != nil {
		return Rule{}, err
	}
	if rule.Roles, err = roleList(entry, "roles", location); err != nil {
		return Rule{}, err
	}
	if rule.IfInFacility, err = facilities(entry, location); err != nil {
		return Rule{}, err
	}
	rule.IfAfter = entry.Field("if_after").Raw()
	rule.IfBefore = entry.Field("if_before").Raw()
	rule.Start = entry.Field("start").Raw()
	rule.End = entry.Field("end").Raw()

	weight, ok := entry.Get("weight")
	if !ok {
		return Rule{}, fmt.Errorf("%s: missing weight", location)
	}
	if rule.Weight, ok = weight.AsFloat(); !ok {
		return Rule{}, fmt.Errorf("%s: weight must be a number", location)
	}
	if shown, ok := entry.Get("shown"); ok {
		if rule.Shown, ok = shown.AsBool(); !ok {
			return Rule{}, fmt.Errorf("%s: shown must be a boolean", location)
		}
	}
	return rule, nil
}

func roleList(entry document.Value, field, location string) (RoleList, error) {
	value, ok := entry.Get(field)
	if !ok {
		return nil, nil
	}
	if !value.IsList() {
		return nil, fmt.Errorf("%s: %s must be a list of roles", location, field)
	}
	roles := RoleList{}
	for _, item := range value.List() {
		role, ok := item.AsString()
		if !ok {
			return nil, fmt.Errorf("%s: %s entries must be strings", location, field)
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// facilities accepts a single facility name or a list of names.
func facilities(entry document.Value, location string) ([]string, error) {
	value, ok := entry.Get("if_in_facility")
	if !ok {
		return nil, nil
	}
	if name, ok := value.AsString(); ok {
		return []string{name}, nil
	}
	if !value.IsList() {
		return nil, fmt.Errorf("%s: if_in_facility must be a facility name", location)
	}
	names := []string{}
	for _, item := range value.List() {
		name, ok := item.AsString()
		if !ok {
			return nil, fmt.Errorf("%s: if_in_facility entries must be strings", location)
		}
		names = append(names, name)
	}
	return names, nil
}

// Evaluate returns the outcome of the first rule matching viewer, or
// Default when none does. Datespec failures are returned.
func Evaluate(ctx context.Context, dates *datespec.Resolver, c *course.Course, rules []Rule, viewer course.Viewer) (Outcome, error) {
	for _, rule := range rules {
		matched, err := rule.matches(ctx, dates, c, viewer)
		if err != nil {
			return Outcome{}, err
		}
		if matched {
			return Outcome{Weight: rule.Weight, Shown: rule.Shown}, nil
		}
	}
	return Default, nil
}

func (r *Rule) matches(ctx context.Context, dates *datespec.Resolver, c *course.Course, viewer course.Viewer) (bool, error) {
	if !r.IfHasRole.admits(viewer.Role) {
		return false, nil
	}
	if ok, err := r.after(ctx, dates, c, r.IfAfter, viewer.Now); !ok || err != nil {
		return false, err
	}
	if ok, err := r.before(ctx, dates, c, r.IfBefore, viewer.Now); !ok || err != nil {
		return false, err
	}
	if r.IfInFacility != nil && !slices.ContainsFunc(r.IfInFacility, viewer.InFacility) {
		return false, nil
	}

	if !r.Roles.admits(viewer.Role) {
		return false, nil
	}
	if ok, err := r.after(ctx, dates, c, r.Start, viewer.Now); !ok || err != nil {
		return false, err
	}
	if ok, err := r.before(ctx, dates, c, r.End, viewer.Now); !ok || err != nil {
		return false, err
	}
	return true, nil
}

// after holds unless now is strictly before the bound.
func (r *Rule) after(ctx context.Context, dates *datespec.Resolver, c *course.Course, spec any, now time.Time) (bool, error) {
	if spec == nil {
		return true, nil
	}
	start, err := dates.Parse(ctx, c, spec, nil, r.Location)
	if err != nil {
		return false, fmt.Errorf("%s: %w", r.Location, err)
	}
	return !now.Before(start), nil
}

// before holds unless the bound is strictly before now, so a viewer
// at exactly the bound still matches.
func (r *Rule) before(ctx context.Context, dates *datespec.Resolver, c *course.Course, spec any, now time.Time) (bool, error) {
	if spec == nil {
		return true, nil
	}
	end, err := dates.Parse(ctx, c, spec, nil, r.Location)
	if err != nil {
		return false, fmt.Errorf("%s: %w", r.Location, err)
	}
	return !end.Before(now), nil
}

// ChunkOutcome evaluates the rules of a page chunk. A chunk without a
// rules field gets Default.
func ChunkOutcome(ctx context.Context, dates *datespec.Resolver, c *course.Course, chunk document.Value, viewer course.Viewer, location string) (Outcome, error) {
	value, ok := chunk.Get("rules")
	if !ok {
		return Default, nil
	}
	rules, err := ParseRules(value, location)
	if err != nil {
		return Outcome{}, err
	}
	return Evaluate(ctx, dates, c, rules, viewer)
}

// SortAndFilter orders items by descending weight, keeping the
// original order among equal weights, and drops items that are not
// shown. items is not modified.
func SortAndFilter[T any](items []T, outcome func(T) Outcome) []T {
	sorted := slices.Clone(items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return outcome(sorted[i]).Weight > outcome(sorted[j]).Weight
	})
	shown := sorted[:0]
	for _, item := range sorted {
		if outcome(item).Shown {
			shown = append(shown, item)
		}
	}
	return shown
}
