// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package datespec resolves the date expressions course authors write
// in rules and flow descriptions.
//
// A datespec is a core expression followed by any number of
// postprocessor suffixes:
//
//	2026-03-01                  midnight in the content time zone
//	homework 3                  start of event (homework, 3)
//	end:exam                    end of event (exam, no ordinal)
//	homework 2 @ 9:00 - 1 day   09:00 on the day homework 2 starts, minus a day
//
// Suffixes are stripped from the right: "@ HH:MM" fixes the time of day
// in the content time zone, "+N unit" / "-N unit" shifts by weeks,
// days, hours or minutes. The suffix nearest the core expression is
// applied first.
//
// [Compile] turns text into a [Spec] without touching any store.
// [Resolver.Resolve] evaluates a Spec against a course's events; an
// event that does not exist resolves to the current time with a
// validation warning rather than an error.
package datespec
