// Package schedule drives month-by-month fixture collection for each team and
// merges the results into one bounded, time-ordered list.
package schedule
