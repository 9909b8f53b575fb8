// Package civiltime converts fixture dates and kickoff times published as
// local civil time in a single source region into absolute UTC instants.
//
// Source pages print dates like "Saturday 14th September" without a year and
// kickoff times like "15:30" without an offset. The Resolver strips the
// weekday and ordinal suffix, applies a reference year, and interprets the
// result with the region's daylight-saving rules. Wall clock times that fall
// in a spring-forward gap or a fall-back overlap are rejected rather than
// guessed.
package civiltime
