// Package query turns the current form state plus the triggering action into
// the parameters sent to the remote record source.
//
// Four transformers each own one concern and are folded in a fixed order by
// Pipeline: pagination seeds limit/page, then filtering, searching and sorting
// only add keys. Every transformer returns a new Query and returns its input
// unchanged when it has nothing to add, so an idle render produces a query that
// serialises identically to the previous one.
package query
