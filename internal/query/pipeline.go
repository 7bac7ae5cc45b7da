package query

// Transformer augments a query from one concern.
type Transformer func(q Query, s UIState, a Action) Query

// Chain applies transformers left to right.
type Chain []Transformer

// Apply folds q through every transformer.
func (c Chain) Apply(q Query, s UIState, a Action) Query {
	for _, t := range c {
		q = t(q, s, a)
	}
	return q
}

// Pipeline holds the four transformers and composes them in their fixed order:
// pagination, filtering, searching, sorting. Pagination must run first because the
// later transformers only add keys.
type Pipeline struct {
	Paginator *Paginator
	Filter    *Filter
	Search    *Search
	Sorter    *Sorter
}

// Chain returns the transformers in application order.
func (p *Pipeline) Chain() Chain {
	return Chain{p.Paginator.Apply, p.Filter.Apply, p.Search.Apply, p.Sorter.Apply}
}

// Build runs the chain from an empty query.
func (p *Pipeline) Build(s UIState, a Action) Query {
	return p.Chain().Apply(New(), s, a)
}
