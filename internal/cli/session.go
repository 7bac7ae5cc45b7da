package cli

import (
	"errors"
	"fmt"

	"github.com/rshade/recordview/internal/config"
	"github.com/rshade/recordview/internal/gateway"
	"github.com/rshade/recordview/internal/query"
)

// ErrInvalidConfig wraps configuration validation failures.
var ErrInvalidConfig = errors.New("invalid configuration")

// session holds the gateway and transformer pipeline shared by one command run.
type session struct {
	cfg      *config.Config
	gateway  *gateway.Gateway
	pipeline *query.Pipeline
	sorter   *query.Sorter
}

// newSession validates cfg and builds the remote gateway and the transformer
// pipeline. sortArg ("field" or "field:dir") overrides view.initial_sort.
func newSession(cfg *config.Config, sortArg string) (*session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	src, err := gateway.NewHTTPSource(gateway.HTTPConfig{
		BaseURL:   cfg.Source.BaseURL,
		Timeout:   cfg.Source.Timeout,
		RateLimit: cfg.Source.RateLimit,
		Burst:     cfg.Source.Burst,
	})
	if err != nil {
		return nil, fmt.Errorf("creating records source: %w", err)
	}
	g, err := gateway.New(src)
	if err != nil {
		return nil, err
	}

	sorter, err := newSorter(cfg.View, sortArg)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:     cfg,
		gateway: g,
		pipeline: &query.Pipeline{
			Paginator: query.NewPaginator(cfg.View.MaxVisiblePages),
			Filter:    query.NewFilter(cfg.View.Filters...),
			Search:    query.NewSearch(cfg.View.SearchField),
			Sorter:    sorter,
		},
		sorter: sorter,
	}, nil
}

func newSorter(view config.ViewConfig, sortArg string) (*query.Sorter, error) {
	if sortArg == "" {
		sortArg = view.InitialSort
	}

	var opts []query.SorterOption
	if sortArg != "" {
		field, dir, err := query.ParseSort(sortArg)
		if err != nil {
			return nil, fmt.Errorf("invalid sort %q: %w", sortArg, err)
		}
		opts = append(opts, query.WithInitialSort(field, dir))
	}

	sorter, err := query.NewSorter(view.Columns, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid sort %q: %w", sortArg, err)
	}
	return sorter, nil
}
