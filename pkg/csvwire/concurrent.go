package csvwire

import (
	"context"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ParseStreams parses several named streams concurrently, one engine per
// stream, and returns the results keyed by name. The first failure
// cancels the remaining parses; each error is labeled with its stream
// name via Options.Source.
func ParseStreams(ctx context.Context, opts ReaderOptions, streams map[string]io.Reader) (map[string]*Result, error) {
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	results := make(map[string]*Result, len(streams))

	for name, r := range streams {
		name, r := name, r
		g.Go(func() error {
			o := opts
			if o.Source == "" {
				o.Source = name
			}
			res, err := ParseReader(ctx, r, o)
			if err != nil {
				return err
			}
			mu.Lock()
			results[name] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
