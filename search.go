package matasano

import "golang.org/x/sync/errgroup"

// options configures the attacks.  Not every attack reads every field.
type options struct {
	workers   int
	filler    byte
	prefixLen int
	hasPrefix bool
}

// Option tunes an attack.
type Option func(*options)

// WithWorkers sets how many oracle queries of one 256-way search may run at
// once.  The oracle must be safe for concurrent use when n > 1.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithFiller sets the byte used to pad attacker input.
func WithFiller(b byte) Option {
	return func(o *options) {
		o.filler = b
	}
}

// WithPrefixLength tells the ECB attack how many bytes the oracle puts in
// front of the attacker's input, skipping detection.  Use 0 for oracles
// without a prefix.
func WithPrefixLength(n int) Option {
	return func(o *options) {
		o.prefixLen = n
		o.hasPrefix = true
	}
}

func newOptions(opts []Option) *options {
	o := &options{workers: 1, filler: 'A'}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// searchBytes calls try for every byte value, at most workers at a time, and
// returns the results indexed by byte value.  Every goroutine writes only its
// own slot, and all of them have finished when searchBytes returns.
func searchBytes[T any](workers int, try func(b byte) (T, error)) ([256]T, error) {
	var res [256]T
	var g errgroup.Group
	g.SetLimit(workers)

	for i := 0; i < 256; i++ {
		b := byte(i)
		g.Go(func() error {
			v, err := try(b)
			if err != nil {
				return err
			}
			res[b] = v
			return nil
		})
	}

	err := g.Wait()
	return res, err
}
