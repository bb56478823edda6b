package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Service is a long running component of the watch mode.
type Service interface {
	// Name identifies the service in errors and logs.
	Name() string

	// Run blocks until the context gets cancelled or the service fails.
	Run(context.Context) error
}

// Group runs a set of services side by side.
type Group []Service

// Execute runs every service of the group with a shared context and waits
// for all of them to return. The first failing service cancels the others.
// The errors of all failed services are returned together.
func (g Group) Execute(ctx context.Context) error {
	if len(g) == 0 {
		return nil
	}

	groupCtx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		errors error
	)

	for _, svc := range g {
		wg.Add(1)

		go func(svc Service) {
			defer wg.Done()

			if err := svc.Run(groupCtx); err != nil {
				mu.Lock()
				errors = multierror.Append(errors, fmt.Errorf("%s: %w", svc.Name(), err))
				mu.Unlock()

				cancelFn()
			}
		}(svc)
	}

	wg.Wait()

	return errors
}
