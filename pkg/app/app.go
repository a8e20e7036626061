// Package app wires a set of long-running Services into a single
// run.Group: whichever service returns first (including the interrupt
// handler on SIGINT/SIGTERM) triggers cancellation of the rest.
package app

import (
	"context"

	"github.com/oklog/run"
)

// App supervises the lifecycle of every Service added to it.
type App struct {
	services []Service
	runner   *run.Group
}

// NewApp returns an empty App.
func NewApp() *App {
	return &App{
		services: make([]Service, 0),
		runner:   &run.Group{},
	}
}

// WithService registers a service to run; order of registration does not
// affect shutdown order, every actor races on the same context.
func (a *App) WithService(s Service) *App {
	a.services = append(a.services, s)
	return a
}

// Run starts every registered service and blocks until the first one
// returns, then cancels the rest and returns its error.
func (a *App) Run(ctx context.Context) error {
	for _, service := range a.services {
		a.runner.Add(actor(ctx, service))
	}

	return a.runner.Run()
}
