// Package optimistic applies a local state change before its remote write
// is confirmed and rolls it back when the write fails.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Mutation is one optimistic change. Apply and Revert must be inverses.
// Remote is the write being confirmed. A non-nil error from Guard rejects
// the mutation before anything is applied.
type Mutation struct {
	Name   string
	Guard  func() error
	Apply  func()
	Revert func()
	Remote func(ctx context.Context) error
}

// RemoteWriteError reports a remote step that failed after its local change
// was already visible. The local change has been reverted when it is returned.
type RemoteWriteError struct {
	Name string
	Err  error
}

func (e *RemoteWriteError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("remote write failed: %v", e.Err)
	}
	return fmt.Sprintf("remote write %s failed: %v", e.Name, e.Err)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }

var ErrIncomplete = errors.New("mutation needs apply, revert and remote steps")

// Do applies m, waits for the remote step and reverts on failure. The write
// is not retried.
func Do(ctx context.Context, m Mutation) error {
	if err := m.check(); err != nil {
		return err
	}
	m.Apply()
	return finish(ctx, m)
}

// Go applies m synchronously and runs the remote step in the background.
// The returned channel yields exactly one value, nil on success.
func Go(ctx context.Context, m Mutation) <-chan error {
	done := make(chan error, 1)
	if err := m.check(); err != nil {
		done <- err
		close(done)
		return done
	}
	m.Apply()
	go func() {
		defer close(done)
		done <- finish(ctx, m)
	}()
	return done
}

func (m Mutation) check() error {
	if m.Apply == nil || m.Revert == nil || m.Remote == nil {
		return ErrIncomplete
	}
	if m.Guard != nil {
		return m.Guard()
	}
	return nil
}

func finish(ctx context.Context, m Mutation) error {
	err := m.Remote(ctx)
	if err == nil {
		return nil
	}
	log.Printf("Optimistic: %s failed, reverting: %v", nameOr(m.Name), err)
	m.Revert()
	return &RemoteWriteError{Name: m.Name, Err: err}
}

func nameOr(name string) string {
	if name == "" {
		return "mutation"
	}
	return name
}
