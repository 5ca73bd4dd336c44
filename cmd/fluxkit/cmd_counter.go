package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fluxkit/internal/counter"
	"fluxkit/pkg/flux"
)

// counterCmd runs the batch counter demo
var counterCmd = &cobra.Command{
	Use:   "counter [inc|dec ...]",
	Short: "Dispatch counter actions and print the observed state sequence",
	Long: `Creates a store over an integer state, dispatches the given actions in
order through a Dispatcher, and prints every state a subscriber observes,
starting with the replayed initial snapshot.

Example:
  fluxkit counter inc inc dec`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCounter,
}

func runCounter(cmd *cobra.Command, args []string) error {
	actions := make([]counter.Action, 0, len(args))
	for _, token := range args {
		a, err := counter.Parse(token)
		if err != nil {
			return err
		}
		actions = append(actions, a)
	}

	store := flux.NewStore(cfg.Counter.Initial, counter.Reduce)
	sub := store.Subscribe()
	defer sub.Cancel()

	// A memoized projection on top of the raw sequence: only flips when the
	// tracked parity dependency actually changes.
	parity := flux.NewListener[int, counter.Action, string]()
	parity.Update(flux.Params[int, counter.Action, string]{
		Label: "parity",
		Dependencies: []flux.DependencySelector[int]{
			flux.Dep(func(s int) int { return ((s % 2) + 2) % 2 }, flux.NotEqual[int]),
		},
		Output: flux.Out(func(s int) string {
			if s%2 == 0 {
				return "even"
			}
			return "odd"
		}, flux.NotEqual[string]),
	})
	parity.Listen(store)
	defer parity.Cancel()

	dispatcher := flux.NewDispatcher(store)
	for _, a := range actions {
		if err := dispatcher.Dispatch(a); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	for i := 0; i < len(actions)+1; i++ {
		u := <-sub.Updates()
		if u.Replay {
			fmt.Fprintf(out, "start  %d\n", u.State)
		} else {
			fmt.Fprintf(out, "%-6s %d\n", u.Action, u.State)
		}
	}

	// Let the listener drain its own subscription before reading the
	// memoized output.
	want := uint64(len(actions) + 1)
	deadline := time.Now().Add(time.Second)
	for parity.Processed() < want && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	fmt.Fprintf(out, "final  %d (%s)\n", store.State(), parity.Output())
	return nil
}
