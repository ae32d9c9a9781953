package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/chazu/csgtree/pkg/cache"
)

var (
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the geometry cache",
	}
	cacheInfoCmd = &cobra.Command{
		Use:   "info",
		Short: "Print where the cache lives and how much it holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := cache.Default().Stats()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dir:      %s\n", st.Dir)
			fmt.Fprintf(out, "backend:  %s\n", st.Backend)
			fmt.Fprintf(out, "persist:  %t\n", st.Persist)
			fmt.Fprintf(out, "entries:  %d (%d bytes)\n", st.DiskEntries, st.DiskBytes)

			// Counters cover this process only.
			n, err := cache.ReadCounts(prometheus.DefaultGatherer)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "hits:     %.0f (memory %.0f, disk %.0f)\n", n.Hits(), n.MemoryHits, n.DiskHits)
			fmt.Fprintf(out, "misses:   %.0f\n", n.Misses)
			fmt.Fprintf(out, "stores:   %.0f\n", n.Stores)
			fmt.Fprintf(out, "errors:   %.0f\n", n.StoreErrors)
			return nil
		},
	}
	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cache.Default().Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return nil
		},
	}
)
