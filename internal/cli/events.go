package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smswithoutborders/reliability-store/internal/models"
)

// filterFlags holds the shared filter flags of the events and count commands.
type filterFlags struct {
	clientID string
	kind     string
	since    string
	until    string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.clientID, "client", "", "filter by gateway client identifier")
	cmd.Flags().StringVar(&f.kind, "kind", "", "filter by event kind")
	cmd.Flags().StringVar(&f.since, "since", "", "filter events created at or after this RFC 3339 time")
	cmd.Flags().StringVar(&f.until, "until", "", "filter events created at or before this RFC 3339 time")
}

func (f *filterFlags) toFilter() (models.EventFilter, error) {
	filter := models.EventFilter{
		ClientID: f.clientID,
		Kind:     models.Kind(f.kind),
	}
	if f.since != "" {
		t, err := time.Parse(time.RFC3339, f.since)
		if err != nil {
			return models.EventFilter{}, fmt.Errorf("invalid --since value %q: %w", f.since, err)
		}
		filter.Since = t
	}
	if f.until != "" {
		t, err := time.Parse(time.RFC3339, f.until)
		if err != nil {
			return models.EventFilter{}, fmt.Errorf("invalid --until value %q: %w", f.until, err)
		}
		filter.Until = t
	}
	return filter, nil
}

// NewEventsCommand creates the command that lists recorded events.
func NewEventsCommand(opts *RootOptions) *cobra.Command {
	flags := &filterFlags{}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List recorded reliability events in insertion order",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.toFilter()
			if err != nil {
				return err
			}

			events, err := opts.recorder.Query(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(events, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode events: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// NewCountCommand creates the command that prints the number of matching events.
func NewCountCommand(opts *RootOptions) *cobra.Command {
	flags := &filterFlags{}

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count recorded reliability events",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.toFilter()
			if err != nil {
				return err
			}

			total, err := opts.recorder.Count(cmd.Context(), filter)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), total)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
