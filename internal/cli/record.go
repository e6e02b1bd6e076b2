package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smswithoutborders/reliability-store/internal/models"
)

// NewRecordCommand creates the command that records one reliability event.
func NewRecordCommand(opts *RootOptions) *cobra.Command {
	var (
		clientID string
		kind     string
		detail   string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record one reliability event",
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := opts.recorder.Record(cmd.Context(), clientID, models.Kind(kind), detail)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(event, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode event: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client", "", "gateway client identifier")
	cmd.Flags().StringVar(&kind, "kind", "", fmt.Sprintf("event kind, one of %v", models.Kinds()))
	cmd.Flags().StringVar(&detail, "detail", "", "free-form detail payload")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}
