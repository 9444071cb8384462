package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/safar/pharmsync/internal/models"
	"github.com/safar/pharmsync/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the state document if it is missing or invalid",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, backend, st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer backend.Close()

		return seedAndReport(ctx, st, cmd.OutOrStdout())
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace the state with fresh demo data and sign everyone out",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, backend, st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer backend.Close()

		state, err := st.Reset(ctx)
		if err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		printCounts(cmd.OutOrStdout(), state)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd, resetCmd)
}

func seedAndReport(ctx context.Context, st *store.Store, w io.Writer) error {
	state, err := st.ReadState(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	printCounts(w, state)
	return nil
}

func printCounts(w io.Writer, state *models.AppState) {
	fmt.Fprintf(w, "medicines:          %d\n", len(state.Medicines))
	fmt.Fprintf(w, "suppliers:          %d\n", len(state.Suppliers))
	fmt.Fprintf(w, "pharmacies:         %d\n", len(state.Pharmacies))
	fmt.Fprintf(w, "supplier medicines: %d\n", len(state.SupplierMedicines))
	fmt.Fprintf(w, "orders:             %d\n", len(state.Orders))
	fmt.Fprintf(w, "ratings:            %d\n", len(state.Ratings))
	fmt.Fprintf(w, "notifications:      %d\n", len(state.Notifications))
}
