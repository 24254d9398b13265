package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	datasetTenant string
	datasetName   string
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Manage datasets",
	Long:  `Create, list and delete datasets. Each dataset has its own passage collection.`,
}

var datasetCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a dataset",
	Args:  cobra.NoArgs,
	RunE:  runDatasetCreate,
}

var datasetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored datasets",
	Args:  cobra.NoArgs,
	RunE:  runDatasetList,
}

var datasetDeleteCmd = &cobra.Command{
	Use:   "delete [dataset-id]",
	Short: "Delete a dataset and all its passages",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasetDelete,
}

func init() {
	datasetCreateCmd.Flags().StringVar(&datasetTenant, "tenant", "", "owning tenant id")
	datasetCreateCmd.Flags().StringVar(&datasetName, "name", "", "human-readable name")
	datasetCmd.AddCommand(datasetCreateCmd)
	datasetCmd.AddCommand(datasetListCmd)
	datasetCmd.AddCommand(datasetDeleteCmd)
	rootCmd.AddCommand(datasetCmd)
}

func runDatasetCreate(cmd *cobra.Command, _ []string) error {
	if datasetService == nil {
		return errors.New("dataset service not configured")
	}

	ds := datasetService.Create(datasetTenant, datasetName)
	cmd.Printf("Created dataset %s\n", ds.ID)
	cmd.Printf("  Collection: %s\n", ds.Collection())
	if ds.Name != "" {
		cmd.Printf("  Name: %s\n", ds.Name)
	}
	cmd.Println("Passages are stored on first ingestion.")
	return nil
}

func runDatasetList(cmd *cobra.Command, _ []string) error {
	if datasetService == nil {
		return errors.New("dataset service not configured")
	}

	infos, err := datasetService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list datasets: %w", err)
	}

	if len(infos) == 0 {
		cmd.Println("No datasets found.")
		return nil
	}

	cmd.Println("Datasets:")
	for _, info := range infos {
		id, _ := domain.DatasetIDFromCollection(info.Name)
		line := fmt.Sprintf("  %s  %d documents, %d passages", id, info.Documents, info.Passages)
		if info.Model != "" {
			line += " (" + info.Model + ")"
		}
		cmd.Println(line)
	}
	return nil
}

func runDatasetDelete(cmd *cobra.Command, args []string) error {
	if datasetService == nil {
		return errors.New("dataset service not configured")
	}

	if err := datasetService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}

	cmd.Printf("Deleted dataset %s\n", args[0])
	return nil
}
