package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driving"
	"github.com/custodia-labs/kbsync/internal/core/services"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Manage knowledge base documents",
	Long:    `List or delete the documents ingested by the knowledge backend.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Long: `Loads the document list from the backend and prints it.

Filtering, search and ordering are applied locally.`,
	Args: cobra.NoArgs,
	RunE: runDocumentsList,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

// Flags for the list command.
var (
	listCategory string
	listSearch   string
	listSort     string
	listRefresh  bool
)

func init() {
	documentsListCmd.Flags().StringVarP(&listCategory, "category", "c", domain.CategoryAll, "Category to show")
	documentsListCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Only show documents whose title or content contains this text")
	documentsListCmd.Flags().StringVar(&listSort, "sort", string(domain.SortNewest), "Order: newest, oldest, a-z, z-a")
	documentsListCmd.Flags().BoolVar(&listRefresh, "refresh", false, "Reload even if the list was loaded recently")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if synchronizer == nil {
		return errors.New("document synchronizer not configured")
	}

	outcome, err := synchronizer.LoadDocuments(cmd.Context(), listRefresh)
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", explain(err))
	}
	if outcome != driving.LoadApplied {
		cmd.Println(muted("Load " + outcome.String() + ", showing cached documents"))
	}

	items := services.View(synchronizer.Items(), domain.ViewOptions{
		Category: listCategory,
		Search:   listSearch,
		Order:    domain.ParseSortOrder(listSort),
	})

	if len(items) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	cmd.Println(heading("Documents"))
	cmd.Println()
	for i := range items {
		printItem(cmd, &items[i])
	}
	cmd.Println()
	cmd.Printf("Total: %d documents\n", len(items))
	return nil
}

func printItem(cmd *cobra.Command, item *domain.KnowledgeItem) {
	created := "-"
	if !item.CreatedAt.IsZero() {
		created = item.CreatedAt.Local().Format("2006-01-02 15:04")
	}
	cmd.Println(
		idStyle.Render(truncate(item.ID, 13)) +
			titleStyle.Render(truncate(item.Title, 35)) +
			columnStyle.Render(truncate(item.Category, 11)) +
			columnStyle.Render(string(item.Type)) +
			muted(created),
	)
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	if synchronizer == nil {
		return errors.New("document synchronizer not configured")
	}

	docID := args[0]
	if err := synchronizer.DeleteKnowledgeItem(cmd.Context(), docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", explain(err))
	}

	cmd.Println(success("Deleted document " + docID))
	return nil
}
