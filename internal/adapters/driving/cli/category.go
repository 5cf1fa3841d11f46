package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage categories",
	Long:  `Categories partition the library. They can be added but not removed.`,
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	Args:  cobra.NoArgs,
	RunE:  runCategoryList,
}

var categoryAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryAdd,
}

var categoryChannel string

func init() {
	categoryAddCmd.Flags().StringVar(&categoryChannel, "channel", "", "External channel identifier")

	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryAddCmd)
	rootCmd.AddCommand(categoryCmd)
}

func runCategoryList(cmd *cobra.Command, _ []string) error {
	if categoryService == nil {
		return errors.New("category service not configured")
	}

	categories, err := categoryService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}

	cmd.Println(heading("Categories"))
	for i := range categories {
		line := idStyle.Render(categories[i].ID) + categories[i].Name
		if categories[i].ChannelID != "" {
			line += " " + muted(categories[i].ChannelID)
		}
		cmd.Println(line)
	}
	return nil
}

func runCategoryAdd(cmd *cobra.Command, args []string) error {
	if categoryService == nil {
		return errors.New("category service not configured")
	}

	category, err := categoryService.Add(cmd.Context(), args[0], categoryChannel)
	if err != nil {
		return fmt.Errorf("failed to add category: %w", err)
	}

	cmd.Printf("%s %s (%s)\n", success("Added category"), category.Name, category.ID)
	return nil
}
