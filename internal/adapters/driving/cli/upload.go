package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driving"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file...]",
	Short: "Upload files to the knowledge base",
	Long: `Uploads files one at a time. A failed file does not stop the batch.
Validation findings are printed as warnings and never block an upload.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

var uploadCategory string

func init() {
	uploadCmd.Flags().StringVarP(&uploadCategory, "category", "c", domain.CategoryAll, "Category to file the documents under")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if uploadPipeline == nil {
		return errors.New("upload pipeline not configured")
	}
	if categoryService != nil && !categoryService.Known(cmd.Context(), uploadCategory) {
		return fmt.Errorf("unknown category %q: %w", uploadCategory, domain.ErrNotFound)
	}

	files := make([]driving.UploadFile, 0, len(args))
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, driving.UploadFile{Name: filepath.Base(path), Content: content})
	}

	result, err := uploadPipeline.Upload(cmd.Context(), files, uploadCategory, func(p float64) {
		cmd.Printf("\rUploading... %3.0f%%", p*100)
	})
	cmd.Println()
	if result == nil {
		return fmt.Errorf("upload failed: %w", explain(err))
	}

	for _, w := range result.Warnings {
		cmd.Println(warning("warning: " + w))
	}
	for i := range result.Uploaded {
		cmd.Printf("%s %s %s\n", success("uploaded"), result.Uploaded[i].Title, muted(result.Uploaded[i].ID))
	}
	for _, f := range result.Failed {
		cmd.Printf("%s %s: %v\n", failure("failed"), f.Name, explain(f.Err))
	}

	if err != nil {
		return fmt.Errorf("%d of %d files failed", len(result.Failed), len(files))
	}
	cmd.Printf("Uploaded %d files\n", len(result.Uploaded))
	return nil
}
