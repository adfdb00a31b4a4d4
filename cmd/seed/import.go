package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/app/repository"
	"github.com/ikkim/memolite-backend/internal/app/service"
	"github.com/ikkim/memolite-backend/internal/db"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var importUser string

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import memos from an XLSX workbook",
	Long: `Import memos from the first sheet of an XLSX workbook. Columns are
content, visibility, pinned; the first row is a header and is skipped.
Tags are extracted from each memo's content.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Reading XLSX file: %s\n", args[0])

		if !confirm(cmd, fmt.Sprintf("Import memos as %q?", importUser)) {
			fmt.Fprintln(out, "Import cancelled.")
			return nil
		}

		result, err := importMemos(cmd.Context(), db.GetDB(), cfg.Memo.TagMatchMode == "strict", importUser, args[0])
		if err != nil {
			return err
		}

		fmt.Fprintln(out, "Import completed successfully!")
		fmt.Fprintf(out, "Imported: %d, skipped: %d\n", result.Imported, result.Skipped)
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  %s\n", e)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importUser, "user", "u", "", "username that will own the imported memos")
	importCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(importCmd)
}

func importMemos(ctx context.Context, gormDB *gorm.DB, strictTags bool, username, path string) (*service.ImportResult, error) {
	user, err := repository.NewUserRepository(gormDB).FindByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	memoRepo := repository.NewMemoRepository(gormDB, strictTags)
	memoService := service.NewMemoService(
		memoRepo,
		service.NewTagSynchronizer(repository.NewTagRepository(gormDB)),
		gormDB,
		service.WithStrictTagMatch(strictTags),
	)
	transfer := service.NewMemoTransferService(memoRepo, memoService)

	owner := model.AuthenticatedViewer(user.ID, user.Username, user.Role)
	return transfer.Import(ctx, owner, f)
}
