package main

import (
	"fmt"

	"github.com/ikkim/memolite-backend/internal/app/repository"
	"github.com/ikkim/memolite-backend/internal/app/service"
	"github.com/ikkim/memolite-backend/internal/db"
	"github.com/spf13/cobra"
)

var gcTagsCmd = &cobra.Command{
	Use:   "gc-tags",
	Short: "Delete tags that no memo references",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tagService := service.NewTagService(repository.NewTagRepository(db.GetDB()))
		deleted, err := tagService.PruneUnusedTags(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d unused tags\n", deleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(gcTagsCmd)
}
