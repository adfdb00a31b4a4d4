package main

import (
	"errors"
	"fmt"

	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/app/repository"
	"github.com/ikkim/memolite-backend/internal/db"
	"github.com/ikkim/memolite-backend/pkg/util"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var adminPassword string

var adminCmd = &cobra.Command{
	Use:   "admin <username>",
	Short: "Create an admin account or promote an existing user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, created, err := ensureAdmin(repository.NewUserRepository(db.GetDB()), args[0], adminPassword)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "Admin %q created (id=%d)\n", user.Username, user.ID)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "User %q is now an admin (id=%d)\n", user.Username, user.ID)
		}
		return nil
	},
}

func init() {
	adminCmd.Flags().StringVarP(&adminPassword, "password", "p", "", "password for a new account (min 6 characters)")
	rootCmd.AddCommand(adminCmd)
}

// ensureAdmin promotes username to ADMIN, creating the account when it does not exist.
// A password is only required for a new account; an existing password is left unchanged.
func ensureAdmin(userRepo repository.UserRepository, username, password string) (*model.User, bool, error) {
	user, err := userRepo.FindByUsername(username)
	if err == nil {
		if user.Role != model.RoleAdmin {
			user.Role = model.RoleAdmin
			if err := userRepo.Update(user); err != nil {
				return nil, false, fmt.Errorf("failed to promote user: %w", err)
			}
		}
		return user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	if len(password) < 6 {
		return nil, false, errors.New("--password of at least 6 characters is required for a new account")
	}
	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}

	user = &model.User{
		Username:     username,
		Nickname:     username,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := userRepo.Create(user); err != nil {
		return nil, false, fmt.Errorf("failed to create admin: %w", err)
	}
	return user, true, nil
}
