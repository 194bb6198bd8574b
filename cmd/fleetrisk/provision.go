package main

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ukydev/fleet-risk/internal/auth"
	"github.com/ukydev/fleet-risk/internal/db"
	"github.com/ukydev/fleet-risk/internal/models"
)

func newProvisionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Create the access groups and the bootstrap admin account",
		Long: `Creates or refreshes the default access groups. When ADMIN_USERNAME is set
an admin account is created unless it already exists; if ADMIN_PASSWORD is
empty a random password is generated and printed once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			database, closeDB, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			access := db.NewMongoAccessCollection(database)
			if err := access.EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("ensure access indexes: %w", err)
			}
			return provision(ctx, access, adminAccount{
				Username: a.cfg.AdminUsername,
				Email:    a.cfg.AdminEmail,
				Password: a.cfg.AdminPassword,
			}, cmd.OutOrStdout(), a.logger())
		},
	}
}

type adminAccount struct {
	Username string
	Email    string
	Password string
}

// provision upserts every default group and, when admin names a user,
// creates the admin account if it does not exist yet. Running it again
// changes nothing but the group timestamps.
func provision(ctx context.Context, access db.AccessCollection, admin adminAccount, out io.Writer, logger log.FieldLogger) error {
	for _, group := range models.DefaultGroups() {
		created, err := access.UpsertGroup(ctx, group)
		if err != nil {
			return fmt.Errorf("upsert group %s: %w", group.Name, err)
		}
		logger.WithFields(log.Fields{
			"group":       group.Name,
			"permissions": len(group.Permissions),
			"created":     created,
		}).Info("Provisioned access group")
	}

	if admin.Username == "" {
		logger.Info("ADMIN_USERNAME not set; skipping admin account")
		return nil
	}

	existing, err := access.FindUserByUsername(ctx, admin.Username)
	if err != nil {
		return fmt.Errorf("look up %s: %w", admin.Username, err)
	}
	if existing != nil {
		logger.WithField("username", admin.Username).Info("Admin account already exists")
		return nil
	}

	password, generated := admin.Password, false
	if password == "" {
		password, err = auth.GeneratePassword()
		if err != nil {
			return fmt.Errorf("generate admin password: %w", err)
		}
		generated = true
	}

	user, err := auth.NewBootstrapUser(admin.Username, admin.Email, password, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("admin account: %w", err)
	}
	created, err := access.EnsureUser(ctx, user)
	if err != nil {
		return fmt.Errorf("create admin %s: %w", admin.Username, err)
	}
	if !created {
		logger.WithField("username", admin.Username).Info("Admin account already exists")
		return nil
	}

	logger.WithField("username", admin.Username).Info("Created admin account")
	if generated {
		fmt.Fprintf(out, "Generated password for %s: %s\n", admin.Username, password)
	}
	return nil
}
