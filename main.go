package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	gormLogger "gorm.io/gorm/logger"

	"booklend_backend/internals/configs"
	database "booklend_backend/internals/databases"
	notificationRepo "booklend_backend/internals/features/home/notifications/repository"
	notificationService "booklend_backend/internals/features/home/notifications/service"
	userModel "booklend_backend/internals/features/users/users/model"
	userRepo "booklend_backend/internals/features/users/users/repository"
	routes "booklend_backend/internals/route"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "booklend",
		Short:         "Peer-to-peer book lending service",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configs.LoadEnv()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every SQL statement")

	logLevel := func() gormLogger.LogLevel {
		if verbose {
			return gormLogger.Info
		}
		return gormLogger.Warn
	}

	root.AddCommand(serveCmd(logLevel), migrateCmd(logLevel), userCmd(logLevel))
	return root
}

func serveCmd(logLevel func() gormLogger.LogLevel) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the store and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.Load()
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is required")
			}

			db, err := database.Open(cfg.DB, logLevel())
			if err != nil {
				return err
			}
			defer func() {
				if err := database.Close(db); err != nil {
					log.Printf("[ERROR] close db: %v", err)
				}
			}()
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			dispatcher := notificationService.NewDispatcher(
				notificationService.NewSender(cfg.Mail),
				userRepo.NewUserRepository(db),
				notificationRepo.NewDeliveryRepository(db),
				cfg.NotifyWorkers,
			)

			app := routes.NewApp(cfg, db, dispatcher)

			errCh := make(chan error, 1)
			go func() {
				log.Printf("[INFO] Listening on :%s", cfg.Port)
				errCh <- app.Listen("0.0.0.0:" + cfg.Port)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return fmt.Errorf("server error: %w", err)
			case <-quit:
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.ShutdownWithContext(ctx); err != nil {
				log.Printf("[ERROR] shutdown: %v", err)
			}
			if err := dispatcher.Close(ctx); err != nil {
				log.Printf("[WARN] notifications still in flight at shutdown: %v", err)
			}
			return nil
		},
	}
}

func migrateCmd(logLevel func() gormLogger.LogLevel) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.Load()
			db, err := database.Open(cfg.DB, logLevel())
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return err
			}
			log.Println("[INFO] migration complete")
			return nil
		},
	}
}

// userCmd maintains directory entries for deployments where the identity
// provider does not share the users table.
func userCmd(logLevel func() gormLogger.LogLevel) *cobra.Command {
	var (
		id, name, email, phone string
	)

	user := &cobra.Command{
		Use:   "user",
		Short: "Manage the user directory",
	}

	upsert := &cobra.Command{
		Use:   "upsert",
		Short: "Insert or update a user's display data",
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := uuid.Parse(id)
			if err != nil {
				return fmt.Errorf("--id: %w", err)
			}

			cfg := configs.Load()
			db, err := database.Open(cfg.DB, logLevel())
			if err != nil {
				return err
			}
			defer database.Close(db)

			u := &userModel.UserModel{ID: uid, UserName: name, Email: email}
			if phone != "" {
				u.PhoneNumber = &phone
			}
			if err := userRepo.NewUserRepository(db).UpsertUser(cmd.Context(), u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s saved\n", u.ID)
			return nil
		},
	}
	upsert.Flags().StringVar(&id, "id", "", "user id (uuid)")
	upsert.Flags().StringVar(&name, "name", "", "display name")
	upsert.Flags().StringVar(&email, "email", "", "email address")
	upsert.Flags().StringVar(&phone, "phone", "", "phone number")
	_ = upsert.MarkFlagRequired("id")
	_ = upsert.MarkFlagRequired("name")
	_ = upsert.MarkFlagRequired("email")

	user.AddCommand(upsert)
	return user
}
