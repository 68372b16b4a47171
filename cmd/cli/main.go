package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/retailops/shiftbalance/internal/config"
	"github.com/retailops/shiftbalance/pkg/core/model"
	"github.com/retailops/shiftbalance/pkg/core/resolver"
	"github.com/retailops/shiftbalance/pkg/core/services"
	"github.com/retailops/shiftbalance/pkg/core/snapshot"
	"github.com/retailops/shiftbalance/pkg/db"
	"github.com/retailops/shiftbalance/pkg/notify"
	"github.com/retailops/shiftbalance/pkg/postgres"
	"github.com/retailops/shiftbalance/pkg/seed"
	"github.com/retailops/shiftbalance/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg       *config.Config
	runtime   *config.Runtime
	database  db.Database
	notifier  resolver.Notifier
	snapshots *snapshot.Manager
	logger    *zap.Logger
	ctx       context.Context
}

var (
	env     string
	verbose bool
	app     *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shiftbalance",
		Short: "Shift conflict detection and workload balancing for retail stores",
		Long:  `A CLI tool for detecting scheduling conflicts, balancing workload across employees and stores, and applying or rolling back the resulting changes.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug output on the console")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(detectCmd())
	rootCmd.AddCommand(balanceCmd())
	rootCmd.AddCommand(applyCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(snapshotsCmd())
	rootCmd.AddCommand(rollbackCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(interactiveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, database, notifier and snapshot manager
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.logger, err = logging.InitLogger(env, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	app.logger.Info("Loading configuration")
	app.cfg, err = config.LoadWithEnv(env)
	if err != nil {
		app.logger.Warn("No config file found, using defaults", zap.Error(err))
		app.cfg = config.Default()
	}

	app.runtime, err = config.LoadRuntime()
	if err != nil {
		return fmt.Errorf("failed to load runtime config: %w", err)
	}

	if app.runtime.Database.DSN != "" {
		app.logger.Info("Connecting to database")
		pg, err := postgres.NewDB(app.ctx, app.runtime.Database.DSN)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pg.RunMigrations(app.ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		app.database = pg
		app.logger.Info("Database initialized successfully")
	} else {
		app.logger.Warn("SHIFTBALANCE_DATABASE_DSN not set - using in-memory storage, data will not persist")
		app.database = db.NewMemory()
	}

	if app.runtime.SMTPConfigured() {
		mailer, err := notify.NewMailer(notify.SMTPConfig{
			Host:             app.runtime.SMTP.Host,
			Port:             app.runtime.SMTP.Port,
			Username:         app.runtime.SMTP.Username,
			Password:         app.runtime.SMTP.Password,
			From:             app.runtime.SMTP.From,
			ManagerAddresses: app.cfg.ManagerEmails,
			DefaultAddress:   app.cfg.DefaultManagerEmail,
		}, app.logger)
		if err != nil {
			return fmt.Errorf("failed to create mail notifier: %w", err)
		}
		app.notifier = mailer
		app.logger.Info("SMTP notifier initialized")
	} else {
		app.notifier = notify.NewLogNotifier(app.logger)
		app.logger.Info("SMTP not configured - manager notifications go to the log")
	}

	app.snapshots = snapshot.NewManager(app.cfg.SnapshotCapacity)

	return nil
}

func detectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Detect scheduling conflicts in the current shift assignment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ScanConflicts(app.ctx, app.database, app.cfg, app.logger)
			if err != nil {
				return err
			}

			fmt.Printf("\nScanned %d shifts across %d stores (%d employees)\n\n",
				result.ShiftCount, result.StoreCount, result.EmployeeCount)

			if len(result.Conflicts) == 0 {
				fmt.Println("✓ No conflicts detected")
				return nil
			}

			fmt.Printf("Found %d conflicts:\n\n", len(result.Conflicts))
			for _, c := range result.Conflicts {
				fmt.Printf("  [%-8s] %-15s %s\n", c.Severity, c.Type, c.Description)
				for _, strategy := range c.Strategies {
					fmt.Printf("             ↳ %s (confidence %d%%)\n", strategy.Description, strategy.Confidence)
				}
			}
			fmt.Println()

			return nil
		},
	}
}

func balanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Compute workload metrics and balancing suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			storeFilter, _ := cmd.Flags().GetString("store")

			result, err := services.BalanceWorkload(app.ctx, app.database, app.cfg, app.logger, storeFilter)
			if err != nil {
				return err
			}

			fmt.Printf("\nEquity score: %.1f/100 (%s), potential %.1f\n\n",
				result.Metrics.EquityScore, result.Metrics.Rating, result.Metrics.PotentialScore)

			fmt.Printf("Employee loads:\n")
			for _, load := range result.Metrics.EmployeeLoads {
				fmt.Printf("  %-10s %6.1fh of %5.1fh  (%+.0f%%)\n",
					load.EmployeeID, load.TotalHours, load.Ceiling, load.DeviationPercent)
			}
			fmt.Println()

			if len(result.Suggestions) == 0 {
				fmt.Println("✓ Workload is balanced - no suggestions")
				return nil
			}

			fmt.Printf("Suggestions (%d):\n\n", len(result.Suggestions))
			for i, sug := range result.Suggestions {
				auto := ""
				if sug.AutoApplicable {
					auto = " [auto]"
				}
				fmt.Printf("  %2d. (%-6s) %s%s\n", i+1, sug.Priority, sug.Proposed.Description, auto)
			}
			fmt.Println("\nApply one with: shiftbalance apply <number>, or all auto-applicable with: shiftbalance apply auto")

			return nil
		},
	}

	cmd.Flags().String("store", "", "Restrict balancing to one store id")

	return cmd
}

func applyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <suggestion-number|auto>",
		Short: "Apply a balancing suggestion from the current balance run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			storeFilter, _ := cmd.Flags().GetString("store")

			balance, err := services.BalanceWorkload(app.ctx, app.database, app.cfg, app.logger, storeFilter)
			if err != nil {
				return err
			}
			if len(balance.Suggestions) == 0 {
				fmt.Println("✓ Workload is balanced - nothing to apply")
				return nil
			}

			if args[0] == "auto" {
				return applyAuto(balance.Suggestions, dryRun)
			}

			index, err := strconv.Atoi(args[0])
			if err != nil || index < 1 || index > len(balance.Suggestions) {
				return fmt.Errorf("suggestion number must be between 1 and %d", len(balance.Suggestions))
			}

			sug := balance.Suggestions[index-1]
			sug.Approval = model.ApprovalApproved

			result, err := services.ApplySuggestion(app.ctx, app.database, app.snapshots, app.cfg, app.logger, &sug, dryRun)
			if err != nil {
				return err
			}

			printBalancingResult(result.Result, result.DryRun)
			printSnapshotHint(result.SnapshotID)

			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Validate and simulate without persisting changes")
	cmd.Flags().String("store", "", "Restrict balancing to one store id")

	return cmd
}

func applyAuto(suggestions []model.Suggestion, dryRun bool) error {
	var auto []*model.Suggestion
	for i := range suggestions {
		if suggestions[i].AutoApplicable {
			suggestions[i].Approval = model.ApprovalApproved
			auto = append(auto, &suggestions[i])
		}
	}
	if len(auto) == 0 {
		fmt.Println("No auto-applicable suggestions")
		return nil
	}

	result, err := services.ApplySuggestions(app.ctx, app.database, app.snapshots, app.cfg, app.logger, auto, dryRun)
	if err != nil {
		return err
	}

	mode := ""
	if result.DryRun {
		mode = " (dry run - not persisted)"
	}
	fmt.Printf("\nApplied %d of %d auto-applicable suggestions%s\n", result.Batch.Succeeded, len(auto), mode)
	fmt.Printf("Shifts modified: %d, hours moved: %.1f\n\n", result.Batch.TotalShiftsModified, result.Batch.TotalHoursMoved)
	for _, r := range result.Batch.Results {
		if r.Success {
			fmt.Printf("  ✓ %s\n", r.SuggestionID)
		} else {
			fmt.Printf("  ✗ %s: %s\n", r.SuggestionID, r.Errors[0])
		}
	}
	printSnapshotHint(result.SnapshotID)

	return nil
}

// printSnapshotHint explains how to undo the change. Snapshots are held in
// process memory, so the hint only applies within an interactive session.
func printSnapshotHint(snapshotID string) {
	if snapshotID == "" {
		return
	}
	fmt.Printf("Snapshot %s taken - roll back in this session with: rollback %s\n", snapshotID, snapshotID)
	fmt.Printf("(snapshots do not survive the process; use 'shiftbalance interactive' to apply and roll back together)\n\n")
}

func printBalancingResult(result *model.BalancingResult, dryRun bool) {
	if result.Success {
		if dryRun {
			fmt.Printf("\n✓ Suggestion would apply cleanly (dry run - not persisted)\n\n")
		} else {
			fmt.Printf("\n✓ Suggestion applied\n\n")
		}
		fmt.Printf("Shifts modified: %d, employees affected: %d, hours moved: %.1f\n",
			result.Summary.ShiftsModified, result.Summary.EmployeesAffected, result.Summary.HoursRedistributed)
	} else {
		fmt.Printf("\n✗ Suggestion failed:\n")
		for _, e := range result.Errors {
			fmt.Printf("  • %s\n", e)
		}
	}
	for _, w := range result.Warnings {
		fmt.Printf("  ⚠ %s\n", w)
	}
	fmt.Println()
}

func resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Detect conflicts and resolve them with their best strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			severity, _ := cmd.Flags().GetString("severity")
			ids, _ := cmd.Flags().GetStringSlice("id")

			result, err := services.ResolveConflicts(app.ctx, app.database, app.notifier, app.snapshots,
				app.cfg, app.logger, model.Severity(severity), ids)
			if err != nil {
				return err
			}

			fmt.Printf("\nDetected %d conflicts, selected %d for resolution\n\n", result.Detected, result.Selected)
			if result.Batch == nil {
				fmt.Println("Nothing to resolve")
				return nil
			}

			for _, r := range result.Batch.Results {
				if r.Success {
					fmt.Printf("  ✓ %s (%s, %d steps)\n", r.ConflictID, r.StrategyID, r.StepsApplied)
				} else {
					fmt.Printf("  ✗ %s: %s\n", r.ConflictID, r.Errors[0])
				}
				for _, w := range r.Warnings {
					fmt.Printf("    ⚠ %s\n", w)
				}
			}
			fmt.Printf("\nResolved %d, failed %d, estimated %d manager-minutes saved\n",
				result.Batch.Resolved, result.Batch.Failed, result.Batch.TotalMinutesSaved)
			printSnapshotHint(result.SnapshotID)

			return nil
		},
	}

	cmd.Flags().String("severity", "", "Only resolve conflicts at or above this severity (critical, high, medium, low)")
	cmd.Flags().StringSlice("id", nil, "Resolve only the given conflict ids")

	return cmd
}

func snapshotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots",
		Short: "List the shift-state snapshots taken this session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			history := app.snapshots.History()
			if len(history) == 0 {
				fmt.Println("\nNo snapshots in this session")
				return nil
			}

			fmt.Printf("\nSnapshots (newest first):\n\n")
			for _, snap := range history {
				fmt.Printf("  %s  %s  %d shifts  %s\n",
					snap.ID, snap.TakenAt.Format("15:04:05"), len(snap.Shifts), snap.Description)
			}
			fmt.Println()

			return nil
		},
	}
}

func rollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback [snapshot-id]",
		Short: "Restore shift state from a snapshot taken this session (defaults to the most recent)",
		Long: `Restore shift state from a snapshot. Snapshots are held in process memory
and do not survive between invocations: run apply/resolve and rollback inside
'shiftbalance interactive' to undo a change.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshotID := ""
			if len(args) > 0 {
				snapshotID = args[0]
			}

			op, err := services.Rollback(app.ctx, app.database, app.snapshots, app.logger, snapshotID)
			if err != nil {
				return err
			}

			if op.Success {
				fmt.Printf("\n✓ Rolled back to snapshot %s (%d shifts restored)\n\n", op.SnapshotID, len(op.RestoredShifts))
			} else {
				fmt.Printf("\n✗ Rollback failed:\n")
				for _, e := range op.Errors {
					fmt.Printf("  • %s\n", e)
				}
				fmt.Println()
			}

			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo dataset (3 stores, 10 employees, 2 weeks of shifts)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			baseDate, _ := cmd.Flags().GetString("base-date")

			result, err := seed.Seed(app.ctx, app.database, app.logger, baseDate)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Seeded %d stores, %d employees and %d shifts starting %s\n\n",
				result.Stores, result.Employees, result.Shifts, result.BaseDate)
			fmt.Println("Try: shiftbalance detect")

			return nil
		},
	}

	cmd.Flags().String("base-date", "", "Anchor Monday for the demo schedule (defaults to the upcoming Monday)")

	return cmd
}
