package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tmccall/roster-admin/internal/config"
	"github.com/tmccall/roster-admin/pkg/auth"
	"github.com/tmccall/roster-admin/pkg/core/batch"
	"github.com/tmccall/roster-admin/pkg/core/calendar"
	"github.com/tmccall/roster-admin/pkg/core/model"
	"github.com/tmccall/roster-admin/pkg/core/services"
	"github.com/tmccall/roster-admin/pkg/db"
	"github.com/tmccall/roster-admin/pkg/postgres"
	"github.com/tmccall/roster-admin/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg      *config.Config
	database db.Store
	checker  *auth.StaticChecker
	logger   *zap.Logger
	ctx      context.Context
}

var (
	env       string
	userID    string
	userRoles string
	app       *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Roster Admin CLI - Manage shift rosters, bids and swaps",
		Long:  `A CLI tool for managing staff rosters, shift bidding windows, and swap requests.`,
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
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "Acting user ID (required)")
	rootCmd.PersistentFlags().StringVar(&userRoles, "roles", "", "Comma-separated roles of the acting user")
	rootCmd.MarkPersistentFlagRequired("env")
	rootCmd.MarkPersistentFlagRequired("user")

	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(openBidsCmd())
	rootCmd.AddCommand(myBidsCmd())
	rootCmd.AddCommand(expressInterestCmd())
	rootCmd.AddCommand(withdrawBidCmd())
	rootCmd.AddCommand(approveBidCmd())
	rootCmd.AddCommand(rejectBidCmd())
	rootCmd.AddCommand(batchBidsCmd())
	rootCmd.AddCommand(requestSwapCmd())
	rootCmd.AddCommand(listSwapsCmd())
	rootCmd.AddCommand(approveSwapCmd())
	rootCmd.AddCommand(rejectSwapCmd())
	rootCmd.AddCommand(publishTemplateCmd())
	rootCmd.AddCommand(assignEmployeeCmd())
	rootCmd.AddCommand(editShiftCmd())
	rootCmd.AddCommand(markShiftCmd())
	rootCmd.AddCommand(lockRosterCmd())
	rootCmd.AddCommand(collapseRosterCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, permissions, and database
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	app.logger.Info("Loading configuration")
	app.cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	user := auth.CurrentUser{ID: userID}
	if userRoles != "" {
		user.Roles = strings.Split(userRoles, ",")
	}
	app.checker = auth.NewStaticChecker(user, app.cfg.Permissions)

	app.logger.Info("Connecting to database")
	connString, err := config.DatabaseURL()
	if err != nil {
		return err
	}
	database, err := postgres.NewDB(app.ctx, connString)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.RunMigrations(app.ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.database = database
	app.logger.Info("Database initialized successfully")

	return nil
}

// requirePermission gates a mutating command on the acting user's roles.
func requirePermission(featureKey string) error {
	if !app.checker.HasPermission(featureKey) {
		return fmt.Errorf("user %s does not have permission %s", userID, featureKey)
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return date.UTC(), nil
}

// Command definitions

func calendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar <day|3day|week|month> [anchor]",
		Short: "Show the roster calendar for a view anchored at a date (default today)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := calendar.ParseView(args[0])
			if err != nil {
				return err
			}

			anchor := time.Now().UTC()
			if len(args) > 1 {
				if anchor, err = parseDate(args[1]); err != nil {
					return err
				}
			}

			offset, _ := cmd.Flags().GetInt("navigate")
			step := 1
			if offset < 0 {
				step = -1
				offset = -offset
			}
			for i := 0; i < offset; i++ {
				if anchor, err = calendar.Navigate(view, anchor, step); err != nil {
					return err
				}
			}

			result, err := services.CalendarView(
				app.ctx,
				app.database,
				app.logger,
				view,
				anchor,
				app.cfg.WeekStartDay(),
				app.cfg.DayStartHour,
				app.cfg.DayEndHour,
			)
			if err != nil {
				return err
			}

			fmt.Printf("\n%s view: %s to %s\n\n",
				result.View,
				result.Range.Start.Format("2006-01-02"),
				result.Range.End.Format("2006-01-02"))

			if view == calendar.ViewMonth {
				for _, cell := range result.Cells {
					if len(cell.Groups) == 0 {
						continue
					}
					fmt.Printf("%s\n", cell.Date.Format("2006-01-02 (Mon)"))
					for _, group := range cell.Groups {
						fmt.Printf("  %s: %d shifts\n", group.RoleName, len(group.Entries))
					}
				}
				fmt.Println()
				return nil
			}

			for _, column := range result.Columns {
				fmt.Printf("%s\n", column.Date.Format("2006-01-02 (Mon)"))
				for _, block := range column.Blocks {
					assignee := block.Shift.EmployeeID
					if assignee == "" {
						assignee = "unassigned"
					}
					fmt.Printf("  %-15s %-20s %-12s %s\n",
						block.TimeLabel, block.Shift.RoleName, block.Shift.Status, assignee)
				}
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Int("navigate", 0, "Move the anchor by N steps of the view's stride")

	return cmd
}

func openBidsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "openBids <start> <end>",
		Short: "List open bidding windows for shifts in a date range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate(args[0])
			if err != nil {
				return err
			}
			end, err := parseDate(args[1])
			if err != nil {
				return err
			}

			views, err := services.ListOpenBidWindows(app.ctx, app.database, app.logger, start, end)
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d bidding windows:\n\n", len(views))
			for _, v := range views {
				fmt.Printf("- %s  %s %s-%s  %s [%s]  %d pending bids\n",
					v.OpenBid.ID,
					v.Shift.Date.Format("2006-01-02"),
					v.Shift.StartTime,
					v.Shift.EndTime,
					v.Shift.RoleName,
					v.OpenBid.Status,
					v.PendingBids,
				)
			}
			fmt.Println()

			return nil
		},
	}
}

func myBidsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "myBids",
		Short: "List the acting user's bids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bids, err := services.ListBidsForEmployee(app.ctx, app.database, userID)
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d bids:\n\n", len(bids))
			for _, bid := range bids {
				comment := ""
				if bid.Comment != "" {
					comment = fmt.Sprintf(" (%s)", bid.Comment)
				}
				fmt.Printf("- %s  window %s  %s%s\n", bid.ID, bid.OpenBidID, bid.Status, comment)
			}
			fmt.Println()

			return nil
		},
	}
}

func expressInterestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expressInterest <open_bid_id>",
		Short: "Express interest in an open shift as the acting user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePermission(auth.FeatureExpressInterest); err != nil {
				return err
			}
			comment, _ := cmd.Flags().GetString("comment")

			bid, err := services.ExpressInterest(app.ctx, app.database, app.logger, userID, args[0], comment)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Interest recorded\n\nBid ID: %s\nStatus: %s\n\n", bid.ID, bid.Status)
			return nil
		},
	}

	cmd.Flags().String("comment", "", "Optional comment attached to the bid")

	return cmd
}

func withdrawBidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdrawBid <bid_id>",
		Short: "Withdraw a bid (kept in history as rejected)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePermission(auth.FeatureWithdrawBid); err != nil {
				return err
			}

			bid, err := services.WithdrawBid(app.ctx, app.database, app.logger, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Bid %s withdrawn\n\n", bid.ID)
			return nil
		},
	}
}

func approveBidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approveBid <bid_id>",
		Short: "Approve a bid, assigning the employee and filling the window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePermission(auth.FeatureApproveBid); err != nil {
				return err
			}

			result, err := services.ApproveBid(app.ctx, app.database, app.logger, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Bid approved\n\n")
			fmt.Printf("Bid:    %s (%s)\n", result.Bid.ID, result.Bid.Status)
			fmt.Printf("Shift:  %s assigned to %s\n", result.Shift.ID, result.Shift.EmployeeID)
			fmt.Printf("Window: %s\n\n", result.OpenBid.Status)
			return nil
		},
	}
}

func rejectBidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rejectBid <bid_id>",
		Short: "Reject a bid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePermission(auth.FeatureRejectBid); err != nil {
				return err
			}
			comment, _ := cmd.Flags().GetString("comment")

			bid, err := services.RejectBid(app.ctx, app.database, app.logger, args[0], comment)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Bid %s rejected\n\n", bid.ID)
			return nil
		},
	}

	cmd.Flags().String("comment", "", "Optional reason shown to the employee")

	return cmd
}

func batchBidsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batchBids <approve|reject> [bid_id...]",
		Short: "Approve or reject a selection of bids in one pass",
		Long: `Approve or reject a selection of bids in one pass. Bids are processed
one at a time and each is re-validated, so a bid that went stale since
selection fails on its own without stopping the rest.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePermission(auth.FeatureBatchBids); err != nil {
				return err
			}

			action := services.BidAction(args[0])
			selectAll, _ := cmd.Flags().GetBool("all")

			var sel *batch.Selection
			if selectAll {
				visible := args[1:]
				if len(visible) == 0 {
					bids, err := app.database.ListEmployeeBids(app.ctx)
					if err != nil {
						return fmt.Errorf("failed to list bids: %w", err)
					}
					for _, bid := range bids {
						visible = append(visible, bid.ID)
					}
				}
				pending, err := services.SelectAllPendingBids(app.ctx, app.database, visible)
				if err != nil {
					return err
				}
				sel = pending
			} else {
				if len(args) < 2 {
					return fmt.Errorf("no bids selected: pass bid IDs or --all")
				}
				sel = batch.NewSelection()
				for _, id := range args[1:] {
					sel.Add(id)
				}
			}

			summary, err := services.BatchBidAction(app.ctx, app.database, app.logger, action, sel)
			if err != nil {
				return err
			}

			fmt.Printf("\n%s\n\n", summary)
			for _, outcome := range summary.Outcomes {
				if outcome.OK {
					fmt.Printf("  ✓ %s\n", outcome.ID)
				} else {
					fmt.Printf("  ✗ %s  %s: %s\n", outcome.ID, outcome.Class, outcome.Reason)
				}
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Bool("all", false, "Select every listed bid that is still pending (IDs narrow the pool)")

	return cmd
}

func requestSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requestSwap <my_shift_id> <their_employee_id> <their_shift_id>",
		Short: "Request to swap the acting user's shift with another employee's",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePermission(auth.FeatureRequestSwap); err != nil {
				return err
			}
			reason, _ := cmd.Flags().GetString("reason")
			priority, _ := cmd.Flags().GetString("priority")

			request, err := services.RequestSwap(
				app.ctx,
				app.database,
				app.logger,
				userID,
				args[0],
				args[1],
				args[2],
				reason,
				priority,
			)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Swap requested\n\nRequest ID: %s\nStatus:     %s\n\n", request.ID, request.Status)
			return nil
		},
	}

	cmd.Flags().String("reason", "", "Why the swap is needed")
	cmd.Flags().String("priority", "", "Priority tag for the approver")

	return cmd
}

func listSwapsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "swaps",
		Short: "List swap requests awaiting a decision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			requests, err := services.ListPendingSwaps(app.ctx, app.database)
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d pending swap requests:\n\n", len(requests))
			for _, r := range requests {
				fmt.Printf("- %s  %s gives %s, wants %s from %s",
					r.ID, r.RequesterID, r.RequesterShiftID, r.RequestedShiftID, r.TargetEmployeeID)
				if r.Reason != "" {
					fmt.Printf("  (%s)", r.Reason)
				}
				fmt.Println()
			}
			fmt.Println()

			return nil
		},
	}
}

func approveSwapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approveSwap <request_id>",
		Short: "Approve a swap, exchanging the two assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePermission(auth.FeatureApproveSwap); err != nil {
				return err
			}

			result, err := services.ApproveSwap(app.ctx, app.database, app.logger, args[0], userID)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Swap approved\n\n")
			fmt.Printf("Shift %s -> %s\n", result.RequesterShift.ID, result.RequesterShift.EmployeeID)
			fmt.Printf("Shift %s -> %s\n\n", result.RequestedShift.ID, result.RequestedShift.EmployeeID)
			return nil
		},
	}
}

func rejectSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rejectSwap <request_id>",
		Short: "Reject a swap request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePermission(auth.FeatureRejectSwap); err != nil {
				return err
			}
			notes, _ := cmd.Flags().GetString("notes")

			request, err := services.RejectSwap(app.ctx, app.database, app.logger, args[0], notes)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Swap request %s rejected\n\n", request.ID)
			return nil
		},
	}

	cmd.Flags().String("notes", "", "Optional note recorded on the request")

	return cmd
}

func publishTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publishTemplate <template_id> <start> <end>",
		Short: "Instantiate a roster template onto every date in a range",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePermission(auth.FeaturePublishTemplate); err != nil {
				return err
			}

			start, err := parseDate(args[1])
			if err != nil {
				return err
			}
			end, err := parseDate(args[2])
			if err != nil {
				return err
			}

			ruleStr, _ := cmd.Flags().GetString("rrule")
			if ruleStr == "" {
				for _, rule := range app.cfg.PublishRules {
					if rule.TemplateID == args[0] {
						ruleStr = rule.RRule
						break
					}
				}
			}
			overwrite, _ := cmd.Flags().GetBool("overwrite")

			result, err := services.PublishTemplate(
				app.ctx,
				app.database,
				app.logger,
				args[0],
				start,
				end,
				ruleStr,
				overwrite,
			)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Template published\n\n")
			fmt.Printf("Dates published: %d\n", len(result.PublishedDates))
			fmt.Printf("Dates skipped:   %d\n", len(result.SkippedDates))
			fmt.Printf("Shifts created:  %d\n\n", result.ShiftsCreated)
			for _, date := range result.SkippedDates {
				fmt.Printf("  skipped %s (already has a roster; use --overwrite to replace)\n", date.Format("2006-01-02"))
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("rrule", "", "Recurrence rule filtering dates (defaults to the template's configured rule)")
	cmd.Flags().Bool("overwrite", false, "Replace rosters already published on matching dates")

	return cmd
}

func assignEmployeeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <shift_id> <employee_id>",
		Short: "Assign an employee to a shift",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePermission(auth.FeatureAssignEmployee); err != nil {
				return err
			}

			shift, err := services.AssignEmployee(app.ctx, app.database, app.logger, args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Shift %s assigned to %s\n\n", shift.ID, shift.EmployeeID)
			return nil
		},
	}
}

func editShiftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "editShift <shift_id> <start> <end>",
		Short: "Edit a shift's start and end times (HH:MM)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePermission(auth.FeatureEditShiftTimes); err != nil {
				return err
			}

			shift, err := services.EditShiftTimes(app.ctx, app.database, app.logger, args[0], args[1], args[2])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Shift %s now runs %s - %s\n\n", shift.ID, shift.StartTime, shift.EndTime)
			return nil
		},
	}
}

func markShiftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "markShift <shift_id> <Completed|Cancelled|No-Show|Swapped>",
		Short: "Archive a shift under a terminal status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePermission(auth.FeatureMarkShift); err != nil {
				return err
			}

			status, err := model.ParseShiftStatus(args[1])
			if err != nil {
				return err
			}

			shift, err := services.MarkShiftStatus(app.ctx, app.database, app.logger, args[0], status)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Shift %s marked %s\n\n", shift.ID, shift.Status)
			return nil
		},
	}
}

func lockRosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lockRoster <date>",
		Short: "Lock or unlock a date's roster against edits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePermission(auth.FeatureLockRoster); err != nil {
				return err
			}

			date, err := parseDate(args[0])
			if err != nil {
				return err
			}
			unlock, _ := cmd.Flags().GetBool("unlock")

			tree, err := services.SetRosterLock(app.ctx, app.database, app.logger, date, !unlock)
			if err != nil {
				return err
			}

			state := "locked"
			if !tree.Locked {
				state = "unlocked"
			}
			fmt.Printf("\n✓ Roster for %s is %s\n\n", date.Format("2006-01-02"), state)
			return nil
		},
	}

	cmd.Flags().Bool("unlock", false, "Unlock instead of lock")

	return cmd
}

func collapseRosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collapseRoster <date>",
		Short: "Collapse or expand every group of a date's roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(args[0])
			if err != nil {
				return err
			}
			expand, _ := cmd.Flags().GetBool("expand")

			_, err = services.SetRosterCollapsed(app.ctx, app.database, app.logger, date, !expand)
			if err != nil {
				return err
			}

			state := "collapsed"
			if expand {
				state = "expanded"
			}
			fmt.Printf("\n✓ Roster for %s %s\n\n", date.Format("2006-01-02"), state)
			return nil
		},
	}

	cmd.Flags().Bool("expand", false, "Expand instead of collapse")

	return cmd
}
