package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/xraph/housecup"
	"github.com/xraph/housecup/command"
	"github.com/xraph/housecup/points"
	"github.com/xraph/housecup/store/file"
)

// app is a started ledger plus the handler and config around it.
type app struct {
	cfg     Config
	logger  *slog.Logger
	ledger  *housecup.Ledger
	handler *command.Handler
}

func openApp(ctx context.Context, logOut io.Writer, extra ...housecup.Option) (*app, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return startApp(ctx, cfg, logOut, extra...)
}

func startApp(ctx context.Context, cfg Config, logOut io.Writer, extra ...housecup.Option) (*app, error) {
	logger, err := cfg.Logger(logOut)
	if err != nil {
		return nil, err
	}
	houses, err := cfg.HouseSet()
	if err != nil {
		return nil, err
	}

	opts := append([]housecup.Option{
		housecup.WithLogger(logger),
		housecup.WithHouses(houses),
	}, extra...)

	l := housecup.New(file.New(cfg.DataFile), opts...)
	if err := l.Start(ctx); err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		ledger: l,
		handler: command.NewHandler(l,
			command.WithTop(cfg.Top),
			command.WithRequireHouse(cfg.RequireHouse),
			command.WithLogger(logger),
		),
	}, nil
}

func (a *app) close() { _ = a.ledger.Stop() } //nolint:errcheck

func member(id string, roles []string) command.Member {
	return command.Member{ID: id, DisplayName: id, Roles: roles}
}

func newBalanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <member-id>",
		Short: "Show a member's points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), os.Stderr)
			if err != nil {
				return err
			}
			defer a.close()

			fmt.Fprintln(cmd.OutOrStdout(), a.handler.Balance(member(args[0], nil)))
			return nil
		},
	}
}

func newAwardCommand() *cobra.Command {
	var roles []string
	cmd := &cobra.Command{
		Use:   "award <amount> <member-id>",
		Short: "Award points to a member, or revoke them with a negative amount",
		Example: "  housecup award -r 🦅Serdaigle 10 1234\n" +
			"  housecup award -r 🦅Serdaigle -- -5 1234",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), os.Stderr)
			if err != nil {
				return err
			}
			defer a.close()

			reply, err := a.handler.Points(cmd.Context(), args[0], member(args[1], roles))
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return err
		},
	}
	cmd.Flags().StringSliceVarP(&roles, "role", "r", nil, "member roles, in order; the first house role scores")
	return cmd
}

func newActivityCommand() *cobra.Command {
	var roles []string
	cmd := &cobra.Command{
		Use:   "activity <activity> <member-id>",
		Short: "Award the points of an activity (reaction, message, vocal, event, quiz, invite, nitro)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), os.Stderr)
			if err != nil {
				return err
			}
			defer a.close()

			reply, err := a.handler.Activity(cmd.Context(), points.Activity(args[0]), member(args[1], roles))
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return err
		},
	}
	cmd.Flags().StringSliceVarP(&roles, "role", "r", nil, "member roles, in order; the first house role scores")
	return cmd
}

func newResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset every member and house to zero",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), os.Stderr)
			if err != nil {
				return err
			}
			defer a.close()

			reply, err := a.handler.Reset(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return err
		},
	}
}

func newStandingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "standings",
		Short: "Print the member ranking and the house standings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), os.Stderr)
			if err != nil {
				return err
			}
			defer a.close()

			members, houses := a.handler.Standings()
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n", members, houses)
			return nil
		},
	}
}
