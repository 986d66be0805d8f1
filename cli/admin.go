package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/GbredngleK/NG-Insider-Bot/moderation"
	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/GbredngleK/NG-Insider-Bot/store"
	"github.com/GbredngleK/NG-Insider-Bot/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// withStore opens the configured backend for a one-shot admin command.
func withStore(opts *RootOptions, fn func(ctx context.Context, cfg model.Config, s store.Backend, log *logrus.Logger) error) error {
	cfg, log, err := opts.load()
	if err != nil {
		return err
	}
	s, err := store.Open(cfg.Storage, cfg.Limits)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer s.Close()
	return fn(context.Background(), cfg, s, log)
}

// NewBanCommand creates the ban command.
func NewBanCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ban <user-id> [reason...]",
		Short: "Permanently ban a user",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reason := "banned from the command line"
			if len(args) > 1 {
				reason = strings.Join(args[1:], " ")
			}
			return withStore(rootOpts, func(ctx context.Context, cfg model.Config, s store.Backend, log *logrus.Logger) error {
				coord := moderation.New(s, nil, utils.NewAuthorizer(cfg.Commands.Auth), cfg.Links, log)
				if err := coord.Ban(ctx, args[0], reason); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Banned %s\n", args[0])
				return nil
			})
		},
	}
}

// NewUnbanCommand creates the unban command.
func NewUnbanCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unban <user-id>",
		Short: "Lift a ban",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, func(ctx context.Context, _ model.Config, s store.Backend, _ *logrus.Logger) error {
				if err := s.Unban(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Unbanned %s\n", args[0])
				return nil
			})
		},
	}
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print user, review and queue counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, func(ctx context.Context, _ model.Config, s store.Backend, _ *logrus.Logger) error {
				st, err := s.Stats(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Users:   %d\n", st.Users)
				fmt.Fprintf(out, "Reviews: %d\n", st.Reviews)
				fmt.Fprintf(out, "Members: %d\n", st.Members)
				fmt.Fprintf(out, "Pending: %d\n", st.Pending)
				fmt.Fprintf(out, "Banned:  %d\n", st.Banned)
				return nil
			})
		},
	}
}
