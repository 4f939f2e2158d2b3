package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/client"
)

type globals struct {
	baseURL string
	token   string
	prefs   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:          "profilectl",
		Short:        "Inspect and manage school profiles from the command line",
		SilenceUsage: true,
	}
	home, _ := os.UserConfigDir()
	root.PersistentFlags().StringVar(&g.baseURL, "base-url", envOr("PROFILE_API_URL", "http://localhost:8080"), "profile API base URL")
	root.PersistentFlags().StringVar(&g.token, "token", os.Getenv("PROFILE_TOKEN"), "bearer token")
	root.PersistentFlags().StringVar(&g.prefs, "prefs", filepath.Join(home, "profilectl", "prefs.yaml"), "local preferences file")

	root.AddCommand(
		getCmd(g),
		activityCmd(g),
		contributionsCmd(g),
		connectionsCmd(g),
		notificationsCmd(g),
		searchCmd(g),
		themeCmd(g),
	)
	return root
}

func (g *globals) client() *client.Client {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return client.New(g.baseURL, client.WithToken(g.token), client.WithLogger(logger))
}

func getCmd(g *globals) *cobra.Command {
	var opts client.ProfileOptions
	cmd := &cobra.Command{
		Use:   "get [user-id]",
		Short: "Show a profile and the caller's permissions on it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.UserID = argOr(args, 0)
			hook := g.client().UseProfile(cmd.Context(), opts)
			defer hook.Close()
			st := hook.State()
			if st.IsError {
				return st.Error
			}
			return printJSON(cmd, map[string]any{"profile": st.Profile, "permissions": st.Permissions})
		},
	}
	cmd.Flags().StringVar(&opts.ProfileType, "type", "", "expected profile type")
	cmd.Flags().BoolVar(&opts.IncludeActivities, "activities", false, "include recent activity")
	cmd.Flags().BoolVar(&opts.IncludeContributions, "contributions", false, "include contribution calendar")
	cmd.Flags().BoolVar(&opts.IncludeConnections, "connections", false, "include connections")
	return cmd
}

func activityCmd(g *globals) *cobra.Command {
	var opts client.ActivityOptions
	var pages int
	cmd := &cobra.Command{
		Use:   "activity [user-id]",
		Short: "List profile activity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.UserID = argOr(args, 0)
			hook := g.client().UseProfileActivity(cmd.Context(), opts)
			defer hook.Close()
			for i := 1; i < pages && hook.State().HasMore; i++ {
				if err := hook.LoadMore(cmd.Context()); err != nil {
					return err
				}
			}
			st := hook.State()
			if st.IsError {
				return st.Error
			}
			return printJSON(cmd, map[string]any{"activities": st.Activities, "hasMore": st.HasMore})
		},
	}
	cmd.Flags().StringVar(&opts.Type, "type", "", "activity type filter")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "page size")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	return cmd
}

func contributionsCmd(g *globals) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "contributions [user-id]",
		Short: "Show the contribution calendar",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hook := g.client().UseProfileContributions(cmd.Context(), argOr(args, 0), year)
			defer hook.Close()
			return printState(cmd, hook.State())
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "calendar year; 0 for the last 365 days")
	return cmd
}

func connectionsCmd(g *globals) *cobra.Command {
	var opts client.ConnectionsOptions
	cmd := &cobra.Command{
		Use:   "connections [user-id]",
		Short: "List and manage connections",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.UserID = argOr(args, 0)
			hook := g.client().UseProfileConnections(cmd.Context(), opts)
			defer hook.Close()
			return printState(cmd, hook.State())
		},
	}
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "page size")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "page offset")

	var message string
	request := &cobra.Command{
		Use:   "request <target-user-id>",
		Short: "Send a connection request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hook := g.client().UseProfileConnections(cmd.Context(), client.ConnectionsOptions{})
			defer hook.Close()
			conn, err := hook.Request(cmd.Context(), args[0], message)
			if err != nil {
				return err
			}
			return printJSON(cmd, conn)
		},
	}
	request.Flags().StringVar(&message, "message", "", "note attached to the request")

	action := func(use, short string, run func(*client.ConnectionsHook, context.Context, string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				hook := g.client().UseProfileConnections(cmd.Context(), client.ConnectionsOptions{})
				defer hook.Close()
				if err := run(hook, cmd.Context(), args[0]); err != nil {
					return err
				}
				return printState(cmd, hook.State())
			},
		}
	}
	cmd.AddCommand(
		request,
		action("accept <connection-id>", "Accept a pending request", (*client.ConnectionsHook).Accept),
		action("reject <connection-id>", "Reject a pending request", (*client.ConnectionsHook).Reject),
		action("remove <user-id>", "Remove a connection", (*client.ConnectionsHook).Remove),
	)
	return cmd
}

func notificationsCmd(g *globals) *cobra.Command {
	var opts client.NotificationsOptions
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List and manage notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hook := g.client().UseProfileNotifications(cmd.Context(), opts)
			defer hook.Close()
			return printState(cmd, hook.State())
		},
	}
	cmd.Flags().BoolVar(&opts.UnreadOnly, "unread", false, "only unread notifications")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "page size")

	readAll := &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hook := g.client().UseProfileNotifications(cmd.Context(), client.NotificationsOptions{})
			defer hook.Close()
			if err := hook.MarkAllRead(cmd.Context()); err != nil {
				return err
			}
			return printState(cmd, hook.State())
		},
	}
	read := &cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark one notification read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hook := g.client().UseProfileNotifications(cmd.Context(), client.NotificationsOptions{})
			defer hook.Close()
			return hook.MarkRead(cmd.Context(), args[0])
		},
	}
	del := &cobra.Command{
		Use:   "delete <notification-id>",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hook := g.client().UseProfileNotifications(cmd.Context(), client.NotificationsOptions{})
			defer hook.Close()
			return hook.Delete(cmd.Context(), args[0])
		},
	}
	cmd.AddCommand(readAll, read, del)
	return cmd
}

func searchCmd(g *globals) *cobra.Command {
	var opts client.SearchOptions
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search profiles by name or username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Query = args[0]
			hook := g.client().UseProfileSearch(cmd.Context(), opts)
			defer hook.Close()
			return printState(cmd, hook.State())
		},
	}
	cmd.Flags().StringVar(&opts.Role, "role", "", "profile type filter")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "page size")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "page offset")
	return cmd
}

func themeCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme [light|dark|system]",
		Short: "Show or change the profile theme",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hook := g.client().UseProfileTheme(client.NewFileStore(g.prefs))
			if len(args) == 1 {
				if err := hook.SetTheme(cmd.Context(), args[0]); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), hook.Theme())
			return err
		},
	}
	return cmd
}

func printState[T any](cmd *cobra.Command, st client.Snapshot[T]) error {
	if st.IsError {
		return st.Error
	}
	return printJSON(cmd, st.Data)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func argOr(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
