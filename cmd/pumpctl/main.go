package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/api"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/cli"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/config"
)

var (
	flagAPI     string
	flagTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:          "pumpctl",
	Short:        "Solar pump dashboard CLI",
	Long:         "Inspect the recommendation catalog and drive dashboard sessions through the API.",
	SilenceUsage: true,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List optimization actions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := apiContext(cmd)
		defer cancel()

		actions, err := client().Catalog(ctx)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), cli.RenderCatalog(actions))
		return nil
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage dashboard sessions",
}

var sessionNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a session and print its id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := apiContext(cmd)
		defer cancel()

		view, err := client().NewSession(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), view.SessionID)
		return nil
	},
}

var sessionEndCmd = &cobra.Command{
	Use:   "end <session-id>",
	Short: "End a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := apiContext(cmd)
		defer cancel()
		return client().EndSession(ctx, args[0])
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <session-id>",
	Short: "Show progress, savings and ROI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := apiContext(cmd)
		defer cancel()

		snap, err := client().Snapshot(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSnapshot(args[0], *snap))
		return nil
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <session-id> <action-id>...",
	Short: "Apply one or more actions",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := apiContext(cmd)
		defer cancel()

		c := client()
		id := args[0]
		for _, action := range args[1:] {
			if _, err := c.Apply(ctx, id, action); err != nil {
				return fmt.Errorf("apply %s: %w", action, err)
			}
		}
		snap, err := c.Snapshot(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSnapshot(id, *snap))
		return nil
	},
}

var telemetryCmd = &cobra.Command{
	Use:   "telemetry <session-id>",
	Short: "Show the session's daily energy and water series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := apiContext(cmd)
		defer cancel()

		view, err := client().Telemetry(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), cli.RenderTelemetry(*view))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPI, "api", "", "API base URL (default $API_URL)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 10*time.Second, "Request timeout")

	sessionCmd.AddCommand(sessionNewCmd, sessionEndCmd)
	rootCmd.AddCommand(catalogCmd, sessionCmd, statusCmd, applyCmd, telemetryCmd)
}

func client() *api.Client {
	if flagAPI != "" {
		return api.New(flagAPI)
	}
	return api.New(config.APIURL())
}

func apiContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), flagTimeout)
}

func main() {
	if err := config.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
