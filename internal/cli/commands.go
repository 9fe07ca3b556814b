package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/jira-bridge/internal/service"
	jirasync "github.com/nhle/jira-bridge/internal/sync"
)

var testConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Verify the Jira credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			msg, err := a.service.TestConnection(ctx)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), msg)
			if res := a.service.Resolution(); res != nil {
				printNote(cmd.OutOrStdout(), fmt.Sprintf(
					"auth: %s, destination: %s", res.Mode, res.DestinationName,
				))
			}
			return nil
		})
	},
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List Jira projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			projects, err := a.service.GetProjects(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), projects)
		})
	},
}

var issueCmd = &cobra.Command{
	Use:   "issue <key>",
	Short: "Fetch a single issue by key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			issue, err := a.service.GetIssueByKey(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), issue)
		})
	},
}

var searchTable bool

var searchCmd = &cobra.Command{
	Use:   "search <jql>",
	Short: "Search issues with a free-text JQL query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			issues, err := a.service.SearchIssues(ctx, args[0])
			if err != nil {
				return err
			}
			if searchTable {
				return printIssueTable(cmd.OutOrStdout(), issues)
			}
			return printJSON(cmd.OutOrStdout(), issues)
		})
	},
}

var (
	jqlMaxResults int
	jqlStartAt    int
)

var jqlCmd = &cobra.Command{
	Use:   "jql <jql>",
	Short: "Run a paginated JQL search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			doc, err := a.service.SearchByJQL(ctx, service.SearchRequest{
				JQL:        args[0],
				MaxResults: jqlMaxResults,
				StartAt:    jqlStartAt,
			})
			if err != nil {
				return err
			}
			return printRawJSON(cmd.OutOrStdout(), doc)
		})
	},
}

var myOpenCmd = &cobra.Command{
	Use:   "my-open",
	Short: "List open issues assigned to the current user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			doc, err := a.service.GetMyOpenIssues(ctx)
			if err != nil {
				return err
			}
			return printRawJSON(cmd.OutOrStdout(), doc)
		})
	},
}

var abapOpenCmd = &cobra.Command{
	Use:   "abap-open",
	Short: "List in-progress issues of the ABAP team",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			doc, err := a.service.GetAbapOpenIssues(ctx)
			if err != nil {
				return err
			}
			return printRawJSON(cmd.OutOrStdout(), doc)
		})
	},
}

var syncEvery time.Duration

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Cache issues updated in the last day",
	Long: `Fetch issues updated in the last day and upsert them into the local
cache. With --every, keep syncing on that interval until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if syncEvery <= 0 {
				msg, err := a.service.SyncIssues(ctx)
				if err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), msg)
				return nil
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			poller := jirasync.New(a.service, syncEvery, a.logger)
			poller.Run(ctx)

			status := poller.Status()
			printNote(cmd.OutOrStdout(), fmt.Sprintf(
				"stopped after %d runs, last result: %s", status.Runs, status.LastResult,
			))
			return nil
		})
	},
}

var readCmd = &cobra.Command{
	Use:       "read <issues|projects|users>",
	Short:     "Read a collection",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"issues", "projects", "users"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			switch args[0] {
			case "issues":
				records, err := a.service.ReadIssues(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), records)
			case "projects":
				return printJSON(cmd.OutOrStdout(), a.service.ReadProjects(ctx))
			default:
				return printJSON(cmd.OutOrStdout(), a.service.ReadUsers(ctx))
			}
		})
	},
}

var createReq service.CreateIssueRequest

var createIssueCmd = &cobra.Command{
	Use:   "create-issue",
	Short: "Create an issue (not implemented)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			msg, err := a.service.CreateIssue(ctx, createReq)
			if err != nil {
				return err
			}
			printNote(cmd.OutOrStdout(), msg)
			return nil
		})
	},
}

var updateReq service.UpdateIssueRequest

var updateIssueCmd = &cobra.Command{
	Use:   "update-issue <key>",
	Short: "Update an issue (not implemented)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			updateReq.JiraKey = args[0]
			msg, err := a.service.UpdateIssue(ctx, updateReq)
			if err != nil {
				return err
			}
			printNote(cmd.OutOrStdout(), msg)
			return nil
		})
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchTable, "table", false, "print a table instead of JSON")

	jqlCmd.Flags().IntVar(&jqlMaxResults, "max-results", service.DefaultMaxResults, "page size")
	jqlCmd.Flags().IntVar(&jqlStartAt, "start-at", service.DefaultStartAt, "offset of the first issue")

	syncCmd.Flags().DurationVar(&syncEvery, "every", 0, "keep syncing on this interval (e.g. 5m)")

	createIssueCmd.Flags().StringVar(&createReq.Project, "project", "", "project key")
	createIssueCmd.Flags().StringVar(&createReq.Summary, "summary", "", "issue summary")
	createIssueCmd.Flags().StringVar(&createReq.Description, "description", "", "issue description")
	createIssueCmd.Flags().StringVar(&createReq.IssueType, "type", "Task", "issue type")

	updateIssueCmd.Flags().StringVar(&updateReq.Summary, "summary", "", "new summary")
	updateIssueCmd.Flags().StringVar(&updateReq.Description, "description", "", "new description")
	updateIssueCmd.Flags().StringVar(&updateReq.Status, "status", "", "new status")

	rootCmd.AddCommand(
		testConnectionCmd,
		projectsCmd,
		issueCmd,
		searchCmd,
		jqlCmd,
		myOpenCmd,
		abapOpenCmd,
		syncCmd,
		readCmd,
		createIssueCmd,
		updateIssueCmd,
	)
}
