package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"AlertConsoleAPI/internal/apperr"
	"AlertConsoleAPI/internal/config"
	"AlertConsoleAPI/internal/gateway"
	"AlertConsoleAPI/internal/logger"
	"AlertConsoleAPI/internal/models"
	"AlertConsoleAPI/internal/rules"
	"AlertConsoleAPI/internal/service"
	"AlertConsoleAPI/internal/session"

	"github.com/spf13/cobra"
)

// cliEnv is what every CLI command needs: a gateway and the on-disk session.
type cliEnv struct {
	gw    *gateway.Client
	store *session.FileStore
	log   *logger.Logger
}

func newCLIEnv() (*cliEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:     logger.WARN,
		Mode:      logger.MINIMAL,
		UseColors: cfg.Logging.UseColors,
		Output:    os.Stderr,
	})
	if err != nil {
		return nil, err
	}

	gw, err := gateway.New(cfg.Gateway, nil, log, nil)
	if err != nil {
		return nil, err
	}

	path := cfg.Session.FilePath
	if path == "" {
		if path, err = session.DefaultFilePath(); err != nil {
			return nil, err
		}
	}

	return &cliEnv{gw: gw, store: session.NewFileStore(path), log: log}, nil
}

// withEnv runs fn with a CLI environment and flushes the logger afterwards.
func withEnv(fn func(ctx context.Context, env *cliEnv) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := newCLIEnv()
		if err != nil {
			return err
		}
		defer env.log.Close()
		return fn(cmd.Context(), env)
	}
}

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token locally",
		RunE: withEnv(func(ctx context.Context, env *cliEnv) error {
			if password == "" {
				p, err := readLine(os.Stdin)
				if err != nil {
					return fmt.Errorf("password required: pass --password or pipe it on stdin")
				}
				password = p
			}

			body, err := json.Marshal(models.LoginRequest{Email: email, Password: password})
			if err != nil {
				return err
			}

			resp, err := env.gw.Authenticate(ctx, env.store, "/api/auth/login", body)
			if err != nil {
				return describe(err)
			}

			var auth models.AuthResponse
			if err := json.Unmarshal(resp.Body, &auth); err != nil || !auth.Success {
				return fmt.Errorf("login failed: %s", firstNonEmpty(auth.Message, fmt.Sprintf("status %d", resp.Status)))
			}

			fmt.Printf("Logged in as %s (session stored in %s)\n", email, env.store.Path())
			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (read from stdin when omitted)")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: withEnv(func(ctx context.Context, env *cliEnv) error {
			if err := env.store.Clear(); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		}),
	}
}

func newTriggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Run the alert checks for every platform now",
		RunE: withEnv(func(ctx context.Context, env *cliEnv) error {
			if !session.HasToken(env.store) {
				return describe(apperr.ErrUnauthorized)
			}

			svc := service.NewTriggerService(env.gw, service.TriggerConfig{Logger: env.log})
			report, err := svc.Run(ctx, env.store)
			if err != nil {
				return describe(err)
			}

			for _, r := range report.Results {
				status := "OK  "
				if !r.Success {
					status = "FAIL"
				}
				fmt.Printf("%s %s: %s\n", status, r.Name, r.Message)
				for _, e := range r.Errors {
					fmt.Printf("     - %s\n", e)
				}
			}
			fmt.Printf("Finished in %s\n", report.Duration)

			if report.HasErrors {
				return fmt.Errorf("one or more endpoints failed")
			}
			return nil
		}),
	}
}

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect alert rules",
	}

	var filter rules.Filter
	list := &cobra.Command{
		Use:   "list",
		Short: "List alert rules",
		RunE: withEnv(func(ctx context.Context, env *cliEnv) error {
			svc := service.NewRuleService(env.gw, nil, env.log)
			found, err := svc.Search(ctx, env.store, filter)
			if err != nil {
				return describe(err)
			}
			return printRules(os.Stdout, found)
		}),
	}
	list.Flags().StringVar(&filter.SearchQuery, "search", "", "match rule or account name")
	list.Flags().StringVar(&filter.Scope, "scope", rules.FilterAll, "account, campaign or all")
	list.Flags().StringVar(&filter.Condition, "condition", rules.FilterAll, "condition type or all")
	list.Flags().StringVar(&filter.Platform, "platform", rules.FilterAll, "taboola, outbrain or all")
	list.Flags().StringVar(&filter.Severity, "severity", rules.FilterAll, "1, 2, 3 or all")
	list.Flags().BoolVar(&filter.IncludeInactive, "all", false, "include inactive rules")

	cmd.AddCommand(list)
	return cmd
}

func printRules(out io.Writer, rs []models.AlertRule) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPLATFORM\tSCOPE\tACCOUNT\tCONDITION\tTHRESHOLD\tSEVERITY\tACTIVE")
	for _, r := range rs {
		id := "-"
		if r.ID != nil {
			id = fmt.Sprint(*r.ID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%t\n",
			id, r.Name, r.Platform, r.Scope, r.AccountName, r.ConditionType,
			formatThreshold(r), r.Severity, r.IsActive)
	}
	return tw.Flush()
}

func formatThreshold(r models.AlertRule) string {
	if rules.ThresholdUnit(r.ConditionType) == "percent" {
		return fmt.Sprintf("%g%%", r.Threshold)
	}
	return fmt.Sprintf("$%.2f", r.Threshold)
}

func describe(err error) error {
	if apperr.Status(err) == 401 {
		return fmt.Errorf("not logged in: run `alertconsole login --email ...` first")
	}
	return fmt.Errorf("%s", apperr.Message(err))
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return "", err
	}
	return line, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
