// Command authzctl evaluates authorization decisions offline and mints
// development tokens.
//
// Subcommands:
//
//	can           decide one capability for a role
//	capabilities  list every capability a role holds
//	normalize     canonicalize a pipeline value
//	token         sign a bearer token with the configured secret
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crmkit/crm-authz/internal/auth"
	"github.com/crmkit/crm-authz/internal/config"
	"github.com/crmkit/crm-authz/internal/domain"
	"github.com/crmkit/crm-authz/internal/policy"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "authzctl",
		Short:         "Inspect CRM authorization decisions",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(out)
	root.AddCommand(
		canCmd(),
		capabilitiesCmd(),
		normalizeCmd(),
		tokenCmd(),
	)
	return root
}

type principalFlags struct {
	role  string
	perms []string
}

func (p *principalFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.role, "role", "", "role of the principal (super_admin, org_admin, manager, agent, viewer)")
	cmd.Flags().StringSliceVar(&p.perms, "perm", nil, "explicit capability grant; repeatable")
	_ = cmd.MarkFlagRequired("role")
}

func (p *principalFlags) user() (*domain.UserContext, error) {
	return domain.NewUserContext(domain.UserContextInput{
		ID:          "cli",
		Role:        p.role,
		Permissions: p.perms,
	})
}

func canCmd() *cobra.Command {
	var (
		principal  principalFlags
		capability string
	)
	cmd := &cobra.Command{
		Use:   "can",
		Short: "Decide one capability for a role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := principal.user()
			if err != nil {
				return err
			}
			c := domain.Capability(capability)
			if !c.Valid() {
				return fmt.Errorf("unknown capability %q", capability)
			}
			decision := "deny"
			if policy.New().Can(user, c) {
				decision = "allow"
			}
			fmt.Fprintln(cmd.OutOrStdout(), decision)
			return nil
		},
	}
	principal.register(cmd)
	cmd.Flags().StringVar(&capability, "capability", "", "capability to decide")
	_ = cmd.MarkFlagRequired("capability")
	return cmd
}

func capabilitiesCmd() *cobra.Command {
	var principal principalFlags
	cmd := &cobra.Command{
		Use:   "capabilities",
		Short: "List every capability a role holds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := principal.user()
			if err != nil {
				return err
			}
			evaluator := policy.New()
			for _, c := range evaluator.Capabilities(user) {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dashboard: %s\n", evaluator.PrimaryDashboardFor(user))
			return nil
		},
	}
	principal.register(cmd)
	return cmd
}

func normalizeCmd() *cobra.Command {
	var field, value, mode string
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Canonicalize a pipeline value",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := policy.PipelineField(strings.ToLower(field))
			vocab := policy.NewVocabulary(policy.ParseUrgentMode(mode))
			if len(vocab.Values(f)) == 0 {
				return fmt.Errorf("unknown pipeline field %q", field)
			}
			_, _, known := vocab.Lookup(f, value)
			canonical, idx := vocab.Normalize(f, value)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\tknown=%t\n", canonical, idx, vocab.Label(f, value), known)
			return nil
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "lead_status, priority, stage or interest_level")
	cmd.Flags().StringVar(&value, "value", "", "raw value to normalize")
	cmd.Flags().StringVar(&mode, "urgent-mode", string(policy.UrgentAsHighAlias), "alias or value")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

func tokenCmd() *cobra.Command {
	var userID, orgID string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token with AUTH_JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			tm := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
			token, exp, err := tm.GenerateToken(userID, orgID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", exp.UTC().Format("2006-01-02T15:04:05Z"))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&orgID, "org", "", "organization id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
