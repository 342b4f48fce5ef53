package main

import (
	"fmt"
	"os"
	"time"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/ogurasousui/jobboard-clean-arch/internal/adapters/http/middleware"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/user"
	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/config"
)

const (
	configFlag  = "config"
	subjectFlag = "subject"
	ttlFlag     = "ttl"
)

var tokenFlags = map[string]cobraflags.Flag{
	configFlag: &cobraflags.StringFlag{
		Name:  configFlag,
		Value: "",
		Usage: "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)",
	},
	subjectFlag: &cobraflags.StringFlag{
		Name:  subjectFlag,
		Value: "",
		Usage: "user id to put into the token subject (required)",
	},
	ttlFlag: &cobraflags.StringFlag{
		Name:  ttlFlag,
		Value: "24h",
		Usage: "token lifetime as a Go duration",
	},
}

// 開発用にシード済みユーザーのベアラートークンを発行する CLI です。
func main() {
	cmd := &cobra.Command{
		Use:          "token",
		Short:        "Issue a bearer token for a user",
		SilenceUsage: true,
		RunE:         issue,
	}
	cobraflags.RegisterMap(cmd, tokenFlags)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func issue(cmd *cobra.Command, _ []string) error {
	subject := tokenFlags[subjectFlag].GetString()
	if err := user.ValidateID(subject); err != nil {
		return fmt.Errorf("--%s: %w", subjectFlag, err)
	}

	ttl, err := time.ParseDuration(tokenFlags[ttlFlag].GetString())
	if err != nil || ttl <= 0 {
		return fmt.Errorf("--%s must be a positive duration", ttlFlag)
	}

	cfgPath := tokenFlags[configFlag].GetString()
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	token, err := middleware.IssueToken(cfg.Auth.JWTSecret, cfg.Auth.Issuer, subject, time.Now(), ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
