package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/beka-birhanu/vinom-search/infrastruture/repo"
	"github.com/beka-birhanu/vinom-search/infrastruture/token"
	"github.com/beka-birhanu/vinom-search/service"
	"github.com/spf13/cobra"
)

var tokenTTL time.Duration

// tokenCmd manages operators and their tokens.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage operators and API tokens",
	Long: `Manage the operators allowed to use the protected API.

Available subcommands:
  mint <operator>  - Sign a token for an operator without checking the database
  add <operator>   - Register an operator; the key is read from stdin`,
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint <operator>",
	Short: "Sign an operator token with JWT_SECRET",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if envs.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is not set")
		}
		tokenizer, err := token.NewJwtService(envs.JWTSecret, envs.JWTIssuer)
		if err != nil {
			return err
		}

		ttl := tokenTTL
		if ttl <= 0 {
			ttl = envs.TokenTTL
		}
		signed, err := service.OperatorToken(tokenizer, args[0], ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), signed)
		return nil
	},
}

var tokenAddCmd = &cobra.Command{
	Use:   "add <operator>",
	Short: "Register an operator in MongoDB",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := envs.RequireServer(); err != nil {
			return err
		}

		key, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && key == "" {
			return fmt.Errorf("reading key from stdin: %w", err)
		}
		key = strings.TrimSpace(key)

		client, err := connectMongo(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			_ = client.Disconnect(cmd.Context())
		}()

		operators := repo.NewOperatorRepo(client, envs.DBName, "operators")
		if err := operators.EnsureIndexes(cmd.Context()); err != nil {
			return err
		}
		tokenizer, err := token.NewJwtService(envs.JWTSecret, envs.JWTIssuer)
		if err != nil {
			return err
		}
		auth, err := service.NewAuthService(operators, tokenizer, envs.TokenTTL)
		if err != nil {
			return err
		}

		if err := auth.Register(cmd.Context(), args[0], key); err != nil {
			return err
		}
		appLogger.WithField("operator", args[0]).Info("operator registered")
		return nil
	},
}

func init() {
	tokenMintCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default TOKEN_TTL_HOURS)")
	tokenCmd.AddCommand(tokenMintCmd, tokenAddCmd)
}
