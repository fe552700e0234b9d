package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/todus/internal/config"
	"github.com/balkashynov/todus/internal/repository"
	"github.com/balkashynov/todus/internal/tui"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the remote task service",
	Long: `Sign in to the task service at api.base_url with your email and
password. The session token is saved to api.token_file and sent with every
request until you log out. A token set in api.token takes precedence.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if !cfg.Remote() {
			fmt.Fprintln(out, "Error: api.base_url is not set; the local store needs no login")
			return
		}

		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			if email, err = tui.Prompt("Email", false); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				return
			}
		}

		var password string
		if fromStdin, _ := cmd.Flags().GetBool("password-stdin"); fromStdin {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				fmt.Fprintf(out, "Error: failed to read password: %v\n", err)
				return
			}
			password = strings.TrimRight(line, "\r\n")
		} else if password, err = tui.Prompt("Password", true); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}

		token, err := repository.Login(cmd.Context(), cfg.API.BaseURL, email, password, repository.WithTimeout(cfg.API.Timeout))
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if err := repository.SaveToken(cfg.API.TokenFile, token); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "🔑 Logged in as %s\n", strings.TrimSpace(email))
		if cfg.API.Token != "" {
			fmt.Fprintln(out, "Note: api.token is set and will be used instead of this session.")
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session token",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		token, err := repository.LoadToken(cfg.API.TokenFile)
		if err == nil && token == "" {
			fmt.Fprintln(out, "Not logged in.")
			return
		}
		if err := repository.DeleteToken(cfg.API.TokenFile); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintln(out, "Logged out.")
	},
}

func init() {
	loginCmd.Flags().StringP("email", "e", "", "Account email, skips the prompt")
	loginCmd.Flags().Bool("password-stdin", false, "Read the password from stdin")
}
