package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/todus/internal/config"
	"github.com/balkashynov/todus/internal/notify"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Connect external services",
}

var authCalendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Authorize todus to add reminders to Google Calendar",
	Long: `Authorize todus to add reminders to Google Calendar.

Download an OAuth client (desktop app) from the Google Cloud console and save
it as calendar.credentials_file, then run this command and follow the link.
Set notify.sink to "calendar" to use it.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		oauthConfig, err := notify.OAuthConfig(cfg.Calendar.CredentialsFile)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}

		code, _ := cmd.Flags().GetString("code")
		if code == "" {
			fmt.Fprintf(out, "Open this link in your browser and paste the code below:\n\n%s\n\nCode: ", notify.AuthURL(oauthConfig))
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				fmt.Fprintf(out, "Error: failed to read code: %v\n", err)
				return
			}
			code = strings.TrimSpace(line)
		}
		if code == "" {
			fmt.Fprintln(out, "Error: no code given")
			return
		}

		if err := notify.Exchange(cmd.Context(), oauthConfig, code, cfg.Calendar.TokenFile); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "✅ Calendar access granted. Token saved to %s\n", cfg.Calendar.TokenFile)
	},
}

func init() {
	authCalendarCmd.Flags().String("code", "", "Authorization code, skips the prompt")
	authCmd.AddCommand(authCalendarCmd)
}
