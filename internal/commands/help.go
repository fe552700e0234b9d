package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "help",
	Short: "Show comprehensive help for todus",
	Long:  `Display detailed help for all todus commands and flags.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), customHelp)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "todus %s (commit %s, built %s)\n", version, commit, date)
	},
}

const customHelp = `
████████╗ ██████╗ ██████╗ ██╗   ██╗███████╗
╚══██╔══╝██╔═══██╗██╔══██╗██║   ██║██╔════╝
   ██║   ██║   ██║██║  ██║██║   ██║███████╗
   ██║   ██║   ██║██║  ██║██║   ██║╚════██║
   ██║   ╚██████╔╝██████╔╝╚██████╔╝███████║
   ╚═╝    ╚═════╝ ╚═════╝  ╚═════╝ ╚══════╝

todus - tasks that tidy themselves

COMMANDS:

  ls                      Reconcile, then list tasks
    -c, --category        Show one category
    --show-completed      Include completed tasks in a category view
    -o, --order           date_created|due_date|priority_asc|priority_desc|name_asc|name_desc
    -i, --interactive     Interactive list

    Interactive keys:
      ↑/↓           Navigate tasks
      ←/→           Change page
      /             Search
      d             Mark done/undone
      t             Move to trash
      esc/q         Quit

  refresh                 Reconcile and show what changed

  add <task>              Create a task with smart parsing
    -c, --category        Category name or ID
    -p, --priority        Priority name, level or ID
    --due                 Due date (today, tomorrow, dd/mm/yyyy, 3days, 2w)
    -d, --description     Description

    Smart syntax:
      @category     Set category
      +priority     Set priority (low/medium/high, lo/med/hi, 1-3)
      due:3days     Set due date

    Example:
      todus add "Write report @work +high due:3days"

  edit <id>               Change name, description, category, priority or due date
    --no-due              Remove the due date

  done <id>               Mark task as completed
  undone <id>             Mark task as pending

  subtask ls <id>         Show the checklist of a task
  subtask add <id> <name> Add a checklist item
  subtask toggle <sub>    Mark an item done or pending
  subtask rename <id> <sub> <name>
  subtask rm <sub>        Delete an item

  stats                   Completion, overdue and streak summary

  trash <id>              Move a task to trash
  trash ls                Purge expired tasks and list the trash
  trash restore <id>      Take a task out of the trash
  trash empty             Delete everything in the trash (-y skips the prompt)

  rules ls                List priority escalation rules
  rules add FROM DAYS TO  Escalate FROM to TO when due within DAYS days
  rules rm <n>            Remove rule n

  prefs ls|get|set        Show and change preferences
  prefs pin|unpin <cat>   Give a category its own section in ls

  category ls|add|edit    Manage categories and their auto-trash policy

  login                   Sign in to the remote task service
    -e, --email           Account email
    --password-stdin      Read the password from stdin
  logout                  Forget the saved session

  config init|show        Write or print the configuration
  auth calendar           Connect Google Calendar for reminders
  version                 Print the version
  help                    Show this help

GLOBAL FLAGS:
  --config <path>         Config file (default ~/.todus/config.yaml)
  -v, --verbose           Debug logging

`
