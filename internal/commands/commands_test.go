package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// setup points the CLI at an empty home directory with the local store
func setup(t *testing.T) {
	t.Helper()
	t.Setenv("TODUS_HOME", t.TempDir())
	t.Setenv("TODUS_CONFIG", "")
	t.Setenv("TODUS_NOTIFY_SINK", "none")
	t.Setenv("TODUS_LOG_LEVEL", "error")
}

// run executes the root command and returns what it printed
func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetIn(nil)
	defer resetFlags(rootCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("todus %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

// resetFlags undoes flag values left behind by a previous run
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func mustContain(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAddAndList(t *testing.T) {
	setup(t)

	out := run(t, "add", "Write report +high due:3days")
	mustContain(t, out, "Created task #1: Write report", "Priority: High", "Due")

	out = run(t, "ls")
	mustContain(t, out, "All tasks (1)", "Write report", "High")

	out = run(t, "add", "@nowhere", "call", "mum")
	mustContain(t, out, "Error")
}

func TestDoneAndUndone(t *testing.T) {
	setup(t)
	run(t, "add", "water plants")

	mustContain(t, run(t, "done", "1"), "Marked task #1 as done", "Completed at")
	mustContain(t, run(t, "undone", "1"), "back to pending")
	mustContain(t, run(t, "done", "42"), "Error")
	mustContain(t, run(t, "done", "abc"), "Error: invalid ID")
}

func TestEdit(t *testing.T) {
	setup(t)
	run(t, "add", "draft post due:tomorrow")

	out := run(t, "edit", "1", "--name", "publish post", "--priority", "med")
	mustContain(t, out, "Updated task #1: publish post", "Priority: Medium", "Due")

	out = run(t, "edit", "1", "--no-due")
	if strings.Contains(out, "Due") {
		t.Errorf("due date still shown after --no-due:\n%s", out)
	}

	mustContain(t, run(t, "edit", "1"), "Nothing to change")
	mustContain(t, run(t, "edit", "1", "--due", "2w", "--no-due"), "cannot be combined")
}

func TestPinnedCategorySection(t *testing.T) {
	setup(t)

	mustContain(t, run(t, "category", "add", "Work", "--auto-trash-days", "3"), "Created category #1: Work")
	run(t, "add", "email the team @work")
	run(t, "add", "buy bread")

	out := run(t, "ls")
	if strings.Contains(out, "Work (1)") {
		t.Errorf("category section shown before pinning:\n%s", out)
	}

	mustContain(t, run(t, "prefs", "pin", "work"), "Pinned Work")
	mustContain(t, run(t, "ls"), "All tasks (2)", "Work (1)")
	mustContain(t, run(t, "ls", "--category", "work"), "Work (1)", "email the team")
	mustContain(t, run(t, "category", "ls"), "after 3 day(s)", "yes")

	run(t, "prefs", "unpin", "work")
	if out := run(t, "ls"); strings.Contains(out, "Work (1)") {
		t.Errorf("category section shown after unpinning:\n%s", out)
	}
}

func TestTrashLifecycle(t *testing.T) {
	setup(t)
	run(t, "add", "old idea")
	run(t, "add", "another idea")

	mustContain(t, run(t, "trash", "1"), "Moved task #1 to trash")
	mustContain(t, run(t, "trash", "ls"), "old idea", "kept 7 days")
	if out := run(t, "ls"); strings.Contains(out, "old idea") {
		t.Errorf("trashed task listed:\n%s", out)
	}

	mustContain(t, run(t, "trash", "restore", "1"), "Restored task #1")
	mustContain(t, run(t, "ls"), "old idea")

	run(t, "trash", "1")
	run(t, "trash", "2")
	mustContain(t, run(t, "trash", "empty", "--yes"), "Deleted 2 task(s).")
	mustContain(t, run(t, "trash", "ls"), "Trash is empty")
	mustContain(t, run(t, "trash", "empty", "--yes"), "Trash is empty.")
}

func TestRulesAndRefresh(t *testing.T) {
	setup(t)
	run(t, "add", "pay rent +low due:2days")

	mustContain(t, run(t, "rules", "add", "low", "3", "high"), "Added rule #1: Low → High within 3 day(s)")
	mustContain(t, run(t, "rules", "add", "low", "0", "high"), "Error")
	mustContain(t, run(t, "rules", "ls"), "Low", "High", "3 day(s)")

	out := run(t, "refresh")
	mustContain(t, out, "pay rent", "priority Low → High", "ok")

	mustContain(t, run(t, "refresh"), "Nothing to reconcile.")

	mustContain(t, run(t, "rules", "rm", "1"), "Removed rule #1")
	mustContain(t, run(t, "rules", "rm", "1"), "Error: no rule #1")
}

func TestPrefs(t *testing.T) {
	setup(t)

	mustContain(t, run(t, "prefs", "get", "trashRetentionDays"), "not set")
	mustContain(t, run(t, "prefs", "set", "trashRetentionDays", "abc"), "Error")
	mustContain(t, run(t, "prefs", "set", "colour", "blue"), "unknown preference")
	mustContain(t, run(t, "prefs", "set", "trashRetentionDays", "3"), "trashRetentionDays = 3")
	mustContain(t, run(t, "prefs", "get", "trashRetentionDays"), "3")
	mustContain(t, run(t, "prefs", "ls"), "trashRetentionDays", "notifyDueReminders", "(default)")
}

func TestConfigCommands(t *testing.T) {
	setup(t)
	t.Setenv("TODUS_API_TOKEN", "secret-token")

	out := run(t, "config", "show")
	if strings.Contains(out, "secret-token") {
		t.Errorf("config show printed the token:\n%s", out)
	}
	mustContain(t, out, "********", "sink: none")

	mustContain(t, run(t, "config", "init"), "Wrote")
	mustContain(t, run(t, "config", "init"), "Error")
	mustContain(t, run(t, "config", "init", "--force"), "Wrote")
}

func TestVersionAndHelp(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2025-03-10")
	defer SetVersion("dev", "none", "unknown")

	mustContain(t, run(t, "version"), "todus 1.2.3 (commit abc123")
	mustContain(t, run(t, "help"), "trash empty", "rules add FROM DAYS TO")
}

func TestRemoteMessageOnlyResponses(t *testing.T) {
	setup(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/tasks/list", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{})
	})
	r.PUT("/api/tasks/trash/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Task moved to trash"})
	})
	r.PUT("/api/tasks/restore/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Task restored"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()
	t.Setenv("TODUS_API_BASE_URL", srv.URL)

	mustContain(t, run(t, "trash", "5"), "Moved task #5 to trash")
	mustContain(t, run(t, "trash", "restore", "5"), "Restored task #5")
}

func TestSubtasks(t *testing.T) {
	setup(t)
	run(t, "add", "move house")

	mustContain(t, run(t, "subtask", "add", "1", "pack", "boxes"), "Added subtask #1 to task #1: pack boxes")
	mustContain(t, run(t, "subtask", "add", "1", "book van"), "Added subtask #2")
	mustContain(t, run(t, "subtask", "add", "9", "orphan"), "Error")

	mustContain(t, run(t, "subtask", "toggle", "1"), "Subtask #1 done")
	mustContain(t, run(t, "subtask", "rename", "1", "2", "book", "a", "big", "van"), "Renamed subtask #2: book a big van")
	mustContain(t, run(t, "subtask", "rename", "1", "7", "x"), "Error: task #1 has no subtask #7")
	mustContain(t, run(t, "subtask", "ls", "1"), "Subtasks of #1 (1/2 done)", "pack boxes", "book a big van")

	mustContain(t, run(t, "subtask", "rm", "2"), "Deleted subtask #2")
	mustContain(t, run(t, "subtask", "ls", "1"), "(1/1 done)")
}

func TestStats(t *testing.T) {
	setup(t)
	run(t, "add", "pay bill")
	run(t, "add", "tidy desk")
	run(t, "done", "2")
	run(t, "subtask", "add", "2", "drawers")

	out := run(t, "stats")
	mustContain(t, out, "Tasks", "1 (50%)", "Streak", "1 day(s)", "0 of 1 (0%)", "By priority", "Uncategorized")
}

func TestLoginAndLogout(t *testing.T) {
	setup(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/auth/login", func(c *gin.Context) {
		var body struct{ Email, Password string }
		_ = c.ShouldBindJSON(&body)
		if body.Password != "s3cret" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "bad credentials"})
			return
		}
		c.String(http.StatusOK, `{"token": "jwt-abc"}`)
	})
	authed := func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer jwt-abc" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		}
	}
	api := r.Group("/api", authed)
	api.GET("/tasks/list", func(c *gin.Context) { c.JSON(http.StatusOK, []gin.H{}) })
	api.GET("/categories/all", func(c *gin.Context) { c.JSON(http.StatusOK, []gin.H{}) })
	api.GET("/priorities/all", func(c *gin.Context) { c.JSON(http.StatusOK, []gin.H{}) })
	srv := httptest.NewServer(r)
	defer srv.Close()
	t.Setenv("TODUS_API_BASE_URL", srv.URL)

	mustContain(t, run(t, "ls"), "Error", "401")

	rootCmd.SetIn(strings.NewReader("wrong\n"))
	mustContain(t, run(t, "login", "--email", "ana@example.com", "--password-stdin"), "Error: login failed")

	rootCmd.SetIn(strings.NewReader("s3cret\n"))
	mustContain(t, run(t, "login", "-e", "ana@example.com", "--password-stdin"), "Logged in as ana@example.com")
	mustContain(t, run(t, "ls"), "All tasks (0)")

	mustContain(t, run(t, "logout"), "Logged out.")
	mustContain(t, run(t, "logout"), "Not logged in.")
	mustContain(t, run(t, "ls"), "Error")
}

func TestLoginNeedsRemoteStore(t *testing.T) {
	setup(t)
	mustContain(t, run(t, "login", "-e", "ana@example.com", "--password-stdin"), "api.base_url is not set")
}
