// Package prefs loads the typed user configuration out of the string
// preference store, once per reconciliation pass.
package prefs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/balkashynov/todus/internal/clock"
	"github.com/balkashynov/todus/internal/logging"
	"github.com/balkashynov/todus/internal/models"
)

// Preference keys
const (
	KeyTrashRetentionDays     = "trashRetentionDays"
	KeyNotifyOnPriorityChange = "notifyOnPriorityChange"
	KeyNotifyDueReminders     = "notifyDueReminders"
	KeyDueReminderDays        = "dueReminderDays"
	KeyPriorityRules          = "priorityRules"
	KeyShowCategoryList       = "showCategoryList"

	pinnedPrefix   = "showCategory_"
	reminderPrefix = "dueReminderSent_"
)

// Store is the string key/value store the preferences live in
type Store interface {
	GetString(key string) (string, bool, error)
	SetString(key, value string) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)
}

// Config is everything a reconciliation pass needs from the preference store
type Config struct {
	Rules            []models.PriorityRule
	Notify           models.NotificationPreferences
	Retention        models.TrashRetentionPolicy
	ShowCategoryList bool
	// Pinned category ids in ascending order
	Pinned []int64
	// RemindedOn maps task id to the calendar day of its last due reminder
	RemindedOn map[int64]string
}

// Load reads and validates every preference. Malformed values fall back to
// their defaults and invalid rules are dropped; only store failures are
// returned as errors. A nil store yields the defaults.
func Load(store Store, logger *log.Logger) (*Config, error) {
	logger = logging.OrDiscard(logger)
	cfg := &Config{
		Notify:     models.DefaultNotificationPreferences(),
		Retention:  models.DefaultRetentionPolicy(),
		RemindedOn: map[int64]string{},
	}
	if store == nil {
		return cfg, nil
	}

	var err error
	if cfg.Retention.RetentionDays, err = positiveInt(store, logger, KeyTrashRetentionDays, models.DefaultRetentionDays); err != nil {
		return nil, err
	}
	if cfg.Notify.NotifyOnPriorityChange, err = boolean(store, logger, KeyNotifyOnPriorityChange, false); err != nil {
		return nil, err
	}
	if cfg.Notify.NotifyDueReminders, err = boolean(store, logger, KeyNotifyDueReminders, false); err != nil {
		return nil, err
	}
	if cfg.Notify.DueReminderDays, err = positiveInt(store, logger, KeyDueReminderDays, 1); err != nil {
		return nil, err
	}
	if cfg.ShowCategoryList, err = boolean(store, logger, KeyShowCategoryList, false); err != nil {
		return nil, err
	}
	if cfg.Rules, err = LoadRules(store, logger); err != nil {
		return nil, err
	}
	if cfg.Pinned, err = pinned(store); err != nil {
		return nil, err
	}
	if err := loadReminders(store, cfg.RemindedOn); err != nil {
		return nil, err
	}
	return cfg, nil
}

func positiveInt(store Store, logger *log.Logger, key string, def int) (int, error) {
	raw, ok, err := store.GetString(key)
	if err != nil || !ok {
		return def, err
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(raw))
	if convErr != nil || n < 1 {
		logger.Warn("ignoring malformed preference", "key", key, "value", raw, "default", def)
		return def, nil
	}
	return n, nil
}

func boolean(store Store, logger *log.Logger, key string, def bool) (bool, error) {
	raw, ok, err := store.GetString(key)
	if err != nil || !ok {
		return def, err
	}
	b, convErr := strconv.ParseBool(strings.TrimSpace(raw))
	if convErr != nil {
		logger.Warn("ignoring malformed preference", "key", key, "value", raw, "default", def)
		return def, nil
	}
	return b, nil
}

// LoadRules decodes the stored escalation rules, skipping invalid entries
func LoadRules(store Store, logger *log.Logger) ([]models.PriorityRule, error) {
	logger = logging.OrDiscard(logger)
	raw, ok, err := store.GetString(KeyPriorityRules)
	if err != nil || !ok || strings.TrimSpace(raw) == "" {
		return nil, err
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logger.Warn("ignoring malformed priority rules", "err", err)
		return nil, nil
	}

	rules := make([]models.PriorityRule, 0, len(entries))
	for i, entry := range entries {
		var rule models.PriorityRule
		if err := json.Unmarshal(entry, &rule); err != nil {
			logger.Warn("skipping malformed priority rule", "index", i, "err", err)
			continue
		}
		if err := rule.Validate(); err != nil {
			logger.Warn("skipping invalid priority rule", "index", i, "err", err)
			continue
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// SaveRules replaces the stored escalation rules. Every rule must be valid.
func SaveRules(store Store, rules []models.PriorityRule) error {
	for i, rule := range rules {
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	if rules == nil {
		rules = []models.PriorityRule{}
	}
	data, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to encode priority rules: %w", err)
	}
	return store.SetString(KeyPriorityRules, string(data))
}

// Known lists the keys users may set directly with their validators
var Known = map[string]func(string) error{
	KeyTrashRetentionDays:     validPositiveInt,
	KeyNotifyOnPriorityChange: validBool,
	KeyNotifyDueReminders:     validBool,
	KeyDueReminderDays:        validPositiveInt,
	KeyShowCategoryList:       validBool,
}

// KnownKeys returns the keys of Known, sorted
func KnownKeys() []string {
	keys := make([]string, 0, len(Known))
	for k := range Known {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set validates value for a known key and stores it
func Set(store Store, key, value string) error {
	validate, ok := Known[key]
	if !ok {
		return fmt.Errorf("unknown preference %q (known: %s)", key, strings.Join(KnownKeys(), ", "))
	}
	value = strings.TrimSpace(value)
	if err := validate(value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return store.SetString(key, value)
}

func validPositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fmt.Errorf("%q is not a positive integer", s)
	}
	return nil
}

func validBool(s string) error {
	if _, err := strconv.ParseBool(s); err != nil {
		return fmt.Errorf("%q is not true or false", s)
	}
	return nil
}

func pinnedKey(categoryID int64) string {
	return pinnedPrefix + strconv.FormatInt(categoryID, 10)
}

// Pin shows the category as its own section in the unscoped list
func Pin(store Store, categoryID int64) error {
	return store.SetString(pinnedKey(categoryID), "true")
}

// Unpin removes the category's own section
func Unpin(store Store, categoryID int64) error {
	return store.Delete(pinnedKey(categoryID))
}

func pinned(store Store) ([]int64, error) {
	keys, err := store.Keys(pinnedPrefix)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for _, key := range keys {
		id, err := strconv.ParseInt(strings.TrimPrefix(key, pinnedPrefix), 10, 64)
		if err != nil {
			continue
		}
		raw, ok, err := store.GetString(key)
		if err != nil {
			return nil, err
		}
		if on, _ := strconv.ParseBool(raw); ok && on {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func loadReminders(store Store, into map[int64]string) error {
	keys, err := store.Keys(reminderPrefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		id, err := strconv.ParseInt(strings.TrimPrefix(key, reminderPrefix), 10, 64)
		if err != nil {
			continue
		}
		day, ok, err := store.GetString(key)
		if err != nil {
			return err
		}
		if ok {
			into[id] = day
		}
	}
	return nil
}

// MarkReminded records that the due reminder of taskID went out on the
// calendar day of at
func MarkReminded(store Store, taskID int64, at time.Time) error {
	return store.SetString(reminderPrefix+strconv.FormatInt(taskID, 10), clock.DayKey(at))
}

// ForgetReminders drops markers of tasks not in keep, so the store does
// not grow with deleted tasks
func ForgetReminders(store Store, reminded map[int64]string, keep map[int64]bool) error {
	for id := range reminded {
		if keep[id] {
			continue
		}
		if err := store.Delete(reminderPrefix + strconv.FormatInt(id, 10)); err != nil {
			return err
		}
	}
	return nil
}
