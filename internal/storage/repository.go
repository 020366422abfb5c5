// Package storage provides the SQLite-backed persistence layer: recurring
// rules, ledger entries, budgets, notifications and the scheduler lease.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"famledger/internal/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Instants are stored as UTC RFC3339 strings at second precision so
// lexicographic comparison in SQL matches chronological order.
const (
	instantFormat = time.RFC3339
	dateFormat    = "2006-01-02"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- recurring rules ---

const ruleColumns = `id, family_id, name, type, amount_minor, currency, category_id, member_id,
	freq_unit, freq_interval, by_month_day, start_date, end_date, timezone,
	next_run_at, paused, created_at, updated_at`

func (r *SQLiteRepository) FindDueRules(ctx context.Context, now time.Time) ([]core.RecurringRule, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+ruleColumns+` FROM recurring_rules
		WHERE paused = 0 AND next_run_at <> '' AND next_run_at <= ?
		ORDER BY next_run_at`, formatInstant(now))
	if err != nil {
		return nil, fmt.Errorf("find due rules: %w", err)
	}
	defer rows.Close()
	return scanRules(rows)
}

func (r *SQLiteRepository) FindRulesByFamily(ctx context.Context, familyID string) ([]core.RecurringRule, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+ruleColumns+` FROM recurring_rules
		WHERE family_id = ? ORDER BY created_at`, familyID)
	if err != nil {
		return nil, fmt.Errorf("find rules by family: %w", err)
	}
	defer rows.Close()
	return scanRules(rows)
}

func (r *SQLiteRepository) FindRule(ctx context.Context, id, familyID string) (core.RecurringRule, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM recurring_rules
		WHERE id = ? AND family_id = ?`, id, familyID)
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringRule{}, fmt.Errorf("%w: recurring rule %s", core.ErrNotFound, id)
	}
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("find rule: %w", err)
	}
	return rule, nil
}

func (r *SQLiteRepository) SaveRule(ctx context.Context, rule *core.RecurringRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rule.CreatedAt, rule.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, `INSERT INTO recurring_rules (`+ruleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.FamilyID, rule.Name, string(rule.Type), rule.AmountMinor, rule.Currency,
		rule.CategoryID, rule.MemberID, string(rule.Frequency.Unit), rule.Frequency.Interval,
		encodeMonthDays(rule.Frequency.ByMonthDay), formatDate(rule.StartDate), formatDate(rule.EndDate),
		rule.Timezone, formatInstant(rule.NextRunAt), boolToInt(rule.Paused),
		formatInstant(rule.CreatedAt), formatInstant(rule.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}

	slog.InfoContext(ctx, "Recurring rule saved",
		"rule_id", rule.ID, "family_id", rule.FamilyID, "name", rule.Name)
	return nil
}

func (r *SQLiteRepository) UpdateRule(ctx context.Context, rule core.RecurringRule) error {
	res, err := r.db.ExecContext(ctx, `UPDATE recurring_rules SET
		name = ?, type = ?, amount_minor = ?, currency = ?, category_id = ?, member_id = ?,
		freq_unit = ?, freq_interval = ?, by_month_day = ?, start_date = ?, end_date = ?,
		timezone = ?, next_run_at = ?, paused = ?, updated_at = ?
		WHERE id = ? AND family_id = ?`,
		rule.Name, string(rule.Type), rule.AmountMinor, rule.Currency, rule.CategoryID, rule.MemberID,
		string(rule.Frequency.Unit), rule.Frequency.Interval, encodeMonthDays(rule.Frequency.ByMonthDay),
		formatDate(rule.StartDate), formatDate(rule.EndDate), rule.Timezone,
		formatInstant(rule.NextRunAt), boolToInt(rule.Paused), formatInstant(time.Now().UTC()),
		rule.ID, rule.FamilyID)
	if err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	return requireRow(res, "recurring rule "+rule.ID)
}

func (r *SQLiteRepository) UpdateRuleSchedule(ctx context.Context, id string, nextRunAt time.Time, paused bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE recurring_rules
		SET next_run_at = ?, paused = ?, updated_at = ? WHERE id = ?`,
		formatInstant(nextRunAt), boolToInt(paused), formatInstant(time.Now().UTC()), id)
	if err != nil {
		return fmt.Errorf("update rule schedule: %w", err)
	}
	return requireRow(res, "recurring rule "+id)
}

func (r *SQLiteRepository) DeleteRule(ctx context.Context, id, familyID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_rules WHERE id = ? AND family_id = ?`, id, familyID)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	// Entries already posted from the rule keep their back-reference.
	return requireRow(res, "recurring rule "+id)
}

// --- ledger entries ---

const entryColumns = `id, family_id, member_id, type, amount_minor, currency, category_id,
	occurred_at, notes, recurring_id, created_at, updated_at, deleted_at`

func (r *SQLiteRepository) SaveEntry(ctx context.Context, entry *core.LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt, entry.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, `INSERT INTO ledger_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '')`,
		entry.ID, entry.FamilyID, entry.MemberID, string(entry.Type),
		entry.Amount.Minor, entry.Amount.Currency, entry.CategoryID,
		formatInstant(entry.OccurredAt), entry.Notes, entry.RecurringID,
		formatInstant(entry.CreatedAt), formatInstant(entry.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) FindExpensesInRange(ctx context.Context, familyID string, from, to time.Time) ([]core.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM ledger_entries
		WHERE family_id = ? AND type = ? AND deleted_at = '' AND occurred_at BETWEEN ? AND ?
		ORDER BY occurred_at`, familyID, string(core.Expense), formatInstant(from), formatInstant(to))
	if err != nil {
		return nil, fmt.Errorf("find expenses in range: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *SQLiteRepository) FindExpensesByCategoryInRange(ctx context.Context, familyID, categoryID string, from, to time.Time) ([]core.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM ledger_entries
		WHERE family_id = ? AND category_id = ? AND type = ? AND deleted_at = '' AND occurred_at BETWEEN ? AND ?
		ORDER BY occurred_at`, familyID, categoryID, string(core.Expense), formatInstant(from), formatInstant(to))
	if err != nil {
		return nil, fmt.Errorf("find expenses by category: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *SQLiteRepository) ListEntries(ctx context.Context, familyID string, from, to time.Time) ([]core.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM ledger_entries
		WHERE family_id = ? AND deleted_at = '' AND occurred_at BETWEEN ? AND ?
		ORDER BY occurred_at`, familyID, formatInstant(from), formatInstant(to))
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *SQLiteRepository) SoftDeleteEntry(ctx context.Context, id, familyID string) error {
	now := formatInstant(time.Now().UTC())
	res, err := r.db.ExecContext(ctx, `UPDATE ledger_entries
		SET deleted_at = ?, updated_at = ? WHERE id = ? AND family_id = ? AND deleted_at = ''`,
		now, now, id, familyID)
	if err != nil {
		return fmt.Errorf("soft delete entry: %w", err)
	}
	return requireRow(res, "ledger entry "+id)
}

// --- budgets ---

func (r *SQLiteRepository) FindBudgetsByFamily(ctx context.Context, familyID string) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, family_id, name, period_type, period_start, period_end,
		overall_limit_minor, include_recurring, alert_threshold_pct, created_at, updated_at
		FROM budgets WHERE family_id = ? ORDER BY created_at`, familyID)
	if err != nil {
		return nil, fmt.Errorf("find budgets by family: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	for i := range budgets {
		if err := r.loadBudgetCategories(ctx, &budgets[i]); err != nil {
			return nil, err
		}
	}
	return budgets, nil
}

func (r *SQLiteRepository) FindBudget(ctx context.Context, id, familyID string) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, family_id, name, period_type, period_start, period_end,
		overall_limit_minor, include_recurring, alert_threshold_pct, created_at, updated_at
		FROM budgets WHERE id = ? AND family_id = ?`, id, familyID)
	budget, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("%w: budget %s", core.ErrNotFound, id)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("find budget: %w", err)
	}
	if err := r.loadBudgetCategories(ctx, &budget); err != nil {
		return core.Budget{}, err
	}
	return budget, nil
}

func (r *SQLiteRepository) SaveBudget(ctx context.Context, budget *core.Budget) error {
	if budget.ID == "" {
		budget.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	budget.CreatedAt, budget.UpdatedAt = now, now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO budgets (id, family_id, name, period_type, period_start,
		period_end, overall_limit_minor, include_recurring, alert_threshold_pct, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		budget.ID, budget.FamilyID, budget.Name, string(budget.Period.Type),
		formatDate(budget.Period.Start), formatDate(budget.Period.End),
		budget.OverallLimitMinor, boolToInt(budget.IncludeRecurring), budget.AlertThresholdPct,
		formatInstant(budget.CreatedAt), formatInstant(budget.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	if err := insertBudgetCategories(ctx, tx, budget.ID, budget.PerCategory); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, budget core.Budget) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE budgets SET name = ?, period_type = ?, period_start = ?,
		period_end = ?, overall_limit_minor = ?, include_recurring = ?, alert_threshold_pct = ?, updated_at = ?
		WHERE id = ? AND family_id = ?`,
		budget.Name, string(budget.Period.Type), formatDate(budget.Period.Start), formatDate(budget.Period.End),
		budget.OverallLimitMinor, boolToInt(budget.IncludeRecurring), budget.AlertThresholdPct,
		formatInstant(time.Now().UTC()), budget.ID, budget.FamilyID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	if err := requireRow(res, "budget "+budget.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM budget_categories WHERE budget_id = ?`, budget.ID); err != nil {
		return fmt.Errorf("clear budget categories: %w", err)
	}
	if err := insertBudgetCategories(ctx, tx, budget.ID, budget.PerCategory); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id, familyID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ? AND family_id = ?`, id, familyID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if err := requireRow(res, "budget "+id); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM budget_categories WHERE budget_id = ?`, id); err != nil {
		return fmt.Errorf("delete budget categories: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) loadBudgetCategories(ctx context.Context, budget *core.Budget) error {
	rows, err := r.db.QueryContext(ctx, `SELECT category_id, limit_minor FROM budget_categories
		WHERE budget_id = ? ORDER BY category_id`, budget.ID)
	if err != nil {
		return fmt.Errorf("load budget categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cb core.CategoryBudget
		if err := rows.Scan(&cb.CategoryID, &cb.LimitMinor); err != nil {
			return fmt.Errorf("scan budget category: %w", err)
		}
		budget.PerCategory = append(budget.PerCategory, cb)
	}
	return rows.Err()
}

func insertBudgetCategories(ctx context.Context, tx *sql.Tx, budgetID string, categories []core.CategoryBudget) error {
	for _, cb := range categories {
		if _, err := tx.ExecContext(ctx, `INSERT INTO budget_categories (budget_id, category_id, limit_minor)
			VALUES (?, ?, ?)`, budgetID, cb.CategoryID, cb.LimitMinor); err != nil {
			return fmt.Errorf("insert budget category: %w", err)
		}
	}
	return nil
}

// --- notifications ---

func (r *SQLiteRepository) SaveNotification(ctx context.Context, n *core.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO notifications (id, family_id, member_id, kind, title,
		message, payload, is_read, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.FamilyID, n.MemberID, n.Kind, n.Title, n.Message, n.Payload,
		boolToInt(n.Read), formatInstant(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListNotifications(ctx context.Context, familyID string) ([]core.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, family_id, member_id, kind, title, message, payload,
		is_read, created_at FROM notifications WHERE family_id = ? ORDER BY created_at DESC`, familyID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []core.Notification
	for rows.Next() {
		var n core.Notification
		var read int
		var createdAt string
		if err := rows.Scan(&n.ID, &n.FamilyID, &n.MemberID, &n.Kind, &n.Title, &n.Message,
			&n.Payload, &read, &createdAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Read = read != 0
		n.CreatedAt, _ = parseInstant(createdAt)
		out = append(out, n)
	}
	return out, rows.Err()
}

// --- scheduler lease ---

// Acquire takes the named lease when it is free, expired, or already owned
// by the caller. The conditional upsert makes contention a single statement.
func (r *SQLiteRepository) Acquire(ctx context.Context, name, owner string, ttl time.Duration, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO scheduler_leases (name, owner, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET owner = excluded.owner, expires_at = excluded.expires_at
		WHERE scheduler_leases.expires_at < ? OR scheduler_leases.owner = excluded.owner`,
		name, owner, formatInstant(now.Add(ttl)), formatInstant(now))
	if err != nil {
		return false, fmt.Errorf("acquire lease: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("acquire lease result: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Release(ctx context.Context, name, owner string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM scheduler_leases WHERE name = ? AND owner = ?`,
		name, owner); err != nil {
		return fmt.Errorf("release lease: %w", err)
	}
	return nil
}

// --- scan and codec helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (core.RecurringRule, error) {
	var (
		rule                          core.RecurringRule
		typ, unit, monthDays          string
		startDate, endDate, nextRunAt string
		paused                        int
		createdAt, updatedAt          string
	)
	err := row.Scan(&rule.ID, &rule.FamilyID, &rule.Name, &typ, &rule.AmountMinor, &rule.Currency,
		&rule.CategoryID, &rule.MemberID, &unit, &rule.Frequency.Interval, &monthDays,
		&startDate, &endDate, &rule.Timezone, &nextRunAt, &paused, &createdAt, &updatedAt)
	if err != nil {
		return core.RecurringRule{}, err
	}
	rule.Type = core.TransactionType(typ)
	rule.Frequency.Unit = core.FrequencyUnit(unit)
	rule.Frequency.ByMonthDay = decodeMonthDays(monthDays)
	rule.Paused = paused != 0
	if rule.StartDate, err = parseDate(startDate); err != nil {
		return core.RecurringRule{}, fmt.Errorf("parse start date: %w", err)
	}
	if rule.EndDate, err = parseDate(endDate); err != nil {
		return core.RecurringRule{}, fmt.Errorf("parse end date: %w", err)
	}
	if rule.NextRunAt, err = parseInstant(nextRunAt); err != nil {
		return core.RecurringRule{}, fmt.Errorf("parse next run: %w", err)
	}
	rule.CreatedAt, _ = parseInstant(createdAt)
	rule.UpdatedAt, _ = parseInstant(updatedAt)
	return rule, nil
}

func scanRules(rows *sql.Rows) ([]core.RecurringRule, error) {
	var out []core.RecurringRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

func scanEntries(rows *sql.Rows) ([]core.LedgerEntry, error) {
	var out []core.LedgerEntry
	for rows.Next() {
		var (
			e                               core.LedgerEntry
			typ, occurredAt                 string
			createdAt, updatedAt, deletedAt string
		)
		if err := rows.Scan(&e.ID, &e.FamilyID, &e.MemberID, &typ, &e.Amount.Minor, &e.Amount.Currency,
			&e.CategoryID, &occurredAt, &e.Notes, &e.RecurringID, &createdAt, &updatedAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Type = core.TransactionType(typ)
		var err error
		if e.OccurredAt, err = parseInstant(occurredAt); err != nil {
			return nil, fmt.Errorf("parse occurred at: %w", err)
		}
		e.CreatedAt, _ = parseInstant(createdAt)
		e.UpdatedAt, _ = parseInstant(updatedAt)
		if deletedAt != "" {
			t, err := parseInstant(deletedAt)
			if err != nil {
				return nil, fmt.Errorf("parse deleted at: %w", err)
			}
			e.DeletedAt = &t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b                      core.Budget
		periodType             string
		periodStart, periodEnd string
		includeRecurring       int
		createdAt, updatedAt   string
	)
	err := row.Scan(&b.ID, &b.FamilyID, &b.Name, &periodType, &periodStart, &periodEnd,
		&b.OverallLimitMinor, &includeRecurring, &b.AlertThresholdPct, &createdAt, &updatedAt)
	if err != nil {
		return core.Budget{}, err
	}
	b.Period.Type = core.PeriodType(periodType)
	b.IncludeRecurring = includeRecurring != 0
	if b.Period.Start, err = parseDate(periodStart); err != nil {
		return core.Budget{}, fmt.Errorf("parse period start: %w", err)
	}
	if b.Period.End, err = parseDate(periodEnd); err != nil {
		return core.Budget{}, fmt.Errorf("parse period end: %w", err)
	}
	b.CreatedAt, _ = parseInstant(createdAt)
	b.UpdatedAt, _ = parseInstant(updatedAt)
	return b, nil
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", core.ErrNotFound, what)
	}
	return nil
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(instantFormat)
}

func parseInstant(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(instantFormat, s)
}

func formatDate(d core.Date) string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format(dateFormat)
}

func parseDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return core.Date{}, err
	}
	return core.Date{Time: t}, nil
}

func encodeMonthDays(days []int) string {
	if len(days) == 0 {
		return ""
	}
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func decodeMonthDays(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		if d, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			out = append(out, d)
		}
	}
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
