package store

import (
	"context"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// accounts holds one progression account per user.
	accountsColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString, Size: 128},
		{Name: "total_xp", Type: field.TypeInt, Default: 0},
		{Name: "level", Type: field.TypeInt, Default: 1},
		{Name: "updated_at", Type: field.TypeString},
	}
	accountsTable = &schema.Table{
		Name:       "accounts",
		Columns:    accountsColumns,
		PrimaryKey: []*schema.Column{accountsColumns[0]},
	}

	// xp_transactions is the append-only experience ledger.
	xpTransactionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "user_id", Type: field.TypeString, Size: 128},
		{Name: "amount", Type: field.TypeInt},
		{Name: "source", Type: field.TypeString, Size: 32},
		{Name: "description", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeString},
	}
	xpTransactionsTable = &schema.Table{
		Name:       "xp_transactions",
		Columns:    xpTransactionsColumns,
		PrimaryKey: []*schema.Column{xpTransactionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "xptransaction_user_id", Columns: []*schema.Column{xpTransactionsColumns[2]}},
		},
	}

	streaksColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString, Size: 128},
		{Name: "current_streak", Type: field.TypeInt, Default: 0},
		{Name: "longest_streak", Type: field.TypeInt, Default: 0},
		{Name: "last_activity_date", Type: field.TypeString, Size: 10, Nullable: true},
	}
	streaksTable = &schema.Table{
		Name:       "streaks",
		Columns:    streaksColumns,
		PrimaryKey: []*schema.Column{streaksColumns[0]},
	}

	badgeDefinitionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 64},
		{Name: "name", Type: field.TypeString},
		{Name: "description", Type: field.TypeString},
		{Name: "icon", Type: field.TypeString},
		{Name: "category", Type: field.TypeString},
		{Name: "requirement_type", Type: field.TypeString, Size: 32},
		{Name: "requirement_value", Type: field.TypeInt},
		{Name: "xp_reward", Type: field.TypeInt, Default: 0},
	}
	badgeDefinitionsTable = &schema.Table{
		Name:       "badge_definitions",
		Columns:    badgeDefinitionsColumns,
		PrimaryKey: []*schema.Column{badgeDefinitionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "badgedefinition_requirement_type", Columns: []*schema.Column{badgeDefinitionsColumns[5]}},
		},
	}

	// earned_badges carries the authoritative at-most-once guard: a unique
	// index on (user_id, badge_id).
	earnedBadgesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeString, Size: 128},
		{Name: "badge_id", Type: field.TypeString, Size: 64},
		{Name: "earned_at", Type: field.TypeString},
	}
	earnedBadgesTable = &schema.Table{
		Name:       "earned_badges",
		Columns:    earnedBadgesColumns,
		PrimaryKey: []*schema.Column{earnedBadgesColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "earnedbadge_user_id_badge_id",
				Unique:  true,
				Columns: []*schema.Column{earnedBadgesColumns[1], earnedBadgesColumns[2]},
			},
		},
	}

	reviewProgressColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeString, Size: 128},
		{Name: "group_key", Type: field.TypeString, Size: 32},
		{Name: "item_id", Type: field.TypeString, Size: 128},
		{Name: "ease_factor", Type: field.TypeFloat64},
		{Name: "interval_days", Type: field.TypeInt},
		{Name: "repetitions", Type: field.TypeInt},
		{Name: "next_review_at", Type: field.TypeString, Size: 10},
		{Name: "last_reviewed_at", Type: field.TypeString, Size: 10, Nullable: true},
		{Name: "updated_at", Type: field.TypeString},
	}
	reviewProgressTable = &schema.Table{
		Name:       "review_progress",
		Columns:    reviewProgressColumns,
		PrimaryKey: []*schema.Column{reviewProgressColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "reviewprogress_user_id_group_key_item_id",
				Unique:  true,
				Columns: []*schema.Column{reviewProgressColumns[1], reviewProgressColumns[2], reviewProgressColumns[3]},
			},
		},
	}

	reviewLogColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "user_id", Type: field.TypeString, Size: 128},
		{Name: "group_key", Type: field.TypeString, Size: 32},
		{Name: "item_id", Type: field.TypeString, Size: 128},
		{Name: "quality", Type: field.TypeInt},
		{Name: "reviewed_at", Type: field.TypeString},
	}
	reviewLogTable = &schema.Table{
		Name:       "review_log",
		Columns:    reviewLogColumns,
		PrimaryKey: []*schema.Column{reviewLogColumns[0]},
		Indexes: []*schema.Index{
			{Name: "reviewlog_user_id", Columns: []*schema.Column{reviewLogColumns[2]}},
		},
	}

	llmRequestsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeString},
	}
	llmRequestsTable = &schema.Table{
		Name:       "llm_requests",
		Columns:    llmRequestsColumns,
		PrimaryKey: []*schema.Column{llmRequestsColumns[0]},
	}

	// global_sequence backs the cross-table ordering counter.
	globalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	globalSequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    globalSequenceColumns,
		PrimaryKey: []*schema.Column{globalSequenceColumns[0]},
	}

	// tables lists every table the store manages.
	tables = []*schema.Table{
		accountsTable,
		xpTransactionsTable,
		streaksTable,
		badgeDefinitionsTable,
		earnedBadgesTable,
		reviewProgressTable,
		reviewLogTable,
		llmRequestsTable,
		globalSequenceTable,
	}
)

// migrate creates or upgrades the schema. It only adds tables, columns and
// indexes; nothing is ever dropped.
func (s *Store) migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(s.drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, tables...)
}
