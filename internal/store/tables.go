package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names.
const (
	tableLearners    = "learners"
	tableSessions    = "sessions"
	tableLLMRequests = "llm_requests"
	tableSequence    = "write_sequence"
)

var (
	learnerColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString, Unique: true},
		{Name: "current_level", Type: field.TypeString},
		{Name: "learning_goals", Type: field.TypeString, Default: "[]"},
		{Name: "preferred_topics", Type: field.TypeString, Default: "[]"},
		{Name: "progress", Type: field.TypeString, Default: "{}"},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	learnersTable = &schema.Table{
		Name:       tableLearners,
		Columns:    learnerColumns,
		PrimaryKey: []*schema.Column{learnerColumns[0]},
	}

	sessionColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "session_id", Type: field.TypeString, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString, Default: ""},
		{Name: "persona", Type: field.TypeString, Default: ""},
		{Name: "started_at", Type: field.TypeInt64},
		{Name: "metrics", Type: field.TypeString, Default: "{}"},
	}
	sessionsTable = &schema.Table{
		Name:       tableSessions,
		Columns:    sessionColumns,
		PrimaryKey: []*schema.Column{sessionColumns[0]},
		Indexes: []*schema.Index{
			{Name: "session_user_started", Columns: []*schema.Column{sessionColumns[3], sessionColumns[6]}},
		},
	}

	llmRequestColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Default: ""},
		{Name: "response_body", Type: field.TypeString, Default: ""},
	}
	llmRequestsTable = &schema.Table{
		Name:       tableLLMRequests,
		Columns:    llmRequestColumns,
		PrimaryKey: []*schema.Column{llmRequestColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequest_purpose", Columns: []*schema.Column{llmRequestColumns[5]}},
			{Name: "llmrequest_success", Columns: []*schema.Column{llmRequestColumns[9]}},
		},
	}

	sequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	sequenceTable = &schema.Table{
		Name:       tableSequence,
		Columns:    sequenceColumns,
		PrimaryKey: []*schema.Column{sequenceColumns[0]},
	}

	// Tables is every table the store migrates.
	Tables = []*schema.Table{learnersTable, sessionsTable, llmRequestsTable, sequenceTable}
)
