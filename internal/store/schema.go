package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names.
const (
	userStateTable      = "user_state"
	llmEventTable       = "llm_request_events"
	quizSessionTable    = "quiz_session_events"
	colID               = "id"
	colSequence         = "sequence"
	colTimestamp        = "timestamp"
	colProfileName      = "profile_name"
	colData             = "data"
	colUpdatedAt        = "updated_at"
	colProvider         = "provider"
	colModel            = "model"
	colPurpose          = "purpose"
	colInputTokens      = "input_tokens"
	colOutputTokens     = "output_tokens"
	colLatencyMs        = "latency_ms"
	colSuccess          = "success"
	colErrorMessage     = "error_message"
	colRequestBody      = "request_body"
	colResponseBody     = "response_body"
	colSessionID        = "session_id"
	colSkillID          = "skill_id"
	colState            = "state"
	colEstimate         = "estimate"
	colConfidence       = "confidence"
	colLowConfidence    = "low_confidence"
	colQuestionsAsked   = "questions_asked"
	colQuestionsCorrect = "questions_correct"
)

// eventColumns returns the sequence and timestamp columns every event table
// starts with.
func eventColumns() []*schema.Column {
	return []*schema.Column{
		{Name: colID, Type: field.TypeInt, Increment: true},
		{Name: colSequence, Type: field.TypeInt64, Unique: true},
		{Name: colTimestamp, Type: field.TypeTime},
	}
}

var (
	// userStateColumns holds the key-value profile table: one JSON blob per
	// normalized profile name.
	userStateColumns = []*schema.Column{
		{Name: colProfileName, Type: field.TypeString, Unique: true},
		{Name: colData, Type: field.TypeJSON},
		{Name: colUpdatedAt, Type: field.TypeTime},
	}
	userStateTableDef = &schema.Table{
		Name:       userStateTable,
		Columns:    userStateColumns,
		PrimaryKey: []*schema.Column{userStateColumns[0]},
	}

	llmEventColumns = append(eventColumns(),
		&schema.Column{Name: colProvider, Type: field.TypeString},
		&schema.Column{Name: colModel, Type: field.TypeString},
		&schema.Column{Name: colPurpose, Type: field.TypeString},
		&schema.Column{Name: colInputTokens, Type: field.TypeInt, Default: 0},
		&schema.Column{Name: colOutputTokens, Type: field.TypeInt, Default: 0},
		&schema.Column{Name: colLatencyMs, Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: colSuccess, Type: field.TypeBool},
		&schema.Column{Name: colErrorMessage, Type: field.TypeString, Default: ""},
		&schema.Column{Name: colRequestBody, Type: field.TypeString, Size: 2147483647, Default: ""},
		&schema.Column{Name: colResponseBody, Type: field.TypeString, Size: 2147483647, Default: ""},
	)
	llmEventTableDef = &schema.Table{
		Name:       llmEventTable,
		Columns:    llmEventColumns,
		PrimaryKey: []*schema.Column{llmEventColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{llmEventColumns[2]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmEventColumns[5]}},
		},
	}

	quizSessionColumns = append(eventColumns(),
		&schema.Column{Name: colProfileName, Type: field.TypeString},
		&schema.Column{Name: colSessionID, Type: field.TypeString, Unique: true},
		&schema.Column{Name: colSkillID, Type: field.TypeString},
		&schema.Column{Name: colState, Type: field.TypeString},
		&schema.Column{Name: colEstimate, Type: field.TypeFloat64},
		&schema.Column{Name: colConfidence, Type: field.TypeFloat64},
		&schema.Column{Name: colLowConfidence, Type: field.TypeBool, Default: false},
		&schema.Column{Name: colQuestionsAsked, Type: field.TypeInt},
		&schema.Column{Name: colQuestionsCorrect, Type: field.TypeInt},
	)
	quizSessionTableDef = &schema.Table{
		Name:       quizSessionTable,
		Columns:    quizSessionColumns,
		PrimaryKey: []*schema.Column{quizSessionColumns[0]},
		Indexes: []*schema.Index{
			{Name: "quizsessionevent_profile_name_skill_id", Columns: []*schema.Column{quizSessionColumns[3], quizSessionColumns[5]}},
		},
	}

	// tables is the full schema created by auto-migration.
	tables = []*schema.Table{
		userStateTableDef,
		llmEventTableDef,
		quizSessionTableDef,
	}
)
