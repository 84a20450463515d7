package model

import "time"

// Message is the immutable in-memory form of one inbound email, parsed from
// the raw transport-layer message. It is discarded after a single pipeline
// pass; the persisted copy lives in the audit store.
type Message struct {
	// MessageID is the provider-assigned identifier, globally unique within
	// the mailbox. Used for idempotency checks and reply threading.
	MessageID string

	// Subject is the decoded subject line.
	Subject string

	// Sender is the From header, either "Display Name <addr>" or a bare
	// address.
	Sender string

	// Body is the plain-text body.
	Body string

	// ReceivedAt is when the message was received.
	ReceivedAt time.Time
}

// Verdict is the structured output of a classification call.
type Verdict struct {
	IsRecruiter    bool `json:"is_recruiter"`
	MentionsTopics bool `json:"mentions_topics"`
	IsFollowup     bool `json:"is_followup"`

	// RecruiterExplanation and TopicExplanation justify the recruiter and
	// topic answers. Non-empty on every successful classification.
	RecruiterExplanation string `json:"recruiter_explanation"`
	TopicExplanation     string `json:"topic_explanation"`
}

// JobDetails holds structured job metadata extracted from a recruiter email.
// Every field may be empty when the email does not mention it.
type JobDetails struct {
	CompanyName         string   `json:"company_name"`
	RoleTitle           string   `json:"role_title"`
	JobType             string   `json:"job_type"`
	Location            string   `json:"location"`
	SalaryRange         string   `json:"salary_range"`
	RequiredExperience  string   `json:"required_experience"`
	Technologies        []string `json:"technologies"`
	RecruiterName       string   `json:"recruiter_name"`
	ApplicationDeadline string   `json:"application_deadline"`
}

// AuditRecord is the persisted history of one processed message: the message
// fields, the classification verdict, and any extracted job metadata. Keyed
// by MessageID.
type AuditRecord struct {
	MessageID  string    `json:"message_id"`
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`

	Verdict Verdict `json:"verdict"`

	// Details is nil when extraction was skipped or failed.
	Details *JobDetails `json:"details,omitempty"`

	// CreatedAt is when the record was first written.
	CreatedAt time.Time `json:"created_at"`
}

// DraftSpec is a materialized reply, ready for submission to the mail
// handler's draft store.
type DraftSpec struct {
	// To is the recipient address.
	To string

	// Subject carries the "Re: " prefixed subject.
	Subject string

	// Body is the reply text followed by the quoted original.
	Body string

	// InReplyTo and References both hold the original message's identifier
	// so the draft threads correctly in any IMAP client.
	InReplyTo  string
	References string
}
