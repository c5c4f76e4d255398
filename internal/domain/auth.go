package domain

// SubjectType differentiates requester vs agent tokens.
type SubjectType string

const (
	SubjectTypeUser  SubjectType = "USER"
	SubjectTypeAgent SubjectType = "AGENT"
)
