package model

// Backends groups all storage interfaces used by the application.
// It provides a single struct that can be passed around instead of
// multiple return values for each storage backend.
type Backends struct {
	Departments DepartmentStore
	Permissions PermissionStore
	Surveys     SurveyStore
	Submissions SubmissionStore
	Remarks     RemarkStore
	Reports     ReportStore
	Users       UsersStore
	KV          KeyValueStore
}
