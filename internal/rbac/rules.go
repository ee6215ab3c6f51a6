package rbac

const (
	PermQuestionAuthor = "question:author"
	PermQuestionView   = "question:view"
	PermAnswerGrade    = "answer:grade"
	PermGradingView    = "grading:view"
	PermGradingViewOwn = "grading:view-own"
	PermUsersManage    = "users:manage"
	PermPasswordChange = "user:change_password"
	PermEventsRead     = "events:read"
)

// RolePermissions is the default policy.
var RolePermissions = map[string][]string{
	"student": {
		PermQuestionView,
		PermAnswerGrade,
		PermGradingViewOwn,
		PermPasswordChange,
	},
	"teacher": {
		"question:*",
		PermAnswerGrade,
		PermGradingView,
		PermUsersManage,
		PermPasswordChange,
	},
	"admin": {
		"*",
	},
}
