package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldUserID     = "user_id"
	FieldAccountID  = "account_id"
	FieldPlanID     = "plan_id"
	FieldLoanID     = "loan_id"
	FieldMonth      = "month"
	FieldAmount     = "amount"
	FieldError      = "error"
	FieldDurationMS = "duration_ms"
)
