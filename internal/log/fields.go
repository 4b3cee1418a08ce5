package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldAccount       = "account"
	FieldCategory      = "category"
	FieldAmountCents   = "amount_cents"
	FieldFilterField   = "filter_field"
	FieldFilterOp      = "filter_operator"
	FieldFilterCount   = "filter_count"
	FieldRecordCount   = "record_count"
	FieldGranularity   = "granularity"
	FieldSheetsRef     = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentTransaction = "transaction"
	ComponentStorage     = "storage"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentSheets      = "sheets"
	ComponentCache       = "cache"
	ComponentImport      = "import"
	ComponentRateLimit   = "rate_limit"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpList      = "list"
	OpDelete    = "delete"
	OpReconcile = "reconcile"
	OpCompose   = "compose"
	OpImport    = "import"
	OpExport    = "export"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
