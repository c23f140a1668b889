package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldStatementID  = "statement_id"
	FieldFileName     = "file_name"
	FieldMonth        = "month"
	FieldYear         = "year"
	FieldTransactions = "transactions"
	FieldPlace        = "place"
	FieldPlaceKey     = "place_key"
	FieldMappingID    = "mapping_id"
	FieldCategoryID   = "category_id"
	FieldCategoryCode = "category_code"
	FieldBatchSize    = "batch_size"
	FieldCount        = "count"
)

// Components defines standard component names.
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentStatement  = "statement"
	ComponentClassifier = "classifier"
	ComponentExport     = "export"
)

// Operations defines standard operation names.
const (
	OpImport   = "import"
	OpList     = "list"
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpExtract  = "extract"
	OpClassify = "classify"
	OpExportOp = "export"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
