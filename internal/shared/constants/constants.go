package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderCronToken     = "X-Cron-Token"

	// Context keys
	ContextKeyAdminUID = "admin_uid"
	ContextKeyUserRole = "user_role"

	// Database table names
	TableAccounts   = "accounts"
	TablePayments   = "payments"
	TableExpiryRuns = "expiry_runs"

	// MongoDB collection names (mongoose pluralised model names)
	CollectionAccounts   = "accounts"
	CollectionPayments   = "payments"
	CollectionExpiryRuns = "expiryruns"

	// Storage drivers
	DriverMySQL   = "mysql"
	DriverSQLite  = "sqlite"
	DriverMongoDB = "mongodb"
)
