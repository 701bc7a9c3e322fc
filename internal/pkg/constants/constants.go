package constants

const CookieKeySecretToken = "secret_token"

// viper keys
const (
	ViperSecretKey   = "auth.secret"
	ViperHTTPAddrKey = "http.addr"
	ViperLogLevelKey = "log.level"
	ViperLogDevKey   = "log.development"

	ViperPostgresDSNKey = "postgres.dsn"
	ViperMigrateKey     = "postgres.migrate"

	ViperMetadataURLKey    = "sidra.metadata_url"
	ViperValuesURLKey      = "sidra.values_url"
	ViperDescriptionURLKey = "sidra.description_url"

	ViperFetchTimeoutKey    = "fetch.timeout"
	ViperFetchMaxRetriesKey = "fetch.max_retries"
	ViperFetchRetryDelayKey = "fetch.retry_delay"
	ViperRequestIntervalKey = "fetch.request_interval"

	ViperMetadataRetriesKey   = "harvest.metadata_retries"
	ViperTableBudgetKey       = "harvest.table_budget"
	ViperExecutionIntervalKey = "harvest.execution_interval"
	ViperConcurrencyKey       = "harvest.concurrency"
	ViperRetryFailedDelayKey  = "harvest.retry_failed_delay"
	ViperLatestOnlyKey        = "harvest.latest_only"

	ViperStateCodeKey      = "territory.state"
	ViperMunicipalitiesKey = "territory.municipalities"

	ViperDecimalSeparatorKey = "format.decimal_separator"
	ViperGroupSeparatorKey   = "format.group_separator"
	ViperPrecisionKey        = "format.precision"
)
