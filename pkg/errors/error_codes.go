package errors

// Error codes grouped by category.
const (
	// ConfigError codes (1000-1099)
	ErrConfigKeyMissing  = 1000
	ErrConfigFileInvalid = 1001

	// ValidationError codes (1100-1199)
	ErrMappingSourceTrackNegative = 1100
	ErrMappingDuplicateChannel    = 1101
	ErrMappingTableEmpty          = 1102

	// APIError codes (1200-1299)
	ErrAPIRequestFailed   = 1200
	ErrAPIResponseInvalid = 1201
	ErrAPIStatusRejected  = 1202
	ErrAPIResourceMissing = 1203

	// JobError codes (1300-1399)
	ErrJobFailed = 1300

	// TimeoutError codes (1400-1499)
	ErrPollAttemptsExhausted = 1400
	ErrPollDeadlineExceeded  = 1401
)
