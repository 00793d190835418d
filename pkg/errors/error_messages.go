package errors

// ErrorMessages maps each error code to a standard human-readable message.
var ErrorMessages = map[int]string{
	// ConfigError
	ErrConfigKeyMissing:  "Required configuration parameter is not set in any configuration layer.",
	ErrConfigFileInvalid: "Configuration file could not be parsed.",

	// ValidationError
	ErrMappingSourceTrackNegative: "Channel mapping references a negative source track index.",
	ErrMappingDuplicateChannel:    "Channel mapping assigns the same output channel more than once.",
	ErrMappingTableEmpty:          "Channel mapping table contains no entries.",

	// APIError
	ErrAPIRequestFailed:   "Request to the encoding service failed.",
	ErrAPIResponseInvalid: "Response from the encoding service could not be decoded.",
	ErrAPIStatusRejected:  "The encoding service rejected the request.",
	ErrAPIResourceMissing: "The encoding service response did not contain the expected resource.",

	// JobError
	ErrJobFailed: "The encoding job reached the ERROR state.",

	// TimeoutError
	ErrPollAttemptsExhausted: "The encoding job did not reach a terminal state within the allowed poll attempts.",
	ErrPollDeadlineExceeded:  "The encoding job did not reach a terminal state before the deadline.",
}

// GetErrorMessage returns the standard message for an error code.
func GetErrorMessage(code int) string {
	if msg, ok := ErrorMessages[code]; ok {
		return msg
	}
	return "Unknown error."
}
