package services

// MetricsReporter receives authentication engine events. Implementations
// must be safe for concurrent use.
type MetricsReporter interface {
	// RecordValidation records a token validation outcome. The outcome is
	// one of: "ok", "malformed_token", "missing_chain", "malformed_certificate",
	// "signature_invalid", "certificate_expired", "no_trusted_issuer",
	// "trust_path_invalid".
	RecordValidation(outcome string)

	// RecordRegistration records a register attempt result.
	RecordRegistration(success bool)

	// RecordAuthentication records an authenticate attempt result.
	RecordAuthentication(success bool)
}

// noopMetrics discards all events. Used when no reporter is configured.
type noopMetrics struct{}

func (noopMetrics) RecordValidation(string)   {}
func (noopMetrics) RecordRegistration(bool)   {}
func (noopMetrics) RecordAuthentication(bool) {}
