package utils

const (
	OrganizationName                      = "SOS Condo"
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"

	// BcryptCost is the work factor for stored password hashes.
	BcryptCost = 12

	MinPasswordLength = 8

	TestEmailSuffix = "testing@sos-condo.local"
)
