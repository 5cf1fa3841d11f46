package driven

// FileValidator checks a file before upload.
// Findings are warnings; they never block the upload.
type FileValidator interface {
	Validate(name string, content []byte) []string
}

// TokenClaims are the claims read from a stored credential.
type TokenClaims struct {
	Email     string
	ExpiresAt int64
}

// TokenInspector reads claims from a credential without verifying it.
type TokenInspector interface {
	Inspect(token string) (*TokenClaims, error)
}
