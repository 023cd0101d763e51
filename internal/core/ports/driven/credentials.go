package driven

// CredentialProvider resolves the model API key at call time.
// An empty key with a nil error means no credential is configured.
type CredentialProvider interface {
	APIKey() (string, error)
}
