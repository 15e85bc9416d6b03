package digest

// GenerateDigestRequest is the internal trigger payload used by schedulers
// and ops tooling to generate a digest on another user's behalf.
type GenerateDigestRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
}
