package ports

import "context"

// UploadOptions configures a media upload.
type UploadOptions struct {
	// Folder is the remote folder (e.g. "blog_images").
	Folder string
	// PublicID optionally pins the remote identifier.
	PublicID string
	// Transformation is an eager transformation string such as
	// "q_auto:good,w_1200,c_limit,f_auto".
	Transformation string
}

// UploadResult is the media host's answer to an upload.
type UploadResult struct {
	SecureURL string
	PublicID  string
	Bytes     int64
	Format    string
}

// MediaClient is the outbound port to the hosted media service.
type MediaClient interface {
	// Upload stores data and returns its public HTTPS URL.
	Upload(ctx context.Context, data []byte, opts UploadOptions) (*UploadResult, error)

	// Delete removes the asset with publicID. An empty publicID is a no-op.
	Delete(ctx context.Context, publicID string) error

	// PublicIDFromURL extracts the asset identifier from a delivery URL,
	// or "" when the URL does not belong to the media host.
	PublicIDFromURL(url string) string
}

// TokenIssuer issues and verifies signed authentication tokens.
type TokenIssuer interface {
	// Sign returns a token whose subject is the given user ID.
	Sign(subject string) (string, error)

	// Verify returns the subject of a valid token, or an error wrapping
	// domain.ErrUnauthorized.
	Verify(token string) (string, error)
}

// PasswordHasher hashes and compares account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
