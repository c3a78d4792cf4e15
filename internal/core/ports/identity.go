package ports

import "context"

type KeyStatus string

const (
	KeyStatusActive   KeyStatus = "Active"
	KeyStatusInactive KeyStatus = "Inactive"
)

// IdentityManager manages IAM access keys. Both operations must be safe to
// repeat: setting an already inactive key inactive is not an error.
type IdentityManager interface {
	// FindKeyOwner returns the IAM user name that owns the access key
	FindKeyOwner(ctx context.Context, accessKeyID string) (string, error)

	// SetKeyStatus changes the status of the user's access key
	SetKeyStatus(ctx context.Context, userName, accessKeyID string, status KeyStatus) error
}
