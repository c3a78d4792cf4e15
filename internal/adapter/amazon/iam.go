package amazon

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/hive-corporation/keyguard/internal/core/ports"
)

var ErrKeyOwnerUnknown = errors.New("access key has no associated user")

// IAMAPI is the subset of the IAM client used to manage access keys.
type IAMAPI interface {
	GetAccessKeyLastUsed(ctx context.Context, params *iam.GetAccessKeyLastUsedInput, optFns ...func(*iam.Options)) (*iam.GetAccessKeyLastUsedOutput, error)
	UpdateAccessKey(ctx context.Context, params *iam.UpdateAccessKeyInput, optFns ...func(*iam.Options)) (*iam.UpdateAccessKeyOutput, error)
}

type IAMIdentityManager struct {
	client IAMAPI
}

func NewIAMIdentityManager(client IAMAPI) *IAMIdentityManager {
	return &IAMIdentityManager{client: client}
}

// FindKeyOwner resolves the user through GetAccessKeyLastUsed, which works
// for any key in the account without knowing the user up front.
func (m *IAMIdentityManager) FindKeyOwner(ctx context.Context, accessKeyID string) (string, error) {
	out, err := m.client.GetAccessKeyLastUsed(ctx, &iam.GetAccessKeyLastUsedInput{
		AccessKeyId: aws.String(accessKeyID),
	})
	if err != nil {
		return "", fmt.Errorf("get access key last used: %w", err)
	}

	userName := aws.ToString(out.UserName)
	if userName == "" {
		return "", ErrKeyOwnerUnknown
	}
	return userName, nil
}

func (m *IAMIdentityManager) SetKeyStatus(ctx context.Context, userName, accessKeyID string, status ports.KeyStatus) error {
	statusType, err := toStatusType(status)
	if err != nil {
		return err
	}

	_, err = m.client.UpdateAccessKey(ctx, &iam.UpdateAccessKeyInput{
		AccessKeyId: aws.String(accessKeyID),
		UserName:    aws.String(userName),
		Status:      statusType,
	})
	if err != nil {
		return fmt.Errorf("update access key: %w", err)
	}
	return nil
}

func toStatusType(status ports.KeyStatus) (types.StatusType, error) {
	switch status {
	case ports.KeyStatusActive:
		return types.StatusTypeActive, nil
	case ports.KeyStatusInactive:
		return types.StatusTypeInactive, nil
	default:
		return "", fmt.Errorf("unsupported key status %q", status)
	}
}
