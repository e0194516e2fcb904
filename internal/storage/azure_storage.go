package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// UploadArchiver keeps a copy of accepted uploads for later review.
type UploadArchiver interface {
	Archive(ctx context.Context, filename string, data []byte) (string, error)
}

type azureArchiver struct {
	client    *azblob.Client
	container string
}

// NewAzureArchiver creates a blob-storage archiver using shared-key
// credentials.
func NewAzureArchiver(accountName, accountKey, container string) (UploadArchiver, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &azureArchiver{client: client, container: container}, nil
}

// Archive uploads the original bytes under a timestamped blob name and
// returns that name.
func (a *azureArchiver) Archive(ctx context.Context, filename string, data []byte) (string, error) {
	blobName := fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102T150405.000"), filename)

	if _, err := a.client.UploadBuffer(ctx, a.container, blobName, data, nil); err != nil {
		return "", fmt.Errorf("blob upload failed: %w", err)
	}
	return blobName, nil
}
