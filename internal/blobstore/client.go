package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/dgallion1/refdocs/internal/docstore"
)

// DefaultMaxAttempts is one try per call: retrying is opt-in.
const DefaultMaxAttempts = 1

// Options configures a Client.
type Options struct {
	Container string
	Timeout   time.Duration
	MaxBytes  int64 // Largest blob Read will download; <= 0 means no cap

	MaxAttempts int           // Tries per call for transient failures; <= 0 means DefaultMaxAttempts
	RetryDelay  time.Duration // First backoff between tries; 0 keeps the SDK default, < 0 means none
}

// Client reads documents from one Azure Blob Storage container. It
// implements docstore.Store.
type Client struct {
	azure      *azblob.Client
	container  string
	maxBytes   int64
	httpClient *http.Client
}

// NewClient creates a client from an Azure storage connection string.
func NewClient(connStr string, opts Options) (*Client, error) {
	if opts.Container == "" {
		return nil, fmt.Errorf("container name is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}

	httpClient := &http.Client{Timeout: opts.Timeout}
	azure, err := azblob.NewClientFromConnectionString(expandConnectionString(connStr), &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Transport: httpClient,
			Retry:     retryOptions(opts),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create blob client: %w", err)
	}

	return &Client{
		azure:      azure,
		container:  opts.Container,
		maxBytes:   opts.MaxBytes,
		httpClient: httpClient,
	}, nil
}

// retryOptions maps attempts onto the SDK retry policy, which counts
// retries rather than tries and treats zero as "use the default".
func retryOptions(opts Options) policy.RetryOptions {
	retries := int32(opts.MaxAttempts - 1)
	if retries == 0 {
		retries = -1
	}
	return policy.RetryOptions{
		MaxRetries: retries,
		RetryDelay: opts.RetryDelay,
	}
}

// List returns the names of all blobs in the container, sorted.
func (c *Client) List(ctx context.Context) ([]string, error) {
	var names []string
	pager := c.azure.NewListBlobsFlatPager(c.container, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list blobs: %w", err)
		}
		if page.Segment == nil {
			continue
		}
		for _, item := range page.Segment.BlobItems {
			if item != nil && item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}

	sort.Strings(names)
	return names, nil
}

// Read downloads a blob and returns its text. Missing blobs yield
// docstore.ErrNotFound.
func (c *Client) Read(ctx context.Context, name string) (string, error) {
	resp, err := c.azure.DownloadStream(ctx, c.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return "", fmt.Errorf("get blob %s: %w", name, docstore.ErrNotFound)
		}
		return "", fmt.Errorf("get blob %s: %w", name, err)
	}
	defer resp.Body.Close()

	body := io.Reader(resp.Body)
	if c.maxBytes > 0 {
		if resp.ContentLength != nil && *resp.ContentLength > c.maxBytes {
			return "", fmt.Errorf("blob %s exceeds max size (%d bytes)", name, c.maxBytes)
		}
		body = io.LimitReader(resp.Body, c.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read blob %s: %w", name, err)
	}
	if c.maxBytes > 0 && int64(len(data)) > c.maxBytes {
		return "", fmt.Errorf("blob %s exceeds max size (%d bytes)", name, c.maxBytes)
	}
	return docstore.DecodeText(name, data)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
