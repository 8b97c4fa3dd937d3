// Package storage wraps the cloud bucket that holds uploaded resumes and
// company logos.
package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// CloudStorageClient uploads and serves files from one GCS bucket.
type CloudStorageClient struct {
	BucketName string
	Client     *storage.Client
}

// NewCloudStorageClient connects to the bucket named by GCS_BUCKET unless a
// name is passed explicitly.
func NewCloudStorageClient(ctx context.Context, bucketName string) (*CloudStorageClient, error) {
	if bucketName == "" {
		bucketName = os.Getenv("GCS_BUCKET")
	}
	if bucketName == "" {
		return nil, fmt.Errorf("GCS_BUCKET is not configured")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud storage client: %v", err)
	}
	return &CloudStorageClient{
		BucketName: bucketName,
		Client:     client,
	}, nil
}

// UploadFile writes fileData to objectName and returns its public URL.
func (c *CloudStorageClient) UploadFile(ctx context.Context, objectName string, fileData io.Reader) (string, error) {
	obj := c.Client.Bucket(c.BucketName).Object(objectName)

	wc := obj.NewWriter(ctx)
	if _, err := io.Copy(wc, fileData); err != nil {
		return "", fmt.Errorf("failed to write data to object: %v", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close object writer: %v", err)
	}

	return c.PublicURL(objectName), nil
}

// PublicURL returns the https URL for an object in the bucket.
func (c *CloudStorageClient) PublicURL(objectName string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.BucketName, objectName)
}

// DeleteFile removes one object, ignoring objects that are already gone.
func (c *CloudStorageClient) DeleteFile(ctx context.Context, objectName string) error {
	err := c.Client.Bucket(c.BucketName).Object(objectName).Delete(ctx)
	if err == storage.ErrObjectNotExist {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete object: %v", err)
	}
	return nil
}

// ListUserObjects lists object names under the given user prefix.
func (c *CloudStorageClient) ListUserObjects(ctx context.Context, prefix string) ([]string, error) {
	var names []string

	it := c.Client.Bucket(c.BucketName).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %v", err)
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

// Close releases the underlying client.
func (c *CloudStorageClient) Close() {
	if err := c.Client.Close(); err != nil {
		log.Printf("warning: failed to close cloud storage client: %v", err)
	}
}
