// Package ocistore implements store.Store on OCI Object Storage. Each key
// becomes one object in the configured bucket.
package ocistore

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/objectstorage"

	"imagebench/config"
	"imagebench/errors"
	"imagebench/store"
)

// Compile-time check for ensuring Store implements store.Store.
var _ store.Store = (*Store)(nil)

// objectClient is the part of objectstorage.ObjectStorageClient the store uses.
type objectClient interface {
	PutObject(ctx context.Context, request objectstorage.PutObjectRequest) (objectstorage.PutObjectResponse, error)
	GetObject(ctx context.Context, request objectstorage.GetObjectRequest) (objectstorage.GetObjectResponse, error)
	DeleteObject(ctx context.Context, request objectstorage.DeleteObjectRequest) (objectstorage.DeleteObjectResponse, error)
}

// Options select the OCI tenancy and bucket.
type Options struct {
	ConfigFile string
	Profile    string
	// Namespace is fetched from the service when empty.
	Namespace string
	Bucket    string
	// Host overrides the SDK's regional endpoint.
	Host string
	// MaxConns sizes the HTTP connection pool.
	MaxConns int
}

// Store puts and gets whole objects; every call is one HTTP request.
type Store struct {
	client    objectClient
	namespace string
	bucket    string
}

// Open loads the OCI config file and prepares a client for opts.Bucket.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, errors.New("oci bucket name is required")
	}

	provider, err := config.LoadOCIConfig(opts.ConfigFile, opts.Profile)
	if err != nil {
		return nil, err
	}

	client, err := objectstorage.NewObjectStorageClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, errors.Wrap(err, "create object storage client")
	}
	httpClient, err := newHTTPClient(opts.MaxConns)
	if err != nil {
		return nil, err
	}
	client.HTTPClient = httpClient
	if opts.Host != "" {
		client.Host = opts.Host
	}

	namespace := opts.Namespace
	if namespace == "" {
		resp, err := client.GetNamespace(ctx, objectstorage.GetNamespaceRequest{})
		if err != nil {
			return nil, errors.Wrap(err, "fetch object storage namespace")
		}
		namespace = *resp.Value
	}

	return New(client, namespace, opts.Bucket), nil
}

// New wraps an existing client.
func New(client objectClient, namespace, bucket string) *Store {
	return &Store{client: client, namespace: namespace, bucket: bucket}
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.client.PutObject(ctx, objectstorage.PutObjectRequest{
		NamespaceName: common.String(s.namespace),
		BucketName:    common.String(s.bucket),
		ObjectName:    common.String(key),
		ContentLength: common.Int64(int64(len(value))),
		PutObjectBody: io.NopCloser(bytes.NewReader(value)),
	})
	return errors.Wrapf(err, "oci put %s", key)
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.client.GetObject(ctx, objectstorage.GetObjectRequest{
		NamespaceName: common.String(s.namespace),
		BucketName:    common.String(s.bucket),
		ObjectName:    common.String(key),
	})
	if isNotFound(err) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "oci get %s", key)
	}
	defer resp.Content.Close()

	data, err := io.ReadAll(resp.Content)
	if err != nil {
		return nil, errors.Wrapf(err, "read object %s", key)
	}
	return data, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, objectstorage.DeleteObjectRequest{
		NamespaceName: common.String(s.namespace),
		BucketName:    common.String(s.bucket),
		ObjectName:    common.String(key),
	})
	if isNotFound(err) {
		return nil
	}
	return errors.Wrapf(err, "oci delete %s", key)
}

func (s *Store) Close() error { return nil }

// statusCoder is satisfied by common.ServiceError.
type statusCoder interface {
	GetHTTPStatusCode() int
}

func isNotFound(err error) bool {
	var sc statusCoder
	return err != nil && errors.As(err, &sc) && sc.GetHTTPStatusCode() == http.StatusNotFound
}
