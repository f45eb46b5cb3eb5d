package ocistore

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/oracle/oci-go-sdk/v65/objectstorage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagebench/errors"
	"imagebench/store"
)

type serviceError struct{ status int }

func (e serviceError) Error() string           { return http.StatusText(e.status) }
func (e serviceError) GetHTTPStatusCode() int  { return e.status }
func (e serviceError) GetMessage() string      { return http.StatusText(e.status) }
func (e serviceError) GetCode() string         { return "ObjectNotFound" }
func (e serviceError) GetOpcRequestID() string { return "req-1" }

type fakeClient struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func (f *fakeClient) PutObject(_ context.Context, req objectstorage.PutObjectRequest) (objectstorage.PutObjectResponse, error) {
	if f.putErr != nil {
		return objectstorage.PutObjectResponse{}, f.putErr
	}
	data, err := io.ReadAll(req.PutObjectBody)
	if err != nil {
		return objectstorage.PutObjectResponse{}, err
	}
	f.mu.Lock()
	f.objects[*req.BucketName+"/"+*req.ObjectName] = data
	f.mu.Unlock()
	return objectstorage.PutObjectResponse{}, nil
}

func (f *fakeClient) GetObject(_ context.Context, req objectstorage.GetObjectRequest) (objectstorage.GetObjectResponse, error) {
	f.mu.Lock()
	data, ok := f.objects[*req.BucketName+"/"+*req.ObjectName]
	f.mu.Unlock()
	if !ok {
		return objectstorage.GetObjectResponse{}, serviceError{status: http.StatusNotFound}
	}
	return objectstorage.GetObjectResponse{Content: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeClient) DeleteObject(_ context.Context, req objectstorage.DeleteObjectRequest) (objectstorage.DeleteObjectResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := *req.BucketName + "/" + *req.ObjectName
	if _, ok := f.objects[key]; !ok {
		return objectstorage.DeleteObjectResponse{}, serviceError{status: http.StatusNotFound}
	}
	delete(f.objects, key)
	return objectstorage.DeleteObjectResponse{}, nil
}

func TestRoundTrip(t *testing.T) {
	fake := &fakeClient{objects: map[string][]byte{}}
	s := New(fake, "ns", "bench")
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "img_000001.png", []byte("one")))
	require.NoError(t, s.Put(ctx, "img_000001.png", []byte("uno")))

	got, err := s.Get(ctx, "img_000001.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("uno"), got)
	assert.Len(t, fake.objects, 1)

	require.NoError(t, s.Delete(ctx, "img_000001.png"))
	require.NoError(t, s.Delete(ctx, "img_000001.png"))

	_, err = s.Get(ctx, "img_000001.png")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestPutFailurePropagates(t *testing.T) {
	s := New(&fakeClient{objects: map[string][]byte{}, putErr: serviceError{status: http.StatusTooManyRequests}}, "ns", "bench")

	err := s.Put(context.Background(), "k", []byte("v"))
	require.Error(t, err)
	assert.False(t, isNotFound(err))
	assert.Contains(t, err.Error(), "oci put k")
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, isNotFound(nil))
	assert.True(t, isNotFound(errors.Wrap(serviceError{status: http.StatusNotFound}, "wrapped")))
	assert.False(t, isNotFound(serviceError{status: http.StatusInternalServerError}))
}

func TestOpenRequiresBucket(t *testing.T) {
	_, err := Open(context.Background(), Options{})
	assert.Error(t, err)
}

func TestNewHTTPClient(t *testing.T) {
	c, err := newHTTPClient(10)
	require.NoError(t, err)
	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 50, tr.MaxIdleConnsPerHost)
}
