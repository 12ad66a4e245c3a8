/*
Copyright © 2019 the InMAP authors.
This file is part of zreplace.

zreplace is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

zreplace is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with zreplace.  If not, see <http://www.gnu.org/licenses/>.
*/

package zreplaceutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"
)

// maybeDownload checks if path is an existing local file.
// If not, and path is a URL or a blob, it downloads the file
// into dir and returns the path to the downloaded file.
// The downloaded file keeps the base name of the original
// so that its format can still be determined from the extension.
// Any other path is returned unchanged.
func maybeDownload(ctx context.Context, path, dir string) (string, error) {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return downloadHTTP(ctx, path, dir)
	}
	if IsBlob(path) {
		return downloadBlob(ctx, path, dir)
	}
	return path, nil
}

// downloadHTTP downloads a file from the specified URL.
func downloadHTTP(ctx context.Context, path, dir string) (string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("zreplaceutil: parsing url '%s': %v", path, err)
	}
	req, err := http.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return "", fmt.Errorf("zreplaceutil: downloading '%s': %v", path, err)
	}
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("zreplaceutil: downloading '%s': %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("zreplaceutil: downloading '%s': %s", path, resp.Status)
	}
	return saveDownload(resp.Body, dir, u.Path)
}

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where provider
// is the name of the storage provider and name is the name of the bucket.
// The currently accepted storage providers are "file" for the local filesystem
// (where name is a directory relative to the working directory),
// "gs" for Google Cloud Storage, and "s3" for AWS S3.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("zreplaceutil.OpenBucket: %v", err)
	}
	switch u.Scheme {
	case "file":
		return fileblob.NewBucket(u.Hostname())
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	default:
		return nil, fmt.Errorf("zreplaceutil.OpenBucket: invalid provider %s", u.Scheme)
	}
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, name, c)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_ACCESS_KEY_ID and
// AWS_SECRET_ACCESS_KEY. AWS_REGION defaults to us-east-2.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name)
}

// splitBlob splits a blob path into its bucket and key.
func splitBlob(path string) (bucket, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", err
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("missing object key in '%s'", path)
	}
	return u.Scheme + "://" + u.Host, key, nil
}

// downloadBlob downloads the specified file from blob storage.
func downloadBlob(ctx context.Context, path, dir string) (string, error) {
	bucketName, key, err := splitBlob(path)
	if err != nil {
		return "", fmt.Errorf("zreplaceutil: parsing blob path '%s': %v", path, err)
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return "", fmt.Errorf("zreplaceutil: opening bucket for '%s': %v", path, err)
	}
	r, err := bucket.NewReader(ctx, key)
	if err != nil {
		return "", fmt.Errorf("zreplaceutil: downloading '%s': %v", path, err)
	}
	defer r.Close()
	return saveDownload(r, dir, key)
}

// saveDownload copies r to a file in dir named after the base of name.
func saveDownload(r io.Reader, dir, name string) (string, error) {
	local := filepath.Join(dir, "in-"+filepath.Base(name))
	w, err := os.Create(local)
	if err != nil {
		return "", fmt.Errorf("zreplaceutil: creating file for download: %v", err)
	}
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("zreplaceutil: downloading to '%s': %v", local, err)
	}
	if err = w.Close(); err != nil {
		return "", fmt.Errorf("zreplaceutil: downloading to '%s': %v", local, err)
	}
	return local, nil
}
