// Package storage provides the object storage operations used by the
// export result pipeline.
//
// Results of an export live under a prefix in a bucket and are addressed by
// a Locator parsed from an "s3://bucket/prefix" URI. Two backends implement
// ObjectStore:
//
//   - S3Store, built on the AWS SDK for Go v2
//   - MinioStore, for S3 compatible endpoints
//
// Callers that run downloads concurrently obtain one client per unit of
// work from a ClientFactory:
//
//	factory, err := storage.NewClientFactory(ctx, storage.Options{
//	    Backend:         storage.BackendS3,
//	    AccessKeyID:     creds.AWSAccessKeyID,
//	    SecretAccessKey: creds.AWSSecretAccessKey,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store, err := factory(ctx)
package storage
