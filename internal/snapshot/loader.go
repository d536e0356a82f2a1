// Package snapshot reads the scraper's per-region JSON documents from object
// storage.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"findvax-notifier/internal/common/errors"
	"findvax-notifier/internal/common/logger"
	"findvax-notifier/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"
)

// S3API is the subset of the S3 client the loader needs.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// KeyResolver maps a region onto object keys.
type KeyResolver interface {
	AvailabilityKeyFor(region string) string
	LocationsKeyFor(region string) string
}

// Snapshot is the data one pipeline run works from. It is never re-read
// mid-run.
type Snapshot struct {
	Region       string
	Locations    []models.Location
	Availability []models.AvailabilitySlot
}

type S3Loader struct {
	client S3API
	bucket string
	keys   KeyResolver
	logger logger.Logger
}

func NewS3Loader(client S3API, bucket string, keys KeyResolver, log logger.Logger) *S3Loader {
	return &S3Loader{
		client: client,
		bucket: bucket,
		keys:   keys,
		logger: log.WithFields(map[string]interface{}{"component": "snapshot", "bucket": bucket}),
	}
}

// Load fetches both documents for region concurrently.
func (l *S3Loader) Load(ctx context.Context, region string) (*Snapshot, error) {
	snap := &Snapshot{Region: region}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return l.getJSON(gctx, l.keys.AvailabilityKeyFor(region), &snap.Availability)
	})
	g.Go(func() error {
		return l.getJSON(gctx, l.keys.LocationsKeyFor(region), &snap.Locations)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.logger.Info("snapshot loaded", map[string]interface{}{
		"region":       region,
		"locations":    len(snap.Locations),
		"availability": len(snap.Availability),
	})
	return snap, nil
}

// LoadLocations fetches only the location document for region.
func (l *S3Loader) LoadLocations(ctx context.Context, region string) ([]models.Location, error) {
	var locations []models.Location
	if err := l.getJSON(ctx, l.keys.LocationsKeyFor(region), &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (l *S3Loader) getJSON(ctx context.Context, key string, out interface{}) error {
	obj, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.NewSnapshotLoadFailedError(key, err)
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return errors.NewSnapshotLoadFailedError(key, fmt.Errorf("read body: %w", err))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.NewSnapshotLoadFailedError(key, fmt.Errorf("decode: %w", err))
	}
	return nil
}
