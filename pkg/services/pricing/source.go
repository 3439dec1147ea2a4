package pricing

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// ObjectGetter is the subset of the S3 client used to download pricing data.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Load builds a Table from a local path or an s3://bucket/key URL. An empty
// source disables pricing.
func Load(ctx context.Context, source string, getter ObjectGetter) (Resolver, error) {
	logger := zerolog.Ctx(ctx)

	if source == "" {
		logger.Warn().Msg("no pricing source configured, all prices will be zero")
		return Flat(0), nil
	}

	if strings.HasPrefix(source, "s3://") {
		return loadFromS3(ctx, source, getter)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open pricing file: %w", err)
	}
	defer f.Close()

	table, err := NewTable(*logger, f)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("source", source).Int("prices", table.Len()).Msg("pricing data loaded")
	return table, nil
}

func loadFromS3(ctx context.Context, source string, getter ObjectGetter) (Resolver, error) {
	logger := zerolog.Ctx(ctx)

	if getter == nil {
		return nil, fmt.Errorf("no S3 client available for pricing source %s", source)
	}

	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("invalid pricing source %s: %w", source, err)
	}

	out, err := getter.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Host),
		Key:    aws.String(strings.TrimPrefix(u.Path, "/")),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download pricing data: %w", err)
	}
	defer out.Body.Close()

	table, err := NewTable(*logger, out.Body)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("source", source).Int("prices", table.Len()).Msg("pricing data loaded")
	return table, nil
}
