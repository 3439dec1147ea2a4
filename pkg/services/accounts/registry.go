package accounts

import (
	"context"
	"fmt"
	"sort"
	"sync"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"gopkg.in/ini.v1"
)

const (
	// GlobalRegion serves account-wide APIs such as Route53, Support and Cost Explorer.
	GlobalRegion = "us-east-1"
)

var DefaultRegions = []string{
	"us-east-1",
	"us-west-1",
	"us-west-2",
	"us-east-2",
	"eu-west-1",
	"eu-west-2",
	"eu-central-1",
	"ap-southeast-1",
	"ap-southeast-2",
}

type Registry interface {
	Accounts(ctx context.Context) []string
	Locations(ctx context.Context) []domain.Location
	Config(ctx context.Context, location domain.Location) (awssdk.Config, error)
}

type ConfigLoader func(ctx context.Context, credentialsFile, profile string) (awssdk.Config, error)

type credentialsRegistry struct {
	path     string
	accounts []string
	regions  []string
	load     ConfigLoader

	mu      sync.Mutex
	configs map[string]awssdk.Config
}

// NewRegistry reads the profiles of a shared credentials file. Every profile is
// an account; accounts are crossed with regions to produce locations.
func NewRegistry(path string, regions []string) (Registry, error) {
	return NewRegistryWithLoader(path, regions, loadSharedConfig)
}

func NewRegistryWithLoader(path string, regions []string, load ConfigLoader) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var accounts []string
	for _, section := range cfg.Sections() {
		if len(section.Keys()) > 0 {
			accounts = append(accounts, section.Name())
		}
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no profiles found in %s", path)
	}
	sort.Strings(accounts)

	if len(regions) == 0 {
		regions = DefaultRegions
	}

	return &credentialsRegistry{
		path:     path,
		accounts: accounts,
		regions:  regions,
		load:     load,
		configs:  make(map[string]awssdk.Config),
	}, nil
}

func (r *credentialsRegistry) Accounts(_ context.Context) []string {
	return append([]string{}, r.accounts...)
}

func (r *credentialsRegistry) Locations(_ context.Context) []domain.Location {
	locations := make([]domain.Location, 0, len(r.accounts)*len(r.regions))
	for _, account := range r.accounts {
		for _, region := range r.regions {
			locations = append(locations, domain.Location{Account: account, Region: region})
		}
	}
	return locations
}

// Config returns the SDK configuration of a location. Profiles are loaded once
// and copied per region.
func (r *credentialsRegistry) Config(ctx context.Context, location domain.Location) (awssdk.Config, error) {
	base, err := r.profileConfig(ctx, location.Account)
	if err != nil {
		return awssdk.Config{}, err
	}

	cfg := base.Copy()
	cfg.Region = location.Region
	return cfg, nil
}

func (r *credentialsRegistry) profileConfig(ctx context.Context, profile string) (awssdk.Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cfg, ok := r.configs[profile]; ok {
		return cfg, nil
	}

	cfg, err := r.load(ctx, r.path, profile)
	if err != nil {
		return awssdk.Config{}, fmt.Errorf("unable to load AWS SDK config for profile %s: %w", profile, err)
	}
	r.configs[profile] = cfg
	return cfg, nil
}

func loadSharedConfig(ctx context.Context, credentialsFile, profile string) (awssdk.Config, error) {
	return config.LoadDefaultConfig(
		ctx,
		config.WithSharedCredentialsFiles([]string{credentialsFile}),
		config.WithSharedConfigProfile(profile),
		config.WithDefaultRegion(GlobalRegion),
	)
}
