package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thirukguru/check42/model"
	"github.com/thirukguru/check42/service/catalog"
	"github.com/thirukguru/check42/service/regions"
)

type fakeRegions struct{}

func (fakeRegions) DescribeRegions(context.Context, *ec2.DescribeRegionsInput, ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error) {
	return &ec2.DescribeRegionsOutput{Regions: []types.Region{{RegionName: aws.String("us-east-1")}, {RegionName: aws.String("eu-west-1")}}}, nil
}

type countingExecutor struct {
	calls   atomic.Int32
	finding model.Finding
	err     error
	regions []string
}

func (c *countingExecutor) Run(_ context.Context, req catalog.Request) (model.Finding, error) {
	c.calls.Add(1)
	c.regions = req.Regions
	return c.finding, c.err
}

func newRunner(r *catalog.Registry, opts Options) Service {
	return NewService(r, regions.NewServiceWithClient(fakeRegions{}), opts)
}

func def(id, name string, enabled bool) model.CheckDefinition {
	return model.CheckDefinition{ID: id, Name: name, Enabled: enabled}
}

func TestDisabledChecksAreNeverDispatched(t *testing.T) {
	exec := &countingExecutor{}
	r := catalog.NewRegistry()
	r.Register(catalog.NoMFAOnRoot, false, exec)

	res := newRunner(r, Options{}).Run(context.Background(), []model.CheckDefinition{def("1", "NO_MFA_ON_ROOT", false)}, model.AccountSettings{})

	assert.Empty(t, res.Outcomes)
	assert.Equal(t, []string{"NO_MFA_ON_ROOT"}, res.Disabled)
	assert.Zero(t, exec.calls.Load())
}

func TestUnknownChecksAreReported(t *testing.T) {
	res := newRunner(catalog.NewRegistry(), Options{}).Run(context.Background(), []model.CheckDefinition{def("1", "HAS_IAM_USRES", true)}, model.AccountSettings{})
	assert.Empty(t, res.Outcomes)
	assert.Equal(t, []string{"HAS_IAM_USRES"}, res.Unknown)
}

func TestOutcomesAreSortedAndClassified(t *testing.T) {
	r := catalog.NewRegistry()
	r.Register(catalog.PublicBuckets, false, &countingExecutor{finding: model.Finding{Items: []model.Item{{"bucket_name": "b"}}}})
	r.Register(catalog.NoPasswordPolicy, false, &countingExecutor{})
	r.Register(catalog.NoBudget, false, &countingExecutor{err: errors.New("access denied")})
	r.Register(catalog.MissingTags, true, &countingExecutor{err: catalog.ConfigError("requires requiredTags")})

	res := newRunner(r, Options{Workers: 2}).Run(context.Background(), []model.CheckDefinition{
		def("4", "PUBLIC_BUCKETS", true),
		def("3", "NO_PASSWORD_POLICY", true),
		def("2", "NO_BUDGET", true),
		def("1", "MISSING_TAGS", true),
	}, model.AccountSettings{Defaults: `{"regions":["eu-west-1"]}`})

	require.Len(t, res.Outcomes, 4)
	names := make([]string, 0, 4)
	for _, o := range res.Outcomes {
		names = append(names, o.Check.Name)
	}
	assert.Equal(t, []string{"MISSING_TAGS", "NO_BUDGET", "NO_PASSWORD_POLICY", "PUBLIC_BUCKETS"}, names)

	assert.Equal(t, model.StatusError, res.Outcomes[0].Status)
	assert.Equal(t, model.ErrorKindConfiguration, res.Outcomes[0].ErrorKind)
	assert.Equal(t, model.ErrorKindCollaborator, res.Outcomes[1].ErrorKind)
	assert.Equal(t, model.StatusPass, res.Outcomes[2].Status)
	assert.Equal(t, model.StatusFail, res.Outcomes[3].Status)
}

func TestRegionsResolvedForRegionalEntries(t *testing.T) {
	regional := &countingExecutor{}
	global := &countingExecutor{}
	r := catalog.NewRegistry()
	r.Register(catalog.UnusedEIP, true, regional)
	r.Register(catalog.NoMFAOnRoot, false, global)

	newRunner(r, Options{}).Run(context.Background(), []model.CheckDefinition{
		{ID: "1", Name: "UNUSED_EIP", Enabled: true, Config: `{"regions":["*"]}`},
		def("2", "NO_MFA_ON_ROOT", true),
	}, model.AccountSettings{})

	assert.Equal(t, []string{"us-east-1", "eu-west-1"}, regional.regions)
	assert.Nil(t, global.regions)
}

func TestMixedWildcardIsConfigurationError(t *testing.T) {
	r := catalog.NewRegistry()
	r.Register(catalog.UnusedEIP, true, &countingExecutor{})

	res := newRunner(r, Options{}).Run(context.Background(), []model.CheckDefinition{
		{ID: "1", Name: "UNUSED_EIP", Enabled: true, Config: `{"regions":["*","us-east-1"]}`},
	}, model.AccountSettings{})

	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, model.ErrorKindConfiguration, res.Outcomes[0].ErrorKind)
}

func TestTimeoutAndPanicAreIsolated(t *testing.T) {
	r := catalog.NewRegistry()
	r.Register(catalog.NoBudget, false, catalog.ExecutorFunc(func(ctx context.Context, _ catalog.Request) (model.Finding, error) {
		<-ctx.Done()
		return model.Finding{}, ctx.Err()
	}))
	r.Register(catalog.NoMFAOnRoot, false, catalog.ExecutorFunc(func(context.Context, catalog.Request) (model.Finding, error) {
		panic("boom")
	}))
	r.Register(catalog.NoPasswordPolicy, false, catalog.ExecutorFunc(func(context.Context, catalog.Request) (model.Finding, error) {
		return model.Finding{Message: "No Password Policy"}, nil
	}))

	res := newRunner(r, Options{CheckTimeout: 20 * time.Millisecond}).Run(context.Background(), []model.CheckDefinition{
		def("1", "NO_BUDGET", true),
		def("2", "NO_MFA_ON_ROOT", true),
		def("3", "NO_PASSWORD_POLICY", true),
	}, model.AccountSettings{})

	require.Len(t, res.Outcomes, 3)
	assert.Equal(t, model.ErrorKindTimeout, res.Outcomes[0].ErrorKind)
	assert.Equal(t, model.ErrorKindCollaborator, res.Outcomes[1].ErrorKind)
	assert.ErrorContains(t, res.Outcomes[1].Err, "boom")
	assert.True(t, res.Outcomes[2].Failed())
}

func TestInvalidConfigJSON(t *testing.T) {
	exec := &countingExecutor{}
	r := catalog.NewRegistry()
	r.Register(catalog.HasIAMUsers, false, exec)

	res := newRunner(r, Options{}).Run(context.Background(), []model.CheckDefinition{
		{ID: "1", Name: "HAS_IAM_USERS", Enabled: true, Config: "{"},
	}, model.AccountSettings{})

	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, model.ErrorKindConfiguration, res.Outcomes[0].ErrorKind)
	assert.Zero(t, exec.calls.Load())
}
