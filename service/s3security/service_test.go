package s3security

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	pab    *types.PublicAccessBlockConfiguration
	grants []types.Grant
	policy string
	aclErr error
}

type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]fakeBucket
	order   []string
	regions []string
}

func (f *fakeS3) ListBuckets(context.Context, *s3.ListBucketsInput, ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	out := &s3.ListBucketsOutput{}
	for _, name := range f.order {
		out.Buckets = append(out.Buckets, types.Bucket{Name: aws.String(name), BucketRegion: aws.String("eu-west-1")})
	}
	return out, nil
}

func (f *fakeS3) GetPublicAccessBlock(_ context.Context, in *s3.GetPublicAccessBlockInput, optFns ...func(*s3.Options)) (*s3.GetPublicAccessBlockOutput, error) {
	opts := s3.Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	f.mu.Lock()
	f.regions = append(f.regions, opts.Region)
	f.mu.Unlock()
	b := f.buckets[aws.ToString(in.Bucket)]
	if b.pab == nil {
		return nil, &smithy.GenericAPIError{Code: "NoSuchPublicAccessBlockConfiguration"}
	}
	return &s3.GetPublicAccessBlockOutput{PublicAccessBlockConfiguration: b.pab}, nil
}

func (f *fakeS3) GetBucketAcl(_ context.Context, in *s3.GetBucketAclInput, _ ...func(*s3.Options)) (*s3.GetBucketAclOutput, error) {
	b := f.buckets[aws.ToString(in.Bucket)]
	if b.aclErr != nil {
		return nil, b.aclErr
	}
	return &s3.GetBucketAclOutput{Grants: b.grants}, nil
}

func (f *fakeS3) GetBucketPolicy(_ context.Context, in *s3.GetBucketPolicyInput, _ ...func(*s3.Options)) (*s3.GetBucketPolicyOutput, error) {
	b := f.buckets[aws.ToString(in.Bucket)]
	if b.policy == "" {
		return nil, &smithy.GenericAPIError{Code: "NoSuchBucketPolicy"}
	}
	return &s3.GetBucketPolicyOutput{Policy: aws.String(b.policy)}, nil
}

func blocked(blockPublicAcls bool) *types.PublicAccessBlockConfiguration {
	return &types.PublicAccessBlockConfiguration{
		BlockPublicAcls:       aws.Bool(blockPublicAcls),
		IgnorePublicAcls:      aws.Bool(true),
		BlockPublicPolicy:     aws.Bool(true),
		RestrictPublicBuckets: aws.Bool(true),
	}
}

func ownerGrant() types.Grant {
	return types.Grant{Grantee: &types.Grantee{ID: aws.String("owner"), Type: types.TypeCanonicalUser}, Permission: types.PermissionFullControl}
}

func TestEvaluateBucketSignals(t *testing.T) {
	tests := []struct {
		name   string
		bucket fakeBucket
		want   []string
	}{
		{
			name:   "private bucket is not flagged",
			bucket: fakeBucket{pab: blocked(true), grants: []types.Grant{ownerGrant()}},
			want:   nil,
		},
		{
			name:   "single disabled block flag",
			bucket: fakeBucket{pab: blocked(false), grants: []types.Grant{ownerGrant()}},
			want:   []string{"Public access block setting BlockPublicAcls is disabled"},
		},
		{
			name:   "missing public access block",
			bucket: fakeBucket{grants: []types.Grant{ownerGrant()}},
			want:   []string{ReasonNoPublicAccessBlock},
		},
		{
			name: "public acl and policy",
			bucket: fakeBucket{
				pab: blocked(true),
				grants: []types.Grant{
					{Grantee: &types.Grantee{URI: aws.String(allUsersURI), Type: types.TypeGroup}, Permission: types.PermissionRead},
					{Grantee: &types.Grantee{URI: aws.String(authenticatedUsersURI), Type: types.TypeGroup}, Permission: types.PermissionRead},
				},
				policy: `{"Statement":[{"Sid":"PublicRead","Effect":"Allow","Principal":{"AWS":["*"]},"Action":"s3:GetObject"},{"Effect":"Deny","Principal":"*","Action":"s3:*"}]}`,
			},
			want: []string{ReasonACLAllUsers, ReasonACLAuthenticated, "Bucket policy allows public access (Sid: PublicRead)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeS3{buckets: map[string]fakeBucket{"b": tt.bucket}}
			got, err := NewServiceWithClient(client).EvaluateBucket(context.Background(), Bucket{Name: "b", Region: "eu-west-1"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetPublicBuckets(t *testing.T) {
	client := &fakeS3{
		order: []string{"private", "open"},
		buckets: map[string]fakeBucket{
			"private": {pab: blocked(true)},
			"open":    {pab: blocked(false)},
		},
	}
	exposed, err := NewServiceWithClient(client).GetPublicBuckets(context.Background())
	require.NoError(t, err)
	require.Len(t, exposed, 1)
	assert.Equal(t, "open", exposed[0].BucketName)
	assert.Equal(t, "eu-west-1", exposed[0].Region)
	assert.Equal(t, []string{"eu-west-1", "eu-west-1"}, client.regions)
}

func TestGetPublicBucketsKeepsListingOrder(t *testing.T) {
	client := &fakeS3{buckets: map[string]fakeBucket{}}
	var want []string
	for i := 0; i < 3*BucketLimit; i++ {
		name := fmt.Sprintf("bucket-%02d", i)
		client.order = append(client.order, name)
		if i%2 == 0 {
			client.buckets[name] = fakeBucket{pab: blocked(false)}
			want = append(want, name)
		} else {
			client.buckets[name] = fakeBucket{pab: blocked(true)}
		}
	}

	exposed, err := NewServiceWithClient(client).GetPublicBuckets(context.Background())
	require.NoError(t, err)

	var got []string
	for _, e := range exposed {
		got = append(got, e.BucketName)
	}
	assert.Equal(t, want, got)
	assert.Len(t, client.regions, len(client.order))
}

func TestGetPublicBucketsReturnsBucketError(t *testing.T) {
	client := &fakeS3{
		order: []string{"ok", "denied"},
		buckets: map[string]fakeBucket{
			"ok":     {pab: blocked(true)},
			"denied": {pab: blocked(true), aclErr: &smithy.GenericAPIError{Code: "AccessDenied"}},
		},
	}
	_, err := NewServiceWithClient(client).GetPublicBuckets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestPublicStatementReasonsSingleStatement(t *testing.T) {
	reasons, err := publicStatementReasons(`{"Statement":{"Effect":"Allow","Principal":"*","Action":"s3:GetObject"}}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bucket policy allows public access (Sid: statement 1)"}, reasons)

	_, err = publicStatementReasons("not json")
	assert.Error(t, err)
}
