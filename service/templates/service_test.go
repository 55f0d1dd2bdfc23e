package templates

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thirukguru/check42/model"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		values map[string]string
		want   string
	}{
		{name: "substitutes", src: "Bucket ***BUCKET_NAME*** is public", values: map[string]string{"BUCKET_NAME": "assets"}, want: "Bucket assets is public"},
		{name: "unknown token is empty", src: "a***NOPE***b", want: "ab"},
		{name: "repeated token", src: "***X***-***X***", values: map[string]string{"X": "1"}, want: "1-1"},
		{name: "lowercase is not a token", src: "***lower***", want: "***lower***"},
		{name: "value containing token syntax is spaced out", src: "***A***", values: map[string]string{"A": "***B***", "B": "no"}, want: "* * *B* * *"},
		{name: "stray delimiter in value", src: "[***A***]", values: map[string]string{"A": "a***b"}, want: "[a* * *b]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.src, tt.values))
		})
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"TITLE", "ITEMS"}, Tokens("***TITLE*** ***ITEMS*** ***TITLE***"))
}

func TestEmbeddedDefaultsPresent(t *testing.T) {
	store := EmbeddedStore()
	for _, name := range []string{"main.txt", "main.html", "default.txt", "default_item.html", "PUBLIC_BUCKETS_item.txt", "MISSING_TAGS.html", "UNUSED_EIP.txt"} {
		_, ok, err := store.Read(context.Background(), name)
		require.NoError(t, err)
		assert.True(t, ok, name)
	}
}

func TestChainFirstHitWins(t *testing.T) {
	first := NewFSStore(fstest.MapFS{"main.txt": {Data: []byte("custom")}})
	data, ok, err := Chain{first, EmbeddedStore()}.Read(context.Background(), "main.txt")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "custom", string(data))

	data, ok, err = Chain{first, EmbeddedStore()}.Read(context.Background(), "main.html")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, string(data), "***FINDINGS***")

	_, ok, err = Chain{first}.Read(context.Background(), "absent.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	overrides := NewFSStore(fstest.MapFS{
		"iam_users.txt":      {Data: []byte("Users: ***ITEMS***")},
		"iam_users_item.txt": {Data: []byte("***USER_NAME***\n")},
	})
	defs := []model.CheckDefinition{
		{Name: "HAS_IAM_USERS", Title: "IAM users", Enabled: true, EmailTemplates: `{"baseFileName":"iam_users","itemFileName":"iam_users_item"}`},
		{Name: "PUBLIC_BUCKETS", Title: "Public buckets", Enabled: true},
		{Name: "NO_BUDGET", Enabled: true},
		{Name: "UNUSED_EIP", Enabled: false},
	}

	set, err := NewRepository(overrides).Load(context.Background(), defs)
	require.NoError(t, err)

	assert.Contains(t, set.Main().BodyText, "***FINDINGS***")
	assert.Empty(t, set.Main().ItemText)

	users := set.For("HAS_IAM_USERS")
	assert.Equal(t, "Users: ***ITEMS***", users.BodyText)
	assert.Empty(t, users.BodyHTML)
	assert.Equal(t, "IAM users", users.Title)

	buckets := set.For("PUBLIC_BUCKETS")
	assert.Contains(t, buckets.BodyText, "***S3_BUCKETS_LIST***")
	assert.Contains(t, buckets.ItemHTML, "***REASON***")

	assert.False(t, set.HasOverride("NO_BUDGET"))
	assert.Contains(t, set.For("NO_BUDGET").ItemText, "***FIELDS***")
	assert.False(t, set.HasOverride("UNUSED_EIP"))
}

func TestLoadMissingOverrideFallsBackToEmbedded(t *testing.T) {
	defs := []model.CheckDefinition{
		{Name: "PUBLIC_BUCKETS", Enabled: true, EmailTemplates: `{"baseFileName":"gone","itemFileName":"gone_item"}`},
	}
	set, err := NewRepository(nil).Load(context.Background(), defs)
	require.NoError(t, err)
	assert.Contains(t, set.For("PUBLIC_BUCKETS").BodyText, "***S3_BUCKETS_LIST***")
}

type fakeS3 struct {
	objects map[string]string
	keys    []string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	f.keys = append(f.keys, key)
	body, ok := f.objects[key]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

type failingS3 struct{}

func (failingS3) GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return nil, errors.New("access denied")
}

func TestS3Store(t *testing.T) {
	client := &fakeS3{objects: map[string]string{"templates/main.txt": "from s3"}}
	store := NewS3StoreWithClient(client, "check42-templates", "/templates/")

	data, ok, err := store.Read(context.Background(), "main.txt")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "from s3", string(data))

	_, ok, err = store.Read(context.Background(), "main.html")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"templates/main.txt", "templates/main.html"}, client.keys)

	_, _, err = NewS3StoreWithClient(failingS3{}, "b", "").Read(context.Background(), "main.txt")
	assert.ErrorContains(t, err, "access denied")
}

func TestDirStoreRejectsTraversal(t *testing.T) {
	_, _, err := NewDirStore(t.TempDir()).Read(context.Background(), "../etc/passwd")
	assert.Error(t, err)
}
