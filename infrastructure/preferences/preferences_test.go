package preferences

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	apperrors "template-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileStore_SetGetAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template_preferences.yaml")
	ctx := context.Background()

	store, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "light", store.GetString("theme", "light"))
	require.NoError(t, store.Set(ctx, "theme", "dark"))
	require.NoError(t, store.Set(ctx, "sync_enabled", "true"))
	require.NoError(t, store.Set(ctx, "page_size", "25"))

	assert.Equal(t, "dark", store.GetString("theme", "light"))
	assert.True(t, store.GetBool("sync_enabled", false))
	assert.Equal(t, 25, store.GetInt("page_size", 10))
	assert.Equal(t, 10, store.GetInt("theme", 10), "non-numeric falls back")
	require.NoError(t, store.Close())

	reopened, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, map[string]string{"theme": "dark", "sync_enabled": "true", "page_size": "25"}, reopened.All())

	require.NoError(t, reopened.Remove(ctx, "theme"))
	assert.Equal(t, "light", reopened.GetString("theme", "light"))
}

func TestFileStore_ConcurrentSetsKeepEveryKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template_preferences.yaml")
	ctx := context.Background()

	store, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Set(ctx, fmt.Sprintf("k%d", i), "v"))
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.All(), writers)

	onDisk, err := readFile(path)
	require.NoError(t, err)
	assert.Len(t, onDisk, writers)
}

func TestFileStore_OnChangeFiresOncePerChangedKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	store, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	var mu sync.Mutex
	var changed []string
	store.OnChange(func(key string) {
		mu.Lock()
		defer mu.Unlock()
		changed = append(changed, key)
	})

	require.NoError(t, store.Set(context.Background(), "a", "1"))
	require.NoError(t, store.Set(context.Background(), "a", "1"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a"}, changed)
}

func TestFileStore_ReloadsExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	store, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, os.WriteFile(path, []byte("theme: solarized\n"), 0o644))

	assert.Eventually(t, func() bool {
		return store.GetString("theme", "") == "solarized"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestFileStore_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0o644))

	_, err := NewFileStore(path, zap.NewNop())
	assert.Error(t, err)
}

type fakeDynamo struct {
	items map[string]map[string]types.AttributeValue
	err   error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func (f *fakeDynamo) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := &dynamodb.QueryOutput{}
	for _, item := range f.items {
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	sk := in.Item["SK"].(*types.AttributeValueMemberS).Value
	f.items[sk] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	sk := in.Key["SK"].(*types.AttributeValueMemberS).Value
	delete(f.items, sk)
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestDynamoDBStore_LoadSetRemove(t *testing.T) {
	client := newFakeDynamo()
	existing, err := attributevalue.MarshalMap(record{PK: "PREFS#template", SK: "theme", Value: "dark"})
	require.NoError(t, err)
	client.items["theme"] = existing

	ctx := context.Background()
	store, err := NewDynamoDBStore(ctx, client, "prefs", "template", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "dark", store.GetString("theme", ""))

	require.NoError(t, store.Set(ctx, "page_size", "50"))
	assert.Equal(t, 50, store.GetInt("page_size", 0))

	var stored record
	require.NoError(t, attributevalue.UnmarshalMap(client.items["page_size"], &stored))
	assert.Equal(t, "PREFS#template", stored.PK)
	assert.Equal(t, "50", stored.Value)
	assert.NotEmpty(t, stored.UpdatedAt)

	require.NoError(t, store.Remove(ctx, "theme"))
	assert.NotContains(t, client.items, "theme")
	assert.Equal(t, "none", store.GetString("theme", "none"))
	assert.NoError(t, store.Close())
}

func TestDynamoDBStore_MissingTable(t *testing.T) {
	client := newFakeDynamo()
	client.err = &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "no table"}

	_, err := NewDynamoDBStore(context.Background(), client, "prefs", "template", zap.NewNop())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
