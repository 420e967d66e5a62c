package orgctx

import (
	"context"
	"sync"
	"testing"

	"github.com/smallbiznis/bastion/internal/organization/domain"
	"github.com/stretchr/testify/assert"
)

func TestCurrentUnset(t *testing.T) {
	_, ok := Current(context.Background())
	assert.False(t, ok)
	assert.True(t, CurrentOrDefault(context.Background()).IsDefault())
}

func TestWithOrgAndCurrent(t *testing.T) {
	org := domain.New("acme")
	ctx := WithOrg(context.Background(), &org)

	got, ok := Current(ctx)
	assert.True(t, ok)
	assert.Same(t, &org, got)
	assert.Equal(t, org.ID, CurrentOrgID(ctx))
}

func TestNestedScopingIsStackOrdered(t *testing.T) {
	a := domain.New("a")
	b := domain.New("b")

	outer := WithOrg(context.Background(), &a)

	// Inner scoped block.
	inner := ChangeTo(outer, &b)
	got, _ := Current(inner)
	assert.Equal(t, "b", got.Name)

	// After the block, the outer context still holds A.
	got, _ = Current(outer)
	assert.Equal(t, "a", got.Name)
}

func TestNestedScopingRestoresNone(t *testing.T) {
	outer := context.Background()
	b := domain.New("b")

	inner := WithOrg(outer, &b)
	if _, ok := Current(inner); !ok {
		t.Fatal("expected inner scope to be set")
	}
	if _, ok := Current(outer); ok {
		t.Fatal("outer context must remain unscoped")
	}
}

func TestConcurrentScopesDoNotInterfere(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			org := domain.New("worker")
			ctx := WithOrg(context.Background(), &org)
			got, ok := Current(ctx)
			if !ok || got.ID != org.ID {
				t.Errorf("scope leaked across goroutines")
			}
		}()
	}
	wg.Wait()
}

func TestCurrentOrgIDSentinels(t *testing.T) {
	assert.Equal(t, domain.RootID, CurrentOrgID(WithOrg(context.Background(), domain.Root())))
	assert.Equal(t, "", CurrentOrgID(WithOrg(context.Background(), domain.Default())))
	assert.Equal(t, "", CurrentOrgID(WithOrg(context.Background(), domain.System())))
}
