package session

import (
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/blastoff/internal/models"
)

// storeContract runs the Store behavior tests against any implementation.
func storeContract(t *testing.T, store Store) {
	t.Helper()

	cred := &models.Credential{
		AccessToken: "token_a",
		AccountID:   "1234",
		DisplayName: "creator",
		ConnectedAt: time.Now().UTC(),
	}

	t.Run("get missing returns nil", func(t *testing.T) {
		got, err := store.Get("s1", models.PlatformDiscord)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != nil {
			t.Errorf("expected nil credential, got %+v", got)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		if err := store.Set("s1", models.PlatformDiscord, cred); err != nil {
			t.Fatalf("set failed: %v", err)
		}

		got, err := store.Get("s1", models.PlatformDiscord)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got == nil {
			t.Fatal("expected credential")
		}
		if got.AccessToken != "token_a" {
			t.Errorf("expected token_a, got %s", got.AccessToken)
		}
		if got.DisplayName != "creator" {
			t.Errorf("expected creator, got %s", got.DisplayName)
		}
	})

	t.Run("scoped by platform", func(t *testing.T) {
		got, err := store.Get("s1", models.PlatformTwitter)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got != nil {
			t.Error("expected nil for other platform")
		}
	})

	t.Run("scoped by session", func(t *testing.T) {
		got, err := store.Get("s2", models.PlatformDiscord)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got != nil {
			t.Error("expected nil for other session")
		}
	})

	t.Run("set replaces", func(t *testing.T) {
		updated := &models.Credential{AccessToken: "token_b", AccountID: "1234"}
		if err := store.Set("s1", models.PlatformDiscord, updated); err != nil {
			t.Fatalf("set failed: %v", err)
		}

		got, _ := store.Get("s1", models.PlatformDiscord)
		if got == nil || got.AccessToken != "token_b" {
			t.Errorf("expected replaced credential, got %+v", got)
		}
	})

	t.Run("clear", func(t *testing.T) {
		if err := store.Clear("s1", models.PlatformDiscord); err != nil {
			t.Fatalf("clear failed: %v", err)
		}

		got, _ := store.Get("s1", models.PlatformDiscord)
		if got != nil {
			t.Error("expected nil after clear")
		}
	})

	t.Run("clear absent is not an error", func(t *testing.T) {
		if err := store.Clear("s1", models.PlatformDiscord); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStoreConcurrency(t *testing.T) {
	store := NewMemoryStore()
	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			cred := &models.Credential{AccessToken: "tok"}
			store.Set("shared", models.PlatformTwitter, cred)
			store.Get("shared", models.PlatformTwitter)
			if n%2 == 0 {
				store.Clear("shared", models.PlatformTwitter)
			}
		}(i)
	}
	wg.Wait()
}

func TestMemoryStoreReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	cred := &models.Credential{AccessToken: "original"}
	store.Set("s1", models.PlatformDiscord, cred)

	got, _ := store.Get("s1", models.PlatformDiscord)
	got.AccessToken = "mutated"

	again, _ := store.Get("s1", models.PlatformDiscord)
	if again.AccessToken != "original" {
		t.Error("expected store to be isolated from caller mutation")
	}
}
