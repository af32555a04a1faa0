package fonts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/lacquer/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader(t *testing.T, handler http.HandlerFunc) (*Loader, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	// "css2" in the host path marks it as accepting combined queries.
	return NewLoader(srv.URL+"/css2", 10*time.Millisecond), srv
}

func TestExtractFamilies(t *testing.T) {
	set := entity.VariableSet{
		Global: map[string]string{
			"--font-sans": `"Inter", "Noto Sans", sans-serif`,
			"--accent":    "#006",
		},
		Light: map[string]string{
			"--font-mono": `"JetBrains Mono", monospace`,
		},
	}

	families := ExtractFamilies(set)

	assert.Equal(t, []string{"Inter", "Noto Sans", "JetBrains Mono"}, families)
}

func TestExtractFamilies_DenylistIsCaseInsensitiveSubstring(t *testing.T) {
	set := entity.VariableSet{
		Global: map[string]string{
			"--font-sans": `"Segoe UI Variable", SYSTEM-UI, "Fira Sans"`,
		},
	}

	families := ExtractFamilies(set)

	assert.Equal(t, []string{"Fira Sans"}, families)
}

func TestExtractFamilies_IgnoresNonFontVariables(t *testing.T) {
	set := entity.VariableSet{
		Global: map[string]string{"--background": "#fff", "--spacing": "4px"},
	}

	assert.Empty(t, ExtractFamilies(set))
}

func TestLoadFamilies_DedupesBySignature(t *testing.T) {
	var requests atomic.Int32
	loader, _ := newTestLoader(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	})

	ctx := context.Background()

	// Concurrent callers racing on the same family.
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loader.LoadFamilies(ctx, []string{"Inter"})
		}()
	}
	wg.Wait()

	// A later call for the same signature must not fetch again.
	loader.LoadFamilies(ctx, []string{"Inter"})

	assert.Equal(t, int32(1), requests.Load(),
		"one request per (family, weights) signature for the process lifetime")
}

func TestLoadFamilies_BatchesWindowIntoOneRequest(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	loader, _ := newTestLoader(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.RawQuery)
		mu.Unlock()
	})

	loader.LoadFamilies(context.Background(), []string{"Inter", "Lora", "Fira Code"})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, queries, 1, "families inside the window coalesce into one request")
	assert.Contains(t, queries[0], "Inter")
	assert.Contains(t, queries[0], "Lora")
	assert.Contains(t, queries[0], "Fira+Code")
}

func TestLoadFamilies_IndividualRequestsWhenHostCannotCombine(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	loader := NewLoader(srv.URL+"/fonts.css", 10*time.Millisecond)
	loader.LoadFamilies(context.Background(), []string{"Inter", "Lora"})

	assert.Equal(t, int32(2), requests.Load())
}

func TestLoadFamilies_FailureIsNonFatal(t *testing.T) {
	loader, _ := newTestLoader(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})

	// Must return normally; failures are logged, never surfaced.
	loader.LoadFamilies(context.Background(), []string{"Broken Family"})

	// Failed signatures are still spent: no retry.
	loader.LoadFamilies(context.Background(), []string{"Broken Family"})
}

func TestLoadChoice_LocalChoiceSkipsNetwork(t *testing.T) {
	var requests atomic.Int32
	loader, _ := newTestLoader(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	})

	choice, ok := Lookup("system-sans")
	require.True(t, ok)
	loader.LoadChoice(context.Background(), choice)

	assert.Zero(t, requests.Load())
}

func TestFamilyParam(t *testing.T) {
	assert.Equal(t, "Inter:wght@400;700", familyParam("Inter", []int{700, 400}))
	assert.Equal(t, "Inter", familyParam("Inter", nil))
}
