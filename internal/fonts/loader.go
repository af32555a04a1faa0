package fonts

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bnema/lacquer/internal/domain/entity"
	"github.com/bnema/lacquer/internal/logging"
	"golang.org/x/sync/singleflight"
)

// defaultWeights are requested for families discovered in variable sets,
// where no catalog entry declares better.
var defaultWeights = []int{400, 700}

// platformDenylist filters families the platform already provides; matching
// is case-insensitive substring, so "Segoe UI Variable" is caught by
// "segoe ui".
var platformDenylist = []string{
	"system-ui",
	"ui-sans-serif",
	"ui-serif",
	"ui-monospace",
	"-apple-system",
	"blinkmacsystemfont",
	"segoe ui",
	"helvetica",
	"arial",
	"cantarell",
	"sans-serif",
	"serif",
	"monospace",
	"courier",
	"times",
}

// Loader fetches externally-hosted font families. Per (family, weight-set)
// signature it issues at most one request for the process lifetime, shares
// in-flight requests between concurrent callers, and coalesces families
// requested within a short window into one combined request.
type Loader struct {
	hostURL     string
	batchWindow time.Duration
	client      *http.Client
	group       singleflight.Group

	mu        sync.Mutex
	requested map[string]struct{} // completed signatures, success or not
	pending   []*batchItem
	timer     *time.Timer
}

type batchItem struct {
	family  string
	weights []int
	done    chan error
}

// NewLoader creates a loader for the given css2-style host.
func NewLoader(hostURL string, batchWindow time.Duration) *Loader {
	return &Loader{
		hostURL:     hostURL,
		batchWindow: batchWindow,
		client:      &http.Client{Timeout: 10 * time.Second},
		requested:   make(map[string]struct{}),
	}
}

// LoadForVariableSet extracts font-family declarations from every partition
// of set and loads the referenced families. Failures are logged per family
// and never returned; font loading is always non-fatal for the caller.
func (l *Loader) LoadForVariableSet(ctx context.Context, set entity.VariableSet) {
	l.LoadFamilies(ctx, ExtractFamilies(set))
}

// LoadFamilies loads the given families with the default weight set.
func (l *Loader) LoadFamilies(ctx context.Context, families []string) {
	var wg sync.WaitGroup
	for _, family := range families {
		wg.Add(1)
		go func(family string) {
			defer wg.Done()
			l.loadOne(ctx, family, defaultWeights)
		}(family)
	}
	wg.Wait()
}

// LoadChoice loads a hosted catalog choice. Local choices are a no-op.
func (l *Loader) LoadChoice(ctx context.Context, choice Choice) {
	if !choice.Hosted() {
		return
	}
	weights := choice.Weights
	if len(weights) == 0 {
		weights = defaultWeights
	}
	l.loadOne(ctx, choice.Family, weights)
}

func (l *Loader) loadOne(ctx context.Context, family string, weights []int) {
	log := logging.FromContext(ctx)
	sig := signature(family, weights)

	l.mu.Lock()
	if _, done := l.requested[sig]; done {
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	// Concurrent callers for the same signature share one in-flight load.
	ch := l.group.DoChan(sig, func() (any, error) {
		err := l.enqueueAndWait(family, weights)
		l.mu.Lock()
		l.requested[sig] = struct{}{}
		l.mu.Unlock()
		return nil, err
	})

	select {
	case <-ctx.Done():
		// The load continues in the background; only this caller stops
		// waiting.
	case res := <-ch:
		if res.Err != nil {
			log.Warn().Err(res.Err).Str("family", family).Msg("font load failed")
		} else {
			log.Debug().Str("family", family).Msg("font loaded")
		}
	}
}

// enqueueAndWait adds the family to the current batch and blocks until the
// batch flushes.
func (l *Loader) enqueueAndWait(family string, weights []int) error {
	item := &batchItem{family: family, weights: weights, done: make(chan error, 1)}

	l.mu.Lock()
	l.pending = append(l.pending, item)
	if l.timer == nil {
		l.timer = time.AfterFunc(l.batchWindow, l.flush)
	}
	l.mu.Unlock()

	return <-item.done
}

// flush issues the pending batch. Distinct families go out as one combined
// query when the host scheme allows it (css2-style hosts accept repeated
// family parameters); otherwise individually.
func (l *Loader) flush() {
	l.mu.Lock()
	batch := l.pending
	l.pending = nil
	l.timer = nil
	l.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	if l.combinable() {
		err := l.fetch(batch)
		for _, item := range batch {
			item.done <- err
		}
		return
	}

	for _, item := range batch {
		item.done <- l.fetch([]*batchItem{item})
	}
}

// combinable reports whether the host accepts several families per request.
func (l *Loader) combinable() bool {
	return strings.Contains(l.hostURL, "css2")
}

func (l *Loader) fetch(batch []*batchItem) error {
	u, err := url.Parse(l.hostURL)
	if err != nil {
		return fmt.Errorf("invalid font host %q: %w", l.hostURL, err)
	}

	query := u.Query()
	for _, item := range batch {
		query.Add("family", familyParam(item.family, item.weights))
	}
	query.Set("display", "swap")
	u.RawQuery = query.Encode()

	resp, err := l.client.Get(u.String())
	if err != nil {
		return fmt.Errorf("fetch fonts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch fonts: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// familyParam renders "Inter:wght@400;700".
func familyParam(family string, weights []int) string {
	if len(weights) == 0 {
		return family
	}
	sorted := make([]int, len(weights))
	copy(sorted, weights)
	sort.Ints(sorted)

	parts := make([]string, len(sorted))
	for i, w := range sorted {
		parts[i] = strconv.Itoa(w)
	}
	return family + ":wght@" + strings.Join(parts, ";")
}

// signature identifies one (family, weight-set) load for the process
// lifetime.
func signature(family string, weights []int) string {
	return strings.ToLower(familyParam(family, weights))
}

// ExtractFamilies returns the loadable families referenced by font variables
// in set, in first-seen order, with platform-default families filtered out.
func ExtractFamilies(set entity.VariableSet) []string {
	var families []string
	seen := make(map[string]struct{})

	collect := func(vars map[string]string) {
		names := make([]string, 0, len(vars))
		for name := range vars {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if !isFontVariable(name) {
				continue
			}
			for _, family := range splitStack(vars[name]) {
				if denied(family) {
					continue
				}
				key := strings.ToLower(family)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				families = append(families, family)
			}
		}
	}

	collect(set.Global)
	collect(set.Light)
	collect(set.Dark)
	return families
}

func isFontVariable(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "font-family") || strings.HasPrefix(lower, "--font")
}

// splitStack splits a font-family value into individual family names,
// stripping quotes and whitespace.
func splitStack(stack string) []string {
	parts := strings.Split(stack, ",")
	families := make([]string, 0, len(parts))
	for _, part := range parts {
		family := strings.Trim(strings.TrimSpace(part), `"'`)
		if family != "" {
			families = append(families, family)
		}
	}
	return families
}

func denied(family string) bool {
	lower := strings.ToLower(family)
	for _, entry := range platformDenylist {
		if strings.Contains(lower, entry) {
			return true
		}
	}
	return false
}
