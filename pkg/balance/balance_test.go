package balance

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/c13studio/c13-sdk/pkg/chains"
	"github.com/c13studio/c13-sdk/pkg/metrics"
	"github.com/c13studio/c13-sdk/pkg/tokens"
	"github.com/c13studio/c13-sdk/pkg/wallet"
)

type observer struct{ snap wallet.Snapshot }

func (o observer) Snapshot() wallet.Snapshot { return o.snap }

var (
	holder = common.HexToAddress("0x1111111111111111111111111111111111111111")
	other  = common.HexToAddress("0x4444444444444444444444444444444444444444")
	conn   = observer{wallet.Snapshot{Account: holder, ChainID: chains.MainnetID, Connected: true}}
)

// reader answers from fixed values and records what it was asked.
type reader struct {
	mu       sync.Mutex
	native   *big.Int
	token    *big.Int
	err      error
	balances []common.Address
	calls    []wallet.ContractCall
}

func (r *reader) BalanceAt(_ context.Context, _ uint64, account common.Address) (*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances = append(r.balances, account)
	return r.native, r.err
}

func (r *reader) ReadContract(_ context.Context, _ uint64, call wallet.ContractCall) ([]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	if r.err != nil {
		return nil, r.err
	}
	return []any{r.token}, nil
}

func TestPlan(t *testing.T) {
	usdt, _ := tokens.Lookup(chains.MainnetID, "USDT")
	testCases := []struct {
		name     string
		accounts wallet.AccountObserver
		params   Params
		native   bool
		contract bool
		account  common.Address
		chainID  uint64
	}{
		{"native symbol", conn, Params{Token: "ETH"}, true, false, holder, chains.MainnetID},
		{"empty selector", conn, Params{}, true, false, holder, chains.MainnetID},
		{"native address", conn, Params{Token: "0x0000000000000000000000000000000000000000"}, true, false, holder, chains.MainnetID},
		{"registered token", conn, Params{Token: "USDT"}, false, true, holder, chains.MainnetID},
		{"custom address", conn, Params{Token: usdt.Address.Hex()}, false, true, holder, chains.MainnetID},
		{"unregistered symbol has no contract", conn, Params{Token: "DOGE"}, false, false, holder, chains.MainnetID},
		{"disabled native", conn, Params{Token: "ETH", Disabled: true}, false, false, holder, chains.MainnetID},
		{"disabled contract", conn, Params{Token: "USDT", Disabled: true}, false, false, holder, chains.MainnetID},
		{"no account", observer{}, Params{Token: "ETH", ChainID: chains.MainnetID}, false, false, common.Address{}, chains.MainnetID},
		{"no chain", observer{wallet.Snapshot{Account: holder}}, Params{Token: "ETH"}, false, false, holder, 0},
		{"overrides", conn, Params{Token: "USDC", Account: other, ChainID: chains.TestnetID}, false, true, other, chains.TestnetID},
		{"nil observer", nil, Params{Token: "ETH", Account: other, ChainID: chains.TestnetID}, true, false, other, chains.TestnetID},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewResolver(tc.accounts, &reader{}).Plan(tc.params)
			if p.NativeEnabled != tc.native || p.ContractEnabled != tc.contract {
				t.Fatalf("native=%v contract=%v, want %v %v", p.NativeEnabled, p.ContractEnabled, tc.native, tc.contract)
			}
			if p.NativeEnabled && p.ContractEnabled {
				t.Fatal("both paths enabled")
			}
			if p.Account != tc.account || p.ChainID != tc.chainID {
				t.Fatalf("account=%s chain=%d", p.Account.Hex(), p.ChainID)
			}
		})
	}
}

func TestFetch_Native(t *testing.T) {
	r := &reader{native: big.NewInt(1_250_000_000_000_000_000)}
	st := NewResolver(conn, r).Fetch(context.Background(), Params{Token: "ETH"})
	if st.Err != nil || st.Balance == nil || *st.Balance != "1.25" {
		t.Fatalf("unexpected state %+v", st)
	}
	if st.Symbol != "ETH" || st.Decimals != 18 || st.Loading {
		t.Fatalf("unexpected state %+v", st)
	}
	if len(r.balances) != 1 || len(r.calls) != 0 {
		t.Fatal("expected a single native query")
	}
}

func TestFetch_Contract(t *testing.T) {
	r := &reader{token: big.NewInt(12_345_678)}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	st := NewResolver(conn, r, WithMetrics(m)).Fetch(context.Background(), Params{Token: "USDC"})
	if st.Err != nil || st.Balance == nil || *st.Balance != "12.345678" {
		t.Fatalf("unexpected state %+v", st)
	}
	if len(r.calls) != 1 || len(r.balances) != 0 {
		t.Fatal("expected a single contract read")
	}
	call := r.calls[0]
	usdc, _ := tokens.Lookup(chains.MainnetID, "USDC")
	if call.Address != usdc.Address || call.Method != tokens.MethodBalanceOf || call.Args[0] != holder {
		t.Fatalf("unexpected call %+v", call)
	}
	if got := testutil.ToFloat64(m.BalanceQueries.WithLabelValues(PathContract, "ok")); got != 1 {
		t.Fatalf("metric = %v", got)
	}
}

func TestFetch_CustomAddressDefaultsTo18Decimals(t *testing.T) {
	r := &reader{token: big.NewInt(5e17)}
	st := NewResolver(conn, r).Fetch(context.Background(), Params{Token: "0x3333333333333333333333333333333333333333"})
	if st.Balance == nil || *st.Balance != "0.5" || st.Symbol != tokens.UnknownSymbol || st.Decimals != 18 {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestFetch_DisabledTouchesNothing(t *testing.T) {
	r := &reader{native: big.NewInt(1)}
	st := NewResolver(conn, r).Fetch(context.Background(), Params{Token: "ETH", Disabled: true})
	if st.Balance != nil || st.Loading || st.Err != nil {
		t.Fatalf("unexpected state %+v", st)
	}
	if len(r.balances)+len(r.calls) != 0 {
		t.Fatal("disabled query reached the reader")
	}
}

func TestFetch_ErrorKeepsBalanceUndefined(t *testing.T) {
	boom := errors.New("could not connect")
	st := NewResolver(conn, &reader{err: boom}).Fetch(context.Background(), Params{Token: "USDT"})
	if !errors.Is(st.Err, boom) || st.Balance != nil {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestRefetch_ErrorKeepsLastBalance(t *testing.T) {
	r := &reader{native: big.NewInt(1e18)}
	q := NewResolver(conn, r).Query(Params{Token: "ETH"})
	q.Refetch(context.Background())

	r.mu.Lock()
	r.err = errors.New("timeout")
	r.mu.Unlock()
	st := q.Refetch(context.Background())
	if st.Err == nil || st.Balance == nil || *st.Balance != "1" {
		t.Fatalf("unexpected state %+v", st)
	}
}

// gatedReader blocks each BalanceAt until its gate is released and answers
// with the value of that gate.
type gatedReader struct {
	mu    sync.Mutex
	gates []chan *big.Int
	calls chan struct{}
}

func (g *gatedReader) BalanceAt(ctx context.Context, _ uint64, _ common.Address) (*big.Int, error) {
	gate := make(chan *big.Int)
	g.mu.Lock()
	g.gates = append(g.gates, gate)
	g.mu.Unlock()
	g.calls <- struct{}{}
	select {
	case v := <-gate:
		return v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedReader) ReadContract(context.Context, uint64, wallet.ContractCall) ([]any, error) {
	return nil, errors.New("unexpected contract read")
}

func (g *gatedReader) gate(i int) chan *big.Int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gates[i]
}

// A response to an older refetch that arrives after a newer one has been
// published is discarded.
func TestRefetch_StaleResponseDiscarded(t *testing.T) {
	g := &gatedReader{calls: make(chan struct{}, 2)}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	q := NewResolver(conn, g, WithMetrics(m)).Query(Params{Token: "ETH"})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		q.Refetch(context.Background())
	}()
	<-g.calls

	wg.Add(1)
	go func() {
		defer wg.Done()
		q.Refetch(context.Background())
	}()
	<-g.calls

	if !q.State().Loading {
		t.Fatal("expected loading while both refetches run")
	}

	// Newer answers first.
	g.gate(1) <- big.NewInt(2e18)
	waitFor(t, func() bool { return !q.State().Loading })
	if b := q.State().Balance; b == nil || *b != "2" {
		t.Fatalf("unexpected balance %v", b)
	}

	// Older answers late and is dropped.
	g.gate(0) <- big.NewInt(1e18)
	wg.Wait()
	if b := q.State().Balance; b == nil || *b != "2" {
		t.Fatalf("stale response overwrote balance: %v", b)
	}
	if got := testutil.ToFloat64(m.BalanceQueries.WithLabelValues(PathNative, "stale")); got != 1 {
		t.Fatalf("stale metric = %v", got)
	}
}

// An older response arriving before the newer one is published, and then
// replaced by it.
func TestRefetch_InOrderResponses(t *testing.T) {
	g := &gatedReader{calls: make(chan struct{}, 2)}
	q := NewResolver(conn, g).Query(Params{Token: "ETH"})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Refetch(context.Background())
		}()
		<-g.calls
	}

	g.gate(0) <- big.NewInt(1e18)
	waitFor(t, func() bool {
		b := q.State().Balance
		return b != nil && *b == "1"
	})
	if !q.State().Loading {
		t.Fatal("expected loading while the newer refetch runs")
	}
	g.gate(1) <- big.NewInt(3e18)
	wg.Wait()
	if st := q.State(); st.Loading || st.Balance == nil || *st.Balance != "3" {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestRefetch_Timeout(t *testing.T) {
	g := &gatedReader{calls: make(chan struct{}, 1)}
	st := NewResolver(conn, g, WithTimeout(10*time.Millisecond)).Fetch(context.Background(), Params{Token: "ETH"})
	if !errors.Is(st.Err, context.DeadlineExceeded) || st.Loading {
		t.Fatalf("unexpected state %+v", st)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(time.Millisecond)
	}
}
