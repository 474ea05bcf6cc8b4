package chains

import (
	"errors"
	"testing"
)

func TestByID(t *testing.T) {
	testCases := []struct {
		name   string
		id     uint64
		want   string
		rpc    string
		wantOK bool
	}{
		{"mainnet", 2818, "Morph Mainnet", "https://rpc-quicknode.morphl2.io", true},
		{"testnet", 2910, "Morph Hoodi Testnet", "https://rpc-hoodi.morphl2.io", true},
		{"unknown", 1, "", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := ByID(tc.id)
			if !tc.wantOK {
				if !errors.Is(err, ErrChainNotFound) {
					t.Fatalf("expected ErrChainNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ByID(%d) failed: %v", tc.id, err)
			}
			if c.Name != tc.want {
				t.Fatalf("unexpected name: got %q, want %q", c.Name, tc.want)
			}
			if c.RPCURL != tc.rpc || c.PublicRPCURL != tc.rpc {
				t.Fatalf("unexpected rpc urls: %q %q", c.RPCURL, c.PublicRPCURL)
			}
			if c.NativeCurrency.Symbol != "ETH" || c.NativeCurrency.Decimals != 18 {
				t.Fatalf("unexpected native currency: %#v", c.NativeCurrency)
			}
		})
	}
}

func TestAll_OrderedByID(t *testing.T) {
	all := All()
	if len(all) != 2 {
		t.Fatalf("expected 2 chains, got %d", len(all))
	}
	if all[0].ID != MainnetID || all[1].ID != TestnetID {
		t.Fatalf("unexpected order: %d, %d", all[0].ID, all[1].ID)
	}
}

func TestExplorerURLs(t *testing.T) {
	if got := MorphMainnet.TxURL("0xabc"); got != "https://explorer.morphl2.io/tx/0xabc" {
		t.Fatalf("unexpected tx url: %s", got)
	}
	if got := MorphHoodiTestnet.AddressURL("0xdef"); got != "https://explorer-hoodi.morphl2.io/address/0xdef" {
		t.Fatalf("unexpected address url: %s", got)
	}
}

func TestNativeFallbacks(t *testing.T) {
	if NativeDecimals(MainnetID) != 18 || NativeSymbol(TestnetID) != "ETH" {
		t.Fatal("unexpected native currency for registered chain")
	}
	if NativeDecimals(999) != 18 || NativeSymbol(999) != "ETH" {
		t.Fatal("unexpected fallback for unknown chain")
	}
	if IsSupported(999) {
		t.Fatal("999 must not be supported")
	}
}
