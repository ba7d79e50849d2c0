package exchange

import "testing"

func TestMarketIncludes(t *testing.T) {
	tests := []struct {
		name string
		ev   OrderEvent
		want bool
	}{
		{"both legs on pair", buy("1", alice, 1, 1, 1000), true},
		{"give leg off pair", order("2", alice, dapp, tokens(1), mDAI, tokens(1), 1000), false},
		{"get leg off pair", order("3", alice, mDAI, tokens(1), mETH, tokens(1), 1000), false},
		{"both legs off pair", order("4", alice, mDAI, tokens(1), mDAI, tokens(1), 1000), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dappMETH.Includes(tt.ev); got != tt.want {
				t.Errorf("Includes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMarketValid(t *testing.T) {
	if !dappMETH.Valid() {
		t.Error("complete pair reported invalid")
	}
	if (Market{Base: dapp}).Valid() {
		t.Error("pair with unset quote reported valid")
	}
	if (Market{}).Valid() {
		t.Error("empty pair reported valid")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(dappMETH); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(dappMETH); err == nil {
		t.Error("duplicate registration accepted")
	}
	if err := r.Register(Market{BaseSymbol: "DAPP", Base: dapp, QuoteSymbol: "mDAI"}); err == nil {
		t.Error("incomplete pair accepted")
	}

	dappMDAI := Market{BaseSymbol: "DAPP", QuoteSymbol: "mDAI", Base: dapp, Quote: mDAI}
	if err := r.Register(dappMDAI); err != nil {
		t.Fatal(err)
	}

	if m, ok := r.Get("DAPP/mETH"); !ok || m.Quote != mETH {
		t.Errorf("Get(DAPP/mETH) = %+v, %v", m, ok)
	}
	if _, ok := r.Get("DAPP/USDC"); ok {
		t.Error("Get() found unregistered pair")
	}

	list := r.List()
	if len(list) != 2 || list[0].Pair() != "DAPP/mDAI" || list[1].Pair() != "DAPP/mETH" {
		pairs := make([]string, len(list))
		for i, m := range list {
			pairs[i] = m.Pair()
		}
		t.Errorf("List() = %v, want sorted [DAPP/mDAI DAPP/mETH]", pairs)
	}
	if r.Count() != 2 {
		t.Errorf("Count() = %d, want 2", r.Count())
	}
}
