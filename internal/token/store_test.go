package token

import (
	"errors"
	"testing"

	"github.com/xssnick/tonutils-go/address"

	"github.com/Klingon-tech/klingnet-jetton/internal/storage"
)

func minterAddr(b byte) *address.Address {
	data := make([]byte, 32)
	data[0] = b
	return address.NewAddress(0, 0, data)
}

func TestStore_PutGetHas(t *testing.T) {
	db := storage.NewMemory()
	store := NewStore(db)

	id := minterAddr(0x01)
	meta := &Metadata{
		Minter:   id.String(),
		Kind:     KindOffchain,
		URI:      "https://example.org/tst.json",
		Name:     "Test Token",
		Symbol:   "TST",
		Decimals: 8,
	}

	// Has should be false before Put.
	has, err := store.Has(id)
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if has {
		t.Fatal("expected Has=false before Put")
	}

	// Put.
	if err := store.Put(id, meta); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Has should be true.
	has, err = store.Has(id)
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if !has {
		t.Fatal("expected Has=true after Put")
	}

	// Get.
	got, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != meta.Name {
		t.Errorf("Name = %q, want %q", got.Name, meta.Name)
	}
	if got.Symbol != meta.Symbol {
		t.Errorf("Symbol = %q, want %q", got.Symbol, meta.Symbol)
	}
	if got.Decimals != meta.Decimals {
		t.Errorf("Decimals = %d, want %d", got.Decimals, meta.Decimals)
	}
	if got.URI != meta.URI {
		t.Errorf("URI = %q, want %q", got.URI, meta.URI)
	}
	if got.Minter != meta.Minter {
		t.Errorf("Minter = %q, want %q", got.Minter, meta.Minter)
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	db := storage.NewMemory()
	store := NewStore(db)

	_, err := store.Get(minterAddr(0xFF))
	if err == nil {
		t.Fatal("expected error for non-existent token")
	}
}

func TestStore_List_Empty(t *testing.T) {
	db := storage.NewMemory()
	store := NewStore(db)

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(entries))
	}
}

func TestStore_List_Multiple(t *testing.T) {
	db := storage.NewMemory()
	store := NewStore(db)

	tokens := []struct {
		id   *address.Address
		meta *Metadata
	}{
		{minterAddr(0x01), &Metadata{Name: "Alpha", Symbol: "ALP", Decimals: 6}},
		{minterAddr(0x02), &Metadata{Name: "Beta", Symbol: "BET", Decimals: 8}},
		{minterAddr(0x03), &Metadata{Name: "Gamma", Symbol: "GAM", Decimals: 12}},
	}

	for _, tt := range tokens {
		if err := store.Put(tt.id, tt.meta); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	// Verify all tokens are present (order may vary).
	found := make(map[string]bool)
	for _, e := range entries {
		found[e.Symbol] = true
	}
	for _, tt := range tokens {
		if !found[tt.meta.Symbol] {
			t.Errorf("missing token %s", tt.meta.Symbol)
		}
	}
}

func TestStore_ForEach_StopEarly(t *testing.T) {
	db := storage.NewMemory()
	store := NewStore(db)

	for i := 0; i < 5; i++ {
		id := minterAddr(byte(i))
		if err := store.Put(id, &Metadata{Name: "Token", Symbol: "TKN"}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	var count int
	errStop := errors.New("stop")
	err := store.ForEach(func(_ *Metadata) error {
		count++
		if count >= 2 {
			return errStop
		}
		return nil
	})
	if err == nil {
		t.Fatal("expected early-stop error")
	}
	if !errors.Is(err, errStop) {
		t.Errorf("error = %v, want %v", err, errStop)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestStore_Clear(t *testing.T) {
	db := storage.NewMemory()
	store := NewStore(db)
	other := []byte("x/keep")
	db.Put(other, []byte("1"))

	for i := byte(1); i <= 3; i++ {
		if err := store.Put(minterAddr(i), &Metadata{Minter: minterAddr(i).String()}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("List after Clear = %d entries, want 0", len(list))
	}
	if ok, _ := db.Has(other); !ok {
		t.Fatal("Clear removed a key outside the token prefix")
	}
}
