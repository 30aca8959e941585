package timeline

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/lepinkainen/twitterss/internal/tweet"
)

type mockSource struct{}

func (mockSource) Account(context.Context) (tweet.User, error) {
	return tweet.User{ID: "1", Handle: "mock"}, nil
}

func (mockSource) ListTimeline(context.Context, tweet.User, string, int) ([]tweet.RawPost, error) {
	return nil, nil
}

func TestRegistry_RegisterAndCreate(t *testing.T) {
	r := NewRegistry()

	var gotConfig any
	info := &SourceInfo{
		Name:        "Mock",
		Description: "mock source",
		Factory: func(config any) (Source, error) {
			gotConfig = config
			return mockSource{}, nil
		},
	}

	if err := r.Register("mock", info); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register("mock", info); err == nil {
		t.Error("Register() should reject duplicate names")
	}

	src, err := r.Create("mock", "cfg")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if gotConfig != "cfg" {
		t.Errorf("factory got config %v, want cfg", gotConfig)
	}
	if _, ok := src.(mockSource); !ok {
		t.Errorf("Create() returned %T", src)
	}
}

func TestRegistry_CreateUnknown(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Create("missing", nil); err == nil {
		t.Error("Create() should fail for unknown source")
	}
}

func TestRegistry_FactoryError(t *testing.T) {
	r := NewRegistry()
	wantErr := errors.New("boom")
	_ = r.Register("bad", &SourceInfo{Factory: func(any) (Source, error) { return nil, wantErr }})

	if _, err := r.Create("bad", nil); !errors.Is(err, wantErr) {
		t.Errorf("Create() error = %v, want %v", err, wantErr)
	}
}

func TestRegistry_ListIsSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		_ = r.Register(name, &SourceInfo{Name: name})
	}

	want := []string{"alpha", "mid", "zeta"}
	if got := r.List(); !slices.Equal(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

func TestDefaultRegistry_HasFileSource(t *testing.T) {
	if !slices.Contains(Names(), "file") {
		t.Errorf("Names() = %v, want file source registered", Names())
	}
}
