package windows

import (
	"errors"
	"testing"

	"github.com/1broseidon/coverdock/internal/geometry"
	"github.com/1broseidon/coverdock/internal/platform"
)

type fakeLister struct {
	top      []platform.Window
	children map[platform.WindowID][]platform.Window
	err      error
	calls    int
}

func (f *fakeLister) TopLevelWindows() ([]platform.Window, error) {
	f.calls++
	return f.top, f.err
}

func (f *fakeLister) ChildWindows(parent platform.WindowID) ([]platform.Window, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.children[parent], nil
}

func TestFindByRole(t *testing.T) {
	lister := &fakeLister{
		children: map[platform.WindowID][]platform.Window{
			10: {
				{ID: 11, Title: LabelSettings},
				{ID: 12, Title: LabelTrackInfo, Bounds: geometry.Rect{Width: 400, Height: 200}},
			},
		},
	}
	reg := NewRegistry(lister, nil)

	w, ok, err := reg.FindByRole(10, RoleTrackInfo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || w.ID != 12 {
		t.Fatalf("FindByRole = %+v, %v; want window 12", w, ok)
	}
}

func TestFindByRole_NotFoundIsNotAnError(t *testing.T) {
	reg := NewRegistry(&fakeLister{}, nil)

	_, ok, err := reg.FindByRole(10, RoleTrackInfo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected no match")
	}
}

func TestFindByRole_TitleMustMatchExactly(t *testing.T) {
	lister := &fakeLister{
		children: map[platform.WindowID][]platform.Window{
			10: {{ID: 11, Title: "track-info (old)"}},
		},
	}
	reg := NewRegistry(lister, nil)

	if _, ok, _ := reg.FindByRole(10, RoleTrackInfo); ok {
		t.Fatal("substring title must not match")
	}
}

func TestFindByRole_RescansEveryCall(t *testing.T) {
	lister := &fakeLister{children: map[platform.WindowID][]platform.Window{}}
	reg := NewRegistry(lister, nil)

	if _, ok, _ := reg.FindByRole(10, RoleTrackInfo); ok {
		t.Fatal("expected no match before the window opens")
	}

	lister.children[10] = []platform.Window{{ID: 12, Title: LabelTrackInfo}}
	if _, ok, _ := reg.FindByRole(10, RoleTrackInfo); !ok {
		t.Fatal("expected match after the window opens")
	}

	lister.children[10] = nil
	if _, ok, _ := reg.FindByRole(10, RoleTrackInfo); ok {
		t.Fatal("expected no match after the window closes")
	}
	if lister.calls != 3 {
		t.Fatalf("lister called %d times, want 3", lister.calls)
	}
}

func TestFindByRole_ListerError(t *testing.T) {
	reg := NewRegistry(&fakeLister{err: errors.New("bad window")}, nil)

	if _, _, err := reg.FindByRole(10, RoleTrackInfo); err == nil {
		t.Fatal("expected lister error to surface")
	}
}

func TestFindMain(t *testing.T) {
	lister := &fakeLister{
		top: []platform.Window{
			{ID: 1, Title: "Terminal"},
			{ID: 2, Title: LabelMain},
		},
	}
	reg := NewRegistry(lister, nil)

	w, ok, err := reg.FindMain()
	if err != nil || !ok || w.ID != 2 {
		t.Fatalf("FindMain = %+v, %v, %v", w, ok, err)
	}
}

func TestLabelsValidate(t *testing.T) {
	if err := DefaultLabels().Validate(); err != nil {
		t.Fatalf("default labels invalid: %v", err)
	}

	dup := DefaultLabels()
	dup[RoleAbout] = dup[RoleSettings]
	if err := dup.Validate(); err == nil {
		t.Fatal("expected duplicate titles to be rejected")
	}

	missing := DefaultLabels()
	delete(missing, RoleTrackInfo)
	if err := missing.Validate(); err == nil {
		t.Fatal("expected missing title to be rejected")
	}
}

func TestRoleOf(t *testing.T) {
	reg := NewRegistry(&fakeLister{}, nil)
	role, ok := reg.RoleOf(platform.Window{Title: LabelAbout})
	if !ok || role != RoleAbout {
		t.Fatalf("RoleOf = %v, %v", role, ok)
	}
	if _, ok := reg.RoleOf(platform.Window{Title: "Firefox"}); ok {
		t.Fatal("unexpected role for foreign window")
	}
}
