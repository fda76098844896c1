package ui

import (
	"testing"

	"github.com/five82/offerwatch/internal/offerapi"
)

func TestNextStatus_CyclesThroughAll(t *testing.T) {
	var seen []offerapi.Status
	s := offerapi.Status("")
	for i := 0; i <= len(offerapi.Statuses); i++ {
		s = nextStatus(s)
		seen = append(seen, s)
	}
	if seen[0] != offerapi.StatusSubmitted || seen[len(seen)-1] != "" {
		t.Fatalf("cycle = %v, want SUBMITTED … then all", seen)
	}
	if got := nextStatus("ARCHIVED"); got != "" {
		t.Fatalf("nextStatus(unknown) = %q, want all", got)
	}
}

func TestNextRead_Cycle(t *testing.T) {
	r := nextRead(nil)
	if r == nil || *r {
		t.Fatalf("nil → %v, want unread", r)
	}
	r = nextRead(r)
	if r == nil || !*r {
		t.Fatalf("unread → %v, want read", r)
	}
	if r = nextRead(r); r != nil {
		t.Fatalf("read → %v, want all", *r)
	}
}

func TestLabels(t *testing.T) {
	yes, no := true, false
	tests := []struct{ got, want string }{
		{statusLabel(""), "전체"},
		{statusLabel(offerapi.StatusInterview), "면접진행"},
		{readLabel(nil), "전체"},
		{readLabel(&yes), "읽음"},
		{readLabel(&no), "안읽음"},
		{keywordLabel("  "), "-"},
		{keywordLabel(" acme "), "acme"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("label = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestReadFlag_DependsOnViewer(t *testing.T) {
	o := offerapi.Offer{Read: true, AdminRead: false}
	if readFlag(o, false) {
		t.Fatalf("non-admin should see adminRead")
	}
	if !readFlag(o, true) {
		t.Fatalf("admin should see the submitter's read flag")
	}
}
