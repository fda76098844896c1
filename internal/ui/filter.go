package ui

import (
	"strings"

	"github.com/five82/offerwatch/internal/offerapi"
)

// nextStatus cycles all → SUBMITTED → … → CLOSED → all.
func nextStatus(current offerapi.Status) offerapi.Status {
	if current == "" {
		return offerapi.Statuses[0]
	}
	for i, s := range offerapi.Statuses {
		if s == current && i+1 < len(offerapi.Statuses) {
			return offerapi.Statuses[i+1]
		}
	}
	return ""
}

// nextRead cycles all → unread → read → all.
func nextRead(current *bool) *bool {
	switch {
	case current == nil:
		v := false
		return &v
	case !*current:
		v := true
		return &v
	default:
		return nil
	}
}

func statusLabel(s offerapi.Status) string {
	if s == "" {
		return "전체"
	}
	return s.Label()
}

func readLabel(read *bool) string {
	switch {
	case read == nil:
		return "전체"
	case *read:
		return "읽음"
	default:
		return "안읽음"
	}
}

func keywordLabel(keyword string) string {
	if k := strings.TrimSpace(keyword); k != "" {
		return k
	}
	return "-"
}

// readFlag is the flag a viewer cares about: administrators track whether
// the submitter has seen the offer, everyone else tracks staff review.
func readFlag(o offerapi.Offer, admin bool) bool {
	if admin {
		return o.Read
	}
	return o.AdminRead
}
