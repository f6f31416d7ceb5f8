package models

import "testing"

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name               string
		page, limit, total int
		wantPages          int
		wantNext, wantPrev bool
	}{
		{"middle page", 2, 20, 45, 3, true, true},
		{"last page", 3, 20, 45, 3, false, true},
		{"first page", 1, 20, 45, 3, true, false},
		{"exact fit", 2, 10, 20, 2, false, true},
		{"empty", 1, 10, 0, 0, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPagination(tc.page, tc.limit, tc.total)
			if p.TotalPages != tc.wantPages {
				t.Fatalf("totalPages = %d, want %d", p.TotalPages, tc.wantPages)
			}
			if p.HasNextPage != tc.wantNext || p.HasPrevPage != tc.wantPrev {
				t.Fatalf("flags = next:%t prev:%t, want next:%t prev:%t", p.HasNextPage, p.HasPrevPage, tc.wantNext, tc.wantPrev)
			}
			if err := p.Check(); err != nil {
				t.Fatalf("derived pagination failed its own check: %v", err)
			}
		})
	}
}

func TestPaginationCheckRejectsInconsistentFlags(t *testing.T) {
	p := Pagination{Page: 3, Limit: 20, Total: 45, TotalPages: 3, HasNextPage: true, HasPrevPage: true}
	if err := p.Check(); err == nil {
		t.Fatal("expected error for hasNextPage on last page")
	}
	p = Pagination{Page: 1, Limit: 20, Total: 45, TotalPages: 3, HasNextPage: true, HasPrevPage: true}
	if err := p.Check(); err == nil {
		t.Fatal("expected error for hasPrevPage on first page")
	}
}

func TestEditAppointmentRequestHasFields(t *testing.T) {
	if (EditAppointmentRequest{}).HasFields() {
		t.Fatal("empty patch reported fields")
	}
	phone := "555"
	if !(EditAppointmentRequest{Phone: &phone}).HasFields() {
		t.Fatal("patch with phone reported no fields")
	}
	slot := "s2"
	r := EditAppointmentRequest{NewSlotID: &slot}
	if !r.IsReschedule() {
		t.Fatal("expected reschedule")
	}
}
